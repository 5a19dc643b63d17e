package services

import (
	"context"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"ddj/domain/apperrors"
	"ddj/domain/entities"
	"ddj/domain/events"
	"ddj/domain/interfaces"
)

type playerService struct {
	uowFactory  interfaces.UnitOfWorkFactory
	signupBonus int64
}

// NewPlayerService creates a new player service
func NewPlayerService(uowFactory interfaces.UnitOfWorkFactory, signupBonus int64) interfaces.PlayerService {
	return &playerService{
		uowFactory:  uowFactory,
		signupBonus: signupBonus,
	}
}

// Signup creates a player with the signup bonus credited
func (s *playerService) Signup(ctx context.Context, username string) (*entities.Player, error) {
	username = strings.TrimSpace(username)
	if len(username) < 3 {
		return nil, apperrors.New(apperrors.KindBadRequest, "username must be at least 3 characters")
	}

	uow := s.uowFactory.CreateForTransaction()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	existing, err := uow.PlayerRepository().GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.Newf(apperrors.KindConflict, "username %q is taken", username)
	}

	player, err := uow.PlayerRepository().Create(ctx, username, s.signupBonus)
	if err != nil {
		return nil, err
	}

	if s.signupBonus > 0 {
		entry := &entities.LedgerEntry{
			PlayerID: player.ID,
			Kind:     entities.LedgerKindBonusSignup,
			Amount:   s.signupBonus,
		}
		if err := uow.LedgerRepository().Record(ctx, entry); err != nil {
			return nil, err
		}
	}

	if err := uow.EventPublisher().Publish(events.PlayerSignedUpEvent{
		PlayerID: player.ID,
		Username: player.Username,
		Bonus:    s.signupBonus,
	}); err != nil {
		log.WithError(err).Warn("Failed to publish player signed up event")
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"playerId": player.ID,
		"username": player.Username,
		"bonus":    s.signupBonus,
	}).Info("Player signed up")

	return player, nil
}

// GetPlayer retrieves a player snapshot
func (s *playerService) GetPlayer(ctx context.Context, playerID int64) (*entities.Player, error) {
	uow := s.uowFactory.CreateForTransaction()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	player, err := uow.PlayerRepository().GetByID(ctx, playerID)
	if err != nil {
		return nil, err
	}
	if player == nil {
		return nil, apperrors.Newf(apperrors.KindNotFound, "player %d not found", playerID)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return player, nil
}

// GetLedger returns recent ledger entries for a player
func (s *playerService) GetLedger(ctx context.Context, playerID int64, limit int) ([]*entities.LedgerEntry, error) {
	uow := s.uowFactory.CreateForTransaction()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	player, err := uow.PlayerRepository().GetByID(ctx, playerID)
	if err != nil {
		return nil, err
	}
	if player == nil {
		return nil, apperrors.Newf(apperrors.KindNotFound, "player %d not found", playerID)
	}

	entries, err := uow.LedgerRepository().GetByPlayer(ctx, playerID, limit)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return entries, nil
}

// GetLeaderboard returns active players by balance descending
func (s *playerService) GetLeaderboard(ctx context.Context, limit int) ([]*entities.Player, error) {
	uow := s.uowFactory.CreateForTransaction()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	players, err := uow.PlayerRepository().GetTopByBalance(ctx, limit)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return players, nil
}

// AdminCredit adjusts a player's balance by a signed amount
func (s *playerService) AdminCredit(ctx context.Context, playerID int64, amount int64) (*entities.Player, error) {
	if amount == 0 {
		return nil, apperrors.New(apperrors.KindBadRequest, "amount must be non-zero")
	}

	uow := s.uowFactory.CreateForTransaction()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	player, err := uow.PlayerRepository().GetByIDForUpdate(ctx, playerID)
	if err != nil {
		return nil, err
	}
	if player == nil {
		return nil, apperrors.Newf(apperrors.KindNotFound, "player %d not found", playerID)
	}

	newBalance := player.Balance + amount
	if newBalance < 0 {
		return nil, apperrors.Newf(apperrors.KindConflict,
			"credit of %d would take balance below zero (current %d)", amount, player.Balance)
	}

	if err := uow.PlayerRepository().UpdateBalance(ctx, playerID, newBalance); err != nil {
		return nil, err
	}
	entry := &entities.LedgerEntry{
		PlayerID: playerID,
		Kind:     entities.LedgerKindAdminAdd,
		Amount:   amount,
	}
	if err := uow.LedgerRepository().Record(ctx, entry); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"playerId":   playerID,
		"amount":     amount,
		"newBalance": newBalance,
	}).Info("Admin credit applied")

	player.Balance = newBalance
	return player, nil
}

// AdminSetBalance sets a player's balance to an absolute value
func (s *playerService) AdminSetBalance(ctx context.Context, playerID int64, balance int64) (*entities.Player, error) {
	if balance < 0 {
		return nil, apperrors.New(apperrors.KindBadRequest, "balance must be non-negative")
	}

	uow := s.uowFactory.CreateForTransaction()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	player, err := uow.PlayerRepository().GetByIDForUpdate(ctx, playerID)
	if err != nil {
		return nil, err
	}
	if player == nil {
		return nil, apperrors.Newf(apperrors.KindNotFound, "player %d not found", playerID)
	}

	delta := balance - player.Balance
	if err := uow.PlayerRepository().UpdateBalance(ctx, playerID, balance); err != nil {
		return nil, err
	}
	entry := &entities.LedgerEntry{
		PlayerID: playerID,
		Kind:     entities.LedgerKindAdminSet,
		Amount:   delta,
		Meta:     map[string]any{"balance": balance},
	}
	if err := uow.LedgerRepository().Record(ctx, entry); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	player.Balance = balance
	return player, nil
}

// AdminSetStatus changes a player's account status
func (s *playerService) AdminSetStatus(ctx context.Context, playerID int64, status entities.PlayerStatus) (*entities.Player, error) {
	if !status.IsValid() {
		return nil, apperrors.Newf(apperrors.KindBadRequest, "invalid status %q", status)
	}

	uow := s.uowFactory.CreateForTransaction()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	player, err := uow.PlayerRepository().GetByIDForUpdate(ctx, playerID)
	if err != nil {
		return nil, err
	}
	if player == nil {
		return nil, apperrors.Newf(apperrors.KindNotFound, "player %d not found", playerID)
	}

	if player.Status != status {
		if err := uow.PlayerRepository().UpdateStatus(ctx, playerID, status); err != nil {
			return nil, err
		}
		entry := &entities.LedgerEntry{
			PlayerID: playerID,
			Kind:     entities.LedgerKindAdminStatus,
			Amount:   0,
			Meta:     map[string]any{"from": string(player.Status), "to": string(status)},
		}
		if err := uow.LedgerRepository().Record(ctx, entry); err != nil {
			return nil, err
		}
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"playerId": playerID,
		"from":     player.Status,
		"to":       status,
	}).Info("Player status changed")

	player.Status = status
	return player, nil
}
