package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	log "github.com/sirupsen/logrus"

	"ddj/domain/apperrors"
	"ddj/domain/entities"
	"ddj/domain/events"
	"ddj/domain/interfaces"
)

type bettingService struct {
	uowFactory interfaces.UnitOfWorkFactory
	clock      interfaces.RoundClock
	now        func() time.Time
}

// NewBettingService creates a new betting service
func NewBettingService(uowFactory interfaces.UnitOfWorkFactory, clock interfaces.RoundClock) interfaces.BettingService {
	return &bettingService{
		uowFactory: uowFactory,
		clock:      clock,
		now:        time.Now,
	}
}

// normalizeNums dedups and sorts the submitted numbers
func normalizeNums(nums []int) []int {
	seen := make(map[int]bool, len(nums))
	out := make([]int, 0, len(nums))
	for _, n := range nums {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	sort.Ints(out)
	return out
}

func validateBetInput(nums []int, chance int, amount int64) ([]int, error) {
	if amount <= 0 {
		return nil, apperrors.New(apperrors.KindBadRequest, "amount must be a positive integer")
	}
	normalized := normalizeNums(nums)
	if len(normalized) < 4 || len(normalized) > 8 {
		return nil, apperrors.New(apperrors.KindBadRequest, "nums must contain 4 to 8 unique numbers")
	}
	for _, n := range normalized {
		if n < 1 || n > 20 {
			return nil, apperrors.Newf(apperrors.KindBadRequest, "number %d out of range 1..20", n)
		}
	}
	if chance < 1 || chance > 5 {
		return nil, apperrors.New(apperrors.KindBadRequest, "chance must be in range 1..5")
	}
	return normalized, nil
}

// PlaceBet validates and records a bet for the current round
func (s *bettingService) PlaceBet(ctx context.Context, playerID int64, nums []int, chance int, amount int64) (*entities.Bet, error) {
	normalized, err := validateBetInput(nums, chance, amount)
	if err != nil {
		return nil, err
	}

	round := s.clock.RoundInfo(s.now())
	if !round.BetsOpen {
		return nil, apperrors.New(apperrors.KindConflict, "bets closed").
			WithField("roundId", round.RoundID).
			WithField("secondsToClose", round.SecondsToClose)
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
	if !player.IsActive() {
		return nil, apperrors.Newf(apperrors.KindForbidden, "player %d is suspended", playerID)
	}
	if player.Balance < amount {
		return nil, apperrors.Newf(apperrors.KindConflict,
			"insufficient balance: have %d, need %d", player.Balance, amount)
	}

	if err := uow.PlayerRepository().UpdateBalance(ctx, playerID, player.Balance-amount); err != nil {
		return nil, err
	}

	bet := &entities.Bet{
		PlayerID: playerID,
		RoundID:  round.RoundID,
		Nums:     normalized,
		Chance:   chance,
		Amount:   amount,
	}
	if err := uow.BetRepository().Create(ctx, bet); err != nil {
		return nil, err
	}

	entry := &entities.LedgerEntry{
		PlayerID: playerID,
		Kind:     entities.LedgerKindBet,
		Amount:   -amount,
		Meta: map[string]any{
			"betId":   bet.ID,
			"roundId": round.RoundID,
			"choice":  bet.ChoiceKey(),
		},
	}
	if err := uow.LedgerRepository().Record(ctx, entry); err != nil {
		return nil, err
	}

	if err := uow.EventPublisher().Publish(events.BetPlacedEvent{
		BetID:    bet.ID,
		PlayerID: playerID,
		RoundID:  round.RoundID,
		Amount:   amount,
		Choice:   bet.ChoiceKey(),
	}); err != nil {
		log.WithError(err).Warn("Failed to publish bet placed event")
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"playerId": playerID,
		"roundId":  round.RoundID,
		"betId":    bet.ID,
		"amount":   amount,
		"choice":   bet.ChoiceKey(),
	}).Info("Bet placed")

	return bet, nil
}

// GetPlayerBets returns recent bets for a player
func (s *bettingService) GetPlayerBets(ctx context.Context, playerID int64, limit int) ([]*entities.Bet, error) {
	uow := s.uowFactory.CreateForTransaction()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	bets, err := uow.BetRepository().GetByPlayer(ctx, playerID, limit)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return bets, nil
}
