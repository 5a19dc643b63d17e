package services

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"ddj/domain/apperrors"
	"ddj/domain/entities"
	"ddj/domain/events"
	"ddj/domain/interfaces"
)

// Pot split in basis points: 65% win pool, 10% carry, 25% house.
const (
	winPoolShareBP   int64 = 6500
	carryShareBP     int64 = 1000
	adminTakeShareBP int64 = 2500
)

type settlementService struct {
	uowFactory interfaces.UnitOfWorkFactory
	clock      interfaces.RoundClock
	draw       interfaces.DrawService
	now        func() time.Time
}

// NewSettlementService creates a new settlement service
func NewSettlementService(uowFactory interfaces.UnitOfWorkFactory, clock interfaces.RoundClock, draw interfaces.DrawService) interfaces.SettlementService {
	return &settlementService{
		uowFactory: uowFactory,
		clock:      clock,
		draw:       draw,
		now:        time.Now,
	}
}

// SettleRound settles the given round idempotently. The game_bank row
// lock serializes settlements; the round_results primary key makes a
// second run a no-op.
func (s *settlementService) SettleRound(ctx context.Context, roundID int64) (*interfaces.SettlementSummary, error) {
	if roundID < 0 {
		return nil, apperrors.Newf(apperrors.KindBadRequest, "invalid round id %d", roundID)
	}

	now := s.now()
	round := s.clock.RoundByID(roundID, now)
	if now.UnixMilli() < round.EndMs {
		return nil, apperrors.Newf(apperrors.KindConflict, "round %d not ended yet", roundID).
			WithField("secondsLeft", round.SecondsLeft)
	}

	// The draw fails fast on a bad seed before any locks are taken
	outcome, err := s.draw.OutcomeForRound(roundID)
	if err != nil {
		return nil, err
	}

	uow := s.uowFactory.CreateForTransaction()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	// The bank lock is the settlement mutex; concurrent settle calls
	// queue here and observe the result row the winner inserted.
	bank, err := uow.BankRepository().GetForUpdate(ctx)
	if err != nil {
		return nil, err
	}

	existing, err := uow.RoundResultRepository().GetByRound(ctx, roundID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return &interfaces.SettlementSummary{
			RoundID:        roundID,
			Outcome:        existing.Outcome(),
			AlreadySettled: true,
		}, nil
	}

	bets, err := uow.BetRepository().GetUnsettledByRoundForUpdate(ctx, roundID)
	if err != nil {
		return nil, err
	}

	var pot int64
	for _, b := range bets {
		pot += b.Amount
	}

	carryIn := bank.CarryDOS
	adminTake := pot * adminTakeShareBP / 10000
	carryBase := pot * carryShareBP / 10000
	winPool := pot * winPoolShareBP / 10000
	roundingLoss := pot - adminTake - carryBase - winPool

	// Classify and group winners by category
	winnersByCat := make(map[entities.BetCategory][]*entities.Bet)
	stakeByCat := make(map[entities.BetCategory]int64)
	for _, b := range bets {
		if cat := b.Classify(outcome); cat != "" {
			winnersByCat[cat] = append(winnersByCat[cat], b)
			stakeByCat[cat] += b.Amount
		}
	}

	// Allocate category pools from the win pool plus incoming carry
	allocBase := winPool + carryIn
	carryOut := carryBase + roundingLoss

	var allocated int64
	payouts := make(map[int64]int64)                          // betID -> payout
	categories := make(map[int64]entities.BetCategory)        // betID -> category
	playerTotals := make(map[int64]int64)                     // playerID -> total payout
	playerCats := make(map[int64]map[entities.BetCategory]bool)

	for _, cat := range entities.WinningCategories {
		catPool := allocBase * entities.CategoryWeightBP[cat] / 10000
		allocated += catPool

		winners := winnersByCat[cat]
		if len(winners) == 0 {
			carryOut += catPool
			continue
		}

		stake := stakeByCat[cat]
		var paid int64
		for _, w := range winners {
			payout := catPool * w.Amount / stake
			payouts[w.ID] = payout
			categories[w.ID] = cat
			paid += payout
			playerTotals[w.PlayerID] += payout
			if playerCats[w.PlayerID] == nil {
				playerCats[w.PlayerID] = make(map[entities.BetCategory]bool)
			}
			playerCats[w.PlayerID][cat] = true
		}
		carryOut += catPool - paid
	}
	// Floor loss across the weight table stays in the bank
	carryOut += allocBase - allocated

	// Credit winners, one aggregated WIN entry per player
	var totalPaid int64
	for playerID, amount := range playerTotals {
		totalPaid += amount
		if amount == 0 {
			continue
		}

		player, err := uow.PlayerRepository().GetByIDForUpdate(ctx, playerID)
		if err != nil {
			return nil, err
		}
		if player == nil {
			return nil, fmt.Errorf("winning player %d missing during settlement of round %d", playerID, roundID)
		}
		if err := uow.PlayerRepository().UpdateBalance(ctx, playerID, player.Balance+amount); err != nil {
			return nil, err
		}

		cats := make([]string, 0, len(playerCats[playerID]))
		for _, cat := range entities.WinningCategories {
			if playerCats[playerID][cat] {
				cats = append(cats, string(cat))
			}
		}
		entry := &entities.LedgerEntry{
			PlayerID: playerID,
			Kind:     entities.LedgerKindWin,
			Amount:   amount,
			Meta:     map[string]any{"roundId": roundID, "categories": cats},
		}
		if err := uow.LedgerRepository().Record(ctx, entry); err != nil {
			return nil, err
		}
	}

	// Mark every loaded bet settled, losers with zero payout
	for _, b := range bets {
		var cat *entities.BetCategory
		if c, ok := categories[b.ID]; ok {
			cat = &c
		}
		if err := uow.BetRepository().MarkSettled(ctx, b.ID, payouts[b.ID], cat); err != nil {
			return nil, err
		}
	}

	// Bank update plus the per-round audit trail
	if err := uow.BankRepository().Update(ctx, carryOut, bank.AdminDOS+adminTake); err != nil {
		return nil, err
	}
	if err := uow.BankRepository().RecordAdminEntry(ctx, &entities.AdminLedgerEntry{
		Kind:   entities.AdminLedgerKindCarry,
		Amount: carryOut - carryIn,
		Meta:   map[string]any{"roundId": roundID, "carryIn": carryIn, "carryOut": carryOut},
	}); err != nil {
		return nil, err
	}
	if err := uow.BankRepository().RecordAdminEntry(ctx, &entities.AdminLedgerEntry{
		Kind:   entities.AdminLedgerKindAdminTake,
		Amount: adminTake,
		Meta:   map[string]any{"roundId": roundID},
	}); err != nil {
		return nil, err
	}

	result := &entities.RoundResult{
		RoundID:   roundID,
		Main:      outcome.Main,
		Chance:    outcome.Chance,
		SettledAt: now,
	}
	if err := uow.RoundResultRepository().Create(ctx, result); err != nil {
		return nil, err
	}

	if err := uow.EventPublisher().Publish(events.RoundSettledEvent{
		RoundID:   roundID,
		Main:      outcome.Main,
		Chance:    outcome.Chance,
		Pot:       pot,
		AdminTake: adminTake,
		CarryOut:  carryOut,
		Winners:   len(playerTotals),
	}); err != nil {
		log.WithError(err).Warn("Failed to publish round settled event")
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit settlement of round %d: %w", roundID, err)
	}

	log.WithFields(log.Fields{
		"roundId":   roundID,
		"outcome":   outcome,
		"bets":      len(bets),
		"pot":       pot,
		"carryIn":   carryIn,
		"adminTake": adminTake,
		"carryOut":  carryOut,
		"totalPaid": totalPaid,
		"winners":   len(playerTotals),
	}).Info("Round settled")

	return &interfaces.SettlementSummary{
		RoundID:   roundID,
		Outcome:   outcome,
		Pot:       pot,
		CarryIn:   carryIn,
		AdminTake: adminTake,
		CarryOut:  carryOut,
		TotalPaid: totalPaid,
		Winners:   len(playerTotals),
		Bets:      len(bets),
	}, nil
}

// GetRoundResult returns the outcome of a settled round
func (s *settlementService) GetRoundResult(ctx context.Context, roundID int64) (*entities.RoundResult, error) {
	uow := s.uowFactory.CreateForTransaction()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	result, err := uow.RoundResultRepository().GetByRound(ctx, roundID)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, apperrors.Newf(apperrors.KindNotFound, "round %d not settled", roundID)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return result, nil
}
