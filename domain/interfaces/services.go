package interfaces

import (
	"context"
	"time"

	"ddj/domain/entities"
)

// RoundClock defines the interface for the deterministic round timer
type RoundClock interface {
	// RoundInfo returns the clock snapshot for the round containing now
	RoundInfo(now time.Time) entities.RoundInfo

	// RoundByID returns the clock snapshot for a specific round as
	// observed at now
	RoundByID(roundID int64, now time.Time) entities.RoundInfo

	// Params returns the current round parameters
	Params() entities.RoundParams

	// UpdateParams applies a partial parameter update and returns the
	// effective parameters after guardrails
	UpdateParams(roundSeconds, closeBetsAt, anchorMs *int64) entities.RoundParams
}

// DrawService defines the interface for deterministic outcome generation
type DrawService interface {
	// OutcomeForRound derives the outcome for a round from the secret seed
	OutcomeForRound(roundID int64) (entities.Outcome, error)
}

// PlayerService defines the interface for account operations
type PlayerService interface {
	// Signup creates a player with the signup bonus credited
	Signup(ctx context.Context, username string) (*entities.Player, error)

	// GetPlayer retrieves a player snapshot
	GetPlayer(ctx context.Context, playerID int64) (*entities.Player, error)

	// GetLedger returns recent ledger entries for a player
	GetLedger(ctx context.Context, playerID int64, limit int) ([]*entities.LedgerEntry, error)

	// AdminCredit adjusts a player's balance by a signed amount
	AdminCredit(ctx context.Context, playerID int64, amount int64) (*entities.Player, error)

	// AdminSetBalance sets a player's balance to an absolute value
	AdminSetBalance(ctx context.Context, playerID int64, balance int64) (*entities.Player, error)

	// AdminSetStatus changes a player's account status
	AdminSetStatus(ctx context.Context, playerID int64, status entities.PlayerStatus) (*entities.Player, error)

	// GetLeaderboard returns active players by balance descending
	GetLeaderboard(ctx context.Context, limit int) ([]*entities.Player, error)
}

// BettingService defines the interface for placing bets
type BettingService interface {
	// PlaceBet validates and records a bet for the current round
	PlaceBet(ctx context.Context, playerID int64, nums []int, chance int, amount int64) (*entities.Bet, error)

	// GetPlayerBets returns recent bets for a player
	GetPlayerBets(ctx context.Context, playerID int64, limit int) ([]*entities.Bet, error)
}

// SettlementService defines the interface for round settlement
type SettlementService interface {
	// SettleRound settles the given round idempotently and returns the
	// settlement summary
	SettleRound(ctx context.Context, roundID int64) (*SettlementSummary, error)

	// GetRoundResult returns the outcome of a settled round
	GetRoundResult(ctx context.Context, roundID int64) (*entities.RoundResult, error)
}

// SettlementSummary reports what a settlement run did
type SettlementSummary struct {
	RoundID        int64
	Outcome        entities.Outcome
	Pot            int64
	CarryIn        int64
	AdminTake      int64
	CarryOut       int64
	TotalPaid      int64
	Winners        int
	Bets           int
	AlreadySettled bool
}

// RedemptionService defines the interface for gift code redemption
type RedemptionService interface {
	// Redeem redeems a gift code for a player
	Redeem(ctx context.Context, playerID int64, code string) (*entities.GiftCode, error)
}

// GiftCodeService defines the interface for admin gift code management
type GiftCodeService interface {
	// CreateCode mints a new gift code and returns the code text once
	CreateCode(ctx context.Context, value int64, expiresAt *time.Time) (code string, gc *entities.GiftCode, err error)
}

// BankService defines the interface for house account reads
type BankService interface {
	// GetBank returns the current bank balances and recent audit rows
	GetBank(ctx context.Context, auditLimit int) (*entities.GameBank, []*entities.AdminLedgerEntry, error)
}
