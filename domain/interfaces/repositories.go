package interfaces

import (
	"context"
	"time"

	"github.com/google/uuid"

	"ddj/domain/entities"
	"ddj/domain/events"
)

// PlayerRepository defines the interface for player data access
type PlayerRepository interface {
	// GetByID retrieves a player by ID, nil when absent
	GetByID(ctx context.Context, id int64) (*entities.Player, error)

	// GetByIDForUpdate retrieves a player with a row lock held for the
	// duration of the surrounding transaction
	GetByIDForUpdate(ctx context.Context, id int64) (*entities.Player, error)

	// GetByUsername retrieves a player by username, nil when absent
	GetByUsername(ctx context.Context, username string) (*entities.Player, error)

	// Create inserts a new player with the given starting balance
	Create(ctx context.Context, username string, balance int64) (*entities.Player, error)

	// UpdateBalance sets a player's balance
	UpdateBalance(ctx context.Context, id int64, newBalance int64) error

	// UpdateStatus sets a player's account status
	UpdateStatus(ctx context.Context, id int64, status entities.PlayerStatus) error

	// GetTopByBalance returns active players ordered by balance
	// descending
	GetTopByBalance(ctx context.Context, limit int) ([]*entities.Player, error)
}

// LedgerRepository defines the interface for the per-player DOS ledger
type LedgerRepository interface {
	// Record appends a ledger entry
	Record(ctx context.Context, entry *entities.LedgerEntry) error

	// GetByPlayer returns the most recent entries for a player,
	// newest first
	GetByPlayer(ctx context.Context, playerID int64, limit int) ([]*entities.LedgerEntry, error)

	// SumByPlayer returns the sum of all entry amounts for a player
	SumByPlayer(ctx context.Context, playerID int64) (int64, error)
}

// BetRepository defines the interface for bet data access
type BetRepository interface {
	// Create inserts a new bet record
	Create(ctx context.Context, bet *entities.Bet) error

	// GetByRound returns all bets for a round in insertion order
	GetByRound(ctx context.Context, roundID int64) ([]*entities.Bet, error)

	// GetUnsettledByRoundForUpdate returns unsettled bets for a round
	// in insertion order with row locks held for the surrounding
	// transaction
	GetUnsettledByRoundForUpdate(ctx context.Context, roundID int64) ([]*entities.Bet, error)

	// GetByPlayer returns the most recent bets for a player
	GetByPlayer(ctx context.Context, playerID int64, limit int) ([]*entities.Bet, error)

	// MarkSettled records payout and category for a settled bet
	MarkSettled(ctx context.Context, betID int64, payout int64, category *entities.BetCategory) error

	// RoundHasBets reports whether any bet exists for a round
	RoundHasBets(ctx context.Context, roundID int64) (bool, error)
}

// GiftCodeRepository defines the interface for gift code data access
type GiftCodeRepository interface {
	// Create inserts a new gift code
	Create(ctx context.Context, code *entities.GiftCode) error

	// GetByHashForUpdate retrieves a code by its hash with a row lock,
	// nil when absent
	GetByHashForUpdate(ctx context.Context, codeHash string) (*entities.GiftCode, error)

	// MarkRedeemed records a redemption if the code is still active.
	// Returns false when another transaction redeemed it first.
	MarkRedeemed(ctx context.Context, id uuid.UUID, playerID int64, redeemedAt time.Time) (bool, error)
}

// RoundResultRepository defines the interface for settled round outcomes
type RoundResultRepository interface {
	// GetByRound retrieves the result for a round, nil when unsettled
	GetByRound(ctx context.Context, roundID int64) (*entities.RoundResult, error)

	// Create inserts a round result. Reports a conflict error when the
	// round is already settled.
	Create(ctx context.Context, result *entities.RoundResult) error
}

// BankRepository defines the interface for the single-row house account
type BankRepository interface {
	// Get retrieves the current bank balances
	Get(ctx context.Context) (*entities.GameBank, error)

	// GetForUpdate retrieves the bank row with a row lock held for the
	// duration of the surrounding transaction
	GetForUpdate(ctx context.Context) (*entities.GameBank, error)

	// Update writes the bank balances
	Update(ctx context.Context, carryDOS, adminDOS int64) error

	// RecordAdminEntry appends a house audit-trail row
	RecordAdminEntry(ctx context.Context, entry *entities.AdminLedgerEntry) error

	// GetAdminEntries returns the most recent audit rows, newest first
	GetAdminEntries(ctx context.Context, limit int) ([]*entities.AdminLedgerEntry, error)
}

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	// Publish buffers an event for delivery
	Publish(event events.Event) error
}

// TransactionalEventPublisher extends EventPublisher with flush control
// tied to a unit of work's lifecycle
type TransactionalEventPublisher interface {
	EventPublisher

	// Flush delivers all buffered events after a successful commit
	Flush() error

	// Discard drops all buffered events after a rollback
	Discard()
}

// UnitOfWork represents a transactional boundary for data operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction and flushes buffered events
	Commit() error

	// Rollback rolls back the transaction and discards buffered events
	Rollback() error

	// PlayerRepository returns a transaction-scoped player repository
	PlayerRepository() PlayerRepository

	// LedgerRepository returns a transaction-scoped ledger repository
	LedgerRepository() LedgerRepository

	// BetRepository returns a transaction-scoped bet repository
	BetRepository() BetRepository

	// GiftCodeRepository returns a transaction-scoped gift code repository
	GiftCodeRepository() GiftCodeRepository

	// RoundResultRepository returns a transaction-scoped round result repository
	RoundResultRepository() RoundResultRepository

	// BankRepository returns a transaction-scoped bank repository
	BankRepository() BankRepository

	// EventPublisher returns the transaction-scoped event publisher
	EventPublisher() EventPublisher
}

// UnitOfWorkFactory creates unit of work instances
type UnitOfWorkFactory interface {
	CreateForTransaction() UnitOfWork
}
