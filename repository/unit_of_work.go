package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"ddj/database"
	"ddj/domain/interfaces"
)

// unitOfWork implements the UnitOfWork interface
type unitOfWork struct {
	db                     *database.DB
	tx                     pgx.Tx
	ctx                    context.Context
	transactionalPublisher interfaces.TransactionalEventPublisher
	playerRepo             interfaces.PlayerRepository
	ledgerRepo             interfaces.LedgerRepository
	betRepo                interfaces.BetRepository
	giftCodeRepo           interfaces.GiftCodeRepository
	roundResultRepo        interfaces.RoundResultRepository
	bankRepo               interfaces.BankRepository
}

type unitOfWorkFactory struct {
	db           *database.DB
	newPublisher func() interfaces.TransactionalEventPublisher
}

// NewUnitOfWorkFactory creates a new UnitOfWork factory. newPublisher
// is invoked once per unit of work so each transaction gets its own
// event buffer.
func NewUnitOfWorkFactory(db *database.DB, newPublisher func() interfaces.TransactionalEventPublisher) interfaces.UnitOfWorkFactory {
	return &unitOfWorkFactory{db: db, newPublisher: newPublisher}
}

// CreateForTransaction creates a new UnitOfWork
func (f *unitOfWorkFactory) CreateForTransaction() interfaces.UnitOfWork {
	return &unitOfWork{
		db:                     f.db,
		transactionalPublisher: f.newPublisher(),
	}
}

// Begin starts a new transaction
func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}

	tx, err := u.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	u.tx = tx
	u.ctx = ctx

	// Create transaction-scoped repositories
	u.playerRepo = newPlayerRepository(tx)
	u.ledgerRepo = newLedgerRepository(tx)
	u.betRepo = newBetRepository(tx)
	u.giftCodeRepo = newGiftCodeRepository(tx)
	u.roundResultRepo = newRoundResultRepository(tx)
	u.bankRepo = newBankRepository(tx)

	return nil
}

// Commit commits the transaction
func (u *unitOfWork) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}

	err := u.tx.Commit(u.ctx)
	if err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	u.tx = nil

	// Flush pending events after successful commit
	if u.transactionalPublisher != nil {
		u.transactionalPublisher.Flush()
	}

	return nil
}

// Rollback rolls back the transaction
func (u *unitOfWork) Rollback() error {
	if u.tx == nil {
		return nil // Nothing to rollback
	}

	err := u.tx.Rollback(u.ctx)
	if err != nil && err != pgx.ErrTxClosed {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}

	u.tx = nil

	// Discard pending events on rollback
	if u.transactionalPublisher != nil {
		u.transactionalPublisher.Discard()
	}

	return nil
}

// PlayerRepository returns the player repository for this unit of work
func (u *unitOfWork) PlayerRepository() interfaces.PlayerRepository {
	if u.playerRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.playerRepo
}

// LedgerRepository returns the ledger repository for this unit of work
func (u *unitOfWork) LedgerRepository() interfaces.LedgerRepository {
	if u.ledgerRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.ledgerRepo
}

// BetRepository returns the bet repository for this unit of work
func (u *unitOfWork) BetRepository() interfaces.BetRepository {
	if u.betRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.betRepo
}

// GiftCodeRepository returns the gift code repository for this unit of work
func (u *unitOfWork) GiftCodeRepository() interfaces.GiftCodeRepository {
	if u.giftCodeRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.giftCodeRepo
}

// RoundResultRepository returns the round result repository for this unit of work
func (u *unitOfWork) RoundResultRepository() interfaces.RoundResultRepository {
	if u.roundResultRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.roundResultRepo
}

// BankRepository returns the bank repository for this unit of work
func (u *unitOfWork) BankRepository() interfaces.BankRepository {
	if u.bankRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.bankRepo
}

// EventPublisher returns the transactional event publisher for this unit of work
func (u *unitOfWork) EventPublisher() interfaces.EventPublisher {
	if u.transactionalPublisher == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.transactionalPublisher
}
