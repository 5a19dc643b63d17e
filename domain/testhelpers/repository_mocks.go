package testhelpers

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"ddj/domain/entities"
	"ddj/domain/events"
	"ddj/domain/interfaces"
)

// MockPlayerRepository is a mock implementation of PlayerRepository
type MockPlayerRepository struct {
	mock.Mock
}

func (m *MockPlayerRepository) GetByID(ctx context.Context, id int64) (*entities.Player, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Player), args.Error(1)
}

func (m *MockPlayerRepository) GetByIDForUpdate(ctx context.Context, id int64) (*entities.Player, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Player), args.Error(1)
}

func (m *MockPlayerRepository) GetByUsername(ctx context.Context, username string) (*entities.Player, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Player), args.Error(1)
}

func (m *MockPlayerRepository) Create(ctx context.Context, username string, balance int64) (*entities.Player, error) {
	args := m.Called(ctx, username, balance)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Player), args.Error(1)
}

func (m *MockPlayerRepository) UpdateBalance(ctx context.Context, id int64, newBalance int64) error {
	args := m.Called(ctx, id, newBalance)
	return args.Error(0)
}

func (m *MockPlayerRepository) UpdateStatus(ctx context.Context, id int64, status entities.PlayerStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockPlayerRepository) GetTopByBalance(ctx context.Context, limit int) ([]*entities.Player, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Player), args.Error(1)
}

// MockLedgerRepository is a mock implementation of LedgerRepository
type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) Record(ctx context.Context, entry *entities.LedgerEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockLedgerRepository) GetByPlayer(ctx context.Context, playerID int64, limit int) ([]*entities.LedgerEntry, error) {
	args := m.Called(ctx, playerID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.LedgerEntry), args.Error(1)
}

func (m *MockLedgerRepository) SumByPlayer(ctx context.Context, playerID int64) (int64, error) {
	args := m.Called(ctx, playerID)
	return args.Get(0).(int64), args.Error(1)
}

// MockBetRepository is a mock implementation of BetRepository
type MockBetRepository struct {
	mock.Mock
}

func (m *MockBetRepository) Create(ctx context.Context, bet *entities.Bet) error {
	args := m.Called(ctx, bet)
	return args.Error(0)
}

func (m *MockBetRepository) GetByRound(ctx context.Context, roundID int64) ([]*entities.Bet, error) {
	args := m.Called(ctx, roundID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Bet), args.Error(1)
}

func (m *MockBetRepository) GetUnsettledByRoundForUpdate(ctx context.Context, roundID int64) ([]*entities.Bet, error) {
	args := m.Called(ctx, roundID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Bet), args.Error(1)
}

func (m *MockBetRepository) GetByPlayer(ctx context.Context, playerID int64, limit int) ([]*entities.Bet, error) {
	args := m.Called(ctx, playerID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Bet), args.Error(1)
}

func (m *MockBetRepository) MarkSettled(ctx context.Context, betID int64, payout int64, category *entities.BetCategory) error {
	args := m.Called(ctx, betID, payout, category)
	return args.Error(0)
}

func (m *MockBetRepository) RoundHasBets(ctx context.Context, roundID int64) (bool, error) {
	args := m.Called(ctx, roundID)
	return args.Bool(0), args.Error(1)
}

// MockGiftCodeRepository is a mock implementation of GiftCodeRepository
type MockGiftCodeRepository struct {
	mock.Mock
}

func (m *MockGiftCodeRepository) Create(ctx context.Context, code *entities.GiftCode) error {
	args := m.Called(ctx, code)
	return args.Error(0)
}

func (m *MockGiftCodeRepository) GetByHashForUpdate(ctx context.Context, codeHash string) (*entities.GiftCode, error) {
	args := m.Called(ctx, codeHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.GiftCode), args.Error(1)
}

func (m *MockGiftCodeRepository) MarkRedeemed(ctx context.Context, id uuid.UUID, playerID int64, redeemedAt time.Time) (bool, error) {
	args := m.Called(ctx, id, playerID, redeemedAt)
	return args.Bool(0), args.Error(1)
}

// MockRoundResultRepository is a mock implementation of RoundResultRepository
type MockRoundResultRepository struct {
	mock.Mock
}

func (m *MockRoundResultRepository) GetByRound(ctx context.Context, roundID int64) (*entities.RoundResult, error) {
	args := m.Called(ctx, roundID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.RoundResult), args.Error(1)
}

func (m *MockRoundResultRepository) Create(ctx context.Context, result *entities.RoundResult) error {
	args := m.Called(ctx, result)
	return args.Error(0)
}

// MockBankRepository is a mock implementation of BankRepository
type MockBankRepository struct {
	mock.Mock
}

func (m *MockBankRepository) Get(ctx context.Context) (*entities.GameBank, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.GameBank), args.Error(1)
}

func (m *MockBankRepository) GetForUpdate(ctx context.Context) (*entities.GameBank, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.GameBank), args.Error(1)
}

func (m *MockBankRepository) Update(ctx context.Context, carryDOS, adminDOS int64) error {
	args := m.Called(ctx, carryDOS, adminDOS)
	return args.Error(0)
}

func (m *MockBankRepository) RecordAdminEntry(ctx context.Context, entry *entities.AdminLedgerEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockBankRepository) GetAdminEntries(ctx context.Context, limit int) ([]*entities.AdminLedgerEntry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.AdminLedgerEntry), args.Error(1)
}

// MockEventPublisher is a mock implementation of TransactionalEventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) error {
	args := m.Called(event)
	return args.Error(0)
}

func (m *MockEventPublisher) Flush() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockEventPublisher) Discard() {
	m.Called()
}

// MockUnitOfWork is a mock implementation of UnitOfWork wired to a
// fixed set of repository mocks
type MockUnitOfWork struct {
	mock.Mock

	PlayerRepo      *MockPlayerRepository
	LedgerRepo      *MockLedgerRepository
	BetRepo         *MockBetRepository
	GiftCodeRepo    *MockGiftCodeRepository
	RoundResultRepo *MockRoundResultRepository
	BankRepo        *MockBankRepository
	Publisher       *MockEventPublisher
}

// NewMockUnitOfWork creates a unit of work whose repositories are all
// fresh mocks
func NewMockUnitOfWork() *MockUnitOfWork {
	return &MockUnitOfWork{
		PlayerRepo:      new(MockPlayerRepository),
		LedgerRepo:      new(MockLedgerRepository),
		BetRepo:         new(MockBetRepository),
		GiftCodeRepo:    new(MockGiftCodeRepository),
		RoundResultRepo: new(MockRoundResultRepository),
		BankRepo:        new(MockBankRepository),
		Publisher:       new(MockEventPublisher),
	}
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) PlayerRepository() interfaces.PlayerRepository {
	return m.PlayerRepo
}

func (m *MockUnitOfWork) LedgerRepository() interfaces.LedgerRepository {
	return m.LedgerRepo
}

func (m *MockUnitOfWork) BetRepository() interfaces.BetRepository {
	return m.BetRepo
}

func (m *MockUnitOfWork) GiftCodeRepository() interfaces.GiftCodeRepository {
	return m.GiftCodeRepo
}

func (m *MockUnitOfWork) RoundResultRepository() interfaces.RoundResultRepository {
	return m.RoundResultRepo
}

func (m *MockUnitOfWork) BankRepository() interfaces.BankRepository {
	return m.BankRepo
}

func (m *MockUnitOfWork) EventPublisher() interfaces.EventPublisher {
	return m.Publisher
}

// MockUnitOfWorkFactory is a mock factory returning a prepared unit of
// work
type MockUnitOfWorkFactory struct {
	mock.Mock

	UoW *MockUnitOfWork
}

// NewMockUnitOfWorkFactory creates a factory around a fresh mock unit
// of work with permissive lifecycle expectations
func NewMockUnitOfWorkFactory() *MockUnitOfWorkFactory {
	uow := NewMockUnitOfWork()
	uow.On("Begin", mock.Anything).Return(nil).Maybe()
	uow.On("Commit").Return(nil).Maybe()
	uow.On("Rollback").Return(nil).Maybe()
	uow.Publisher.On("Publish", mock.Anything).Return(nil).Maybe()
	return &MockUnitOfWorkFactory{UoW: uow}
}

func (f *MockUnitOfWorkFactory) CreateForTransaction() interfaces.UnitOfWork {
	return f.UoW
}
