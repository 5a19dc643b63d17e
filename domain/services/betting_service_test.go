package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"ddj/domain/apperrors"
	"ddj/domain/entities"
	"ddj/domain/testhelpers"
)

// openTime is an instant early in round 0 when bets are open
var openTime = msTime(testAnchorMs + 10_000)

// closedTime is an instant in the closing window of round 0
var closedTime = msTime(testAnchorMs + 280_000)

func newBettingFixture(at time.Time) (*bettingService, *testhelpers.MockUnitOfWorkFactory) {
	factory := testhelpers.NewMockUnitOfWorkFactory()
	clock := newTestClock()
	svc := NewBettingService(factory, clock).(*bettingService)
	svc.now = func() time.Time { return at }
	return svc, factory
}

func TestBettingService_PlaceBet_Success(t *testing.T) {
	ctx := context.Background()
	svc, factory := newBettingFixture(openTime)
	uow := factory.UoW

	player := &entities.Player{ID: 1, Username: "alice", Balance: 100, Status: entities.PlayerStatusActive}
	uow.PlayerRepo.On("GetByIDForUpdate", ctx, int64(1)).Return(player, nil)
	uow.PlayerRepo.On("UpdateBalance", ctx, int64(1), int64(90)).Return(nil)
	uow.BetRepo.On("Create", ctx, mock.MatchedBy(func(b *entities.Bet) bool {
		return b.PlayerID == 1 &&
			b.RoundID == 0 &&
			assert.ObjectsAreEqual([]int{2, 5, 9, 17}, b.Nums) &&
			b.Chance == 3 &&
			b.Amount == 10
	})).Return(nil)
	uow.LedgerRepo.On("Record", ctx, mock.MatchedBy(func(e *entities.LedgerEntry) bool {
		return e.PlayerID == 1 &&
			e.Kind == entities.LedgerKindBet &&
			e.Amount == -10 &&
			e.Meta["choice"] == "2-5-9-17#3"
	})).Return(nil)

	bet, err := svc.PlaceBet(ctx, 1, []int{17, 5, 2, 9}, 3, 10)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 5, 9, 17}, bet.Nums)
	assert.Equal(t, int64(0), bet.RoundID)

	uow.PlayerRepo.AssertExpectations(t)
	uow.BetRepo.AssertExpectations(t)
	uow.LedgerRepo.AssertExpectations(t)
}

func TestBettingService_PlaceBet_DedupsNums(t *testing.T) {
	ctx := context.Background()
	svc, factory := newBettingFixture(openTime)
	uow := factory.UoW

	player := &entities.Player{ID: 1, Username: "alice", Balance: 100, Status: entities.PlayerStatusActive}
	uow.PlayerRepo.On("GetByIDForUpdate", ctx, int64(1)).Return(player, nil)
	uow.PlayerRepo.On("UpdateBalance", ctx, int64(1), int64(95)).Return(nil)
	uow.BetRepo.On("Create", ctx, mock.MatchedBy(func(b *entities.Bet) bool {
		return assert.ObjectsAreEqual([]int{1, 2, 3, 4}, b.Nums)
	})).Return(nil)
	uow.LedgerRepo.On("Record", ctx, mock.Anything).Return(nil)

	// Duplicates collapse to four unique numbers
	_, err := svc.PlaceBet(ctx, 1, []int{4, 4, 3, 2, 1, 1}, 2, 5)
	require.NoError(t, err)
}

func TestBettingService_PlaceBet_Validation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newBettingFixture(openTime)

	tests := []struct {
		name   string
		nums   []int
		chance int
		amount int64
	}{
		{"zero amount", []int{1, 2, 3, 4}, 1, 0},
		{"negative amount", []int{1, 2, 3, 4}, 1, -5},
		{"too few nums", []int{1, 2, 3}, 1, 10},
		{"too few after dedup", []int{1, 1, 2, 3}, 1, 10},
		{"too many nums", []int{1, 2, 3, 4, 5, 6, 7, 8, 9}, 1, 10},
		{"num below range", []int{0, 2, 3, 4}, 1, 10},
		{"num above range", []int{1, 2, 3, 21}, 1, 10},
		{"chance below range", []int{1, 2, 3, 4}, 0, 10},
		{"chance above range", []int{1, 2, 3, 4}, 6, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.PlaceBet(ctx, 1, tt.nums, tt.chance, tt.amount)
			require.Error(t, err)
			assert.Equal(t, apperrors.KindBadRequest, apperrors.KindOf(err))
		})
	}
}

func TestBettingService_PlaceBet_WideSelection(t *testing.T) {
	ctx := context.Background()
	svc, factory := newBettingFixture(openTime)
	uow := factory.UoW

	player := &entities.Player{ID: 1, Username: "alice", Balance: 100, Status: entities.PlayerStatusActive}
	uow.PlayerRepo.On("GetByIDForUpdate", ctx, int64(1)).Return(player, nil)
	uow.PlayerRepo.On("UpdateBalance", ctx, int64(1), int64(80)).Return(nil)
	uow.BetRepo.On("Create", ctx, mock.MatchedBy(func(b *entities.Bet) bool {
		return len(b.Nums) == 8
	})).Return(nil)
	uow.LedgerRepo.On("Record", ctx, mock.Anything).Return(nil)

	_, err := svc.PlaceBet(ctx, 1, []int{1, 3, 5, 7, 9, 11, 13, 15}, 5, 20)
	require.NoError(t, err)
}

func TestBettingService_PlaceBet_BetsClosed(t *testing.T) {
	ctx := context.Background()
	svc, _ := newBettingFixture(closedTime)

	_, err := svc.PlaceBet(ctx, 1, []int{1, 2, 3, 4}, 1, 10)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))

	var appErr *apperrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "bets closed", appErr.Message)
	assert.Equal(t, int64(0), appErr.Fields["roundId"])
	assert.Equal(t, int64(0), appErr.Fields["secondsToClose"])
}

func TestBettingService_PlaceBet_PlayerNotFound(t *testing.T) {
	ctx := context.Background()
	svc, factory := newBettingFixture(openTime)

	factory.UoW.PlayerRepo.On("GetByIDForUpdate", ctx, int64(99)).Return(nil, nil)

	_, err := svc.PlaceBet(ctx, 99, []int{1, 2, 3, 4}, 1, 10)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestBettingService_PlaceBet_Suspended(t *testing.T) {
	ctx := context.Background()
	svc, factory := newBettingFixture(openTime)

	player := &entities.Player{ID: 1, Username: "alice", Balance: 100, Status: entities.PlayerStatusSuspended}
	factory.UoW.PlayerRepo.On("GetByIDForUpdate", ctx, int64(1)).Return(player, nil)

	_, err := svc.PlaceBet(ctx, 1, []int{1, 2, 3, 4}, 1, 10)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindForbidden, apperrors.KindOf(err))
}

func TestBettingService_PlaceBet_InsufficientBalance(t *testing.T) {
	ctx := context.Background()
	svc, factory := newBettingFixture(openTime)

	player := &entities.Player{ID: 1, Username: "alice", Balance: 5, Status: entities.PlayerStatusActive}
	factory.UoW.PlayerRepo.On("GetByIDForUpdate", ctx, int64(1)).Return(player, nil)

	_, err := svc.PlaceBet(ctx, 1, []int{1, 2, 3, 4}, 1, 10)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))
}
