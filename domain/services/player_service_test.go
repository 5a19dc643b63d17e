package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"ddj/domain/apperrors"
	"ddj/domain/entities"
	"ddj/domain/testhelpers"
)

func TestPlayerService_Signup_Success(t *testing.T) {
	ctx := context.Background()
	factory := testhelpers.NewMockUnitOfWorkFactory()
	svc := NewPlayerService(factory, 50)
	uow := factory.UoW

	created := &entities.Player{ID: 1, Username: "alice", Balance: 50, Status: entities.PlayerStatusActive}
	uow.PlayerRepo.On("GetByUsername", ctx, "alice").Return(nil, nil)
	uow.PlayerRepo.On("Create", ctx, "alice", int64(50)).Return(created, nil)
	uow.LedgerRepo.On("Record", ctx, mock.MatchedBy(func(e *entities.LedgerEntry) bool {
		return e.PlayerID == 1 &&
			e.Kind == entities.LedgerKindBonusSignup &&
			e.Amount == 50
	})).Return(nil)

	player, err := svc.Signup(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(50), player.Balance)

	uow.PlayerRepo.AssertExpectations(t)
	uow.LedgerRepo.AssertExpectations(t)
}

func TestPlayerService_Signup_TrimsWhitespace(t *testing.T) {
	ctx := context.Background()
	factory := testhelpers.NewMockUnitOfWorkFactory()
	svc := NewPlayerService(factory, 50)
	uow := factory.UoW

	created := &entities.Player{ID: 1, Username: "bob", Balance: 50, Status: entities.PlayerStatusActive}
	uow.PlayerRepo.On("GetByUsername", ctx, "bob").Return(nil, nil)
	uow.PlayerRepo.On("Create", ctx, "bob", int64(50)).Return(created, nil)
	uow.LedgerRepo.On("Record", ctx, mock.Anything).Return(nil)

	_, err := svc.Signup(ctx, "  bob  ")
	require.NoError(t, err)
	uow.PlayerRepo.AssertExpectations(t)
}

func TestPlayerService_Signup_UsernameTooShort(t *testing.T) {
	ctx := context.Background()
	factory := testhelpers.NewMockUnitOfWorkFactory()
	svc := NewPlayerService(factory, 50)

	for _, name := range []string{"", "ab", "  a  "} {
		_, err := svc.Signup(ctx, name)
		require.Error(t, err)
		assert.Equal(t, apperrors.KindBadRequest, apperrors.KindOf(err))
	}
}

func TestPlayerService_Signup_UsernameTaken(t *testing.T) {
	ctx := context.Background()
	factory := testhelpers.NewMockUnitOfWorkFactory()
	svc := NewPlayerService(factory, 50)

	existing := &entities.Player{ID: 1, Username: "alice"}
	factory.UoW.PlayerRepo.On("GetByUsername", ctx, "alice").Return(existing, nil)

	_, err := svc.Signup(ctx, "alice")
	require.Error(t, err)
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))
}

func TestPlayerService_Signup_NoBonusNoLedgerEntry(t *testing.T) {
	ctx := context.Background()
	factory := testhelpers.NewMockUnitOfWorkFactory()
	svc := NewPlayerService(factory, 0)
	uow := factory.UoW

	created := &entities.Player{ID: 1, Username: "carol", Balance: 0, Status: entities.PlayerStatusActive}
	uow.PlayerRepo.On("GetByUsername", ctx, "carol").Return(nil, nil)
	uow.PlayerRepo.On("Create", ctx, "carol", int64(0)).Return(created, nil)

	_, err := svc.Signup(ctx, "carol")
	require.NoError(t, err)

	uow.LedgerRepo.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
}

func TestPlayerService_GetPlayer_NotFound(t *testing.T) {
	ctx := context.Background()
	factory := testhelpers.NewMockUnitOfWorkFactory()
	svc := NewPlayerService(factory, 50)

	factory.UoW.PlayerRepo.On("GetByID", ctx, int64(99)).Return(nil, nil)

	_, err := svc.GetPlayer(ctx, 99)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestPlayerService_AdminCredit(t *testing.T) {
	ctx := context.Background()
	factory := testhelpers.NewMockUnitOfWorkFactory()
	svc := NewPlayerService(factory, 50)
	uow := factory.UoW

	player := &entities.Player{ID: 1, Balance: 100, Status: entities.PlayerStatusActive}
	uow.PlayerRepo.On("GetByIDForUpdate", ctx, int64(1)).Return(player, nil)
	uow.PlayerRepo.On("UpdateBalance", ctx, int64(1), int64(130)).Return(nil)
	uow.LedgerRepo.On("Record", ctx, mock.MatchedBy(func(e *entities.LedgerEntry) bool {
		return e.Kind == entities.LedgerKindAdminAdd && e.Amount == 30
	})).Return(nil)

	updated, err := svc.AdminCredit(ctx, 1, 30)
	require.NoError(t, err)
	assert.Equal(t, int64(130), updated.Balance)
}

func TestPlayerService_AdminCredit_Validation(t *testing.T) {
	ctx := context.Background()
	factory := testhelpers.NewMockUnitOfWorkFactory()
	svc := NewPlayerService(factory, 50)

	_, err := svc.AdminCredit(ctx, 1, 0)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindBadRequest, apperrors.KindOf(err))
}

func TestPlayerService_AdminCredit_BelowZero(t *testing.T) {
	ctx := context.Background()
	factory := testhelpers.NewMockUnitOfWorkFactory()
	svc := NewPlayerService(factory, 50)

	player := &entities.Player{ID: 1, Balance: 10, Status: entities.PlayerStatusActive}
	factory.UoW.PlayerRepo.On("GetByIDForUpdate", ctx, int64(1)).Return(player, nil)

	_, err := svc.AdminCredit(ctx, 1, -50)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))
}

func TestPlayerService_AdminSetBalance(t *testing.T) {
	ctx := context.Background()
	factory := testhelpers.NewMockUnitOfWorkFactory()
	svc := NewPlayerService(factory, 50)
	uow := factory.UoW

	player := &entities.Player{ID: 1, Balance: 100, Status: entities.PlayerStatusActive}
	uow.PlayerRepo.On("GetByIDForUpdate", ctx, int64(1)).Return(player, nil)
	uow.PlayerRepo.On("UpdateBalance", ctx, int64(1), int64(40)).Return(nil)

	// The ledger records the signed delta, not the absolute value
	uow.LedgerRepo.On("Record", ctx, mock.MatchedBy(func(e *entities.LedgerEntry) bool {
		return e.Kind == entities.LedgerKindAdminSet &&
			e.Amount == -60 &&
			e.Meta["balance"] == int64(40)
	})).Return(nil)

	updated, err := svc.AdminSetBalance(ctx, 1, 40)
	require.NoError(t, err)
	assert.Equal(t, int64(40), updated.Balance)

	uow.LedgerRepo.AssertExpectations(t)
}

func TestPlayerService_AdminSetBalance_Negative(t *testing.T) {
	ctx := context.Background()
	factory := testhelpers.NewMockUnitOfWorkFactory()
	svc := NewPlayerService(factory, 50)

	_, err := svc.AdminSetBalance(ctx, 1, -1)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindBadRequest, apperrors.KindOf(err))
}

func TestPlayerService_AdminSetStatus(t *testing.T) {
	ctx := context.Background()
	factory := testhelpers.NewMockUnitOfWorkFactory()
	svc := NewPlayerService(factory, 50)
	uow := factory.UoW

	player := &entities.Player{ID: 1, Balance: 100, Status: entities.PlayerStatusActive}
	uow.PlayerRepo.On("GetByIDForUpdate", ctx, int64(1)).Return(player, nil)
	uow.PlayerRepo.On("UpdateStatus", ctx, int64(1), entities.PlayerStatusSuspended).Return(nil)
	uow.LedgerRepo.On("Record", ctx, mock.MatchedBy(func(e *entities.LedgerEntry) bool {
		return e.Kind == entities.LedgerKindAdminStatus &&
			e.Amount == 0 &&
			e.Meta["from"] == "ACTIVE" &&
			e.Meta["to"] == "SUSPENDED"
	})).Return(nil)

	updated, err := svc.AdminSetStatus(ctx, 1, entities.PlayerStatusSuspended)
	require.NoError(t, err)
	assert.Equal(t, entities.PlayerStatusSuspended, updated.Status)
}

func TestPlayerService_AdminSetStatus_Unchanged(t *testing.T) {
	ctx := context.Background()
	factory := testhelpers.NewMockUnitOfWorkFactory()
	svc := NewPlayerService(factory, 50)
	uow := factory.UoW

	player := &entities.Player{ID: 1, Balance: 100, Status: entities.PlayerStatusActive}
	uow.PlayerRepo.On("GetByIDForUpdate", ctx, int64(1)).Return(player, nil)

	_, err := svc.AdminSetStatus(ctx, 1, entities.PlayerStatusActive)
	require.NoError(t, err)

	uow.PlayerRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	uow.LedgerRepo.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
}

func TestPlayerService_AdminSetStatus_Invalid(t *testing.T) {
	ctx := context.Background()
	factory := testhelpers.NewMockUnitOfWorkFactory()
	svc := NewPlayerService(factory, 50)

	_, err := svc.AdminSetStatus(ctx, 1, entities.PlayerStatus("BANNED"))
	require.Error(t, err)
	assert.Equal(t, apperrors.KindBadRequest, apperrors.KindOf(err))
}
