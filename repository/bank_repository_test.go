package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ddj/domain/entities"
	"ddj/repository/testutil"
)

func TestBankRepository_GetAndUpdate(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewBankRepository(testDB.DB)
	ctx := context.Background()

	// The migration seeds the single bank row at zero
	bank, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), bank.CarryDOS)
	assert.Equal(t, int64(0), bank.AdminDOS)

	require.NoError(t, repo.Update(ctx, 19, 10))

	bank, err = repo.GetForUpdate(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(19), bank.CarryDOS)
	assert.Equal(t, int64(10), bank.AdminDOS)
}

func TestBankRepository_AdminLedger(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewBankRepository(testDB.DB)
	ctx := context.Background()

	carry := &entities.AdminLedgerEntry{
		Kind:   entities.AdminLedgerKindCarry,
		Amount: 19,
		Meta:   map[string]any{"roundId": float64(6)},
	}
	require.NoError(t, repo.RecordAdminEntry(ctx, carry))
	assert.NotZero(t, carry.ID)
	assert.False(t, carry.CreatedAt.IsZero())

	take := &entities.AdminLedgerEntry{
		Kind:   entities.AdminLedgerKindAdminTake,
		Amount: 10,
	}
	require.NoError(t, repo.RecordAdminEntry(ctx, take))

	entries, err := repo.GetAdminEntries(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	// Newest first
	assert.Equal(t, entities.AdminLedgerKindAdminTake, entries[0].Kind)
	assert.Equal(t, entities.AdminLedgerKindCarry, entries[1].Kind)
	assert.Equal(t, float64(6), entries[1].Meta["roundId"])

	limited, err := repo.GetAdminEntries(ctx, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, take.ID, limited[0].ID)
}
