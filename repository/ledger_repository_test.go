package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ddj/domain/entities"
	"ddj/repository/testutil"
)

func TestLedgerRepository_RecordAndGetByPlayer(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	players := NewPlayerRepository(testDB.DB)
	ledger := NewLedgerRepository(testDB.DB)
	ctx := context.Background()

	player, err := players.Create(ctx, "alice", 100)
	require.NoError(t, err)

	bonus := testutil.NewLedgerEntry(player.ID, entities.LedgerKindBonusSignup, 50)
	require.NoError(t, ledger.Record(ctx, bonus))
	assert.NotZero(t, bonus.ID)

	bet := testutil.NewLedgerEntry(player.ID, entities.LedgerKindBet, -10)
	bet.Meta = map[string]any{"roundId": float64(7), "choice": "3-7-12-18#2"}
	require.NoError(t, ledger.Record(ctx, bet))

	entries, err := ledger.GetByPlayer(ctx, player.ID, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	// Newest first
	assert.Equal(t, entities.LedgerKindBet, entries[0].Kind)
	assert.Equal(t, int64(-10), entries[0].Amount)
	assert.Equal(t, "3-7-12-18#2", entries[0].Meta["choice"])
	assert.Equal(t, entities.LedgerKindBonusSignup, entries[1].Kind)
}

func TestLedgerRepository_NilMetaStoresEmptyObject(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	players := NewPlayerRepository(testDB.DB)
	ledger := NewLedgerRepository(testDB.DB)
	ctx := context.Background()

	player, err := players.Create(ctx, "alice", 100)
	require.NoError(t, err)

	entry := &entities.LedgerEntry{PlayerID: player.ID, Kind: entities.LedgerKindWin, Amount: 9}
	require.NoError(t, ledger.Record(ctx, entry))

	entries, err := ledger.GetByPlayer(ctx, player.ID, 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.NotNil(t, entries[0].Meta)
	assert.Empty(t, entries[0].Meta)
}

func TestLedgerRepository_SumByPlayer(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	players := NewPlayerRepository(testDB.DB)
	ledger := NewLedgerRepository(testDB.DB)
	ctx := context.Background()

	alice, err := players.Create(ctx, "alice", 100)
	require.NoError(t, err)
	bob, err := players.Create(ctx, "bob", 100)
	require.NoError(t, err)

	sum, err := ledger.SumByPlayer(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), sum)

	require.NoError(t, ledger.Record(ctx, testutil.NewLedgerEntry(alice.ID, entities.LedgerKindBonusSignup, 50)))
	require.NoError(t, ledger.Record(ctx, testutil.NewLedgerEntry(alice.ID, entities.LedgerKindBet, -10)))
	require.NoError(t, ledger.Record(ctx, testutil.NewLedgerEntry(alice.ID, entities.LedgerKindWin, 9)))
	require.NoError(t, ledger.Record(ctx, testutil.NewLedgerEntry(bob.ID, entities.LedgerKindBonusSignup, 50)))

	sum, err = ledger.SumByPlayer(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(49), sum)
}
