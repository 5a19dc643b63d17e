package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ddj/domain/entities"
	"ddj/repository/testutil"
)

func TestGiftCodeRepository_CreateAndGet(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewGiftCodeRepository(testDB.DB)
	ctx := context.Background()

	t.Run("unknown hash returns nil", func(t *testing.T) {
		gc, err := repo.GetByHashForUpdate(ctx, "deadbeef")
		require.NoError(t, err)
		assert.Nil(t, gc)
	})

	t.Run("create and retrieve", func(t *testing.T) {
		code := testutil.NewGiftCode("hash-1", 25)
		require.NoError(t, repo.Create(ctx, code))
		assert.False(t, code.CreatedAt.IsZero())

		stored, err := repo.GetByHashForUpdate(ctx, "hash-1")
		require.NoError(t, err)
		require.NotNil(t, stored)
		assert.Equal(t, code.ID, stored.ID)
		assert.Equal(t, int64(25), stored.Value)
		assert.Equal(t, entities.GiftCodeStatusActive, stored.Status)
		assert.Nil(t, stored.RedeemedBy)
		assert.Nil(t, stored.ExpiresAt)
	})

	t.Run("expiry round trips", func(t *testing.T) {
		code := testutil.NewExpiredGiftCode("hash-2", 25)
		require.NoError(t, repo.Create(ctx, code))

		stored, err := repo.GetByHashForUpdate(ctx, "hash-2")
		require.NoError(t, err)
		require.NotNil(t, stored.ExpiresAt)
		assert.False(t, stored.IsRedeemable(time.Now()))
	})
}

func TestGiftCodeRepository_MarkRedeemed(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	players := NewPlayerRepository(testDB.DB)
	repo := NewGiftCodeRepository(testDB.DB)
	ctx := context.Background()

	player, err := players.Create(ctx, "alice", 100)
	require.NoError(t, err)

	code := testutil.NewGiftCode("hash-1", 25)
	require.NoError(t, repo.Create(ctx, code))

	redeemed, err := repo.MarkRedeemed(ctx, code.ID, player.ID, time.Now())
	require.NoError(t, err)
	assert.True(t, redeemed)

	stored, err := repo.GetByHashForUpdate(ctx, "hash-1")
	require.NoError(t, err)
	assert.Equal(t, entities.GiftCodeStatusRedeemed, stored.Status)
	require.NotNil(t, stored.RedeemedBy)
	assert.Equal(t, player.ID, *stored.RedeemedBy)
	assert.NotNil(t, stored.RedeemedAt)

	// A second redemption attempt loses the race
	redeemed, err = repo.MarkRedeemed(ctx, code.ID, player.ID, time.Now())
	require.NoError(t, err)
	assert.False(t, redeemed)
}
