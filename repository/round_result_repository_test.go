package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ddj/domain/apperrors"
	"ddj/domain/entities"
	"ddj/repository/testutil"
)

func TestRoundResultRepository_CreateAndGet(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewRoundResultRepository(testDB.DB)
	ctx := context.Background()

	t.Run("unsettled round returns nil", func(t *testing.T) {
		result, err := repo.GetByRound(ctx, 7)
		require.NoError(t, err)
		assert.Nil(t, result)
	})

	t.Run("create and retrieve", func(t *testing.T) {
		result := &entities.RoundResult{
			RoundID:   7,
			Main:      []int{3, 7, 12, 18},
			Chance:    2,
			SettledAt: time.Now().UTC().Truncate(time.Millisecond),
		}
		require.NoError(t, repo.Create(ctx, result))

		stored, err := repo.GetByRound(ctx, 7)
		require.NoError(t, err)
		require.NotNil(t, stored)
		assert.Equal(t, int64(7), stored.RoundID)
		assert.Equal(t, []int{3, 7, 12, 18}, stored.Main)
		assert.Equal(t, 2, stored.Chance)
		assert.WithinDuration(t, result.SettledAt, stored.SettledAt, time.Second)
	})

	t.Run("double settlement conflicts", func(t *testing.T) {
		dup := &entities.RoundResult{
			RoundID:   7,
			Main:      []int{1, 2, 3, 4},
			Chance:    5,
			SettledAt: time.Now(),
		}
		err := repo.Create(ctx, dup)
		require.Error(t, err)
		assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))
	})
}
