package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"ddj/database"
	"ddj/domain/apperrors"
	"ddj/domain/entities"
)

// RoundResultRepository implements the RoundResultRepository interface
type RoundResultRepository struct {
	q Queryable
}

// NewRoundResultRepository creates a new round result repository
func NewRoundResultRepository(db *database.DB) *RoundResultRepository {
	return &RoundResultRepository{q: db.Pool}
}

func newRoundResultRepository(q Queryable) *RoundResultRepository {
	return &RoundResultRepository{q: q}
}

// GetByRound retrieves the result for a round, nil when unsettled
func (r *RoundResultRepository) GetByRound(ctx context.Context, roundID int64) (*entities.RoundResult, error) {
	query := `
		SELECT round_id, main, chance, settled_at
		FROM round_results
		WHERE round_id = $1
	`

	var result entities.RoundResult
	var main []int16
	err := r.q.QueryRow(ctx, query, roundID).Scan(&result.RoundID, &main, &result.Chance, &result.SettledAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get result for round %d: %w", roundID, err)
	}

	result.Main = make([]int, len(main))
	for i, n := range main {
		result.Main[i] = int(n)
	}
	return &result, nil
}

// Create inserts a round result
func (r *RoundResultRepository) Create(ctx context.Context, result *entities.RoundResult) error {
	query := `
		INSERT INTO round_results (round_id, main, chance, settled_at)
		VALUES ($1, $2, $3, $4)
	`

	main := make([]int16, len(result.Main))
	for i, n := range result.Main {
		main[i] = int16(n)
	}

	_, err := r.q.Exec(ctx, query, result.RoundID, main, result.Chance, result.SettledAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.Newf(apperrors.KindConflict, "round %d already settled", result.RoundID)
		}
		return fmt.Errorf("failed to create result for round %d: %w", result.RoundID, err)
	}
	return nil
}
