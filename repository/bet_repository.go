package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"ddj/database"
	"ddj/domain/entities"
)

// BetRepository implements the BetRepository interface
type BetRepository struct {
	q Queryable
}

// NewBetRepository creates a new bet repository
func NewBetRepository(db *database.DB) *BetRepository {
	return &BetRepository{q: db.Pool}
}

func newBetRepository(q Queryable) *BetRepository {
	return &BetRepository{q: q}
}

// Create inserts a new bet record
func (r *BetRepository) Create(ctx context.Context, bet *entities.Bet) error {
	query := `
		INSERT INTO bets (player_id, round_id, nums, chance, amount)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	nums := make([]int16, len(bet.Nums))
	for i, n := range bet.Nums {
		nums[i] = int16(n)
	}

	err := r.q.QueryRow(ctx, query, bet.PlayerID, bet.RoundID, nums, bet.Chance, bet.Amount).
		Scan(&bet.ID, &bet.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create bet for player %d round %d: %w", bet.PlayerID, bet.RoundID, err)
	}
	return nil
}

// GetByRound returns all bets for a round in insertion order
func (r *BetRepository) GetByRound(ctx context.Context, roundID int64) ([]*entities.Bet, error) {
	query := `
		SELECT id, player_id, round_id, nums, chance, amount, payout, category, settled, created_at
		FROM bets
		WHERE round_id = $1
		ORDER BY id
	`

	rows, err := r.q.Query(ctx, query, roundID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bets for round %d: %w", roundID, err)
	}
	defer rows.Close()

	return scanBets(rows)
}

// GetUnsettledByRoundForUpdate returns unsettled bets for a round with
// row locks held for the surrounding transaction
func (r *BetRepository) GetUnsettledByRoundForUpdate(ctx context.Context, roundID int64) ([]*entities.Bet, error) {
	query := `
		SELECT id, player_id, round_id, nums, chance, amount, payout, category, settled, created_at
		FROM bets
		WHERE round_id = $1 AND settled = FALSE
		ORDER BY id
		FOR UPDATE
	`

	rows, err := r.q.Query(ctx, query, roundID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock unsettled bets for round %d: %w", roundID, err)
	}
	defer rows.Close()

	return scanBets(rows)
}

// GetByPlayer returns the most recent bets for a player
func (r *BetRepository) GetByPlayer(ctx context.Context, playerID int64, limit int) ([]*entities.Bet, error) {
	query := `
		SELECT id, player_id, round_id, nums, chance, amount, payout, category, settled, created_at
		FROM bets
		WHERE player_id = $1
		ORDER BY id DESC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, playerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get bets for player %d: %w", playerID, err)
	}
	defer rows.Close()

	return scanBets(rows)
}

// MarkSettled records payout and category for a settled bet
func (r *BetRepository) MarkSettled(ctx context.Context, betID int64, payout int64, category *entities.BetCategory) error {
	query := `UPDATE bets SET payout = $2, category = $3, settled = TRUE WHERE id = $1`

	var cat *string
	if category != nil {
		s := string(*category)
		cat = &s
	}

	tag, err := r.q.Exec(ctx, query, betID, payout, cat)
	if err != nil {
		return fmt.Errorf("failed to mark bet %d settled: %w", betID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("bet %d not found", betID)
	}
	return nil
}

// RoundHasBets reports whether any bet exists for a round
func (r *BetRepository) RoundHasBets(ctx context.Context, roundID int64) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM bets WHERE round_id = $1)`

	var exists bool
	if err := r.q.QueryRow(ctx, query, roundID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check bets for round %d: %w", roundID, err)
	}
	return exists, nil
}

func scanBets(rows pgx.Rows) ([]*entities.Bet, error) {
	var bets []*entities.Bet
	for rows.Next() {
		var b entities.Bet
		var nums []int16
		var category *string
		if err := rows.Scan(&b.ID, &b.PlayerID, &b.RoundID, &nums, &b.Chance, &b.Amount, &b.Payout, &category, &b.Settled, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan bet: %w", err)
		}
		b.Nums = make([]int, len(nums))
		for i, n := range nums {
			b.Nums[i] = int(n)
		}
		if category != nil {
			c := entities.BetCategory(*category)
			b.Category = &c
		}
		bets = append(bets, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bets: %w", err)
	}
	return bets, nil
}
