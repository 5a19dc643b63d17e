package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"ddj/database"
	"ddj/domain/entities"
)

// GiftCodeRepository implements the GiftCodeRepository interface
type GiftCodeRepository struct {
	q Queryable
}

// NewGiftCodeRepository creates a new gift code repository
func NewGiftCodeRepository(db *database.DB) *GiftCodeRepository {
	return &GiftCodeRepository{q: db.Pool}
}

func newGiftCodeRepository(q Queryable) *GiftCodeRepository {
	return &GiftCodeRepository{q: q}
}

// Create inserts a new gift code
func (r *GiftCodeRepository) Create(ctx context.Context, code *entities.GiftCode) error {
	query := `
		INSERT INTO gift_codes (id, code_hash, value, status, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`

	err := r.q.QueryRow(ctx, query, code.ID, code.CodeHash, code.Value, string(code.Status), code.ExpiresAt).
		Scan(&code.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create gift code %s: %w", code.ID, err)
	}
	return nil
}

// GetByHashForUpdate retrieves a code by its hash with a row lock
func (r *GiftCodeRepository) GetByHashForUpdate(ctx context.Context, codeHash string) (*entities.GiftCode, error) {
	query := `
		SELECT id, code_hash, value, status, expires_at, redeemed_by, redeemed_at, created_at
		FROM gift_codes
		WHERE code_hash = $1
		FOR UPDATE
	`

	var g entities.GiftCode
	err := r.q.QueryRow(ctx, query, codeHash).Scan(
		&g.ID, &g.CodeHash, &g.Value, &g.Status,
		&g.ExpiresAt, &g.RedeemedBy, &g.RedeemedAt, &g.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get gift code by hash: %w", err)
	}
	return &g, nil
}

// MarkRedeemed records a redemption if the code is still active.
// Returns false when another transaction redeemed it first.
func (r *GiftCodeRepository) MarkRedeemed(ctx context.Context, id uuid.UUID, playerID int64, redeemedAt time.Time) (bool, error) {
	query := `
		UPDATE gift_codes
		SET status = $2, redeemed_by = $3, redeemed_at = $4
		WHERE id = $1 AND status = $5
	`

	tag, err := r.q.Exec(ctx, query, id,
		string(entities.GiftCodeStatusRedeemed), playerID, redeemedAt,
		string(entities.GiftCodeStatusActive))
	if err != nil {
		return false, fmt.Errorf("failed to mark gift code %s redeemed: %w", id, err)
	}
	return tag.RowsAffected() == 1, nil
}
