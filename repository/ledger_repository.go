package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"ddj/database"
	"ddj/domain/entities"
)

// LedgerRepository implements the LedgerRepository interface
type LedgerRepository struct {
	q Queryable
}

// NewLedgerRepository creates a new ledger repository
func NewLedgerRepository(db *database.DB) *LedgerRepository {
	return &LedgerRepository{q: db.Pool}
}

func newLedgerRepository(q Queryable) *LedgerRepository {
	return &LedgerRepository{q: q}
}

// Record appends a ledger entry
func (r *LedgerRepository) Record(ctx context.Context, entry *entities.LedgerEntry) error {
	meta := entry.Meta
	if meta == nil {
		meta = map[string]any{}
	}
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("failed to marshal ledger meta: %w", err)
	}

	query := `
		INSERT INTO dos_ledger (player_id, kind, amount, meta)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err = r.q.QueryRow(ctx, query, entry.PlayerID, entry.Kind.String(), entry.Amount, metaJSON).
		Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record ledger entry for player %d: %w", entry.PlayerID, err)
	}
	return nil
}

// GetByPlayer returns the most recent entries for a player, newest first
func (r *LedgerRepository) GetByPlayer(ctx context.Context, playerID int64, limit int) ([]*entities.LedgerEntry, error) {
	query := `
		SELECT id, player_id, kind, amount, meta, created_at
		FROM dos_ledger
		WHERE player_id = $1
		ORDER BY id DESC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, playerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger for player %d: %w", playerID, err)
	}
	defer rows.Close()

	var entries []*entities.LedgerEntry
	for rows.Next() {
		var e entities.LedgerEntry
		var metaJSON []byte
		if err := rows.Scan(&e.ID, &e.PlayerID, &e.Kind, &e.Amount, &metaJSON, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		if err := json.Unmarshal(metaJSON, &e.Meta); err != nil {
			return nil, fmt.Errorf("failed to unmarshal ledger meta: %w", err)
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ledger entries: %w", err)
	}
	return entries, nil
}

// SumByPlayer returns the sum of all entry amounts for a player
func (r *LedgerRepository) SumByPlayer(ctx context.Context, playerID int64) (int64, error) {
	query := `SELECT COALESCE(SUM(amount), 0) FROM dos_ledger WHERE player_id = $1`

	var sum int64
	if err := r.q.QueryRow(ctx, query, playerID).Scan(&sum); err != nil {
		return 0, fmt.Errorf("failed to sum ledger for player %d: %w", playerID, err)
	}
	return sum, nil
}
