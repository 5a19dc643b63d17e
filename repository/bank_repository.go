package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"ddj/database"
	"ddj/domain/entities"
)

// BankRepository implements the BankRepository interface over the
// single game_bank row.
type BankRepository struct {
	q Queryable
}

// NewBankRepository creates a new bank repository
func NewBankRepository(db *database.DB) *BankRepository {
	return &BankRepository{q: db.Pool}
}

func newBankRepository(q Queryable) *BankRepository {
	return &BankRepository{q: q}
}

// Get retrieves the current bank balances
func (r *BankRepository) Get(ctx context.Context) (*entities.GameBank, error) {
	return r.get(ctx, `SELECT carry_dos, admin_dos, updated_at FROM game_bank WHERE id = 1`)
}

// GetForUpdate retrieves the bank row with a row lock. Settlement
// serializes on this lock.
func (r *BankRepository) GetForUpdate(ctx context.Context) (*entities.GameBank, error) {
	return r.get(ctx, `SELECT carry_dos, admin_dos, updated_at FROM game_bank WHERE id = 1 FOR UPDATE`)
}

func (r *BankRepository) get(ctx context.Context, query string) (*entities.GameBank, error) {
	var b entities.GameBank
	err := r.q.QueryRow(ctx, query).Scan(&b.CarryDOS, &b.AdminDOS, &b.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get game bank: %w", err)
	}
	return &b, nil
}

// Update writes the bank balances
func (r *BankRepository) Update(ctx context.Context, carryDOS, adminDOS int64) error {
	query := `UPDATE game_bank SET carry_dos = $1, admin_dos = $2, updated_at = NOW() WHERE id = 1`

	tag, err := r.q.Exec(ctx, query, carryDOS, adminDOS)
	if err != nil {
		return fmt.Errorf("failed to update game bank: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("game bank row missing")
	}
	return nil
}

// RecordAdminEntry appends a house audit-trail row
func (r *BankRepository) RecordAdminEntry(ctx context.Context, entry *entities.AdminLedgerEntry) error {
	meta := entry.Meta
	if meta == nil {
		meta = map[string]any{}
	}
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("failed to marshal admin ledger meta: %w", err)
	}

	query := `
		INSERT INTO admin_ledger (kind, amount, meta)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err = r.q.QueryRow(ctx, query, string(entry.Kind), entry.Amount, metaJSON).
		Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record admin ledger entry: %w", err)
	}
	return nil
}

// GetAdminEntries returns the most recent audit rows, newest first
func (r *BankRepository) GetAdminEntries(ctx context.Context, limit int) ([]*entities.AdminLedgerEntry, error) {
	query := `
		SELECT id, kind, amount, meta, created_at
		FROM admin_ledger
		ORDER BY id DESC
		LIMIT $1
	`

	rows, err := r.q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get admin ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []*entities.AdminLedgerEntry
	for rows.Next() {
		var e entities.AdminLedgerEntry
		var metaJSON []byte
		if err := rows.Scan(&e.ID, &e.Kind, &e.Amount, &metaJSON, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan admin ledger entry: %w", err)
		}
		if err := json.Unmarshal(metaJSON, &e.Meta); err != nil {
			return nil, fmt.Errorf("failed to unmarshal admin ledger meta: %w", err)
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate admin ledger entries: %w", err)
	}
	return entries, nil
}
