package entities

import "time"

// GameBank is the single-row house account. CarryDOS rolls between
// rounds; AdminDOS accumulates the house take.
type GameBank struct {
	CarryDOS  int64     `db:"carry_dos"`
	AdminDOS  int64     `db:"admin_dos"`
	UpdatedAt time.Time `db:"updated_at"`
}

// AdminLedgerKind labels a house-side ledger row
type AdminLedgerKind string

const (
	AdminLedgerKindCarry     AdminLedgerKind = "CARRY"
	AdminLedgerKindAdminTake AdminLedgerKind = "ADMIN_TAKE"
)

// AdminLedgerEntry is one append-only row of the house audit trail.
type AdminLedgerEntry struct {
	ID        int64           `db:"id"`
	Kind      AdminLedgerKind `db:"kind"`
	Amount    int64           `db:"amount"`
	Meta      map[string]any  `db:"meta"`
	CreatedAt time.Time       `db:"created_at"`
}
