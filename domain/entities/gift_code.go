package entities

import (
	"time"

	"github.com/google/uuid"
)

// GiftCodeStatus represents the redemption state of a gift code
type GiftCodeStatus string

const (
	GiftCodeStatusActive   GiftCodeStatus = "ACTIVE"
	GiftCodeStatusRedeemed GiftCodeStatus = "REDEEMED"
	GiftCodeStatusDisabled GiftCodeStatus = "DISABLED"
)

// GiftCode is a single-use voucher worth a fixed amount of DOS.
// Only the salted hash of the code text is ever stored.
type GiftCode struct {
	ID         uuid.UUID      `db:"id"`
	CodeHash   string         `db:"code_hash"`
	Value      int64          `db:"value"`
	Status     GiftCodeStatus `db:"status"`
	ExpiresAt  *time.Time     `db:"expires_at"`
	RedeemedBy *int64         `db:"redeemed_by"`
	RedeemedAt *time.Time     `db:"redeemed_at"`
	CreatedAt  time.Time      `db:"created_at"`
}

// IsRedeemable reports whether the code can still be redeemed at the
// given instant.
func (g *GiftCode) IsRedeemable(now time.Time) bool {
	if g.Status != GiftCodeStatusActive {
		return false
	}
	if g.ExpiresAt != nil && !now.Before(*g.ExpiresAt) {
		return false
	}
	return true
}
