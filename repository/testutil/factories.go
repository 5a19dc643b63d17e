package testutil

import (
	"time"

	"github.com/google/uuid"

	"ddj/domain/entities"
)

// NewGiftCode builds an unredeemed gift code with the given hash
func NewGiftCode(codeHash string, value int64) *entities.GiftCode {
	return &entities.GiftCode{
		ID:       uuid.New(),
		CodeHash: codeHash,
		Value:    value,
		Status:   entities.GiftCodeStatusActive,
	}
}

// NewExpiredGiftCode builds a gift code whose expiry is in the past
func NewExpiredGiftCode(codeHash string, value int64) *entities.GiftCode {
	gc := NewGiftCode(codeHash, value)
	expired := time.Now().Add(-time.Hour)
	gc.ExpiresAt = &expired
	return gc
}

// NewBet builds an unsettled bet for the given player and round
func NewBet(playerID, roundID int64, amount int64) *entities.Bet {
	return &entities.Bet{
		PlayerID: playerID,
		RoundID:  roundID,
		Nums:     []int{3, 7, 12, 18},
		Chance:   2,
		Amount:   amount,
	}
}

// NewLedgerEntry builds a player ledger entry
func NewLedgerEntry(playerID int64, kind entities.LedgerKind, amount int64) *entities.LedgerEntry {
	return &entities.LedgerEntry{
		PlayerID: playerID,
		Kind:     kind,
		Amount:   amount,
		Meta:     map[string]any{},
	}
}
