package entities

import (
	"fmt"
	"strings"
	"time"
)

// Bet is a single wager on one round: four to eight unique main
// numbers, a chance number, and a stake in DOS. Payout and Category
// are filled in during settlement.
type Bet struct {
	ID        int64        `db:"id"`
	PlayerID  int64        `db:"player_id"`
	RoundID   int64        `db:"round_id"`
	Nums      []int        `db:"nums"`
	Chance    int          `db:"chance"`
	Amount    int64        `db:"amount"`
	Payout    int64        `db:"payout"`
	Category  *BetCategory `db:"category"`
	Settled   bool         `db:"settled"`
	CreatedAt time.Time    `db:"created_at"`
}

// ChoiceKey renders the bet selection as "n1-n2-n3-n4#chance"
func (b *Bet) ChoiceKey() string {
	parts := make([]string, len(b.Nums))
	for i, n := range b.Nums {
		parts[i] = fmt.Sprintf("%d", n)
	}
	return fmt.Sprintf("%s#%d", strings.Join(parts, "-"), b.Chance)
}

// Classify returns the paying category of this bet against the
// outcome, or "" for a losing bet.
func (b *Bet) Classify(outcome Outcome) BetCategory {
	return outcome.Classify(b.Nums, b.Chance)
}
