package entities

import "time"

// RoundResult records the drawn outcome of a settled round. A row
// exists if and only if the round has been settled.
type RoundResult struct {
	RoundID   int64     `db:"round_id"`
	Main      []int     `db:"main"`
	Chance    int       `db:"chance"`
	SettledAt time.Time `db:"settled_at"`
}

// Outcome returns the drawn numbers as an Outcome value
func (r *RoundResult) Outcome() Outcome {
	return Outcome{Main: r.Main, Chance: r.Chance}
}
