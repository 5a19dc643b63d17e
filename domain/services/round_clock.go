package services

import (
	"sync/atomic"
	"time"

	"ddj/domain/entities"
	"ddj/domain/interfaces"
)

// roundClock derives round boundaries arithmetically from an anchor
// epoch. Readers take a snapshot of the parameters so a concurrent
// update never produces a mixed view.
type roundClock struct {
	params atomic.Pointer[entities.RoundParams]
}

// NewRoundClock creates a round clock with the given initial
// parameters, applying guardrails.
func NewRoundClock(initial entities.RoundParams) interfaces.RoundClock {
	c := &roundClock{}
	sanitized := sanitizeParams(initial)
	c.params.Store(&sanitized)
	return c
}

func sanitizeParams(p entities.RoundParams) entities.RoundParams {
	if p.RoundSeconds < 30 {
		p.RoundSeconds = 30
	}
	if p.CloseBetsAt < 1 {
		p.CloseBetsAt = 1
	}
	if p.CloseBetsAt > p.RoundSeconds-1 {
		p.CloseBetsAt = p.RoundSeconds - 1
	}
	return p
}

// floorDiv divides rounding toward negative infinity so instants
// before the anchor map to negative round IDs without a seam at zero.
func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// Params returns the current round parameters
func (c *roundClock) Params() entities.RoundParams {
	return *c.params.Load()
}

// RoundInfo returns the clock snapshot for the round containing now
func (c *roundClock) RoundInfo(now time.Time) entities.RoundInfo {
	p := c.params.Load()
	nowMs := now.UnixMilli()
	roundMs := p.RoundSeconds * 1000
	roundID := floorDiv(nowMs-p.AnchorMs, roundMs)
	return c.build(p, roundID, nowMs)
}

// RoundByID returns the clock snapshot for a specific round as
// observed at now
func (c *roundClock) RoundByID(roundID int64, now time.Time) entities.RoundInfo {
	return c.build(c.params.Load(), roundID, now.UnixMilli())
}

func (c *roundClock) build(p *entities.RoundParams, roundID, nowMs int64) entities.RoundInfo {
	roundMs := p.RoundSeconds * 1000
	startMs := p.AnchorMs + roundID*roundMs
	endMs := startMs + roundMs
	closeAtMs := endMs - p.CloseBetsAt*1000

	secondsLeft := ceilSeconds(endMs - nowMs)
	secondsToClose := ceilSeconds(closeAtMs - nowMs)

	return entities.RoundInfo{
		RoundID:        roundID,
		StartMs:        startMs,
		EndMs:          endMs,
		CloseAtMs:      closeAtMs,
		BetsOpen:       nowMs < closeAtMs,
		SecondsLeft:    secondsLeft,
		SecondsToClose: secondsToClose,
	}
}

func ceilSeconds(ms int64) int64 {
	if ms <= 0 {
		return 0
	}
	return (ms + 999) / 1000
}

// UpdateParams applies a partial parameter update. Nil fields keep
// their current value; guardrails apply to the merged result.
func (c *roundClock) UpdateParams(roundSeconds, closeBetsAt, anchorMs *int64) entities.RoundParams {
	for {
		current := c.params.Load()
		next := *current
		if roundSeconds != nil {
			next.RoundSeconds = *roundSeconds
		}
		if closeBetsAt != nil {
			next.CloseBetsAt = *closeBetsAt
		}
		if anchorMs != nil {
			next.AnchorMs = *anchorMs
		}
		next = sanitizeParams(next)
		if c.params.CompareAndSwap(current, &next) {
			return next
		}
	}
}
