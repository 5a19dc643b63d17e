package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindNotFound, KindOf(New(KindNotFound, "missing")))
	assert.Equal(t, KindConflict, KindOf(Newf(KindConflict, "round %d already settled", 7)))

	// Unclassified errors default to internal
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.Equal(t, KindInternal, KindOf(nil))
}

func TestKindOf_WrappedChain(t *testing.T) {
	inner := New(KindForbidden, "suspended")
	wrapped := fmt.Errorf("placing bet: %w", inner)
	assert.Equal(t, KindForbidden, KindOf(wrapped))
}

func TestWrap_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(KindInternal, "query failed", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "query failed")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestWithField(t *testing.T) {
	err := New(KindConflict, "bets closed").
		WithField("roundId", int64(3)).
		WithField("secondsToClose", int64(0))

	assert.Equal(t, int64(3), err.Fields["roundId"])
	assert.Equal(t, int64(0), err.Fields["secondsToClose"])
}

func TestIsKind(t *testing.T) {
	err := New(KindTooManyRequests, "slow down")
	assert.True(t, IsKind(err, KindTooManyRequests))
	assert.False(t, IsKind(err, KindBadRequest))
}
