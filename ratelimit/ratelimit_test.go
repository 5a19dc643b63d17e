package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestLimiter(limit int, interval time.Duration) (*Limiter, func(time.Duration)) {
	l := NewLimiter(limit, interval)
	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return current }
	advance := func(d time.Duration) { current = current.Add(d) }
	return l, advance
}

func TestLimiter_AllowsUpToLimit(t *testing.T) {
	l, _ := newTestLimiter(5, time.Minute)

	for i := 0; i < 5; i++ {
		ok, _ := l.Allow("1.2.3.4")
		assert.True(t, ok, "attempt %d should be allowed", i+1)
	}

	ok, retryAfter := l.Allow("1.2.3.4")
	assert.False(t, ok)
	assert.Equal(t, int64(60), retryAfter)
}

func TestLimiter_KeysAreIndependent(t *testing.T) {
	l, _ := newTestLimiter(1, time.Minute)

	ok, _ := l.Allow("1.2.3.4")
	assert.True(t, ok)
	ok, _ = l.Allow("1.2.3.4")
	assert.False(t, ok)

	ok, _ = l.Allow("5.6.7.8")
	assert.True(t, ok)
}

func TestLimiter_WindowResets(t *testing.T) {
	l, advance := newTestLimiter(2, time.Minute)

	l.Allow("1.2.3.4")
	l.Allow("1.2.3.4")
	ok, _ := l.Allow("1.2.3.4")
	assert.False(t, ok)

	advance(time.Minute)
	ok, _ = l.Allow("1.2.3.4")
	assert.True(t, ok)
}

func TestLimiter_RetryAfterShrinks(t *testing.T) {
	l, advance := newTestLimiter(1, time.Minute)

	l.Allow("1.2.3.4")
	advance(45 * time.Second)

	ok, retryAfter := l.Allow("1.2.3.4")
	assert.False(t, ok)
	assert.Equal(t, int64(15), retryAfter)
}

func TestLimiter_RetryAfterFloorsAtOne(t *testing.T) {
	l, advance := newTestLimiter(1, time.Minute)

	l.Allow("1.2.3.4")
	advance(59*time.Second + 500*time.Millisecond)

	ok, retryAfter := l.Allow("1.2.3.4")
	assert.False(t, ok)
	assert.Equal(t, int64(1), retryAfter)
}

func TestLimiter_Sweep(t *testing.T) {
	l, advance := newTestLimiter(5, time.Minute)

	l.Allow("1.2.3.4")
	l.Allow("5.6.7.8")
	assert.Equal(t, 2, l.Size())

	advance(30 * time.Second)
	l.Allow("9.9.9.9")
	assert.Equal(t, 0, l.Sweep())
	assert.Equal(t, 3, l.Size())

	advance(31 * time.Second)
	assert.Equal(t, 2, l.Sweep())
	assert.Equal(t, 1, l.Size())
}
