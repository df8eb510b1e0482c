package server

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
)

func TestRateLimiterAllowsBurst(t *testing.T) {
	clock := clockwork.NewFakeClock()
	rl := newRateLimiter(3, time.Second, clock)

	assert.True(t, rl.allow())
	assert.True(t, rl.allow())
	assert.True(t, rl.allow())
	assert.False(t, rl.allow())
}

func TestRateLimiterRefillsOverTime(t *testing.T) {
	clock := clockwork.NewFakeClock()
	rl := newRateLimiter(2, time.Second, clock)

	assert.True(t, rl.allow())
	assert.True(t, rl.allow())
	assert.False(t, rl.allow())

	clock.Advance(time.Second)
	assert.True(t, rl.allow())
	assert.True(t, rl.allow())
	assert.False(t, rl.allow())
}

func TestRateLimiterCapsAtCapacity(t *testing.T) {
	clock := clockwork.NewFakeClock()
	rl := newRateLimiter(2, time.Second, clock)

	// A long idle period must not accumulate more than the burst capacity.
	clock.Advance(time.Minute)
	assert.True(t, rl.allow())
	assert.True(t, rl.allow())
	assert.False(t, rl.allow())
}

func TestRateLimiterSanitizesArguments(t *testing.T) {
	rl := newRateLimiter(0, 0, nil)

	assert.True(t, rl.allow())
	assert.False(t, rl.allow())
}
