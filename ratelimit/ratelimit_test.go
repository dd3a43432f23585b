package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestLimiter(max int) (*RateLimiter, *time.Time) {
	clock := time.Unix(1_700_000_000, 0)
	rl := NewRateLimiter(&RateLimiterConfig{MaxRequests: max, WindowSize: time.Second})
	rl.now = func() time.Time { return clock }
	return rl, &clock
}

func TestRateLimiter_Window(t *testing.T) {
	rl, clock := newTestLimiter(2)
	defer rl.Stop()

	assert.True(t, rl.Allow("a"))
	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"))
	assert.True(t, rl.Allow("b"), "keys are counted separately")

	*clock = clock.Add(time.Second)
	assert.True(t, rl.Allow("a"))
}

func TestRateLimiter_Disabled(t *testing.T) {
	rl := NewRateLimiter(&RateLimiterConfig{MaxRequests: 0, WindowSize: time.Second})
	for i := 0; i < 1000; i++ {
		assert.True(t, rl.Allow("a"))
	}
	rl.Stop()
	rl.Stop()

	var nilLimiter *GlobalRateLimiter
	assert.True(t, nilLimiter.AllowIP("1.2.3.4"))
	assert.True(t, nilLimiter.AllowWallet("w"))
	nilLimiter.Stop()
}

func TestRateLimiter_Cleanup(t *testing.T) {
	rl, clock := newTestLimiter(1)
	defer rl.Stop()

	rl.Allow("a")
	rl.Allow("b")
	assert.Equal(t, 2, rl.size())

	*clock = clock.Add(2 * time.Second)
	rl.Allow("b")
	rl.cleanup()
	assert.Equal(t, 1, rl.size())
}

func TestGlobalRateLimiter(t *testing.T) {
	grl := NewGlobalRateLimiter(&GlobalRateLimiterConfig{
		IPConfig:     &RateLimiterConfig{MaxRequests: 1, WindowSize: time.Minute},
		WalletConfig: &RateLimiterConfig{MaxRequests: 2, WindowSize: time.Minute},
	})
	defer grl.Stop()

	assert.True(t, grl.AllowIP("10.0.0.1"))
	assert.False(t, grl.AllowIP("10.0.0.1"))
	assert.True(t, grl.AllowWallet("w"))
	assert.True(t, grl.AllowWallet("w"))
	assert.False(t, grl.AllowWallet("w"))
}
