package http

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/helpdesk/internal/config"
)

func TestRateLimiterRefillsPerKey(t *testing.T) {
	rl := NewRateLimiter(config.RateLimitConfig{AuthRequests: 2, AuthWindowSec: 2, AuthBurst: 2})
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("a"))
	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"))
	assert.True(t, rl.Allow("b"), "buckets are per key")

	now = now.Add(time.Second)
	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"))
}

func TestRateLimiterEvictsIdleVisitors(t *testing.T) {
	rl := NewRateLimiter(config.RateLimitConfig{AuthRequests: 1, AuthWindowSec: 60, AuthBurst: 1})
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	rl.Allow("old")
	now = now.Add(limiterIdleTTL + time.Second)
	rl.Allow("new")

	assert.NotContains(t, rl.visitors, "old")
	assert.Contains(t, rl.visitors, "new")
}

func TestRateLimiterDisabled(t *testing.T) {
	rl := NewRateLimiter(config.RateLimitConfig{})
	for i := 0; i < 100; i++ {
		assert.True(t, rl.Allow("x"))
	}
}
