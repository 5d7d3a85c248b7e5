package http

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"

	"github.com/spec-kit/helpdesk/internal/config"
	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

const limiterIdleTTL = 10 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter throttles requests per client IP with a token bucket each.
type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    rate.Limit
	burst    int
	now      func() time.Time
}

// NewRateLimiter allows cfg.AuthRequests per window with the configured burst.
// A non-positive request count disables limiting.
func NewRateLimiter(cfg config.RateLimitConfig) *RateLimiter {
	limit := rate.Inf
	if cfg.AuthRequests > 0 {
		limit = rate.Every(cfg.AuthWindow() / time.Duration(cfg.AuthRequests))
	}
	burst := cfg.AuthBurst
	if burst <= 0 {
		burst = max(cfg.AuthRequests, 1)
	}
	return &RateLimiter{
		visitors: make(map[string]*visitor),
		limit:    limit,
		burst:    burst,
		now:      time.Now,
	}
}

// Allow reports whether the key may proceed now.
func (rl *RateLimiter) Allow(key string) bool {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, ok := rl.visitors[key]
	if !ok {
		rl.evictLocked(now)
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

func (rl *RateLimiter) evictLocked(now time.Time) {
	for key, v := range rl.visitors {
		if now.Sub(v.lastSeen) > limiterIdleTTL {
			delete(rl.visitors, key)
		}
	}
}

// Middleware rejects callers that exceeded their budget.
func (rl *RateLimiter) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !rl.Allow(c.IP()) {
			c.Set(fiber.HeaderRetryAfter, "60")
			return apperrors.NewRateLimited()
		}
		return c.Next()
	}
}
