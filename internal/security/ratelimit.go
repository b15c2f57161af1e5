package security

import (
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/parking-pilot/pkg/util"
)

// RateLimiter bounds request volume per client identity with a fixed window
// counter. State is process-local; horizontal scaling without a shared store
// weakens the guarantee.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*windowCounter
	max     int
	window  time.Duration
	now     func() time.Time
}

type windowCounter struct {
	count   int
	resetAt time.Time
}

// NewRateLimiter builds a limiter allowing max requests per window.
func NewRateLimiter(max int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		clients: make(map[string]*windowCounter),
		max:     max,
		window:  window,
		now:     time.Now,
	}
}

// WithClock overrides the time source, for window tests.
func (l *RateLimiter) WithClock(now func() time.Time) *RateLimiter {
	l.now = now
	return l
}

// Allow records a request for the identity. When the limit is exceeded it
// returns false with the seconds until the window resets.
func (l *RateLimiter) Allow(identity string) (bool, int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	counter, ok := l.clients[identity]
	if !ok || now.After(counter.resetAt) {
		l.clients[identity] = &windowCounter{count: 1, resetAt: now.Add(l.window)}
		return true, 0
	}

	if counter.count >= l.max {
		retryAfter := int(math.Ceil(counter.resetAt.Sub(now).Seconds()))
		if retryAfter < 1 {
			retryAfter = 1
		}
		return false, retryAfter
	}

	counter.count++
	return true, 0
}

// Middleware rejects requests over the limit with a retry-after hint.
func (l *RateLimiter) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		allowed, retryAfter := l.Allow(c.IP())
		if !allowed {
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(retryAfter))
			return apperrors.NewRateLimitExceeded(retryAfter)
		}
		return c.Next()
	}
}
