package limiter

import (
	"fmt"

	"golang.org/x/time/rate"

	"github.com/sweetpotato0/gov-allin/middleware"
)

// RateLimiter paces generation calls with a token bucket. Calls wait for a
// token until their context ends.
type RateLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter allows perSecond calls per second with the given burst.
// A non-positive rate disables limiting.
func NewRateLimiter(perSecond float64, burst int) *RateLimiter {
	limit := rate.Limit(perSecond)
	if perSecond <= 0 {
		limit = rate.Inf
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{limiter: rate.NewLimiter(limit, burst)}
}

// Name returns the middleware name
func (m *RateLimiter) Name() string {
	return "RateLimiter"
}

// Execute waits for a token, then continues the chain.
func (m *RateLimiter) Execute(ctx *middleware.Context, next middleware.Handler) error {
	if err := m.limiter.Wait(ctx.Context()); err != nil {
		return fmt.Errorf("%w: %v", middleware.ErrRateLimitExceeded, err)
	}
	return next(ctx)
}
