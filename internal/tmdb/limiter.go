package tmdb

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// DefaultSpacing is the minimum gap between two outbound TMDB requests.
const DefaultSpacing = 250 * time.Millisecond

// Limiter hands out request permits with a fixed minimum spacing. One
// Limiter is shared by every worker.
type Limiter struct {
	rl *rate.Limiter
}

// NewLimiter returns a Limiter allowing one request per spacing. A
// non-positive spacing disables limiting.
func NewLimiter(spacing time.Duration) *Limiter {
	if spacing <= 0 {
		return &Limiter{rl: rate.NewLimiter(rate.Inf, 1)}
	}
	return &Limiter{rl: rate.NewLimiter(rate.Every(spacing), 1)}
}

// Wait blocks until a permit is available or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.rl.Wait(ctx)
}
