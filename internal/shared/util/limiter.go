package util

import (
	"context"

	"golang.org/x/time/rate"
)

// Limiter paces analysis passes with a token bucket so watch-mode file
// churn cannot trigger unbounded re-analysis.
type Limiter struct {
	bucket *rate.Limiter
}

// NewLimiter allows perSecond sustained passes with the given burst.
func NewLimiter(perSecond float64, burst int) *Limiter {
	return &Limiter{bucket: rate.NewLimiter(rate.Limit(perSecond), burst)}
}

// Allow reports whether a pass may start immediately.
func (l *Limiter) Allow() bool {
	return l.bucket.Allow()
}

// Wait blocks until a pass may start or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.bucket.Wait(ctx)
}
