// Package ratelimit provides the provider-wide request gate shared by all
// concurrent enhancement calls. It caps request starts, not in-flight
// work; the orchestrator's concurrency limit is a separate concern.
package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Gate admits at most n request starts per interval with token-bucket
// semantics. A full bucket of n tokens is available at start; tokens
// refill continuously at n/interval.
type Gate struct {
	limiter *rate.Limiter
}

func NewInterval(n int, interval time.Duration) *Gate {
	if n <= 0 {
		n = 1
	}
	if interval <= 0 {
		interval = time.Second
	}
	limit := rate.Limit(float64(n) / interval.Seconds())
	return &Gate{limiter: rate.NewLimiter(limit, n)}
}

// Wait blocks the calling goroutine until the quota admits one more
// request or the context ends.
func (g *Gate) Wait(ctx context.Context) error {
	return g.limiter.Wait(ctx)
}
