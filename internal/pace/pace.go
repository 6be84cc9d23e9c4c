// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pace provides fixed-interval clocks that keep outbound traffic
// under provider abuse thresholds.
package pace

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Pacer enforces a minimum interval between successive events. The first
// Wait returns immediately; each later Wait blocks until Interval has passed
// since the previous event. A nil Pacer or a zero interval never blocks.
type Pacer struct {
	limiter  *rate.Limiter
	interval time.Duration
}

// New returns a Pacer with the given interval.
func New(interval time.Duration) *Pacer {
	if interval <= 0 {
		return &Pacer{}
	}
	return &Pacer{
		limiter:  rate.NewLimiter(rate.Every(interval), 1),
		interval: interval,
	}
}

// Interval returns the configured spacing.
func (p *Pacer) Interval() time.Duration {
	if p == nil {
		return 0
	}
	return p.interval
}

// Wait blocks until the next event is allowed or ctx is done.
func (p *Pacer) Wait(ctx context.Context) error {
	if p == nil || p.limiter == nil {
		return ctx.Err()
	}
	return p.limiter.Wait(ctx)
}
