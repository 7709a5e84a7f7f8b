package fetch

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Politeness spaces out requests to a single upstream host and adds an extra
// pause after a failed fetch, independent of the retry backoff.
type Politeness struct {
	limiter      *rate.Limiter
	failureDelay time.Duration
}

func NewPoliteness(requestsPerSec float64, failureDelay time.Duration) *Politeness {
	if requestsPerSec <= 0 {
		requestsPerSec = 1
	}
	return &Politeness{
		limiter:      rate.NewLimiter(rate.Limit(requestsPerSec), 1),
		failureDelay: failureDelay,
	}
}

// Wait blocks until the next request slot, or until ctx is done.
func (p *Politeness) Wait(ctx context.Context) error {
	return p.limiter.Wait(ctx)
}

// BackOff pauses after a failed fetch so a struggling upstream gets breathing
// room before the next location is attempted.
func (p *Politeness) BackOff(ctx context.Context) {
	if p.failureDelay <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(p.failureDelay):
	}
}
