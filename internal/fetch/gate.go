package fetch

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// Gate bounds the number of in-flight per-location fetches. Waiters are
// served in FIFO order as slots free up.
type Gate struct {
	sem *semaphore.Weighted
}

func NewGate(capacity int) *Gate {
	if capacity < 1 {
		capacity = 1
	}
	return &Gate{sem: semaphore.NewWeighted(int64(capacity))}
}

// Run executes fn once a slot is available. A context cancelled while
// queued or running propagates ctx.Err without invoking fn (or by fn's own
// cancellation handling once started).
func (g *Gate) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := g.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer g.sem.Release(1)
	return fn(ctx)
}
