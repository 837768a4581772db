// Package guardrails holds the time budgets of an ingest run
package guardrails

import (
	"context"
	"time"
)

// Timeouts bounds the phases of a run, zero means no extra limit at that level
type Timeouts struct {
	// Fetch caps one page GET
	Fetch time.Duration

	// Batch caps a whole RunAll call
	Batch time.Duration

	// DB caps one storage call
	DB time.Duration
}

// ForFetch returns a child context for one fetch, never extending the parent deadline
func ForFetch(parent context.Context, t Timeouts) (context.Context, context.CancelFunc) {
	return withChildTimeout(parent, t.Fetch)
}

// ForBatch returns a child context for a whole batch
func ForBatch(parent context.Context, t Timeouts) (context.Context, context.CancelFunc) {
	return withChildTimeout(parent, t.Batch)
}

// ForDB returns a child context for one storage call
func ForDB(parent context.Context, t Timeouts) (context.Context, context.CancelFunc) {
	return withChildTimeout(parent, t.DB)
}

// Detached returns a context that survives parent cancellation but keeps its values
// used to persist work that already completed when a run is canceled
func Detached(parent context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	return withChildTimeout(context.WithoutCancel(parent), d)
}

// Remaining returns the time until ctx's deadline, zero when none is set or it passed
func Remaining(ctx context.Context) time.Duration {
	if dl, ok := ctx.Deadline(); ok {
		if d := time.Until(dl); d > 0 {
			return d
		}
	}
	return 0
}

// withChildTimeout takes the tighter of d and the parent's remaining budget
func withChildTimeout(parent context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(parent)
	}
	if rem := Remaining(parent); rem > 0 && rem < d {
		return context.WithTimeout(parent, rem)
	}
	return context.WithTimeout(parent, d)
}
