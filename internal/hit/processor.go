package hit

import (
	"context"
	"time"

	"hitqueue/internal/queue"
)

// Result reports the outcome of one delivery attempt.
type Result func(success bool)

// Processor attempts delivery of queued records.
type Processor interface {
	// ProcessHit attempts delivery of rec and eventually calls done exactly once.
	ProcessHit(ctx context.Context, rec queue.Record, done Result)
	// RetryInterval returns how long to wait before retrying rec after a failure.
	RetryInterval(rec queue.Record) time.Duration
}

// Forgetter is implemented by processors that keep per-record retry state.
// The scheduler calls Forget when the stored hits are cleared.
type Forgetter interface {
	Forget()
}

// Funcs adapts plain functions to Processor. A nil Process reports success
// immediately and a nil Retry retries without delay.
type Funcs struct {
	Process func(ctx context.Context, rec queue.Record, done Result)
	Retry   func(rec queue.Record) time.Duration
}

func (f Funcs) ProcessHit(ctx context.Context, rec queue.Record, done Result) {
	if f.Process == nil {
		done(true)
		return
	}
	f.Process(ctx, rec, done)
}

func (f Funcs) RetryInterval(rec queue.Record) time.Duration {
	if f.Retry == nil {
		return 0
	}
	return f.Retry(rec)
}
