package hit

import (
	"sync"
	"time"
)

// DefaultRetryInterval is the fixed retry delay used when none is configured.
const DefaultRetryInterval = 30 * time.Second

// MinRetryStep is the first interval used when a Backoff has a zero base but
// a positive max, so the interval still grows.
const MinRetryStep = time.Second

// Backoff tracks consecutive failures per record id and yields an exponential
// interval: Base * 2^(failures-1), capped at Max. Base == Max gives a fixed
// interval and zero bounds retry immediately.
type Backoff struct {
	Base time.Duration
	Max  time.Duration

	mu       sync.Mutex
	failures map[string]int
}

// NewBackoff returns a Backoff bounded by base and max. Negative values are
// treated as zero and a max below base is raised to base.
func NewBackoff(base, max time.Duration) *Backoff {
	base, max = normalizeBounds(base, max)
	return &Backoff{Base: base, Max: max}
}

func normalizeBounds(base, max time.Duration) (time.Duration, time.Duration) {
	if base < 0 {
		base = 0
	}
	if max < base {
		max = base
	}
	if base == 0 && max > 0 {
		base = min(MinRetryStep, max)
	}
	return base, max
}

// Failure records one more failed attempt for id.
func (b *Backoff) Failure(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failures == nil {
		b.failures = make(map[string]int)
	}
	b.failures[id]++
}

// Reset forgets the failure history of id.
func (b *Backoff) Reset(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.failures, id)
}

// Keep forgets the failure history of every id except id.
func (b *Backoff) Keep(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for other := range b.failures {
		if other != id {
			delete(b.failures, other)
		}
	}
}

// ResetAll forgets every failure history.
func (b *Backoff) ResetAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	clear(b.failures)
}

// Attempts returns the recorded consecutive failures for id.
func (b *Backoff) Attempts(id string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failures[id]
}

// Tracked returns how many ids currently have a failure history.
func (b *Backoff) Tracked() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.failures)
}

// Interval returns the delay before the next attempt on id.
func (b *Backoff) Interval(id string) time.Duration {
	base, max := normalizeBounds(b.Base, b.Max)
	failures := b.Attempts(id)
	delay := base
	for i := 1; i < failures && delay < max; i++ {
		delay *= 2
	}
	return min(delay, max)
}
