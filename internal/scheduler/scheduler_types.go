package scheduler

import (
	"context"
	"errors"
	"time"

	"hitqueue/internal/queue"
)

var (
	// ErrStoreRequired is returned by New when no store is supplied.
	ErrStoreRequired = errors.New("scheduler requires a store")
	// ErrProcessorRequired is returned by New when no processor is supplied.
	ErrProcessorRequired = errors.New("scheduler requires a hit processor")
	// ErrClosed is returned by Enqueue after Close.
	ErrClosed = errors.New("scheduler closed")
	// ErrRejected is returned by Enqueue when the store refused the record.
	ErrRejected = errors.New("hit not persisted")
)

// defaultReadRetry is the pause before re-reading a head that failed to load.
const defaultReadRetry = time.Second

// Store is the durable ordered queue the scheduler drains. *queue.Store
// satisfies it.
type Store interface {
	Add(ctx context.Context, rec queue.Record) bool
	Peek(ctx context.Context, n int) []queue.Record
	Remove(ctx context.Context, n int) bool
	Count(ctx context.Context) int
	Clear(ctx context.Context) bool
	Close() error
}

// State is the scheduler lifecycle state.
type State int

const (
	Idle State = iota
	Processing
	Suspended
	Closed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Processing:
		return "processing"
	case Suspended:
		return "suspended"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// Summary is a point-in-time view of the scheduler for status output.
type Summary struct {
	Name          string
	State         State
	Count         int
	InFlight      bool
	InFlightID    string
	RetryPending  bool
	NextRetry     time.Time
	Attempts      int
	Deliveries    uint64
	Failures      uint64
	LastDelivery  time.Time
	LastFailure   time.Time
	DuplicateAcks uint64
}

type result struct {
	rec     queue.Record
	success bool
}
