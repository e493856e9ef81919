package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"hitqueue/internal/hit"
	"hitqueue/internal/logging"
	"hitqueue/internal/metrics"
	"hitqueue/internal/privacy"
	"hitqueue/internal/queue"
)

// Scheduler composes a Store and a hit.Processor into a single-consumer
// delivery pipeline.
type Scheduler struct {
	store   Store
	proc    hit.Processor
	logger  *slog.Logger
	metrics *metrics.Collector
	name    string

	// readRetry is how long to wait after the head could not be read while
	// hits are still stored.
	readRetry time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	wake    chan struct{}
	results chan result

	mu            sync.Mutex
	state         State
	active        bool
	closed        bool
	epoch         uint64
	timer         *time.Timer
	nextRetry     time.Time
	inFlight      bool
	inFlightRec   queue.Record
	inFlightSince time.Time
	inFlightEpoch uint64
	attempts      int
	deliveries    uint64
	failures      uint64
	duplicateAcks uint64
	lastDelivery  time.Time
	lastFailure   time.Time
}

// Option configures optional Scheduler behavior.
type Option func(*Scheduler)

// WithLogger routes scheduler diagnostics to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics records enqueue, delivery and depth metrics on c.
func WithMetrics(c *metrics.Collector) Option {
	return func(s *Scheduler) {
		s.metrics = c
	}
}

// WithReadRetry sets the pause before re-reading a head that failed to load.
func WithReadRetry(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.readRetry = d
		}
	}
}

// WithName labels log lines and status output with the queue name.
func WithName(name string) Option {
	return func(s *Scheduler) {
		s.name = name
	}
}

// New builds a scheduler and starts its worker. The scheduler starts
// Suspended; nothing is delivered until BeginProcessing.
func New(store Store, proc hit.Processor, opts ...Option) (*Scheduler, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if proc == nil {
		return nil, ErrProcessorRequired
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		store:     store,
		proc:      proc,
		logger:    logging.NewNop(),
		name:      "hits",
		readRetry: defaultReadRetry,
		ctx:       ctx,
		cancel:    cancel,
		wake:      make(chan struct{}, 1),
		results:   make(chan result, 1),
		state:     Suspended,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.NewComponentLogger(s.logger, "scheduler").With(logging.String(logging.FieldQueue, s.name))

	s.wg.Add(1)
	go s.run()
	return s, nil
}

// Queue wraps payload in a new record and persists it. It reports whether the
// record was durably stored.
func (s *Scheduler) Queue(ctx context.Context, payload string) bool {
	_, err := s.Enqueue(ctx, payload)
	return err == nil
}

// Enqueue is Queue returning the stored record, ErrClosed, or ErrRejected.
func (s *Scheduler) Enqueue(ctx context.Context, payload string) (queue.Record, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return queue.Record{}, ErrClosed
	}

	rec := queue.NewRecord(payload)
	if !s.store.Add(ctx, rec) {
		s.metrics.RecordEnqueue(false)
		logging.WithContext(ctx, s.logger).Warn("hit rejected by store",
			logging.String(logging.FieldHitID, rec.ID),
			logging.String(logging.FieldEventType, "hit_enqueue_rejected"),
		)
		return queue.Record{}, ErrRejected
	}
	s.metrics.RecordEnqueue(true)
	s.publishDepth()

	s.mu.Lock()
	if s.active && !s.closed && s.state == Idle {
		s.state = Processing
	}
	s.mu.Unlock()
	s.signal()
	return rec, nil
}

// BeginProcessing enables consumption. Calling it while already active has no
// effect. It ends in Processing when there is work and Idle otherwise.
func (s *Scheduler) BeginProcessing() {
	s.mu.Lock()
	if s.closed || s.active {
		s.mu.Unlock()
		return
	}
	s.active = true
	s.mu.Unlock()

	count := s.store.Count(s.ctx)

	s.mu.Lock()
	if s.active && !s.closed {
		if count > 0 || s.inFlight {
			s.state = Processing
		} else {
			s.state = Idle
		}
	}
	s.mu.Unlock()

	s.logger.Info("processing enabled", logging.Int("pending", count))
	s.signal()
}

// Suspend halts consumption and cancels any pending retry. Stored records are
// untouched. A delivery already in flight still reports its result.
func (s *Scheduler) Suspend() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	wasActive := s.active
	s.active = false
	s.epoch++
	s.stopTimerLocked()
	s.state = Suspended
	s.mu.Unlock()

	if wasActive {
		s.logger.Info("processing suspended")
	}
}

// Clear drops every stored record and cancels any pending retry without
// changing whether processing is enabled.
func (s *Scheduler) Clear() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.epoch++
	s.stopTimerLocked()
	s.attempts = 0
	s.mu.Unlock()

	if f, ok := s.proc.(hit.Forgetter); ok {
		f.Forget()
	}
	if !s.store.Clear(s.ctx) {
		logging.ErrorWithContext(s.logger, "failed to clear queue", "queue_clear_failed",
			logging.String(logging.FieldErrorHint, "check queue database health with 'hitqueue queue health'"),
		)
	} else {
		s.logger.Info("queue cleared", logging.String(logging.FieldEventType, "queue_cleared"))
	}
	s.publishDepth()

	s.mu.Lock()
	active := s.active && !s.closed
	if active && !s.inFlight {
		s.state = Idle
	}
	s.mu.Unlock()
	if active {
		s.signal()
	}
}

// Close suspends the scheduler, closes the store and stops the worker. It is
// idempotent; later calls return nil.
func (s *Scheduler) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.active = false
	s.epoch++
	s.stopTimerLocked()
	s.closed = true
	s.state = Closed
	s.mu.Unlock()

	err := s.store.Close()
	s.cancel()
	s.wg.Wait()
	s.logger.Info("scheduler closed")
	return err
}

// Count returns the number of stored records.
func (s *Scheduler) Count() int {
	return s.store.Count(s.ctx)
}

// HandlePrivacyChange applies the consent policy: OptedIn begins processing,
// OptedOut suspends and clears, and Unknown suspends.
func (s *Scheduler) HandlePrivacyChange(status privacy.Status) {
	s.logger.Info("privacy status changed", logging.String("privacy_status", status.String()))
	switch status {
	case privacy.OptedIn:
		s.BeginProcessing()
	case privacy.OptedOut:
		s.Suspend()
		s.Clear()
	default:
		s.Suspend()
	}
}

// State returns the current lifecycle state.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Scheduler) signal() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Scheduler) stopTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.nextRetry = time.Time{}
}

func (s *Scheduler) publishDepth() {
	if s.metrics == nil {
		return
	}
	s.metrics.SetQueueDepth(s.store.Count(s.ctx))
}
