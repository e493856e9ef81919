package scheduler

import (
	"sync/atomic"
	"time"

	"hitqueue/internal/hit"
	"hitqueue/internal/logging"
	"hitqueue/internal/queue"
)

func (s *Scheduler) run() {
	defer s.wg.Done()
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-s.wake:
			s.step()
		case res := <-s.results:
			s.finish(res)
		}
	}
}

// step dispatches the head record when processing is enabled, nothing is in
// flight and no retry is pending.
func (s *Scheduler) step() {
	s.mu.Lock()
	if !s.ready() {
		s.mu.Unlock()
		return
	}
	epoch := s.epoch
	s.mu.Unlock()

	head := s.store.Peek(s.ctx, 1)

	s.mu.Lock()
	if !s.ready() {
		s.mu.Unlock()
		return
	}
	if s.epoch != epoch {
		// Cleared while reading; look again.
		s.mu.Unlock()
		s.signal()
		return
	}
	if len(head) == 0 {
		s.mu.Unlock()
		s.headMissing(epoch)
		return
	}
	rec := head[0]
	s.inFlight = true
	s.inFlightRec = rec
	s.inFlightSince = time.Now()
	s.inFlightEpoch = epoch
	s.state = Processing
	attempt := s.attempts + 1
	s.mu.Unlock()

	s.logger.Debug("dispatching hit",
		logging.String(logging.FieldHitID, rec.ID),
		logging.Int("attempt", attempt),
	)
	s.proc.ProcessHit(s.ctx, rec, s.resultFor(rec))
}

// headMissing handles an empty Peek. When the store still holds hits the
// read failed, so another attempt is armed instead of going Idle.
func (s *Scheduler) headMissing(epoch uint64) {
	pending := s.store.Count(s.ctx)

	s.mu.Lock()
	if !s.ready() || s.epoch != epoch {
		s.mu.Unlock()
		return
	}
	if pending == 0 {
		s.state = Idle
		s.mu.Unlock()
		return
	}
	s.scheduleRetryLocked(s.readRetry)
	s.mu.Unlock()

	logging.WarnWithContext(s.logger, "queue head unreadable; will retry", "queue_head_unreadable",
		logging.Int("pending", pending),
		logging.Duration("retry_in", s.readRetry),
	)
}

func (s *Scheduler) ready() bool {
	return s.active && !s.closed && !s.inFlight && s.timer == nil
}

// resultFor returns the continuation for one dispatch. Only its first call
// counts; later calls are logged and dropped.
func (s *Scheduler) resultFor(rec queue.Record) hit.Result {
	var called atomic.Bool
	return func(success bool) {
		if !called.CompareAndSwap(false, true) {
			s.mu.Lock()
			s.duplicateAcks++
			s.mu.Unlock()
			s.logger.Warn("hit processor reported a result twice; ignoring",
				logging.String(logging.FieldHitID, rec.ID),
				logging.Bool("success", success),
				logging.String(logging.FieldEventType, "hit_duplicate_result"),
			)
			return
		}
		select {
		case s.results <- result{rec: rec, success: success}:
		case <-s.ctx.Done():
		}
	}
}

// finish applies a processor result on the worker goroutine.
func (s *Scheduler) finish(res result) {
	s.mu.Lock()
	latency := time.Since(s.inFlightSince)
	cleared := s.inFlightEpoch != s.epoch
	s.inFlight = false
	s.inFlightRec = queue.Record{}
	s.mu.Unlock()

	s.metrics.RecordResult(res.success, latency)
	if res.success {
		s.delivered(res.rec)
		return
	}
	s.failed(res.rec, cleared)
}

func (s *Scheduler) delivered(rec queue.Record) {
	// The head may have changed if Clear ran during flight.
	if head := s.store.Peek(s.ctx, 1); len(head) == 1 && head[0].ID == rec.ID {
		if !s.store.Remove(s.ctx, 1) {
			logging.ErrorWithContext(s.logger, "failed to remove delivered hit", "hit_remove_failed",
				logging.String(logging.FieldHitID, rec.ID),
				logging.String(logging.FieldErrorHint, "the hit may be delivered again"),
			)
		}
	}
	s.publishDepth()

	s.mu.Lock()
	s.attempts = 0
	s.deliveries++
	s.lastDelivery = time.Now()
	active := s.active && !s.closed
	s.mu.Unlock()

	s.logger.Debug("hit delivered", logging.String(logging.FieldHitID, rec.ID))
	if active {
		s.signal()
	}
}

// failed keeps the head and arms a retry. When Suspend or Clear ran during
// flight, the old retry plan no longer applies and the loop simply re-checks.
func (s *Scheduler) failed(rec queue.Record, stale bool) {
	interval := s.proc.RetryInterval(rec)
	if interval < 0 {
		interval = 0
	}

	s.mu.Lock()
	s.attempts++
	s.failures++
	s.lastFailure = time.Now()
	attempts := s.attempts
	scheduled := false
	active := s.active && !s.closed
	if active && !stale {
		s.scheduleRetryLocked(interval)
		scheduled = true
	}
	s.mu.Unlock()

	if active && stale {
		s.signal()
	}

	s.logger.Info("hit delivery failed",
		logging.String(logging.FieldHitID, rec.ID),
		logging.Int("attempts", attempts),
		logging.Duration("retry_in", interval),
		logging.Bool("retry_scheduled", scheduled),
		logging.String(logging.FieldEventType, "hit_delivery_failed"),
	)
}

// scheduleRetryLocked arms the retry timer. A timer from an older epoch does
// nothing when it fires.
func (s *Scheduler) scheduleRetryLocked(d time.Duration) {
	s.stopTimerLocked()
	epoch := s.epoch
	s.nextRetry = time.Now().Add(d)
	var timer *time.Timer
	timer = time.AfterFunc(d, func() {
		s.mu.Lock()
		if s.epoch != epoch || s.timer != timer || s.closed {
			s.mu.Unlock()
			return
		}
		s.timer = nil
		s.nextRetry = time.Time{}
		active := s.active
		s.mu.Unlock()
		if active {
			s.signal()
		}
	})
	s.timer = timer
}
