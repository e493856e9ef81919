package scheduler

// Status returns the latest scheduler information.
func (s *Scheduler) Status() Summary {
	count := s.store.Count(s.ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	summary := Summary{
		Name:          s.name,
		State:         s.state,
		Count:         count,
		InFlight:      s.inFlight,
		RetryPending:  s.timer != nil,
		NextRetry:     s.nextRetry,
		Attempts:      s.attempts,
		Deliveries:    s.deliveries,
		Failures:      s.failures,
		LastDelivery:  s.lastDelivery,
		LastFailure:   s.lastFailure,
		DuplicateAcks: s.duplicateAcks,
	}
	if s.inFlight {
		summary.InFlightID = s.inFlightRec.ID
	}
	return summary
}
