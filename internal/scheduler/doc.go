// Package scheduler drains a durable queue through a hit.Processor one record
// at a time.
//
// A single worker goroutine owns the consumption loop. It reads the head
// record, hands it to the processor and waits, without blocking, for the
// processor's Result. Success removes the head and continues immediately;
// failure keeps the head and schedules a retry after the processor's
// RetryInterval. Later records never overtake a failing head.
//
// Suspend, Clear and Close invalidate any pending retry timer through an epoch
// counter, so a stale timer can never restart delivery. HandlePrivacyChange
// maps consent transitions onto those controls.
package scheduler
