// Package hit defines the delivery contract the scheduler drives and ships the
// HTTP implementation used by the daemon.
//
// A Processor receives the head record together with a Result continuation and
// must call it exactly once, from any goroutine. Until it does, the queue
// behind that record does not move. RetryInterval is consulted after every
// reported failure.
package hit
