package queue

import "errors"

var (
	// ErrClosed is reported by the store internals once Close has been called.
	ErrClosed = errors.New("queue store closed")

	// ErrLocked indicates another Store already owns the queue file.
	ErrLocked = errors.New("queue store locked by another instance")

	// ErrSchemaMismatch indicates the database schema version doesn't match the expected version.
	ErrSchemaMismatch = errors.New("schema version mismatch")

	// ErrDuplicateRecord indicates a record with the same id is already stored.
	ErrDuplicateRecord = errors.New("duplicate record id")

	// ErrUnavailable is reported while the database could not be recreated.
	ErrUnavailable = errors.New("queue database unavailable")
)
