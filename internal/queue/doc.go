// Package queue persists outbound hits in SQLite and exposes the durable,
// strictly ordered store the scheduler drains.
//
// A Store owns exactly one database file per logical queue name and holds an
// exclusive file lock on it for its lifetime. Records are appended at the tail
// and only ever leave from the head (Remove) or all at once (Clear); the
// AUTOINCREMENT row sequence is the authoritative order and survives restarts.
//
// The database is treated as disposable transport state rather than an
// archive. When the file cannot be opened, carries an unexpected schema
// version, or an operation fails in a way the busy-retry loop cannot absorb,
// the store deletes and recreates it and retries the operation once. That
// recovery discards unsent hits and is logged at WARN as queue_store_reset.
package queue
