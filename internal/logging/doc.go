// Package logging assembles structured slog loggers and formatting helpers used
// across hitqueue.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so delivery code can tag log
// lines with hit and correlation IDs. The package also provides a no-op
// logger for tests and wiring code that cannot fail.
//
// Warnings about data loss (queue resets, dropped hits) go through
// WarnWithContext so they always carry event_type, error_hint and impact.
package logging
