// Package api defines wire-format types and converters for the IPC and HTTP
// API layer. It translates queue records, scheduler summaries and database
// diagnostics into transport-friendly DTOs so clients do not depend on
// internal types.
//
// # Key Types
//
// Hit: transport representation of a stored record.
//
// SchedulerStatus: lifecycle state, depth, in-flight hit and retry timing.
//
// DaemonStatus: scheduler status plus privacy state, endpoint and paths.
//
// DatabaseHealth: queue database diagnostics for `hitqueue queue health`.
//
// # Design Notes
//
// DTOs use camelCase JSON tags. Enums (scheduler.State, privacy.Status) are
// exposed as lowercase strings. Timestamps use RFC3339 with milliseconds and are
// omitted when unset.
package api
