package api

import (
	"time"

	"hitqueue/internal/queue"
	"hitqueue/internal/scheduler"
)

// FromRecord converts a queue record to its API representation.
func FromRecord(rec queue.Record) Hit {
	return Hit{
		ID:        rec.ID,
		CreatedAt: FormatTime(rec.Timestamp),
		Payload:   rec.Payload,
	}
}

// FromRecords converts a slice of queue records into API DTOs.
func FromRecords(records []queue.Record) []Hit {
	if len(records) == 0 {
		return nil
	}
	out := make([]Hit, 0, len(records))
	for _, rec := range records {
		out = append(out, FromRecord(rec))
	}
	return out
}

// FromSummary converts a scheduler summary to API payload.
func FromSummary(summary scheduler.Summary) SchedulerStatus {
	return SchedulerStatus{
		Queue:         summary.Name,
		State:         summary.State.String(),
		Pending:       summary.Count,
		InFlight:      summary.InFlight,
		InFlightID:    summary.InFlightID,
		RetryPending:  summary.RetryPending,
		NextRetry:     FormatTime(summary.NextRetry),
		Attempts:      summary.Attempts,
		Deliveries:    summary.Deliveries,
		Failures:      summary.Failures,
		DuplicateAcks: summary.DuplicateAcks,
		LastDelivery:  FormatTime(summary.LastDelivery),
		LastFailure:   FormatTime(summary.LastFailure),
	}
}

// FromDatabaseHealth converts store diagnostics to API payload.
func FromDatabaseHealth(h queue.DatabaseHealth) DatabaseHealth {
	return DatabaseHealth{
		DBPath:            h.DBPath,
		DatabaseExists:    h.DatabaseExists,
		DatabaseReadable:  h.DatabaseReadable,
		DirectoryWritable: h.DirectoryWritable,
		SchemaVersion:     h.SchemaVersion,
		TableExists:       h.TableExists,
		ColumnsPresent:    h.ColumnsPresent,
		MissingColumns:    h.MissingColumns,
		IntegrityCheck:    h.IntegrityCheck,
		TotalItems:        h.TotalItems,
		Resets:            h.Resets,
		Error:             h.Error,
	}
}

// FormatTime converts a time to RFC3339 or returns empty string.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateTimeFormat)
}

// ParseTime reverses FormatTime. Empty or malformed values yield the zero time.
func ParseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	t, err := time.Parse(dateTimeFormat, value)
	if err != nil {
		return time.Time{}
	}
	return t
}
