package queue

import (
	"time"

	"github.com/google/uuid"
)

// Record is one durable unit of queued work.
type Record struct {
	ID        string
	Timestamp time.Time
	Payload   string
}

// NewRecord wraps a payload with a fresh identifier and creation time.
func NewRecord(payload string) Record {
	return Record{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// DatabaseHealth captures diagnostic details about the queue database.
type DatabaseHealth struct {
	DBPath            string
	DatabaseExists    bool
	DatabaseReadable  bool
	DirectoryWritable bool
	SchemaVersion     int
	TableExists       bool
	ColumnsPresent    []string
	MissingColumns    []string
	IntegrityCheck    bool
	TotalItems        int
	Resets            int
	Error             string
}
