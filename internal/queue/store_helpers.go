package queue

import (
	"database/sql"
	"time"
)

const recordColumns = "id, created_at, data"

type rowScanner interface {
	Scan(dest ...any) error
}

// scanRecord reads one recordColumns row. An unparseable created_at leaves
// the timestamp zero rather than failing the read.
func scanRecord(row rowScanner) (Record, error) {
	var (
		rec     Record
		created sql.NullString
		data    sql.NullString
	)
	if err := row.Scan(&rec.ID, &created, &data); err != nil {
		return Record{}, err
	}
	rec.Payload = data.String
	rec.Timestamp = parseStoredTime(created.String)
	return rec, nil
}

// parseStoredTime accepts RFC 3339 as written by insert and SQLite's own
// CURRENT_TIMESTAMP layout.
func parseStoredTime(value string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, time.DateTime} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}
