package queue

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"hitqueue/internal/logging"
)

// Add appends rec at the tail. It reports false when the store is closed or the
// write fails even after one recovery attempt.
func (s *Store) Add(ctx context.Context, rec Record) bool {
	ctx = ensureContext(ctx)
	if strings.TrimSpace(rec.ID) == "" {
		s.logger.Warn("rejecting hit without id", logging.String(logging.FieldEventType, "queue_add_rejected"))
		return false
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}

	err := s.withRecovery(ctx, "add", func() error {
		return s.insert(ctx, rec)
	})
	if err != nil {
		logging.ErrorWithContext(s.logger, "failed to persist hit", "queue_add_failed",
			logging.String(logging.FieldHitID, rec.ID),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the data directory is writable"),
		)
		return false
	}
	return true
}

func (s *Store) insert(ctx context.Context, rec Record) error {
	_, err := s.execWithRetry(
		ctx,
		`INSERT INTO hits (id, created_at, data) VALUES (?, ?, ?)`,
		rec.ID,
		rec.Timestamp.UTC().Format(time.RFC3339Nano),
		rec.Payload,
	)
	if err != nil {
		if isSQLiteConstraint(err) {
			return fmt.Errorf("%w: %s", ErrDuplicateRecord, rec.ID)
		}
		return fmt.Errorf("insert hit: %w", err)
	}
	return nil
}

// Peek returns up to n of the oldest records without removing them, in
// insertion order. It returns nil when n <= 0 or the store is closed.
func (s *Store) Peek(ctx context.Context, n int) []Record {
	ctx = ensureContext(ctx)
	if n <= 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}

	var records []Record
	err := s.withRecovery(ctx, "peek", func() error {
		var qerr error
		records, qerr = s.selectHead(ctx, n)
		return qerr
	})
	if err != nil {
		logging.ErrorWithContext(s.logger, "failed to read queue head", "queue_peek_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check queue database health with 'hitqueue queue health'"),
		)
		return nil
	}
	return records
}

func (s *Store) selectHead(ctx context.Context, n int) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+recordColumns+` FROM hits ORDER BY seq LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("query head: %w", err)
	}
	defer rows.Close()

	records := make([]Record, 0, n)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan hit: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate head: %w", err)
	}
	return records, nil
}

// Remove deletes the oldest n records. It returns false, leaving the store
// unchanged, when n <= 0, fewer than n records exist, or the store is closed.
func (s *Store) Remove(ctx context.Context, n int) bool {
	ctx = ensureContext(ctx)
	if n <= 0 {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}

	var removed bool
	err := s.withRecovery(ctx, "remove", func() error {
		var derr error
		removed, derr = s.deleteHead(ctx, n)
		return derr
	})
	if err != nil {
		logging.ErrorWithContext(s.logger, "failed to remove delivered hits", "queue_remove_failed",
			logging.Int("count", n),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "delivered hits may be sent again after restart"),
		)
		return false
	}
	return removed
}

func (s *Store) deleteHead(ctx context.Context, n int) (bool, error) {
	removed := false
	err := inTx(ctx, s.db, func(tx *sql.Tx) error {
		var total int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM hits`).Scan(&total); err != nil {
			return fmt.Errorf("count hits: %w", err)
		}
		if total < n {
			return nil
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM hits WHERE seq IN (SELECT seq FROM hits ORDER BY seq LIMIT ?)`, n,
		); err != nil {
			return fmt.Errorf("delete head: %w", err)
		}
		removed = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return removed, nil
}

// Count returns the number of stored records, or 0 once closed.
func (s *Store) Count(ctx context.Context) int {
	ctx = ensureContext(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0
	}

	var total int
	err := s.withRecovery(ctx, "count", func() error {
		return s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM hits`).Scan(&total)
	})
	if err != nil {
		s.logger.Warn("failed to count hits",
			logging.Error(err),
			logging.String(logging.FieldEventType, "queue_count_failed"),
		)
		return 0
	}
	return total
}

// Clear deletes every record. A failed delete falls back to the reset path, so
// true means the store is empty now, not that no error occurred.
func (s *Store) Clear(ctx context.Context) bool {
	ctx = ensureContext(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}

	res, err := s.execWithRetry(ctx, `DELETE FROM hits`)
	if err == nil {
		if removed, raErr := res.RowsAffected(); raErr == nil && removed > 0 {
			s.logger.Info("queue cleared", logging.Int64("removed_count", removed))
		}
		return true
	}

	if rerr := s.reset(ctx, "clear: "+err.Error()); rerr != nil {
		logging.ErrorWithContext(s.logger, "failed to clear queue", "queue_clear_failed",
			logging.Error(err),
			logging.String("recovery_error", rerr.Error()),
			logging.String(logging.FieldErrorHint, "remove the queue database manually"),
		)
		return false
	}
	return true
}
