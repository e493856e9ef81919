package queue

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
)

// Primary SQLite result codes.
const (
	sqliteBusy       = 5
	sqliteConstraint = 19
)

// SQLITE_BUSY retry schedule: 10ms doubling to at most 200ms, five tries.
const (
	busyAttempts   = 5
	busyFirstDelay = 10 * time.Millisecond
	busyMaxDelay   = 200 * time.Millisecond
)

func ensureContext(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

// hasSQLiteCode matches err against a primary result code, falling back to the
// driver's message text for wrapped errors that lost the code.
func hasSQLiteCode(err error, code int, fallbacks ...string) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code()&0xff == code {
		return true
	}
	msg := err.Error()
	for _, f := range fallbacks {
		if strings.Contains(msg, f) {
			return true
		}
	}
	return false
}

func isSQLiteBusy(err error) bool {
	return hasSQLiteCode(err, sqliteBusy, "SQLITE_BUSY", "database is locked")
}

func isSQLiteConstraint(err error) bool {
	return hasSQLiteCode(err, sqliteConstraint, "constraint failed")
}

// retryOnBusy reruns op while it fails with SQLITE_BUSY. Any other error, or
// the last busy error, is returned as is.
func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyFirstDelay
	for attempt := 1; ; attempt++ {
		err := op()
		if err == nil || !isSQLiteBusy(err) || attempt == busyAttempts {
			return err
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		delay = min(delay*2, busyMaxDelay)
	}
}

func (s *Store) execWithRetry(ctx context.Context, query string, args ...any) (sql.Result, error) {
	ctx = ensureContext(ctx)
	if s.db == nil {
		return nil, ErrUnavailable
	}
	var res sql.Result
	err := retryOnBusy(ctx, func() error {
		var execErr error
		res, execErr = s.db.ExecContext(ctx, query, args...)
		return execErr
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}
