package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"

	"hitqueue/internal/config"
	"hitqueue/internal/logging"
)

// Store manages durable hit persistence backed by SQLite.
type Store struct {
	mu      sync.Mutex
	db      *sql.DB
	path    string
	lock    *flock.Flock
	closed  bool
	resets  int
	logger  *slog.Logger
	onReset func(reason string)
}

// Option configures optional Store behavior.
type Option func(*Store)

// WithLogger routes store diagnostics to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithResetHook registers fn to run after every corruption reset.
func WithResetHook(fn func(reason string)) Option {
	return func(s *Store) {
		s.onReset = fn
	}
}

// OpenConfig opens the queue named in cfg under its data directory.
func OpenConfig(cfg *config.Config, opts ...Option) (*Store, error) {
	if cfg == nil {
		return nil, errors.New("queue store requires config")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return Open(PathForName(cfg.Paths.DataDir, cfg.Queue.Name), opts...)
}

// Open initializes or connects to the queue database at path. A database that
// cannot be opened is deleted and recreated empty.
func Open(path string, opts ...Option) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("empty queue db path")
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create queue directory %q: %w", dir, err)
		}
	}

	lock := flock.New(path + ".lock")
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire queue lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLocked, path)
	}

	store := &Store{
		path:   path,
		lock:   lock,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(store)
	}
	store.logger = store.logger.With(logging.String(logging.FieldQueue, filepath.Base(path)))

	ctx := context.Background()
	db, err := openDB(ctx, path)
	if err == nil {
		store.db = db
		return store, nil
	}

	logging.WarnWithContext(store.logger, "queue database unusable; recreating",
		"queue_store_open_failed",
		logging.Error(err),
		logging.String("path", path),
		logging.String(logging.FieldImpact, "unsent hits in the old file are discarded"),
	)
	if rerr := store.reset(ctx, "open: "+err.Error()); rerr != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("open queue store: %w", rerr)
	}
	return store, nil
}

func openDB(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// One connection keeps pragmas and transactions on the same handle.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=FULL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	if err := initSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// reset deletes the database file and recreates an empty schema. Callers hold s.mu
// (or own s exclusively during Open).
func (s *Store) reset(ctx context.Context, reason string) error {
	if s.db != nil {
		_ = s.db.Close()
		s.db = nil
	}
	for _, p := range sidecarPaths(s.path) {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("remove %s: %w", p, err)
		}
	}
	db, err := openDB(ctx, s.path)
	if err != nil {
		return fmt.Errorf("recreate queue database: %w", err)
	}
	s.db = db
	s.resets++

	logging.WarnWithContext(s.logger, "queue store reset; pending hits discarded",
		"queue_store_reset",
		logging.String("reason", reason),
		logging.Int("reset_count", s.resets),
		logging.String(logging.FieldImpact, "hits queued before the reset will not be delivered"),
		logging.String(logging.FieldErrorHint, "check disk health and free space for the data directory"),
	)
	if s.onReset != nil {
		s.onReset(reason)
	}
	return nil
}

// withRecovery runs fn and, when it fails with anything other than a caller
// cancellation or a constraint violation, resets the database and runs fn once more.
// A store whose previous reset failed has no database; that is retried here
// before fn runs.
func (s *Store) withRecovery(ctx context.Context, op string, fn func() error) error {
	if s.db == nil {
		if rerr := s.reset(ctx, op+": "+ErrUnavailable.Error()); rerr != nil {
			return fmt.Errorf("%s: %w (recovery failed: %v)", op, ErrUnavailable, rerr)
		}
	}
	err := fn()
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, ErrDuplicateRecord) {
		return err
	}
	s.logger.Warn("queue operation failed; attempting recovery",
		logging.String("operation", op),
		logging.Error(err),
		logging.String(logging.FieldEventType, "queue_store_operation_failed"),
	)
	if rerr := s.reset(ctx, op+": "+err.Error()); rerr != nil {
		return fmt.Errorf("%s: %w (recovery failed: %v)", op, err, rerr)
	}
	return fn()
}

// Close marks the store closed, closes the database and releases the queue lock.
// Persisted hits remain on disk for the next Open.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	var firstErr error
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			firstErr = fmt.Errorf("close queue database: %w", err)
		}
		s.db = nil
	}
	if s.lock != nil {
		if err := s.lock.Unlock(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("release queue lock: %w", err)
		}
	}
	return firstErr
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Resets returns how many corruption resets this store has performed.
func (s *Store) Resets() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resets
}
