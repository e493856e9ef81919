package queue

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is stamped into new databases. Any other value, or a hits
// table missing a column, sends Open down the reset path.
const schemaVersion = 1

var expectedColumns = []string{"seq", "id", "created_at", "data"}

func initSchema(ctx context.Context, db *sql.DB) error {
	version, found, err := readSchemaVersion(ctx, db)
	if err != nil {
		return err
	}
	if !found {
		return inTx(ctx, db, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
				return fmt.Errorf("create schema: %w", err)
			}
			if _, err := tx.ExecContext(ctx, `INSERT INTO schema_version (version) VALUES (?)`, schemaVersion); err != nil {
				return fmt.Errorf("record schema version: %w", err)
			}
			return nil
		})
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d", ErrSchemaMismatch, version, schemaVersion)
	}

	columns, err := tableColumns(ctx, db, "hits")
	if err != nil {
		return err
	}
	if missing := missingColumns(expectedColumns, columns); len(missing) > 0 {
		return fmt.Errorf("%w: hits table lacks %s", ErrSchemaMismatch, strings.Join(missing, ", "))
	}
	return nil
}

// readSchemaVersion reports found=false for a fresh database. A version table
// without a row counts as a mismatch.
func readSchemaVersion(ctx context.Context, db *sql.DB) (int, bool, error) {
	var tables int
	if err := db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'`,
	).Scan(&tables); err != nil {
		return 0, false, fmt.Errorf("check schema_version table: %w", err)
	}
	if tables == 0 {
		return 0, false, nil
	}

	var version int
	err := db.QueryRowContext(ctx, `SELECT version FROM schema_version LIMIT 1`).Scan(&version)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return 0, true, fmt.Errorf("%w: schema_version is empty", ErrSchemaMismatch)
	case err != nil:
		return 0, true, fmt.Errorf("read schema version: %w", err)
	}
	return version, true, nil
}

func inTx(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
