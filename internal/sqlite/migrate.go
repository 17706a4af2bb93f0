package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// migration upgrades the schema by one version. Migrations are append-only; the position in the list is the
// version recorded in PRAGMA user_version after it has been applied.
type migration struct {
	name  string
	query string
}

// migrate applies the pending migrations in a single transaction.
//
// The baseline schema is written with IF NOT EXISTS so that it can always be re-applied, and later changes are
// appended to migrations.
func (db *Database) migrate(ctx context.Context, migrations []migration) error {
	start := time.Now()

	var (
		tx  *sql.Tx
		err error
	)
	if tx, err = db.ReadWrite.BeginTx(ctx, nil); err != nil {
		return fmt.Errorf("start transaction: %w", err)
	}
	defer db.rollback(ctx, tx)()

	var current int
	if err = tx.QueryRowContext(ctx, "PRAGMA user_version").Scan(&current); err != nil {
		return fmt.Errorf("query user_version: %w", err)
	}
	if current > len(migrations) {
		return fmt.Errorf("database schema version %d is newer than the application's %d", current, len(migrations))
	}

	for i := current; i < len(migrations); i++ {
		m := migrations[i]
		if _, err = tx.ExecContext(ctx, m.query); err != nil {
			return fmt.Errorf("apply migration %s: %w", m.name, err)
		}
		db.logger.LogAttrs(ctx, slog.LevelInfo, "applied migration",
			slog.String("name", m.name), slog.Int("version", i+1))
	}

	// PRAGMA does not accept bound parameters.
	if _, err = tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", len(migrations))); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	if _, err = tx.ExecContext(ctx, "PRAGMA foreign_key_check"); err != nil {
		return fmt.Errorf("foreign key check: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	db.logger.LogAttrs(ctx, slog.LevelInfo, "migrated database",
		slog.Int("from_version", current),
		slog.Int("to_version", len(migrations)),
		slog.Duration("duration", time.Since(start)))
	return nil
}

// rollback rolls back given transaction unless it has been committed already.
func (db *Database) rollback(ctx context.Context, tx *sql.Tx) func() {
	return func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			err = fmt.Errorf("rollback transaction: %w", err)
			db.logger.LogAttrs(ctx, slog.LevelError, "failed to rollback transaction", slog.Any("error", err))
		}
	}
}

// WithTx runs fn inside a read-write transaction and commits when fn returns nil.
//
// The read-write pool opens transactions with BEGIN IMMEDIATE so that concurrent writers are serialised
// instead of failing halfway with SQLITE_BUSY.
func (db *Database) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := db.ReadWrite.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer db.rollback(ctx, tx)()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
