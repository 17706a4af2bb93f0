// Package sqlite owns the application's SQLite connections and schema.
package sqlite

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-sqlite3"

	_ "embed"
)

//go:embed schema.sql
var baselineSchema string

// schemaMigrations lists every schema version in order.
//
//nolint:gochecknoglobals // append-only list of schema versions.
var schemaMigrations = []migration{
	{name: "baseline", query: baselineSchema},
}

// Database holds separate pools for writes and reads.
//
// The read-write pool has a single connection so that writers never compete for the SQLite write lock, while
// readers can proceed concurrently thanks to WAL mode.
type Database struct {
	ReadWrite *sql.DB
	ReadOnly  *sql.DB
	logger    *slog.Logger
}

// NewDatabase connects to the database at url and migrates the schema.
//
// The url parameter is the path to the SQLite database file or ":memory:" for an in-memory database.
func NewDatabase(ctx context.Context, url string, logger *slog.Logger) (*Database, error) {
	var (
		err error
		db  *Database
	)

	if db, err = connect(ctx, url, logger); err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	if err = db.migrate(ctx, schemaMigrations); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	go db.startDatabaseOptimizer(ctx, time.Hour)

	return db, nil
}

//nolint:gochecknoglobals // once is used to ensure that the SQLite driver is registered only once.
var once sync.Once

const optimizedDriver = "sqlite3optimized"

// registerOptimizedDriver executes performance-enhancing pragmas on every new connection.
func registerOptimizedDriver() {
	sql.Register(optimizedDriver,
		&sqlite3.SQLiteDriver{
			Extensions: nil,
			ConnectHook: func(conn *sqlite3.SQLiteConn) error {
				if _, err := conn.Exec(
					// Temporary tables and indices live in memory.
					"PRAGMA temp_store = memory;"+
						"PRAGMA mmap_size = 268435456;", nil); err != nil {
					return fmt.Errorf("exec optimization pragmas: %w", err)
				}
				return nil
			},
		})
}

// dataSourceNames builds the read-write and read-only DSNs for url.
//
// Options without a leading underscore are SQLite URI parameters, see https://www.sqlite.org/uri.html. Options
// prefixed with '_' belong to the driver, see https://pkg.go.dev/github.com/mattn/go-sqlite3#SQLiteDriver.Open.
func dataSourceNames(url string) (string, string) {
	params := "_loc=auto&_journal_mode=wal&_busy_timeout=5000&_synchronous=normal&_foreign_keys=on"
	rwMode, roMode := "&mode=rwc", "&mode=ro"
	// In-memory databases share a cache so that both pools see the same data. A random name keeps parallel tests
	// apart, see https://www.sqlite.org/inmemorydb.html.
	if strings.Contains(url, ":memory:") {
		url = rand.Text()
		rwMode, roMode = "&mode=memory&cache=shared", "&mode=memory&cache=shared"
	}
	readWrite := "file:" + url + "?_txlock=immediate&" + params + rwMode
	readOnly := "file:" + url + "?_txlock=deferred&_query_only=true&" + params + roMode
	return readWrite, readOnly
}

func openPool(dsn string, maxConns int) (*sql.DB, error) {
	db, err := sql.Open(optimizedDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(maxConns)
	db.SetConnMaxLifetime(time.Hour)
	db.SetConnMaxIdleTime(time.Hour)
	return db, nil
}

const maxReadConns = 10

func connect(ctx context.Context, url string, logger *slog.Logger) (*Database, error) {
	once.Do(registerOptimizedDriver)
	readWriteDSN, readOnlyDSN := dataSourceNames(url)

	// A single writer connection means writers queue in Go instead of failing on SQLITE_BUSY.
	readWrite, err := openPool(readWriteDSN, 1)
	if err != nil {
		return nil, fmt.Errorf("read-write pool: %w", err)
	}
	logger.LogAttrs(ctx, slog.LevelInfo, "opened database", slog.String("sqlDsn", readWriteDSN))
	// sql.DB is lazy. The ping creates the file before the read-only pool needs it.
	if err = readWrite.PingContext(ctx); err != nil {
		return nil, errors.Join(fmt.Errorf("ping read-write pool: %w", err), readWrite.Close())
	}

	readOnly, err := openPool(readOnlyDSN, maxReadConns)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("read-only pool: %w", err), readWrite.Close())
	}
	return &Database{ReadWrite: readWrite, ReadOnly: readOnly, logger: logger}, nil
}

// Close closes the database connections.
func (db *Database) Close() error {
	return errors.Join(db.ReadOnly.Close(), db.ReadWrite.Close())
}
