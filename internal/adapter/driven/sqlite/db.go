package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// driverName is the database/sql driver registered by modernc.org/sqlite.
const driverName = "sqlite"

// DB provides dual reader/writer database connections with WAL mode enabled.
// The writer connection is limited to a single connection to avoid "database is locked" errors.
// The reader pool allows up to 4 concurrent readers and backs the report queries.
type DB struct {
	Writer *sql.DB
	Reader *sql.DB
	path   string
}

// NewDB opens a dual-connection SQLite database with WAL mode, busy timeout,
// synchronous NORMAL and foreign keys enabled.
func NewDB(ctx context.Context, dbPath string) (*DB, error) {
	dsn := fmt.Sprintf(
		"file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)&_pragma=cache_size(-64000)",
		dbPath,
	)
	return openDSN(ctx, dsn, dbPath)
}

func openDSN(ctx context.Context, dsn, path string) (*DB, error) {
	writer, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open writer: %w", err)
	}
	writer.SetMaxOpenConns(1)

	if err := writer.PingContext(ctx); err != nil {
		_ = writer.Close()
		return nil, fmt.Errorf("ping writer: %w", err)
	}

	reader, err := sql.Open(driverName, dsn)
	if err != nil {
		_ = writer.Close()
		return nil, fmt.Errorf("open reader: %w", err)
	}
	reader.SetMaxOpenConns(4)

	if err := reader.PingContext(ctx); err != nil {
		_ = reader.Close()
		_ = writer.Close()
		return nil, fmt.Errorf("ping reader: %w", err)
	}

	return &DB{
		Writer: writer,
		Reader: reader,
		path:   path,
	}, nil
}

// Path returns the database file path the DB was opened with.
func (db *DB) Path() string {
	return db.path
}

// readerx wraps the reader pool for sqlx struct scanning.
func (db *DB) readerx() *sqlx.DB {
	return sqlx.NewDb(db.Reader, driverName)
}

// Close closes both reader and writer connections and reports every failure.
func (db *DB) Close() error {
	var result *multierror.Error

	if err := db.Reader.Close(); err != nil {
		result = multierror.Append(result, fmt.Errorf("close reader: %w", err))
	}

	if err := db.Writer.Close(); err != nil {
		result = multierror.Append(result, fmt.Errorf("close writer: %w", err))
	}

	return result.ErrorOrNil()
}
