package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver ("pgx")
	"github.com/mattn/go-sqlite3"
)

// Supported driver names. They match the names the drivers register with database/sql.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "pgx"
)

// Database configuration constants.
const (
	// dirPermissions is the permission mode for the database directory.
	dirPermissions = 0750

	// filePermissions is the permission mode for the database file.
	filePermissions = 0600

	// msPerSecond converts seconds to milliseconds.
	msPerSecond = 1000

	// connectionTimeout is the timeout for verifying database connectivity.
	connectionTimeout = 5 * time.Second

	// connMaxIdleTime is how long idle connections are kept open.
	connMaxIdleTime = 30 * time.Minute

	// postgresMaxOpenConns bounds the PostgreSQL pool.
	postgresMaxOpenConns = 10

	// pgUniqueViolation is the SQLSTATE for unique_violation.
	pgUniqueViolation = "23505"
)

// DB wraps a sql.DB connection for the gateway's relational store.
// Every statement passes through it so placeholders are rebound for the
// active dialect and driver failures are wrapped with context.
type DB struct {
	*sql.DB
	driver string
	path   string
}

// Config contains database configuration options.
// These map to the database section of config.yaml.
type Config struct {
	// Driver selects the SQL driver: "sqlite3" (default) or "pgx".
	Driver string

	// Path is the filesystem path to the SQLite database file.
	// The directory will be created if it doesn't exist.
	Path string

	// DSN is the PostgreSQL connection string, used when Driver is "pgx".
	DSN string

	// WALMode enables Write-Ahead Logging for better concurrent access (SQLite only).
	WALMode bool

	// BusyTimeout is the maximum time to wait for a database lock in seconds (SQLite only).
	BusyTimeout int
}

// Open creates a new database connection with the specified configuration.
//
// For SQLite it creates the database directory, applies the busy timeout and
// WAL pragmas, and caps the pool at a single connection so statements are
// serialised. For PostgreSQL it opens a pgx-backed pool from the DSN.
// In both cases the connection is verified with a ping.
//
// Parameters:
//   - cfg: Database configuration
//
// Returns:
//   - *DB: Connected database wrapper
//   - error: If connection or configuration fails
func Open(cfg Config) (*DB, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = DriverSQLite
	}

	var (
		sqlDB *sql.DB
		err   error
	)
	switch driver {
	case DriverSQLite:
		sqlDB, err = openSQLite(cfg)
	case DriverPostgres:
		sqlDB, err = openPostgres(cfg)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	if err != nil {
		return nil, err
	}

	db := &DB{
		DB:     sqlDB,
		driver: driver,
		path:   cfg.Path,
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectionTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		sqlDB.Close() //nolint:errcheck // Best effort cleanup on error path
		return nil, fmt.Errorf("verifying database connection: %w", err)
	}

	if driver == DriverSQLite {
		// File may not exist yet for in-memory databases.
		_ = os.Chmod(cfg.Path, filePermissions) //nolint:errcheck // Best effort
	}

	return db, nil
}

func openSQLite(cfg Config) (*sql.DB, error) {
	if cfg.Path == "" {
		return nil, errors.New("database path is required for sqlite3")
	}

	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, dirPermissions); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	// See: https://github.com/mattn/go-sqlite3#connection-string
	connStr := fmt.Sprintf("file:%s?_busy_timeout=%d",
		cfg.Path,
		cfg.BusyTimeout*msPerSecond,
	)
	if cfg.WALMode {
		connStr += "&_journal_mode=WAL&_synchronous=NORMAL"
	}

	sqlDB, err := sql.Open(DriverSQLite, connStr)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

	return sqlDB, nil
}

func openPostgres(cfg Config) (*sql.DB, error) {
	if cfg.DSN == "" {
		return nil, errors.New("database dsn is required for pgx")
	}

	sqlDB, err := sql.Open(DriverPostgres, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	sqlDB.SetMaxOpenConns(postgresMaxOpenConns)
	sqlDB.SetMaxIdleConns(postgresMaxOpenConns / 2)
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

	return sqlDB, nil
}

// Close closes the database connection gracefully.
// Calling Close more than once is safe.
func (db *DB) Close() error {
	if db == nil || db.DB == nil {
		return nil
	}
	if err := db.DB.Close(); err != nil {
		return fmt.Errorf("closing database: %w", err)
	}
	return nil
}

// Driver returns the name of the active SQL driver.
func (db *DB) Driver() string {
	return db.driver
}

// Path returns the filesystem path to the database file (SQLite only).
func (db *DB) Path() string {
	return db.path
}

// HealthCheck verifies the database is accessible and functioning.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//
// Returns:
//   - error: nil if healthy, error describing the issue otherwise
func (db *DB) HealthCheck(ctx context.Context) error {
	var result int
	if err := db.DB.QueryRowContext(ctx, "SELECT 1").Scan(&result); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	return nil
}

// Rebind rewrites ? placeholders into the form the active driver expects.
// PostgreSQL uses $1..$n; SQLite accepts ? unchanged.
func (db *DB) Rebind(query string) string {
	return rebind(db.driver, query)
}

func rebind(driver, query string) string {
	if driver != DriverPostgres || !strings.Contains(query, "?") {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

// ExecContext executes a statement that doesn't return rows (INSERT, UPDATE, DELETE).
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - query: SQL statement with ? placeholders
//   - args: Arguments for placeholders
//
// Returns:
//   - sql.Result: Contains RowsAffected
//   - error: If execution fails
func (db *DB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	result, err := db.DB.ExecContext(ctx, db.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("executing query: %w", err)
	}
	return result, nil
}

// QueryContext executes a query that returns rows.
// The caller must close the returned rows.
func (db *DB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	rows, err := db.DB.QueryContext(ctx, db.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("querying: %w", err)
	}
	return rows, nil
}

// QueryRowContext executes a query that returns at most one row.
func (db *DB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return db.DB.QueryRowContext(ctx, db.Rebind(query), args...)
}

// InsertReturningID executes an INSERT ending in "RETURNING <id column>"
// and returns the generated id. Both supported dialects implement RETURNING.
//
// Example:
//
//	id, err := db.InsertReturningID(ctx,
//	    "INSERT INTO kolam (idakuaponik, nama_kolam) VALUES (?, ?) RETURNING idkolam",
//	    farmID, name)
func (db *DB) InsertReturningID(ctx context.Context, query string, args ...any) (int64, error) {
	var id int64
	if err := db.DB.QueryRowContext(ctx, db.Rebind(query), args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("inserting: %w", err)
	}
	return id, nil
}

// Tx is a transaction that rebinds placeholders like DB does.
type Tx struct {
	*sql.Tx
	driver string
}

// ExecContext executes a statement inside the transaction.
func (tx *Tx) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	result, err := tx.Tx.ExecContext(ctx, rebind(tx.driver, query), args...)
	if err != nil {
		return nil, fmt.Errorf("executing query: %w", err)
	}
	return result, nil
}

// QueryRowContext executes a single-row query inside the transaction.
func (tx *Tx) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return tx.Tx.QueryRowContext(ctx, rebind(tx.driver, query), args...)
}

// BeginTx starts a new transaction with the given options.
//
// Example:
//
//	tx, err := db.BeginTx(ctx, nil)
//	if err != nil {
//	    return err
//	}
//	defer tx.Rollback() // No-op if committed
//
//	// ... execute statements on tx ...
//
//	return tx.Commit()
func (db *DB) BeginTx(ctx context.Context, opts *sql.TxOptions) (*Tx, error) {
	tx, err := db.DB.BeginTx(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("starting transaction: %w", err)
	}
	return &Tx{Tx: tx, driver: db.driver}, nil
}

// WithTx runs fn inside a transaction. The transaction is committed when fn
// returns nil and rolled back when fn returns an error or panics.
func (db *DB) WithTx(ctx context.Context, fn func(tx *Tx) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback() //nolint:errcheck // Re-panicking below
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rolling back: %w", rbErr))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// IsUniqueViolation reports whether err was caused by a unique or primary
// key constraint on either supported driver.
func IsUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}

	return false
}
