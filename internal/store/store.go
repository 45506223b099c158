package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/roach88/quarry/internal/querysql"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 0 - Initial schema (pre-migration)
// 1 - Added UNIQUE index on quarry_models.table_name
const currentSchemaVersion = 1

// DefaultStatementCacheSize is the number of prepared statements kept open.
const DefaultStatementCacheSize = 64

// ErrNotFound is returned when no row matches a key.
var ErrNotFound = fmt.Errorf("store: item not found: %w", sql.ErrNoRows)

// Store provides durable storage for model records.
// Uses SQLite with WAL mode for concurrent read access.
type Store struct {
	db      *sql.DB
	metrics *Metrics

	// stmtMu serializes statement lookup with its first use so that an
	// evicted statement is never handed out.
	stmtMu sync.Mutex
	stmts  *lru.Cache
}

// Option configures a Store.
type Option func(*options)

type options struct {
	registerer prometheus.Registerer
	cacheSize  int
}

// WithMetrics registers the store's collectors on reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(o *options) { o.registerer = reg }
}

// WithStatementCacheSize sets how many prepared statements are kept open.
// Sizes below 1 fall back to DefaultStatementCacheSize.
func WithStatementCacheSize(n int) Option {
	return func(o *options) { o.cacheSize = n }
}

// Open creates or opens a SQLite database at the given path.
// Applies required pragmas and migrations automatically.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode (balance durability/performance)
//   - 5-second busy timeout for lock contention
//   - Foreign key enforcement
//
// This function is idempotent - safe to call multiple times.
func Open(path string, opts ...Option) (*Store, error) {
	o := options{cacheSize: DefaultStatementCacheSize}
	for _, opt := range opts {
		opt(&o)
	}
	if o.cacheSize < 1 {
		o.cacheSize = DefaultStatementCacheSize
	}

	// Open database (creates file if doesn't exist)
	db, err := sql.Open(DriverName, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Verify connection works
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	metrics, err := NewMetrics(o.registerer)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	stmts, err := lru.NewWithEvict(o.cacheSize, func(key, value any) {
		if err := value.(*sql.Stmt).Close(); err != nil {
			slog.Warn("close evicted statement", "sql", key, "error", err)
		}
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create statement cache: %w", err)
	}

	return &Store{db: db, metrics: metrics, stmts: stmts}, nil
}

// Close closes every cached statement and the database connection.
// Should be called when the store is no longer needed.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	s.stmtMu.Lock()
	s.stmts.Purge()
	s.stmtMu.Unlock()
	return s.db.Close()
}

// DB returns the underlying sql.DB for direct queries.
// Use with caution - prefer using Store methods when available.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Metrics returns the store's collectors.
func (s *Store) Metrics() *Metrics {
	return s.metrics
}

// Query runs a compiled fragment and returns the resulting rows.
// Callers are responsible for closing the returned rows.
func (s *Store) Query(ctx context.Context, op string, f querysql.Fragment) (*sql.Rows, error) {
	start := time.Now()
	slog.Debug("store query", "op", op, "sql", f.SQL, "args", len(f.Args))

	s.stmtMu.Lock()
	stmt, err := s.prepare(ctx, f.SQL)
	var rows *sql.Rows
	if err == nil {
		rows, err = stmt.QueryContext(ctx, f.Args...)
	}
	s.stmtMu.Unlock()

	s.metrics.observe(op, start, err)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return rows, nil
}

// Exec runs a compiled statement that returns no rows.
func (s *Store) Exec(ctx context.Context, op string, f querysql.Fragment) (sql.Result, error) {
	start := time.Now()
	slog.Debug("store exec", "op", op, "sql", f.SQL, "args", len(f.Args))

	s.stmtMu.Lock()
	stmt, err := s.prepare(ctx, f.SQL)
	var res sql.Result
	if err == nil {
		res, err = stmt.ExecContext(ctx, f.Args...)
	}
	s.stmtMu.Unlock()

	s.metrics.observe(op, start, err)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

// prepare returns the cached statement for query, preparing it on a miss.
// Caller must hold s.stmtMu.
func (s *Store) prepare(ctx context.Context, query string) (*sql.Stmt, error) {
	if cached, ok := s.stmts.Get(query); ok {
		return cached.(*sql.Stmt), nil
	}
	stmt, err := s.db.PrepareContext(ctx, query)
	if err != nil {
		return nil, err
	}
	s.stmts.Add(query, stmt)
	return stmt, nil
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// applySchema creates tables if they don't exist and runs migrations.
// This function is idempotent.
func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	if err := runMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// runMigrations applies incremental schema migrations based on user_version.
func runMigrations(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}

	if version < 1 {
		if err := migrateToV1(db); err != nil {
			return err
		}
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}

	return nil
}

// migrateToV1 forbids two models from sharing a table.
func migrateToV1(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_quarry_models_table
		ON quarry_models(table_name)
	`)
	if err != nil {
		return fmt.Errorf("migrate to v1: %w", err)
	}
	return nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := s.db.QueryRow(query).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
