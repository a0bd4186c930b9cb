package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"sync/atomic"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/accolade/internal/ir"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 0 - Initial schema (pre-migration)
// 1 - Added index on events.achievement_id
const currentSchemaVersion = 1

// Store provides durable SQLite-backed storage for the registry key space
// and its event log. Uses WAL mode for concurrent read access.
type Store struct {
	db     *sql.DB
	closed atomic.Bool
}

var _ KV = (*Store)(nil)

// Open creates or opens a SQLite database at the given path.
// Applies required pragmas and migrations automatically.
// Use ":memory:" for an isolated in-process database.
//
// This function is idempotent - safe to call multiple times.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time, and ":memory:" databases
	// exist per connection, so keep exactly one.
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

	return &Store{db: db}, nil
}

// Close closes the database connection. Later calls are no-ops, and every
// other method then returns ErrClosed.
func (s *Store) Close() error {
	if s.closed.Swap(true) || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// conn returns the open connection pool or ErrClosed.
func (s *Store) conn() (*sql.DB, error) {
	if s.db == nil || s.closed.Load() {
		return nil, ErrClosed
	}
	return s.db, nil
}

// Update runs fn inside one SQL transaction.
// Errors from fn are returned unchanged after rollback.
func (s *Store) Update(ctx context.Context, fn func(tx Tx) error) error {
	db, err := s.conn()
	if err != nil {
		return err
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("update: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	if err := fn(&sqlTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("update: commit: %w", err)
	}
	return nil
}

// View runs fn inside a transaction whose writes are rejected.
func (s *Store) View(ctx context.Context, fn func(tx Tx) error) error {
	db, err := s.conn()
	if err != nil {
		return err
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("view: begin tx: %w", err)
	}
	defer tx.Rollback()

	return fn(readOnlyTx{&sqlTx{tx: tx}})
}

// sqlTx implements Tx over a database/sql transaction.
type sqlTx struct {
	tx *sql.Tx
}

func (t *sqlTx) Get(ctx context.Context, key ir.Key) ([]byte, bool, error) {
	var value []byte
	err := t.tx.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key.String()).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %s: %w", key, err)
	}
	return value, true, nil
}

func (t *sqlTx) Set(ctx context.Context, key ir.Key, value []byte) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO kv (key, kind, value)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key.String(), string(key.Kind), value)
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (t *sqlTx) Has(ctx context.Context, key ir.Key) (bool, error) {
	var count int
	err := t.tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM kv WHERE key = ?`, key.String()).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("has %s: %w", key, err)
	}
	return count > 0, nil
}

func (t *sqlTx) Remove(ctx context.Context, key ir.Key) error {
	if _, err := t.tx.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key.String()); err != nil {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}

func (t *sqlTx) Scan(ctx context.Context, kind ir.KeyKind, fn func(key ir.Key, value []byte) error) error {
	rows, err := t.tx.QueryContext(ctx, `
		SELECT key, value FROM kv
		WHERE kind = ?
		ORDER BY key COLLATE BINARY ASC
	`, string(kind))
	if err != nil {
		return fmt.Errorf("scan %s: %w", kind, err)
	}
	defer rows.Close()

	type entry struct {
		key   ir.Key
		value []byte
	}
	var entries []entry
	for rows.Next() {
		var raw string
		var value []byte
		if err := rows.Scan(&raw, &value); err != nil {
			return fmt.Errorf("scan %s: %w", kind, err)
		}
		key, err := ir.ParseKey(raw)
		if err != nil {
			return fmt.Errorf("scan %s: %w", kind, err)
		}
		entries = append(entries, entry{key: key, value: value})
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("scan %s: iterate: %w", kind, err)
	}
	// Rows are drained before fn runs: the single connection cannot serve
	// nested queries while a result set is open.
	rows.Close()

	for _, e := range entries {
		if err := fn(e.key, e.value); err != nil {
			return err
		}
	}
	return nil
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

// migrateToV1 adds the events lookup index used by per-achievement queries.
func migrateToV1(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_events_achievement
		ON events(achievement_id, seq)
	`)
	if err != nil {
		return fmt.Errorf("migrate to v1: %w", err)
	}
	return nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *Store) verifyPragma(name, expected string) error {
	db, err := s.conn()
	if err != nil {
		return err
	}
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := db.QueryRow(query).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
