// Package sqlite is the SQLite-backed implementation of storage.Storage.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/localcat/transtable/internal/storage"
)

// SQLiteStorage is the embedded, single-writer-per-file store described in
// the design: write-ahead logging, foreign keys enforced, one relational
// file per project.
type SQLiteStorage struct {
	db   *sql.DB
	path string
}

// New opens (creating if necessary) the SQLite file at dbPath, applies
// pragmas, and runs all pending migrations.
func New(ctx context.Context, dbPath string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", p, err)
		}
	}

	if err := RunMigrations(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStorage{db: db, path: dbPath}, nil
}

func (s *SQLiteStorage) Close() error { return s.db.Close() }
func (s *SQLiteStorage) Path() string { return s.path }

func (s *SQLiteStorage) UnderlyingDB() *sql.DB { return s.db }

func (s *SQLiteStorage) UnderlyingConn(ctx context.Context) (*sql.Conn, error) {
	return s.db.Conn(ctx)
}

// queryer is satisfied by both *sql.DB and *sql.Tx, letting every entity
// method work unmodified whether it runs standalone or inside RunInTransaction.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// sqliteTx adapts a *sql.Tx to storage.Transaction by embedding the same
// entity-operation set that SQLiteStorage exposes, backed by q instead of
// s.db directly.
type sqliteTx struct {
	q queryer
}

// RunInTransaction opens a BEGIN IMMEDIATE transaction so the write lock is
// acquired up front, avoiding the deadlock two readers hit when both try to
// upgrade to a writer at the same time.
func (s *SQLiteStorage) RunInTransaction(ctx context.Context, fn func(tx storage.Transaction) error) error {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, "BEGIN IMMEDIATE"); err != nil {
		return err
	}

	tx := &sqliteTx{q: conn}

	committed := false
	defer func() {
		if !committed {
			_, _ = conn.ExecContext(ctx, "ROLLBACK")
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}
	if _, err := conn.ExecContext(ctx, "COMMIT"); err != nil {
		return err
	}
	committed = true
	return nil
}

// withQ lets the non-transactional SQLiteStorage methods share the same
// entity-operation code as sqliteTx, by wrapping s.db as a queryer.
func (s *SQLiteStorage) withQ() *sqliteTx { return &sqliteTx{q: s.db} }

func now() time.Time { return time.Now().UTC() }
