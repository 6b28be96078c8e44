// Package sqlite implements a SQLite-backed storage.Repository using
// database/sql and the pure-Go modernc driver. SQLite has no bulk-load API
// like Postgres COPY; rows go through one prepared INSERT OR IGNORE inside the
// load transaction, which keeps performance acceptable for moderate volumes.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"greencart/internal/schema"
	"greencart/internal/storage"
)

// Config holds SQLite repository configuration derived from storage.Config.
type Config struct {
	// DSN is a SQLite connection string or file path, e.g.:
	//   "file:olist.db?cache=shared"
	//   "olist.db" (interpreted by the driver)
	DSN string
}

// Repository is a SQLite-backed implementation of storage.Repository.
type Repository struct {
	db  *sql.DB
	cfg Config
}

// NewRepository opens a SQLite connection using the provided DSN and returns
// a Repository plus a Close function for cleanup. Foreign keys are enforced.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, nil, fmt.Errorf("sqlite: DSN must not be empty")
	}

	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("sqlite: open: %w", err)
	}
	// One connection: PRAGMAs are per connection and SQLite serializes
	// writers anyway.
	db.SetMaxOpenConns(1)

	// Apply a basic ping with context to fail fast on invalid DSNs.
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("sqlite: ping: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON;"); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("sqlite: enable foreign keys: %w", err)
	}

	closeFn := func() { db.Close() }
	return &Repository{db: db, cfg: cfg}, closeFn, nil
}

// Begin implements storage.Repository.
func (r *Repository) Begin(ctx context.Context) (storage.Tx, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("sqlite: begin tx: %w", err)
	}
	return &liteTx{tx: tx}, nil
}

// Exec executes an arbitrary SQL statement (typically DDL) using the underlying
// database/sql connection.
func (r *Repository) Exec(ctx context.Context, sql string) error {
	if strings.TrimSpace(sql) == "" {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, sql); err != nil {
		return fmt.Errorf("sqlite: exec: %w", err)
	}
	return nil
}

// Count returns the number of rows in table. Used by tests and the
// post-load summary.
func (r *Repository) Count(ctx context.Context, table string) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+quoteIdent(table)).Scan(&n)
	return n, err
}

type liteTx struct{ tx *sql.Tx }

func (t *liteTx) Commit(context.Context) error   { return t.tx.Commit() }
func (t *liteTx) Rollback(context.Context) error { return t.tx.Rollback() }

// InsertIgnore implements storage.Tx.
func (t *liteTx) InsertIgnore(ctx context.Context, def schema.Table, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	cols := def.ColumnNames()
	stmt, err := t.tx.PrepareContext(ctx, insertSQL(def))
	if err != nil {
		return 0, fmt.Errorf("sqlite: prepare insert: %w", err)
	}
	defer stmt.Close()

	var inserted int64
	for _, row := range rows {
		if len(row) != len(cols) {
			return inserted, fmt.Errorf("sqlite: %s: row length %d != columns length %d", def.Name, len(row), len(cols))
		}
		res, err := stmt.ExecContext(ctx, row...)
		if err != nil {
			return inserted, fmt.Errorf("sqlite: insert %s: %w", def.Name, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return inserted, fmt.Errorf("sqlite: rows affected: %w", err)
		}
		inserted += n
	}
	return inserted, nil
}

// insertSQL builds INSERT [OR IGNORE] INTO "t" ("a", ...) VALUES (?, ...).
// OR IGNORE is only used for keyed tables so that constraint errors on
// unkeyed tables still surface.
func insertSQL(def schema.Table) string {
	cols := def.ColumnNames()
	quoted := make([]string, len(cols))
	placeholders := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = quoteIdent(c)
		placeholders[i] = "?"
	}
	verb := "INSERT"
	if len(def.PrimaryKey) > 0 {
		verb = "INSERT OR IGNORE"
	}
	return fmt.Sprintf("%s INTO %s (%s) VALUES (%s)",
		verb, quoteIdent(def.Name), strings.Join(quoted, ", "), strings.Join(placeholders, ", "))
}

func quoteIdent(id string) string { return `"` + strings.ReplaceAll(id, `"`, `""`) + `"` }
