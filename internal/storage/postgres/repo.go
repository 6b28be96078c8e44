// Package postgres implements a Postgres repository using pgx v5. A batch is
// COPYed into a temporary staging table and then inserted into the target
// with ON CONFLICT DO NOTHING, so existing primary keys are kept untouched.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"greencart/internal/schema"
	"greencart/internal/storage"
	pgddl "greencart/internal/storage/postgres/ddl"
)

// Config holds Postgres repository configuration.
type Config struct {
	DSN    string // connection string for pgxpool
	Schema string // optional schema the star tables live in, e.g. "analytics"
}

// Repository is a Postgres-backed implementation of storage.Repository.
type Repository struct {
	pool *pgxpool.Pool
	cfg  Config
}

// NewRepository constructs a Repository and returns a Close function for cleanup.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("pgxpool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("ping: %w", err)
	}
	return &Repository{pool: pool, cfg: cfg}, pool.Close, nil
}

// Begin implements storage.Repository.
func (r *Repository) Begin(ctx context.Context) (storage.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &pgTx{tx: tx, schema: r.cfg.Schema}, nil
}

// Exec implements storage.Repository.Exec for Postgres.
func (r *Repository) Exec(ctx context.Context, sql string) error {
	_, err := r.pool.Exec(ctx, sql)
	return err
}

type pgTx struct {
	tx     pgx.Tx
	schema string
}

func (t *pgTx) Commit(ctx context.Context) error   { return t.tx.Commit(ctx) }
func (t *pgTx) Rollback(ctx context.Context) error { return t.tx.Rollback(ctx) }

// InsertIgnore implements storage.Tx. Tables without a primary key are
// COPYed straight into the target.
func (t *pgTx) InsertIgnore(ctx context.Context, def schema.Table, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	cols := def.ColumnNames()
	target := splitFQN(qualify(t.schema, def.Name))

	if len(def.PrimaryKey) == 0 {
		n, err := t.tx.CopyFrom(ctx, target, cols, pgx.CopyFromRows(rows))
		if err != nil {
			return n, copyErr(err)
		}
		return n, nil
	}

	tmp := "tmp_" + def.Name
	if _, err := t.tx.Exec(ctx, createStagingSQL(tmp, target, cols)); err != nil {
		return 0, fmt.Errorf("create staging: %w", err)
	}
	if _, err := t.tx.CopyFrom(ctx, pgx.Identifier{tmp}, cols, pgx.CopyFromRows(rows)); err != nil {
		return 0, copyErr(err)
	}
	tag, err := t.tx.Exec(ctx, insertIgnoreSQL(target, tmp, cols, def.PrimaryKey))
	if err != nil {
		return 0, fmt.Errorf("insert phase: %w", err)
	}
	if _, err := t.tx.Exec(ctx, "DROP TABLE "+pgx.Identifier{tmp}.Sanitize()); err != nil {
		return 0, fmt.Errorf("drop staging: %w", err)
	}
	return tag.RowsAffected(), nil
}

// createStagingSQL creates a temp table with the target's column shape that
// is dropped at commit at the latest.
func createStagingSQL(tmp string, target pgx.Identifier, cols []string) string {
	return fmt.Sprintf(
		"CREATE TEMP TABLE %s ON COMMIT DROP AS SELECT %s FROM %s WHERE false",
		pgx.Identifier{tmp}.Sanitize(), strings.Join(mapIdent(cols), ", "), target.Sanitize(),
	)
}

// insertIgnoreSQL moves the staging rows into target, skipping existing keys.
// DISTINCT ON keeps one row per key when the batch itself repeats a key.
func insertIgnoreSQL(target pgx.Identifier, tmp string, cols, keys []string) string {
	return fmt.Sprintf(
		"INSERT INTO %s (%s)\nSELECT DISTINCT ON (%s) %s FROM %s\nON CONFLICT (%s) DO NOTHING",
		target.Sanitize(),
		strings.Join(mapIdent(cols), ", "),
		strings.Join(mapIdent(keys), ", "),
		strings.Join(mapIdent(cols), ", "),
		pgx.Identifier{tmp}.Sanitize(),
		strings.Join(mapIdent(keys), ", "),
	)
}

func copyErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Detail != "" {
		return fmt.Errorf("copy: %s (%s): %w", pgErr.Detail, pgErr.SQLState(), err)
	}
	return fmt.Errorf("copy: %w", err)
}

func qualify(schemaName, table string) string {
	if schemaName == "" {
		return table
	}
	return schemaName + "." + table
}

// splitFQN converts "schema.table" into a pgx.Identifier {"schema","table"}.
// If no dot is present, returns {"table"}.
func splitFQN(fqn string) pgx.Identifier {
	parts := strings.Split(fqn, ".")
	id := make(pgx.Identifier, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			id = append(id, p)
		}
	}
	return id
}

// mapIdent maps a list of column names to their quoted forms.
func mapIdent(cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = pgddl.QuoteIdent(c)
	}
	return out
}
