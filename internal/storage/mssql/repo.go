// Package mssql implements a Microsoft SQL Server repository on go-mssqldb.
//
// Keyed tables are loaded with a parameterized INSERT ... SELECT ... WHERE NOT
// EXISTS per row, which skips rows whose key is already present. Tables
// without a primary key use the driver's bulk copy API.
package mssql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	mssql "github.com/microsoft/go-mssqldb"
	"github.com/microsoft/go-mssqldb/msdsn"

	"greencart/internal/schema"
	"greencart/internal/storage"
	msddl "greencart/internal/storage/mssql/ddl"
)

// Config holds MSSQL repository configuration.
type Config struct {
	DSN string
}

// Repository is an MSSQL-backed implementation of storage.Repository.
type Repository struct {
	db  *sql.DB
	cfg Config
}

// NewRepository constructs a Repository and returns a Close function for cleanup.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	// Validate DSN early to fail fast on obvious mistakes.
	if _, err := msdsn.Parse(cfg.DSN); err != nil {
		return nil, nil, fmt.Errorf("mssql dsn: %w", err)
	}
	db, err := sql.Open("sqlserver", cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("sql.Open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("ping: %w", err)
	}
	closeFn := func() { _ = db.Close() }
	return &Repository{db: db, cfg: cfg}, closeFn, nil
}

// Begin implements storage.Repository.
func (r *Repository) Begin(ctx context.Context) (storage.Tx, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	return &msTx{tx: tx}, nil
}

// Exec executes a SQL statement against the pool.
func (r *Repository) Exec(ctx context.Context, sqlText string) error {
	_, err := r.db.ExecContext(ctx, sqlText)
	return err
}

type msTx struct{ tx *sql.Tx }

func (t *msTx) Commit(context.Context) error   { return t.tx.Commit() }
func (t *msTx) Rollback(context.Context) error { return t.tx.Rollback() }

// InsertIgnore implements storage.Tx.
func (t *msTx) InsertIgnore(ctx context.Context, def schema.Table, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	if len(def.PrimaryKey) == 0 {
		return t.bulkCopy(ctx, def.Name, def.ColumnNames(), rows)
	}

	stmt, err := t.tx.PrepareContext(ctx, insertIfAbsentSQL(def))
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	keyIdx := keyIndexes(def)
	var n int64
	for i, row := range rows {
		args := make([]any, 0, len(row)+len(keyIdx))
		args = append(args, row...)
		for _, k := range keyIdx {
			args = append(args, row[k])
		}
		res, err := stmt.ExecContext(ctx, args...)
		if err != nil {
			return n, fmt.Errorf("%s row %d: %w", def.Name, i, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return n, fmt.Errorf("rows affected: %w", err)
		}
		n += affected
	}
	return n, nil
}

// bulkCopy streams rows into table through mssql.CopyIn.
func (t *msTx) bulkCopy(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	stmt, err := t.tx.PrepareContext(ctx, mssql.CopyIn(table, mssql.BulkOptions{}, columns...))
	if err != nil {
		return 0, fmt.Errorf("prepare bulk: %w", err)
	}
	for i := range rows {
		if _, err := stmt.ExecContext(ctx, rows[i]...); err != nil {
			_ = stmt.Close()
			return 0, fmt.Errorf("bulk row %d: %w", i, err)
		}
	}
	res, err := stmt.ExecContext(ctx)
	if cerr := stmt.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		return 0, fmt.Errorf("bulk finalize: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

// insertIfAbsentSQL builds
//
//	INSERT INTO [t] ([a], [b]) SELECT @p1, @p2
//	WHERE NOT EXISTS (SELECT 1 FROM [t] WHERE [a] = @p3)
//
// The key values are bound a second time after the row values.
func insertIfAbsentSQL(def schema.Table) string {
	cols := def.ColumnNames()
	params := make([]string, len(cols))
	for i := range cols {
		params[i] = fmt.Sprintf("@p%d", i+1)
	}
	conds := make([]string, len(def.PrimaryKey))
	for i, k := range def.PrimaryKey {
		conds[i] = fmt.Sprintf("%s = @p%d", msddl.QuoteIdent(k), len(cols)+i+1)
	}
	table := msddl.QuoteIdent(def.Name)
	return fmt.Sprintf(
		"INSERT INTO %s (%s) SELECT %s\nWHERE NOT EXISTS (SELECT 1 FROM %s WITH (UPDLOCK, HOLDLOCK) WHERE %s)",
		table,
		strings.Join(mapIdent(cols), ", "),
		strings.Join(params, ", "),
		table,
		strings.Join(conds, " AND "),
	)
}

func keyIndexes(def schema.Table) []int {
	out := make([]int, 0, len(def.PrimaryKey))
	for _, k := range def.PrimaryKey {
		for i, c := range def.Columns {
			if c.Name == k {
				out = append(out, i)
				break
			}
		}
	}
	return out
}

// mapIdent maps a list of column names to their bracket-quoted forms.
func mapIdent(cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = msddl.QuoteIdent(c)
	}
	return out
}
