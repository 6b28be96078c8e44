// Package mysql provides a MySQL-backed storage.Repository on
// go-sql-driver/mysql. Rows are written with multi-row INSERT IGNORE
// statements, chunked to stay under the server's placeholder limit.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"

	"greencart/internal/schema"
	"greencart/internal/storage"
	myddl "greencart/internal/storage/mysql/ddl"
)

// maxPlaceholders is the prepared-statement parameter limit of MySQL.
const maxPlaceholders = 65535

// Config holds MySQL repository configuration.
type Config struct {
	DSN string // go-sql-driver DSN, e.g. "user:pass@tcp(localhost:3306)/olist"
}

// Repository is a MySQL-backed implementation of storage.Repository.
type Repository struct {
	db  *sql.DB
	cfg Config
}

// connConfig parses dsn and forces the options the loader relies on:
// parseTime so DATETIME columns round-trip as time.Time, and UTC.
func connConfig(dsn string) (*mysql.Config, error) {
	mc, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("mysql dsn: %w", err)
	}
	mc.ParseTime = true
	if mc.Params == nil {
		mc.Params = map[string]string{}
	}
	if _, ok := mc.Params["time_zone"]; !ok {
		mc.Params["time_zone"] = "'+00:00'"
	}
	return mc, nil
}

// NewRepository constructs a Repository and returns a Close function for cleanup.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	mc, err := connConfig(cfg.DSN)
	if err != nil {
		return nil, nil, err
	}
	conn, err := mysql.NewConnector(mc)
	if err != nil {
		return nil, nil, fmt.Errorf("mysql connector: %w", err)
	}
	db := sql.OpenDB(conn)
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
	return &myTx{tx: tx}, nil
}

// Exec executes a SQL statement against the pool.
func (r *Repository) Exec(ctx context.Context, sqlText string) error {
	_, err := r.db.ExecContext(ctx, sqlText)
	return err
}

type myTx struct{ tx *sql.Tx }

func (t *myTx) Commit(context.Context) error   { return t.tx.Commit() }
func (t *myTx) Rollback(context.Context) error { return t.tx.Rollback() }

// InsertIgnore implements storage.Tx.
func (t *myTx) InsertIgnore(ctx context.Context, def schema.Table, rows [][]any) (int64, error) {
	cols := def.ColumnNames()
	var total int64
	for _, chunk := range chunkRows(rows, maxPlaceholders/len(cols)) {
		args := make([]any, 0, len(chunk)*len(cols))
		for _, r := range chunk {
			args = append(args, r...)
		}
		res, err := t.tx.ExecContext(ctx, insertSQL(def, len(chunk)), args...)
		if err != nil {
			return total, fmt.Errorf("insert %s: %w", def.Name, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return total, fmt.Errorf("rows affected: %w", err)
		}
		total += n
	}
	return total, nil
}

// insertSQL renders a multi-row insert for n rows. Keyed tables use
// INSERT IGNORE, so duplicate keys are skipped.
func insertSQL(def schema.Table, n int) string {
	cols := def.ColumnNames()
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = myddl.QuoteIdent(c)
	}
	tuple := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ") + ")"
	tuples := make([]string, n)
	for i := range tuples {
		tuples[i] = tuple
	}
	verb := "INSERT"
	if len(def.PrimaryKey) > 0 {
		verb = "INSERT IGNORE"
	}
	return fmt.Sprintf("%s INTO %s (%s) VALUES %s",
		verb, myddl.QuoteIdent(def.Name), strings.Join(quoted, ", "), strings.Join(tuples, ", "))
}

// chunkRows splits rows into slices of at most size rows.
func chunkRows(rows [][]any, size int) [][][]any {
	if size <= 0 {
		size = 1
	}
	var out [][][]any
	for len(rows) > size {
		out = append(out, rows[:size])
		rows = rows[size:]
	}
	if len(rows) > 0 {
		out = append(out, rows)
	}
	return out
}
