// Package storage contains the storage-agnostic contracts for loading the star
// schema into a relational database, the backend factory, and the loader that
// drives a whole load inside one transaction.
//
// Backends (postgres, mysql, mssql, sqlite) register a Factory and a DDL
// renderer from their init functions; import internal/storage/all to enable
// every built-in backend.
package storage

import (
	"context"

	"greencart/internal/schema"
)

// Repository is an open connection to one database.
type Repository interface {
	// Begin starts the transaction a load runs in.
	Begin(ctx context.Context) (Tx, error)
	// Exec runs a statement outside any load transaction (typically DDL).
	Exec(ctx context.Context, sql string) error
	Close()
}

// Tx is a load transaction.
type Tx interface {
	// InsertIgnore inserts rows, aligned to def's column order, into def's
	// table. Rows whose primary key already exists are skipped, not updated.
	// It returns the number of rows actually inserted.
	InsertIgnore(ctx context.Context, def schema.Table, rows [][]any) (int64, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}
