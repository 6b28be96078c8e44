package storage

import (
	"context"
	"fmt"
	"sync"

	"greencart/internal/schema"
)

// DDLRenderer renders the idempotent CREATE TABLE statement for one star
// table in a backend's dialect.
type DDLRenderer func(t schema.Table) (string, error)

var (
	ddlMu  sync.RWMutex
	ddlFns = map[string]DDLRenderer{}
)

// RegisterDDL registers (or replaces) the DDLRenderer for a storage kind.
func RegisterDDL(kind string, fn DDLRenderer) {
	ddlMu.Lock()
	defer ddlMu.Unlock()
	ddlFns[kind] = fn
}

// SchemaSQL renders the CREATE statements for every star table in load
// order for kind.
func SchemaSQL(kind string) ([]string, error) {
	ddlMu.RLock()
	fn, ok := ddlFns[kind]
	ddlMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no DDL renderer registered for storage.kind=%q", kind)
	}
	out := make([]string, 0, len(schema.Star))
	for _, t := range schema.Star {
		stmt, err := fn(t)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", t.Name, err)
		}
		out = append(out, stmt)
	}
	return out, nil
}

// EnsureSchema creates the five star tables, dimensions first, if they do
// not exist yet.
func EnsureSchema(ctx context.Context, kind string, repo Repository) error {
	stmts, err := SchemaSQL(kind)
	if err != nil {
		return err
	}
	for i, stmt := range stmts {
		if err := repo.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("create %s: %w", schema.Star[i].Name, err)
		}
	}
	return nil
}
