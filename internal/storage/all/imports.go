// Package all wires all built-in storage backends into the storage factory.
//
// This package exists purely for side effects: importing it (even as a blank
// import) runs the init functions of each concrete backend, which register
// their factories and DDL renderers with the storage package.
//
// Importing this package makes the following storage kinds available:
//
//   - "postgres" (greencart/internal/storage/postgres)
//   - "mysql"    (greencart/internal/storage/mysql)
//   - "mssql"    (greencart/internal/storage/mssql)
//   - "sqlite"   (greencart/internal/storage/sqlite)
//
// Typical usage (in cmd/etl):
//
//	import _ "greencart/internal/storage/all" // enable all built-in backends
//
//	repo, err := storage.New(ctx, storage.Config{Kind: p.Storage.Kind, DSN: p.Storage.DB.DSN})
//	if err != nil {
//	    return err
//	}
//	defer repo.Close()
//	if p.Storage.DB.AutoCreateTable {
//	    if err := storage.EnsureSchema(ctx, p.Storage.Kind, repo); err != nil {
//	        return err
//	    }
//	}
//	stats, err := storage.Load(ctx, repo, star, storage.LoadOptions{})
//
// A binary that supports only a subset of backends can import the backend
// packages it needs directly instead.
package all

import (
	_ "greencart/internal/storage/mssql"
	_ "greencart/internal/storage/mysql"
	_ "greencart/internal/storage/postgres"
	_ "greencart/internal/storage/sqlite"
)
