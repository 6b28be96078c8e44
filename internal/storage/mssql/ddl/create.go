package ddl

import (
	"fmt"
	"strings"

	gddl "greencart/internal/ddl"
	"greencart/internal/schema"
)

// Dialect uses [bracket] quoting and wraps CREATE TABLE in an OBJECT_ID guard,
// since T-SQL has no CREATE TABLE IF NOT EXISTS.
var Dialect = gddl.Dialect{
	Name:   "mssql ddl",
	Quote:  QuoteIdent,
	Create: createIfMissing,
}

// QuoteIdent quotes a SQL Server identifier using [brackets], escaping ].
func QuoteIdent(id string) string { return `[` + strings.ReplaceAll(id, `]`, `]]`) + `]` }

// createIfMissing renders
//
//	IF OBJECT_ID(N'[table]', N'U') IS NULL
//	BEGIN
//	  CREATE TABLE [table] (...);
//	END
func createIfMissing(fqn, body string) string {
	lit := strings.ReplaceAll(fqn, "'", "''")
	return fmt.Sprintf("IF OBJECT_ID(N'%s', N'U') IS NULL\nBEGIN\nCREATE TABLE %s (\n  %s\n);\nEND", lit, fqn, body)
}

// BuildCreateTableSQL returns the guarded CREATE TABLE script for t.
func BuildCreateTableSQL(t schema.Table) (string, error) {
	return gddl.Render(gddl.FromSchema(t, MapType), Dialect)
}
