package ddl

import (
	"strings"

	gddl "greencart/internal/ddl"
	"greencart/internal/schema"
)

// Dialect uses double-quoted identifiers and CREATE TABLE IF NOT EXISTS.
var Dialect = gddl.Dialect{
	Name:   "sqlite ddl",
	Quote:  quoteIdent,
	Create: gddl.IfNotExists,
}

func quoteIdent(id string) string { return `"` + strings.ReplaceAll(id, `"`, `""`) + `"` }

// BuildCreateTableSQL returns a SQLite CREATE TABLE statement for t.
func BuildCreateTableSQL(t schema.Table) (string, error) {
	return gddl.Render(gddl.FromSchema(t, MapType), Dialect)
}
