package ddl

import (
	"strings"

	gddl "greencart/internal/ddl"
	"greencart/internal/schema"
)

// Dialect renders double-quoted identifiers and CREATE TABLE IF NOT EXISTS.
var Dialect = gddl.Dialect{
	Name:   "postgres ddl",
	Quote:  QuoteIdent,
	Create: gddl.IfNotExists,
}

// QuoteIdent double-quotes one identifier segment, escaping embedded quotes.
func QuoteIdent(id string) string { return `"` + strings.ReplaceAll(id, `"`, `""`) + `"` }

// BuildCreateTableSQL returns the idempotent CREATE TABLE statement for t.
func BuildCreateTableSQL(t schema.Table) (string, error) {
	return gddl.Render(gddl.FromSchema(t, MapType), Dialect)
}
