package ddl

import (
	"strings"

	gddl "greencart/internal/ddl"
	"greencart/internal/schema"
)

// Dialect uses `backtick` quoting and CREATE TABLE IF NOT EXISTS.
var Dialect = gddl.Dialect{
	Name:   "mysql ddl",
	Quote:  QuoteIdent,
	Create: gddl.IfNotExists,
}

// QuoteIdent backtick-quotes one identifier, doubling embedded backticks.
func QuoteIdent(id string) string { return "`" + strings.ReplaceAll(id, "`", "``") + "`" }

// BuildCreateTableSQL returns the CREATE TABLE IF NOT EXISTS statement for t.
func BuildCreateTableSQL(t schema.Table) (string, error) {
	return gddl.Render(gddl.FromSchema(t, MapType), Dialect)
}
