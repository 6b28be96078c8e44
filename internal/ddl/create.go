// Package ddl defines a small, backend-agnostic model for SQL DDL and renders
// CREATE TABLE statements from it.
//
// Rendering is parameterized by a Dialect: backend packages (e.g.
// internal/storage/postgres/ddl) supply identifier quoting, the type mapping
// used by FromSchema, and the guard that makes creation idempotent. The zero
// Dialect emits names verbatim and no guard.
package ddl

import (
	"fmt"
	"strings"

	"greencart/internal/schema"
)

// Dialect tells Render how to spell a statement for one database.
type Dialect struct {
	// Name prefixes error messages, e.g. "postgres ddl".
	Name string

	// Quote quotes one identifier segment. Nil emits identifiers as-is.
	Quote func(id string) string

	// Create wraps the rendered column list into the final statement. It gets
	// the quoted table name and the body between the parentheses. Nil
	// renders a plain "CREATE TABLE <fqn> (<body>);".
	Create func(fqn, body string) string
}

// IfNotExists renders "CREATE TABLE IF NOT EXISTS", understood by Postgres,
// MySQL and SQLite.
func IfNotExists(fqn, body string) string {
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n  %s\n);", fqn, body)
}

// FromSchema converts a star-schema table into a TableDef using mapType for
// column types. Primary key columns are NOT NULL; every other column is
// nullable.
func FromSchema(t schema.Table, mapType func(schema.Column) string) TableDef {
	pk := make(map[string]bool, len(t.PrimaryKey))
	for _, c := range t.PrimaryKey {
		pk[c] = true
	}
	def := TableDef{FQN: t.Name}
	for _, c := range t.Columns {
		def.Columns = append(def.Columns, ColumnDef{
			Name:       c.Name,
			SQLType:    mapType(c),
			Nullable:   !pk[c.Name],
			PrimaryKey: pk[c.Name],
		})
	}
	for _, fk := range t.ForeignKeys {
		def.ForeignKeys = append(def.ForeignKeys, ForeignKeyDef{
			Columns:    fk.Columns,
			RefTable:   fk.RefTable,
			RefColumns: fk.RefColumns,
		})
	}
	return def
}

// BuildCreateTableSQL renders t with the zero Dialect.
func BuildCreateTableSQL(t TableDef) (string, error) {
	return Render(t, Dialect{})
}

// Render renders a CREATE TABLE statement for t.
//
// A column is rendered as
//
//	<Name> <SQLType> [NOT NULL] [DEFAULT <Default>]
//
// followed by a PRIMARY KEY (...) clause for the key columns and one
// FOREIGN KEY (...) REFERENCES <table> (...) clause per foreign key.
func Render(t TableDef, d Dialect) (string, error) {
	prefix := d.Name
	if prefix == "" {
		prefix = "ddl"
	}
	quote := d.Quote
	if quote == nil {
		quote = func(s string) string { return s }
	}

	fqn := strings.TrimSpace(t.FQN)
	if fqn == "" {
		return "", fmt.Errorf("%s: table FQN must not be empty", prefix)
	}
	if len(t.Columns) == 0 {
		return "", fmt.Errorf("%s: at least one column is required", prefix)
	}

	parts := make([]string, 0, len(t.Columns)+1+len(t.ForeignKeys))
	var pks []string
	for _, c := range t.Columns {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return "", fmt.Errorf("%s: column with empty name in table %s", prefix, fqn)
		}
		typ := strings.TrimSpace(c.SQLType)
		if typ == "" {
			return "", fmt.Errorf("%s: column %s missing SQLType", prefix, name)
		}

		var sb strings.Builder
		sb.WriteString(quote(name))
		sb.WriteByte(' ')
		sb.WriteString(typ)
		if !c.Nullable {
			sb.WriteString(" NOT NULL")
		}
		if def := strings.TrimSpace(c.Default); def != "" {
			sb.WriteString(" DEFAULT ")
			sb.WriteString(def)
		}
		parts = append(parts, sb.String())

		if c.PrimaryKey {
			pks = append(pks, quote(name))
		}
	}
	if len(pks) > 0 {
		parts = append(parts, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(pks, ", ")))
	}
	for _, fk := range t.ForeignKeys {
		if len(fk.Columns) == 0 || len(fk.Columns) != len(fk.RefColumns) || fk.RefTable == "" {
			return "", fmt.Errorf("%s: malformed foreign key on %s", prefix, fqn)
		}
		parts = append(parts, fmt.Sprintf("FOREIGN KEY (%s) REFERENCES %s (%s)",
			strings.Join(mapQuote(fk.Columns, quote), ", "),
			quoteFQN(fk.RefTable, quote),
			strings.Join(mapQuote(fk.RefColumns, quote), ", "),
		))
	}

	body := strings.Join(parts, ",\n  ")
	qfqn := quoteFQN(fqn, quote)
	if d.Create != nil {
		return d.Create(qfqn, body), nil
	}
	return fmt.Sprintf("CREATE TABLE %s (\n  %s\n);", qfqn, body), nil
}

// quoteFQN quotes each dot-separated segment of a possibly schema-qualified
// name.
func quoteFQN(fqn string, quote func(string) string) string {
	segs := strings.Split(fqn, ".")
	out := make([]string, 0, len(segs))
	for _, s := range segs {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, quote(s))
		}
	}
	return strings.Join(out, ".")
}

func mapQuote(ids []string, quote func(string) string) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = quote(id)
	}
	return out
}
