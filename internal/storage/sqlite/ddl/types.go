// Package ddl contains SQLite-specific helpers for generating DDL.
package ddl

import "greencart/internal/schema"

// MapType maps a star-schema column kind into a SQLite column type.
//
// SQLite is dynamically typed, so this mapping prefers canonical affinities:
//   - int       -> INTEGER
//   - bool      -> INTEGER (0/1)
//   - decimal   -> NUMERIC
//   - timestamp -> TEXT (ISO-8601)
//   - string    -> TEXT
func MapType(c schema.Column) string {
	switch c.Kind {
	case schema.KindInt, schema.KindBool:
		return "INTEGER"
	case schema.KindDecimal:
		return "NUMERIC"
	}
	return "TEXT"
}
