// Package ddl contains Postgres-specific helpers for generating DDL.
package ddl

import (
	"fmt"

	"greencart/internal/schema"
)

// MapType maps a star-schema column kind to a Postgres type.
//
//	string    -> VARCHAR(n), TEXT when no size is set
//	int       -> INTEGER
//	decimal   -> NUMERIC(10,2)
//	timestamp -> TIMESTAMP
//	bool      -> BOOLEAN
func MapType(c schema.Column) string {
	switch c.Kind {
	case schema.KindInt:
		return "INTEGER"
	case schema.KindDecimal:
		return "NUMERIC(10,2)"
	case schema.KindTimestamp:
		return "TIMESTAMP"
	case schema.KindBool:
		return "BOOLEAN"
	}
	if c.Size > 0 {
		return fmt.Sprintf("VARCHAR(%d)", c.Size)
	}
	return "TEXT"
}
