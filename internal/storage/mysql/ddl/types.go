// Package ddl contains MySQL-specific helpers for generating DDL.
package ddl

import (
	"fmt"

	"greencart/internal/schema"
)

// MapType maps a star-schema column kind into a MySQL column type.
func MapType(c schema.Column) string {
	switch c.Kind {
	case schema.KindInt:
		return "INT"
	case schema.KindDecimal:
		return "DECIMAL(10,2)"
	case schema.KindTimestamp:
		return "DATETIME"
	case schema.KindBool:
		return "BOOLEAN"
	}
	if c.Size > 0 {
		return fmt.Sprintf("VARCHAR(%d)", c.Size)
	}
	return "TEXT"
}
