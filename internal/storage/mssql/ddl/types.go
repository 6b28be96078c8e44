// Package ddl contains MSSQL-specific helpers for generating DDL.
package ddl

import (
	"fmt"

	"greencart/internal/schema"
)

// MapType maps a star-schema column kind into a SQL Server column type.
// Strings without a size fall back to NVARCHAR(MAX).
func MapType(c schema.Column) string {
	switch c.Kind {
	case schema.KindInt:
		return "INT"
	case schema.KindDecimal:
		return "DECIMAL(10,2)"
	case schema.KindTimestamp:
		return "DATETIME2"
	case schema.KindBool:
		return "BIT"
	}
	if c.Size > 0 {
		return fmt.Sprintf("NVARCHAR(%d)", c.Size)
	}
	return "NVARCHAR(MAX)"
}
