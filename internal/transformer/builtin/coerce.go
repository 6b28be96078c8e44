package builtin

import (
	"strconv"
	"strings"

	"greencart/internal/table"
)

// Coerce converts string cells of the listed columns into typed values.
// Columns absent from the table are ignored. Values that cannot be converted
// become null, mirroring a lenient numeric read of a CSV file.
type Coerce struct {
	Types map[string]string // column -> one of: int, float, bool, date, string
}

// Apply implements transformer.Transformer.
func (c Coerce) Apply(in *table.Table) (*table.Table, error) {
	if len(c.Types) == 0 {
		return in, nil
	}
	out := in.Clone()
	for ci, col := range out.Columns {
		typ, ok := c.Types[col]
		if !ok {
			continue
		}
		for _, r := range out.Rows {
			r[ci] = coerceValue(r[ci], typ)
		}
	}
	return out, nil
}

func coerceValue(v any, typ string) any {
	if table.IsNull(v) {
		return nil
	}
	switch typ {
	case "int":
		if i, ok := table.Int(v); ok {
			return i
		}
		return nil
	case "float":
		if f, ok := table.Float(v); ok {
			return f
		}
		return nil
	case "bool":
		switch t := v.(type) {
		case bool:
			return t
		case string:
			if b, err := strconv.ParseBool(strings.TrimSpace(t)); err == nil {
				return b
			}
		}
		return nil
	case "date":
		if t, ok := AsTime(v); ok {
			return t
		}
		return nil
	}
	// "string": already string
	return v
}
