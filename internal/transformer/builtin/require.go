package builtin

import "greencart/internal/table"

// Require removes any row with a null value in one of Fields. Every field
// must exist in the table.
type Require struct {
	Fields []string
}

// Apply returns a new table containing only rows that have all required
// fields present and non-null.
func (r Require) Apply(in *table.Table) (*table.Table, error) {
	idx, err := in.Indexes(r.Fields...)
	if err != nil {
		return nil, err
	}
	return in.Filter(func(row []any) bool {
		for _, i := range idx {
			if table.IsNull(row[i]) {
				return false
			}
		}
		return true
	}), nil
}

// Equals keeps rows whose Field holds exactly Value (case-sensitive string
// comparison; null never matches).
type Equals struct {
	Field string
	Value string
}

// Apply implements transformer.Transformer.
func (e Equals) Apply(in *table.Table) (*table.Table, error) {
	idx, err := in.Indexes(e.Field)
	if err != nil {
		return nil, err
	}
	return in.Filter(func(row []any) bool {
		s, ok := row[idx[0]].(string)
		return ok && s == e.Value
	}), nil
}
