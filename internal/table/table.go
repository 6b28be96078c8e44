// Package table holds the in-memory tabular model shared by the extraction,
// transformation and load stages: an ordered list of named columns and an
// ordered list of rows whose cells are aligned to those columns.
//
// A cell is one of nil (null), string, int64, float64, bool or time.Time.
// Tables are values passed by pointer; stages that need to change a table
// work on a Clone so that no stage mutates a table another stage still holds.
package table

import (
	"errors"
	"fmt"
	"sort"
)

// ErrMissingColumn is returned when a caller asks for a column the table does
// not carry.
var ErrMissingColumn = errors.New("missing column")

// Table is a named, column-ordered set of rows.
type Table struct {
	Name    string
	Columns []string
	Rows    [][]any
}

// New returns an empty table with the given columns.
func New(name string, columns ...string) *Table {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Table{Name: name, Columns: cols}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Index returns the position of col, or -1 when absent.
func (t *Table) Index(col string) int {
	for i, c := range t.Columns {
		if c == col {
			return i
		}
	}
	return -1
}

// Has reports whether the table carries col.
func (t *Table) Has(col string) bool { return t.Index(col) >= 0 }

// Require returns an ErrMissingColumn error naming the first absent column.
func (t *Table) Require(cols ...string) error {
	for _, c := range cols {
		if !t.Has(c) {
			return fmt.Errorf("table %q: %w %q", t.Name, ErrMissingColumn, c)
		}
	}
	return nil
}

// Indexes resolves cols to positions; every column must exist.
func (t *Table) Indexes(cols ...string) ([]int, error) {
	out := make([]int, len(cols))
	for i, c := range cols {
		idx := t.Index(c)
		if idx < 0 {
			return nil, fmt.Errorf("table %q: %w %q", t.Name, ErrMissingColumn, c)
		}
		out[i] = idx
	}
	return out, nil
}

// Append adds a row. The row must be aligned to Columns.
func (t *Table) Append(row ...any) {
	t.Rows = append(t.Rows, row)
}

// Value returns the cell at row i for col, or nil when col is absent.
func (t *Table) Value(i int, col string) any {
	idx := t.Index(col)
	if idx < 0 || i < 0 || i >= len(t.Rows) {
		return nil
	}
	return t.Rows[i][idx]
}

// Column returns a copy of all values of col.
func (t *Table) Column(col string) ([]any, error) {
	idx := t.Index(col)
	if idx < 0 {
		return nil, fmt.Errorf("table %q: %w %q", t.Name, ErrMissingColumn, col)
	}
	out := make([]any, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r[idx]
	}
	return out, nil
}

// Clone returns a copy whose column slice and row slices are independent of
// t. Cell values are immutable and shared.
func (t *Table) Clone() *Table {
	out := New(t.Name, t.Columns...)
	out.Rows = make([][]any, len(t.Rows))
	for i, r := range t.Rows {
		row := make([]any, len(r))
		copy(row, r)
		out.Rows[i] = row
	}
	return out
}

// Filter returns a new table containing the rows for which keep is true.
// Rows are shared with t, not copied.
func (t *Table) Filter(keep func(row []any) bool) *Table {
	out := New(t.Name, t.Columns...)
	for _, r := range t.Rows {
		if keep(r) {
			out.Rows = append(out.Rows, r)
		}
	}
	return out
}

// Project returns a new table named name holding cols in the given order.
// Columns listed in required must exist; any other absent column is filled
// with nulls.
func (t *Table) Project(name string, cols []string, required ...string) (*Table, error) {
	if err := t.Require(required...); err != nil {
		return nil, err
	}
	idx := make([]int, len(cols))
	for i, c := range cols {
		idx[i] = t.Index(c)
	}
	out := New(name, cols...)
	out.Rows = make([][]any, 0, len(t.Rows))
	for _, r := range t.Rows {
		row := make([]any, len(cols))
		for j, k := range idx {
			if k >= 0 {
				row[j] = r[k]
			}
		}
		out.Rows = append(out.Rows, row)
	}
	return out, nil
}

// Set maps dataset or output names to tables.
type Set map[string]*Table

// Names returns the keys of s in sorted order.
func (s Set) Names() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
