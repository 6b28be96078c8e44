// Package transformer defines the contract shared by the table-level
// transformation steps and an ordered Chain to run them.
package transformer

import (
	"fmt"

	"greencart/internal/table"
)

// Transformer turns one table into another. Implementations must not mutate
// the input table; they return a new table (or the input, when unchanged).
type Transformer interface {
	Apply(in *table.Table) (*table.Table, error)
}

// Func adapts an ordinary function to Transformer.
type Func func(in *table.Table) (*table.Table, error)

// Apply calls f.
func (f Func) Apply(in *table.Table) (*table.Table, error) { return f(in) }

// Chain is an ordered list of transformers.
type Chain []Transformer

// Apply runs each transformer in order, feeding the output of one into the
// next. The first error stops the chain.
func (c Chain) Apply(in *table.Table) (*table.Table, error) {
	out := in
	for i, t := range c {
		next, err := t.Apply(out)
		if err != nil {
			return nil, fmt.Errorf("transform step %d (%T): %w", i, t, err)
		}
		out = next
	}
	return out, nil
}
