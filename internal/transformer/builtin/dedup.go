// Package builtin contains reusable ETL transformers.
//
// DeDup is the policy-driven de-duplication transformer for the pipeline. It
// collapses duplicate rows by a configured key and chooses a winner according
// to a configurable policy:
//
//   - "keep-first"   : keep the earliest occurrence (default)
//   - "keep-last"    : keep the latest occurrence
//   - "most-complete": keep the row that has the most non-null cells;
//     ties break by "keep-first"
//
// Keys: a row's key is the xxh3 128-bit hash of its key cells rendered as
// strings, separated by a unit separator, with nulls encoded as "\x00". An
// empty Keys list keys on every column (full-row de-duplication). Output
// keeps the input order of the winning rows.
package builtin

import (
	"strings"

	"github.com/zeebo/xxh3"

	"greencart/internal/table"
)

// DeDup implements a configurable, in-memory de-duplication policy.
type DeDup struct {
	// Keys are the columns that form the business key. Empty means all columns.
	Keys []string

	// Policy selects the winner among duplicates: "keep-first", "keep-last",
	// or "most-complete".
	Policy string
}

// Apply executes the de-duplication and returns a new table containing only
// the winning rows, in input order.
func (d DeDup) Apply(in *table.Table) (*table.Table, error) {
	keys := d.Keys
	if len(keys) == 0 {
		keys = in.Columns
	}
	idx, err := in.Indexes(keys...)
	if err != nil {
		return nil, err
	}

	policy := strings.ToLower(strings.TrimSpace(d.Policy))
	if policy == "" {
		policy = "keep-first"
	}

	type slot struct {
		index int
		score int
	}
	winners := make(map[xxh3.Uint128]slot, in.Len())
	var buf []byte
	for i, r := range in.Rows {
		buf = rowKey(buf[:0], r, idx)
		k := xxh3.Hash128(buf)
		prev, seen := winners[k]
		switch policy {
		case "keep-last":
			winners[k] = slot{index: i}
		case "most-complete":
			s := slot{index: i, score: completeness(r)}
			if !seen || s.score > prev.score {
				winners[k] = s
			}
		default:
			if !seen {
				winners[k] = slot{index: i}
			}
		}
	}

	keep := make([]bool, in.Len())
	for _, s := range winners {
		keep[s.index] = true
	}
	out := table.New(in.Name, in.Columns...)
	out.Rows = make([][]any, 0, len(winners))
	for i, r := range in.Rows {
		if keep[i] {
			out.Rows = append(out.Rows, r)
		}
	}
	return out, nil
}

// rowKey appends the key encoding of row r to buf.
func rowKey(buf []byte, r []any, idx []int) []byte {
	for n, i := range idx {
		if n > 0 {
			buf = append(buf, '\x1f')
		}
		if r[i] == nil {
			buf = append(buf, '\x00')
			continue
		}
		buf = append(buf, table.String(r[i])...)
	}
	return buf
}

// completeness counts non-null cells.
func completeness(r []any) int {
	n := 0
	for _, v := range r {
		if !table.IsNull(v) {
			n++
		}
	}
	return n
}
