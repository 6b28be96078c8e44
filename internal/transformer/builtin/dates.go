package builtin

import (
	"strings"
	"time"

	"greencart/internal/table"
)

// DefaultDateThreshold is the fraction of parseable values a date-like column
// needs before Dates converts it.
const DefaultDateThreshold = 0.7

// dateLayouts are tried in order. Date-only and CZ forms come last so that
// full timestamps keep their time of day.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"02.01.2006",
}

// ParseTime parses s using the known date and timestamp layouts.
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, l := range dateLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// AsTime converts a cell to time.Time. Strings are parsed with ParseTime;
// every other kind of value fails.
func AsTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, !t.IsZero()
	case string:
		return ParseTime(t)
	}
	return time.Time{}, false
}

// IsTemporalName reports whether a column name follows the date naming
// convention: it contains "date" or "timestamp", ignoring case.
func IsTemporalName(col string) bool {
	c := strings.ToLower(col)
	return strings.Contains(c, "date") || strings.Contains(c, "timestamp")
}

// Dates converts date-like columns to time.Time values.
//
// Every column whose name passes IsTemporalName is parsed value by value;
// values that do not parse become null. The parsed column replaces the
// original only when the share of non-null parsed values reaches Threshold.
// Otherwise the column keeps its raw strings. Nothing here returns an error
// for bad values.
type Dates struct {
	// Threshold in [0,1]; zero means DefaultDateThreshold.
	Threshold float64
}

// Apply implements transformer.Transformer.
func (d Dates) Apply(in *table.Table) (*table.Table, error) {
	threshold := d.Threshold
	if threshold <= 0 {
		threshold = DefaultDateThreshold
	}
	out := in.Clone()
	if out.Len() == 0 {
		return out, nil
	}

	parsed := make([]any, out.Len())
	for ci, col := range out.Columns {
		if !IsTemporalName(col) {
			continue
		}
		ok := 0
		for ri, r := range out.Rows {
			if t, good := AsTime(r[ci]); good {
				parsed[ri] = t
				ok++
			} else {
				parsed[ri] = nil
			}
		}
		if float64(ok)/float64(out.Len()) < threshold {
			continue
		}
		for ri, r := range out.Rows {
			r[ci] = parsed[ri]
		}
	}
	return out, nil
}
