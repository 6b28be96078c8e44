// Package csv reads delimited text files into tables. Every cell is kept as a
// string; empty cells become nil. Rows whose width does not match the header
// are skipped and counted rather than failing the file.
package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"greencart/internal/table"
)

// Options configures the CSV parser behavior. All fields are optional; sensible
// defaults are applied when a field is zero.
type Options struct {
	// Comma specifies the field delimiter. When zero, ',' is used.
	Comma rune

	// TrimSpace trims leading/trailing spaces from each field value.
	TrimSpace bool

	// HeaderMap renames source headers after normalization.
	HeaderMap map[string]string

	// LogLimit caps the number of skipped rows that are logged individually.
	// Zero means 100.
	LogLimit int

	Log logrus.FieldLogger
}

// ErrEmpty is returned for an input without a header row.
var ErrEmpty = errors.New("csv: no header row")

// Parser parses CSV input according to Options. It is safe to reuse across
// inputs, and safe for concurrent use as long as Options is not mutated.
type Parser struct{ opt Options }

// NewParser constructs a Parser with the provided Options.
func NewParser(opt Options) *Parser { return &Parser{opt: opt} }

// Parse reads r into a table called name. The first record is the header.
// A leading byte order mark is honored and removed: UTF-8 is passed through
// and UTF-16 input is decoded to UTF-8.
func (p *Parser) Parse(name string, r io.Reader) (*table.Table, int, error) {
	log := p.opt.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	limit := p.opt.LogLimit
	if limit <= 0 {
		limit = 100
	}

	cr := csv.NewReader(transform.NewReader(r, unicode.BOMOverride(transform.Nop)))
	if p.opt.Comma != 0 {
		cr.Comma = p.opt.Comma
	}
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	h, err := cr.Read()
	if err == io.EOF {
		return nil, 0, fmt.Errorf("%s: %w", name, ErrEmpty)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("%s: read csv header: %w", name, err)
	}
	out := table.New(name, normalizeHeaders(h, p.opt)...)

	var skipped int
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if !errors.As(err, &pe) {
				return nil, skipped, fmt.Errorf("%s: read line %d: %w", name, line, err)
			}
			if skipped < limit {
				log.WithFields(logrus.Fields{"file": name, "line": line}).Warnf("skipping row: %v", err)
			}
			skipped++
			continue
		}
		if len(row) != len(out.Columns) {
			if skipped < limit {
				log.WithFields(logrus.Fields{"file": name, "line": line}).
					Warnf("skipping row: incorrect number of fields (expected %d, got %d)", len(out.Columns), len(row))
			}
			skipped++
			continue
		}

		rec := make([]any, len(row))
		for i, val := range row {
			if p.opt.TrimSpace {
				val = strings.TrimSpace(val)
			}
			rec[i] = emptyToNil(val)
		}
		out.Rows = append(out.Rows, rec)
	}
	if skipped > 0 {
		log.WithFields(logrus.Fields{"file": name, "skipped": skipped}).Warn("malformed rows skipped")
	}
	return out, skipped, nil
}

// emptyToNil converts an empty string to nil; all other values are returned as-is.
func emptyToNil(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// normalizeHeaders trims header cells, folds them to NFC and applies
// HeaderMap. Header case is preserved; the extract files already use
// snake_case.
func normalizeHeaders(h []string, opt Options) []string {
	res := make([]string, len(h))
	for i, col := range h {
		c := norm.NFC.String(strings.TrimSpace(col))
		if m, ok := opt.HeaderMap[c]; ok {
			c = m
		}
		if c == "" {
			c = fmt.Sprintf("col_%d", i)
		}
		res[i] = c
	}
	return res
}
