// Package parser defines the contract between raw bytes and in-memory tables.
package parser

import (
	"io"

	"greencart/internal/table"
)

// Parser turns one encoded input into a named table. It returns the number of
// malformed rows it skipped alongside the table.
type Parser interface {
	Parse(name string, r io.Reader) (*table.Table, int, error)
}
