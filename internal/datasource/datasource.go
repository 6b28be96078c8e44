// Package datasource abstracts where raw extract files come from.
package datasource

import (
	"context"
	"io"
)

// Source is one readable input, named by the dataset it carries.
type Source interface {
	Name() string
	Open(ctx context.Context) (io.ReadCloser, error)
}
