// Package file contains helpers for reading local files as datasources.
package file

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ListCSV returns a Local source for every regular *.csv file directly under
// dir, sorted by name. Matching is case-insensitive on the extension and
// subdirectories are not searched. A missing directory is an error; an empty
// one yields no sources.
func ListCSV(dir string) ([]*Local, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	out := make([]*Local, 0, len(names))
	for _, n := range names {
		out = append(out, NewLocal(filepath.Join(dir, n)))
	}
	return out, nil
}
