// Package csvfile writes star-schema tables as flat CSV files, one file per
// table named <table>.csv, each with a header row.
package csvfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"greencart/internal/metrics"
	"greencart/internal/table"
)

// Writer writes tables into Dir.
type Writer struct {
	Dir     string
	Workers int // parallel files; <= 0 means one per table
	Log     logrus.FieldLogger
}

// Write writes every table in set and returns the paths written, sorted.
// Nulls are written as empty fields, times as "2006-01-02 15:04:05", bools
// as True/False and floats in their shortest form. Dir is created if missing.
func (w Writer) Write(ctx context.Context, set table.Set) ([]string, error) {
	log := w.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)
	if w.Workers > 0 {
		g.SetLimit(w.Workers)
	}
	names := set.Names()
	paths := make([]string, len(names))
	for i, name := range names {
		name := name
		t := set[name]
		path := filepath.Join(w.Dir, name+".csv")
		paths[i] = path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := writeFile(path, t); err != nil {
				return fmt.Errorf("write %s: %w", name, err)
			}
			metrics.RecordRows(name, "written", t.Len())
			log.WithFields(logrus.Fields{"table": name, "rows": t.Len(), "path": path}).Info("table written")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}

// writeFile writes t to a temp file in the same directory and renames it into
// place, so a failed run never leaves a truncated table behind.
func writeFile(path string, t *table.Table) (err error) {
	f, err := os.CreateTemp(filepath.Dir(path), ".tmp-*.csv")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())
		}
	}()

	cw := csv.NewWriter(f)
	if err = cw.Write(t.Columns); err != nil {
		return err
	}
	rec := make([]string, len(t.Columns))
	for _, r := range t.Rows {
		for i, v := range r {
			rec[i] = table.String(v)
		}
		if err = cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	if err = cw.Error(); err != nil {
		return err
	}
	// CreateTemp opens 0600; published tables are world-readable.
	if err = f.Chmod(0o644); err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), path)
}
