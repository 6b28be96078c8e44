// Package extract loads every CSV file of a directory into a table set keyed
// by file stem.
package extract

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"greencart/internal/datasource/file"
	"greencart/internal/metrics"
	"greencart/internal/parser"
	pcsv "greencart/internal/parser/csv"
	"greencart/internal/table"
)

// ErrNoFiles is returned when the directory holds no CSV files.
var ErrNoFiles = errors.New("no data found")

// Options tunes extraction.
type Options struct {
	// Workers bounds concurrent file reads. Zero means GOMAXPROCS.
	Workers int

	// Parser overrides the default CSV parser.
	Parser parser.Parser

	Log logrus.FieldLogger
}

// Stats summarizes one extraction.
type Stats struct {
	Files   int
	Rows    int
	Skipped int
}

// Dir reads every *.csv file directly under dir. Files are parsed
// concurrently; the first failure cancels the rest and is returned.
func Dir(ctx context.Context, dir string, opt Options) (table.Set, Stats, error) {
	log := opt.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	p := opt.Parser
	if p == nil {
		p = pcsv.NewParser(pcsv.Options{TrimSpace: true, Log: log})
	}
	workers := opt.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	srcs, err := file.ListCSV(dir)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("%w in path: %s: %v", ErrNoFiles, dir, err)
	}
	if len(srcs) == 0 {
		return nil, Stats{}, fmt.Errorf("%w in path: %s", ErrNoFiles, dir)
	}

	var (
		mu    sync.Mutex
		out   = make(table.Set, len(srcs))
		stats = Stats{Files: len(srcs)}
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, src := range srcs {
		src := src
		g.Go(func() error {
			start := time.Now()
			rc, err := src.Open(gctx)
			if err != nil {
				return err
			}
			defer rc.Close()

			t, skipped, err := p.Parse(src.Name(), rc)
			if err != nil {
				return fmt.Errorf("extract %s: %w", src.Path(), err)
			}
			metrics.RecordRows(src.Name(), "extracted", t.Len())
			metrics.RecordRows(src.Name(), "skipped", skipped)
			log.WithFields(logrus.Fields{
				"dataset":  src.Name(),
				"rows":     t.Len(),
				"columns":  len(t.Columns),
				"duration": time.Since(start),
			}).Debug("file extracted")

			mu.Lock()
			defer mu.Unlock()
			out[src.Name()] = t
			stats.Rows += t.Len()
			stats.Skipped += skipped
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, Stats{}, err
	}
	return out, stats, nil
}
