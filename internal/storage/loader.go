package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"greencart/internal/metrics"
	"greencart/internal/schema"
	"greencart/internal/table"
	"greencart/internal/transformer/builtin"
)

// DefaultBatchSize is the number of rows per InsertIgnore call.
const DefaultBatchSize = 1000

// CopyFn abstracts a backend's bulk insert capability. Implementations insert
// the provided rows (aligned to 'columns' order) and return the number of
// rows reported as inserted.
type CopyFn func(ctx context.Context, columns []string, rows [][]any) (int64, error)

// LoadBatches drains rows from 'in', groups them into batches of size
// 'batchSize', and calls 'copyFn' for each non-empty batch. It returns the total
// number of rows reported by copyFn and the first error encountered.
//
// Cancellation: returns (total, ctx.Err()) when canceled.
func LoadBatches(
	ctx context.Context,
	log logrus.FieldLogger,
	columns []string,
	in <-chan []any,
	batchSize int,
	copyFn CopyFn,
) (int64, error) {
	if batchSize <= 0 {
		return 0, fmt.Errorf("batchSize must be > 0")
	}
	if copyFn == nil {
		return 0, fmt.Errorf("copyFn must not be nil")
	}
	if log == nil {
		log = logrus.StandardLogger()
	}

	var (
		total   int64
		batches int64
		batch   = make([][]any, 0, batchSize)
		start   = time.Now()
	)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := copyFn(ctx, columns, batch)
		total += n
		batch = batch[:0]
		if err != nil {
			log.WithError(err).WithField("total", total).Error("loader: batch insert failed")
			return err
		}
		batches++
		log.WithFields(logrus.Fields{
			"batch":    batches,
			"inserted": n,
			"total":    total,
			"elapsed":  time.Since(start).Truncate(time.Millisecond),
		}).Debug("loader: batch flushed")
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return total, ctx.Err()

		case row, ok := <-in:
			if !ok {
				if err := flush(); err != nil {
					return total, err
				}
				return total, nil
			}
			batch = append(batch, row)
			if len(batch) >= batchSize {
				if err := flush(); err != nil {
					return total, err
				}
			}
		}
	}
}

// LoadOptions tunes Load.
type LoadOptions struct {
	BatchSize int // zero means DefaultBatchSize
	Log       logrus.FieldLogger
}

// LoadStats reports inserted rows per table. Tables that were skipped are
// absent.
type LoadStats map[string]int64

// Load writes the star tables in out into repo inside one transaction.
// Dimensions are loaded before facts. Each table is aligned to its schema
// columns and stripped of exact duplicate rows; cells are conformed to the
// column kind and null-like values (NaN, zero or unparseable times, blank
// strings) become NULL. Missing or empty tables are skipped. Any error rolls
// back the whole load.
func Load(ctx context.Context, repo Repository, out table.Set, opt LoadOptions) (stats LoadStats, err error) {
	log := opt.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	size := opt.BatchSize
	if size <= 0 {
		size = DefaultBatchSize
	}

	tx, err := repo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin load: %w", err)
	}
	defer func() {
		if err == nil {
			return
		}
		if rbErr := tx.Rollback(context.WithoutCancel(ctx)); rbErr != nil {
			err = errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
		log.WithError(err).Error("load rolled back")
		stats = nil
	}()

	stats = LoadStats{}
	for _, def := range schema.Star {
		t := out[def.Name]
		if t == nil || t.Len() == 0 {
			log.WithField("table", def.Name).Info("no rows to load, skipping")
			continue
		}
		rows, err := prepareRows(t, def)
		if err != nil {
			return nil, err
		}
		n, err := loadTable(ctx, log, tx, def, rows, size)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", def.Name, err)
		}
		stats[def.Name] = n
		metrics.RecordRows(def.Name, "loaded", int(n))
		log.WithFields(logrus.Fields{
			"table":    def.Name,
			"rows":     len(rows),
			"inserted": n,
		}).Info("table loaded")
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit load: %w", err)
	}
	return stats, nil
}

// prepareRows aligns t to def, drops exact duplicates and conforms cells.
func prepareRows(t *table.Table, def schema.Table) ([][]any, error) {
	aligned, err := t.Project(def.Name, def.ColumnNames(), def.PrimaryKey...)
	if err != nil {
		return nil, err
	}
	unique, err := builtin.DeDup{}.Apply(aligned)
	if err != nil {
		return nil, err
	}
	for _, r := range unique.Rows {
		for i, v := range r {
			r[i] = conform(v, def.Columns[i].Kind)
		}
	}
	return unique.Rows, nil
}

// conform converts v to the Go type every backend expects for kind, or nil.
func conform(v any, kind schema.Kind) any {
	if table.IsNull(v) {
		return nil
	}
	switch kind {
	case schema.KindInt:
		if i, ok := table.Int(v); ok {
			return i
		}
		return nil
	case schema.KindDecimal:
		if f, ok := table.Float(v); ok {
			return f
		}
		return nil
	case schema.KindTimestamp:
		if t, ok := builtin.AsTime(v); ok {
			return t
		}
		return nil
	case schema.KindBool:
		if b, ok := v.(bool); ok {
			return b
		}
		return nil
	}
	return table.String(v)
}

func loadTable(ctx context.Context, log logrus.FieldLogger, tx Tx, def schema.Table, rows [][]any, size int) (int64, error) {
	lctx, cancel := context.WithCancel(ctx)
	defer cancel()

	in := make(chan []any, size)
	go func() {
		defer close(in)
		for _, r := range rows {
			select {
			case in <- r:
			case <-lctx.Done():
				return
			}
		}
	}()

	return LoadBatches(lctx, log.WithField("table", def.Name), def.ColumnNames(), in, size,
		func(ctx context.Context, _ []string, batch [][]any) (int64, error) {
			return tx.InsertIgnore(ctx, def, batch)
		})
}
