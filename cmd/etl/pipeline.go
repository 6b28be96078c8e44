package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"greencart/internal/config"
	"greencart/internal/extract"
	"greencart/internal/metrics"
	"greencart/internal/metrics/datadog"
	"greencart/internal/metrics/prompush"
	pcsv "greencart/internal/parser/csv"
	"greencart/internal/runlock"
	"greencart/internal/schema"
	"greencart/internal/star"
	"greencart/internal/storage"
	"greencart/internal/storage/csvfile"
	"greencart/internal/table"
)

// Function variables used to introduce test seams.
// In production these point to real implementations; tests can override them.
var (
	newRepositoryFn = storage.New
)

// Summary holds the headline numbers of a finished run.
type Summary struct {
	Orders  int
	Revenue float64 // sum of total_order_value over orders that have one
	LatePct float64 // late deliveries among orders with a known flag, in percent
	Loaded  storage.LoadStats
}

// runPipeline executes one batch:
//
//	create tables -> extract -> transform (+quality gate) -> write CSV -> load DB
//
// Each step is timed and recorded with metrics.RecordStep. The first error
// stops the run; nothing is written when the quality gate fails, and a failed
// load is rolled back.
func runPipeline(ctx context.Context, p config.Pipeline, log logrus.FieldLogger) (Summary, error) {
	var sum Summary

	lock, err := runlock.Acquire(p.Output.Dir)
	if err != nil {
		return sum, err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			log.WithError(err).Warn("release run lock")
		}
	}()

	start := time.Now()
	log.WithFields(logrus.Fields{
		"job":     p.Job,
		"source":  p.Source.Dir.Path,
		"output":  p.Output.Dir,
		"storage": p.Storage.Kind,
	}).Info("pipeline started")

	var repo storage.Repository
	if p.Storage.Kind != config.StorageNone {
		repo, err = newRepositoryFn(ctx, storage.Config{Kind: p.Storage.Kind, DSN: p.Storage.DB.DSN, Log: log})
		if err != nil {
			return sum, fmt.Errorf("open %s: %w", p.Storage.Kind, err)
		}
		defer repo.Close()
		if p.Storage.DB.AutoCreateTable {
			err := step(p.Job, "create_tables", log, func() error {
				return storage.EnsureSchema(ctx, p.Storage.Kind, repo)
			})
			if err != nil {
				return sum, err
			}
		}
	}

	var raw table.Set
	err = step(p.Job, "extract", log, func() error {
		var stats extract.Stats
		var err error
		raw, stats, err = extract.Dir(ctx, p.Source.Dir.Path, extract.Options{
			Workers: p.Runtime.ReaderWorkers,
			Parser:  newParser(p.Parser.Options, log),
			Log:     log,
		})
		if err == nil {
			log.WithFields(logrus.Fields{
				"files":   stats.Files,
				"rows":    stats.Rows,
				"skipped": stats.Skipped,
			}).Info("extracted")
		}
		return err
	})
	if err != nil {
		return sum, err
	}

	var out table.Set
	err = step(p.Job, "transform", log, func() error {
		nulls, err := star.ParseNullPolicy(p.Transform.NullFlags)
		if err != nil {
			return err
		}
		eng := star.New(star.Config{
			DateThreshold: p.Transform.DateThreshold,
			NullFlags:     nulls,
			Source:        p.Source.Dir.Path,
			Log:           log,
		})
		out, err = eng.Run(raw)
		return err
	})
	if err != nil {
		return sum, err
	}

	err = step(p.Job, "write_csv", log, func() error {
		_, err := csvfile.Writer{Dir: p.Output.Dir, Workers: p.Runtime.WriterWorkers, Log: log}.Write(ctx, out)
		return err
	})
	if err != nil {
		return sum, err
	}

	if repo != nil {
		err = step(p.Job, "load", log, func() error {
			var err error
			sum.Loaded, err = storage.Load(ctx, repo, out, storage.LoadOptions{
				BatchSize: p.Storage.DB.BatchSize,
				Log:       log,
			})
			return err
		})
		if err != nil {
			return sum, err
		}
	} else {
		log.Info("storage.kind=none, skipping database load")
	}

	loaded := sum.Loaded
	sum = summarize(out[schema.FactOrdersName])
	sum.Loaded = loaded
	metrics.SetKPI("total_orders", float64(sum.Orders))
	metrics.SetKPI("total_revenue", sum.Revenue)
	metrics.SetKPI("late_delivery_pct", sum.LatePct)

	log.WithFields(logrus.Fields{
		"orders":   sum.Orders,
		"revenue":  fmt.Sprintf("%.2f", sum.Revenue),
		"late_pct": fmt.Sprintf("%.2f", sum.LatePct),
		"elapsed":  time.Since(start).Truncate(time.Millisecond),
	}).Info("pipeline completed successfully")
	return sum, nil
}

// step runs fn as the named pipeline step and records its outcome.
func step(job, name string, log logrus.FieldLogger, fn func() error) error {
	start := time.Now()
	err := fn()
	d := time.Since(start)
	metrics.RecordStep(job, name, err, d)
	entry := log.WithFields(logrus.Fields{"step": name, "elapsed": d.Truncate(time.Millisecond)})
	if err != nil {
		entry.WithError(err).Error("step failed")
		return fmt.Errorf("%s: %w", name, err)
	}
	entry.Debug("step done")
	return nil
}

// newParser builds the CSV parser from parser.options.
func newParser(o config.Options, log logrus.FieldLogger) *pcsv.Parser {
	return pcsv.NewParser(pcsv.Options{
		Comma:     o.Rune("comma", ','),
		TrimSpace: o.Bool("trim_space", true),
		HeaderMap: o.StringMap("header_map"),
		LogLimit:  o.Int("log_limit", 0),
		Log:       log,
	})
}

// summarize computes the run KPIs from fact_orders.
func summarize(fo *table.Table) Summary {
	var s Summary
	if fo == nil {
		return s
	}
	s.Orders = fo.Len()
	total, late := fo.Index("total_order_value"), fo.Index("is_late_delivery")
	var known, lateN int
	for _, r := range fo.Rows {
		if total >= 0 {
			if f, ok := table.Float(r[total]); ok {
				s.Revenue += f
			}
		}
		if late >= 0 {
			if b, ok := r[late].(bool); ok {
				known++
				if b {
					lateN++
				}
			}
		}
	}
	s.Revenue = table.RoundCents(s.Revenue)
	if known > 0 {
		s.LatePct = float64(lateN) * 100 / float64(known)
	}
	return s
}

// setupMetrics installs the configured backend and returns the function that
// flushes it at exit. The returned function is never nil.
func setupMetrics(p config.Pipeline, log logrus.FieldLogger) (func(), error) {
	noop := func() {}
	var (
		b   metrics.Backend
		err error
	)
	switch p.Metrics.Backend {
	case "", "none":
		log.Debug("metrics: disabled")
		return noop, nil
	case "prometheus":
		b, err = prompush.NewBackend(p.Job, p.Metrics.PushgatewayURL)
	case "datadog":
		b, err = datadog.NewBackend(datadog.Config{
			Addr:       p.Metrics.DatadogAddr,
			Namespace:  "greencart.",
			GlobalTags: []string{"job:" + p.Job},
		})
	default:
		return noop, errors.New("unknown metrics backend " + p.Metrics.Backend)
	}
	if err != nil {
		return noop, err
	}
	metrics.SetBackend(b)
	log.WithField("backend", p.Metrics.Backend).Info("metrics enabled")
	return func() {
		if err := metrics.Flush(); err != nil {
			log.WithError(err).Warn("metrics: flush error")
		}
	}, nil
}
