package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"greencart/internal/config"
	"greencart/internal/storage"
)

func newRunCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the pipeline: extract, transform, write CSV, load database",
		Long: `Runs one batch:
1. Create the star tables (when storage.db.auto_create_table is set)
2. Extract every *.csv under source.dir.path
3. Build dimensions and facts, then run the data quality gate
4. Write <table>.csv files to output.dir
5. Load the tables into the configured database (skipped for storage.kind=none)`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			log := newLogger(cmd.ErrOrStderr(), f.verbose, f.logFormat)
			runLog := log.WithField("run_id", uuid.NewString())

			p, err := loadPipeline(f, runLog)
			if err != nil {
				runLog.WithError(err).Error("pipeline failed")
				return err
			}

			flush, err := setupMetrics(p, runLog)
			if err != nil {
				runLog.WithError(err).Warn("metrics disabled")
			}
			defer flush()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			sum, err := runPipeline(ctx, p, runLog)
			if err != nil {
				runLog.WithError(err).Error("pipeline failed")
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "orders=%d revenue=%.2f late_pct=%.2f\n", sum.Orders, sum.Revenue, sum.LatePct)
			return nil
		},
	}
}

func newValidateCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the pipeline configuration and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			log := newLogger(cmd.ErrOrStderr(), f.verbose, f.logFormat)
			if _, err := loadPipeline(f, log); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "configuration is valid")
			return nil
		},
	}
}

func newInitSchemaCmd(f *rootFlags) *cobra.Command {
	var printOnly bool
	cmd := &cobra.Command{
		Use:   "init-schema",
		Short: "Create the star-schema tables in the configured database",
		RunE: func(cmd *cobra.Command, _ []string) error {
			log := newLogger(cmd.ErrOrStderr(), f.verbose, f.logFormat)
			p, err := loadPipeline(f, log)
			if err != nil {
				return err
			}
			if p.Storage.Kind == config.StorageNone {
				return fmt.Errorf("storage.kind is %q; nothing to initialize", config.StorageNone)
			}
			if printOnly {
				stmts, err := storage.SchemaSQL(p.Storage.Kind)
				if err != nil {
					return err
				}
				for _, s := range stmts {
					fmt.Fprintln(cmd.OutOrStdout(), s)
				}
				return nil
			}
			return initSchema(cmd.Context(), p, log)
		},
	}
	cmd.Flags().BoolVar(&printOnly, "print", false, "print the DDL instead of executing it")
	return cmd
}

func initSchema(ctx context.Context, p config.Pipeline, log logrus.FieldLogger) error {
	repo, err := newRepositoryFn(ctx, storage.Config{Kind: p.Storage.Kind, DSN: p.Storage.DB.DSN})
	if err != nil {
		return fmt.Errorf("open %s: %w", p.Storage.Kind, err)
	}
	defer repo.Close()
	if err := storage.EnsureSchema(ctx, p.Storage.Kind, repo); err != nil {
		return err
	}
	log.Info("star schema ready")
	return nil
}
