// Command etl builds the olist star schema: it extracts the raw CSV exports,
// transforms them into dimension and fact tables, writes those as CSV and
// loads them into a relational database.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"greencart/internal/config"

	// register all backends with the storage factory.
	// config specifies which to use but we need to build in support for all of them.
	_ "greencart/internal/storage/all"
)

type rootFlags struct {
	cfgPath   string
	verbose   bool
	logFormat string
}

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var f rootFlags
	root := &cobra.Command{
		Use:           "etl [command]",
		Short:         "Olist star-schema ETL: raw CSV exports in, dimension and fact tables out",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().StringVarP(&f.cfgPath, "config", "c", "", "pipeline config JSON path (defaults apply when empty)")
	root.PersistentFlags().BoolVarP(&f.verbose, "verbose", "v", false, "enable debug logs")
	root.PersistentFlags().StringVar(&f.logFormat, "log-format", "text", "log format: text or json")

	root.AddCommand(newRunCmd(&f), newValidateCmd(&f), newInitSchemaCmd(&f))
	return root
}

// newLogger builds the process logger on w.
func newLogger(w io.Writer, verbose bool, format string) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	if verbose {
		l.SetLevel(logrus.DebugLevel)
	}
	if format == "json" {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return l
}

// envOverrides maps environment variables to the pipeline fields they
// replace. Containers set these instead of editing the config file.
var envOverrides = []struct {
	name  string
	apply func(p *config.Pipeline, v string)
}{
	{"ETL_DATA_PATH", func(p *config.Pipeline, v string) { p.Source.Dir.Path = v }},
	{"ETL_OUTPUT_DIR", func(p *config.Pipeline, v string) { p.Output.Dir = v }},
	{"ETL_DB_DSN", func(p *config.Pipeline, v string) { p.Storage.DB.DSN = v }},
	{"METRICS_BACKEND", func(p *config.Pipeline, v string) { p.Metrics.Backend = v }},
	{"PUSHGATEWAY_URL", func(p *config.Pipeline, v string) { p.Metrics.PushgatewayURL = v }},
}

// applyEnv overrides p with every non-empty variable getenv returns.
func applyEnv(p *config.Pipeline, getenv func(string) string) {
	for _, o := range envOverrides {
		if v := getenv(o.name); v != "" {
			o.apply(p, v)
		}
	}
}

// loadPipeline loads the config, applies the environment and validates it.
// Issues are logged; any error-severity issue fails.
func loadPipeline(f *rootFlags, log logrus.FieldLogger) (config.Pipeline, error) {
	p, err := config.Load(f.cfgPath)
	if err != nil {
		return config.Pipeline{}, err
	}
	applyEnv(&p, os.Getenv)

	issues := config.ValidatePipeline(p)
	for _, iss := range issues {
		entry := log.WithField("path", iss.Path)
		if iss.Severity == config.SeverityError {
			entry.Error(iss.Message)
		} else {
			entry.Warn(iss.Message)
		}
	}
	if config.HasErrors(issues) {
		return config.Pipeline{}, fmt.Errorf("configuration is invalid: %d issue(s)", len(issues))
	}
	return p, nil
}
