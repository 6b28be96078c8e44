package config

import (
	"strings"
	"testing"
)

// hasIssue reports whether issues contains an Issue with the given severity,
// path, and a Message containing msgSubstr.
func hasIssue(t *testing.T, issues []Issue, sev IssueSeverity, path, msgSubstr string) bool {
	t.Helper()
	for _, iss := range issues {
		if iss.Severity == sev && iss.Path == path && strings.Contains(iss.Message, msgSubstr) {
			return true
		}
	}
	return false
}

/*
TestValidatePipeline_Defaults verifies that the built-in defaults produce no
issues (errors or warnings).
*/
func TestValidatePipeline_Defaults(t *testing.T) {
	t.Parallel()

	if issues := ValidatePipeline(Defaults()); len(issues) != 0 {
		t.Fatalf("expected no issues, got %+v", issues)
	}
}

/*
TestValidatePipeline_MissingJob verifies that a missing or empty Job field
produces a SeverityError with path "job".
*/
func TestValidatePipeline_MissingJob(t *testing.T) {
	t.Parallel()

	p := Defaults()
	p.Job = " "
	issues := ValidatePipeline(p)
	if !hasIssue(t, issues, SeverityError, "job", "job must not be empty") {
		t.Fatalf("expected SeverityError for job; got issues: %+v", issues)
	}
	if !HasErrors(issues) {
		t.Fatal("HasErrors = false")
	}
}

func TestValidatePipeline_Cases(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(p *Pipeline)
		sev    IssueSeverity
		path   string
		substr string
	}{
		{"empty source kind", func(p *Pipeline) { p.Source.Kind = "" }, SeverityError, "source.kind", "must not be empty"},
		{"file source kind", func(p *Pipeline) { p.Source.Kind = "file" }, SeverityError, "source.kind", "unsupported"},
		{"empty dir path", func(p *Pipeline) { p.Source.Dir.Path = "" }, SeverityError, "source.dir.path", "non-empty path"},
		{"xml parser", func(p *Pipeline) { p.Parser.Kind = "xml" }, SeverityError, "parser.kind", "unsupported"},
		{"long comma", func(p *Pipeline) { p.Parser.Options = Options{"comma": ";;"} }, SeverityError, "parser.options.comma", "single character"},
		{"negative log limit", func(p *Pipeline) { p.Parser.Options = Options{"log_limit": float64(-1)} }, SeverityWarning, "parser.options.log_limit", "disables"},
		{"zero threshold", func(p *Pipeline) { p.Transform.DateThreshold = 0 }, SeverityError, "transform.date_threshold", "(0, 1]"},
		{"threshold above one", func(p *Pipeline) { p.Transform.DateThreshold = 1.5 }, SeverityError, "transform.date_threshold", "(0, 1]"},
		{"unknown null policy", func(p *Pipeline) { p.Transform.NullFlags = "maybe" }, SeverityError, "transform.null_flags", "unknown"},
		{"empty output", func(p *Pipeline) { p.Output.Dir = "" }, SeverityError, "output.dir", "must not be empty"},
		{"empty storage kind", func(p *Pipeline) { p.Storage.Kind = "" }, SeverityError, "storage.kind", "none"},
		{"unknown storage kind", func(p *Pipeline) {
			p.Storage = Storage{Kind: "oracle", DB: DBConfig{DSN: "x", BatchSize: 1}}
		}, SeverityWarning, "storage.kind", "unknown storage kind"},
		{"missing dsn", func(p *Pipeline) { p.Storage.Kind = "postgres" }, SeverityError, "storage.db.dsn", "must not be empty"},
		{"zero batch", func(p *Pipeline) {
			p.Storage = Storage{Kind: "sqlite", DB: DBConfig{DSN: "x.db"}}
		}, SeverityWarning, "storage.db.batch_size", "default"},
		{"negative readers", func(p *Pipeline) { p.Runtime.ReaderWorkers = -1 }, SeverityError, "runtime.reader_workers", "negative"},
		{"negative writers", func(p *Pipeline) { p.Runtime.WriterWorkers = -2 }, SeverityError, "runtime.writer_workers", "negative"},
		{"prometheus without url", func(p *Pipeline) { p.Metrics.Backend = "prometheus" }, SeverityError, "metrics.pushgateway_url", "pushgateway_url"},
		{"datadog without addr", func(p *Pipeline) { p.Metrics.Backend = "datadog" }, SeverityError, "metrics.datadog_addr", "datadog_addr"},
		{"unknown metrics", func(p *Pipeline) { p.Metrics.Backend = "statsd" }, SeverityError, "metrics.backend", "unknown"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			p := Defaults()
			tc.mutate(&p)
			issues := ValidatePipeline(p)
			if !hasIssue(t, issues, tc.sev, tc.path, tc.substr) {
				t.Fatalf("expected %s at %s containing %q; got %+v", tc.sev, tc.path, tc.substr, issues)
			}
		})
	}
}

func TestValidateStorage_NoneSkipsDBChecks(t *testing.T) {
	t.Parallel()

	if issues := validateStorage(Storage{Kind: StorageNone}); len(issues) != 0 {
		t.Fatalf("expected no issues for kind none, got %+v", issues)
	}
}

func TestIssueError(t *testing.T) {
	t.Parallel()

	iss := Issue{Severity: SeverityError, Path: "output.dir", Message: "boom"}
	if got := iss.Error(); got != "error at output.dir: boom" {
		t.Fatalf("Error() = %q", got)
	}
}
