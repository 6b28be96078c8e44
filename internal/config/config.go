// Package config defines the JSON-serializable configuration model for the
// olist star-schema pipeline. A Pipeline is loaded from disk with Load (or
// built in code), checked with ValidatePipeline, and passed explicitly to the
// orchestrator; nothing below cmd/etl reads the environment.
//
// Example (trimmed):
//
//	{
//	  "job":       "olist",
//	  "source":    { "kind": "dir", "dir": { "path": "data/raw" } },
//	  "parser":    { "kind": "csv", "options": { "comma": ",", "trim_space": true } },
//	  "transform": { "date_threshold": 0.7, "null_flags": "false" },
//	  "output":    { "dir": "data/processed" },
//	  "storage":   { "kind": "mysql", "db": { "dsn": "...", "auto_create_table": true } },
//	  "metrics":   { "backend": "prometheus", "pushgateway_url": "http://localhost:9091" }
//	}
package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Pipeline describes one batch run. It is the top-level object decoded from a
// pipeline file (e.g., configs/pipelines/olist.json).
type Pipeline struct {
	// Job names the run in logs and metrics.
	Job string `json:"job"`

	// Source describes where the raw CSV extracts live.
	Source Source `json:"source"`

	// Parser configures how raw bytes are turned into tables (CSV).
	Parser Parser `json:"parser"`

	// Transform tunes the star-schema engine.
	Transform Transform `json:"transform"`

	// Output is the flat-file sink.
	Output Output `json:"output"`

	// Storage describes the relational sink. Kind "none" skips the load.
	Storage Storage       `json:"storage"`
	Runtime RuntimeConfig `json:"runtime"`
	Metrics Metrics       `json:"metrics"`
}

// RuntimeConfig controls concurrency of the I/O stages.
type RuntimeConfig struct {
	ReaderWorkers int `json:"reader_workers"`
	WriterWorkers int `json:"writer_workers"`
}

// Source identifies the data source.
type Source struct {
	// Kind selects the source implementation. Current value: "dir".
	Kind string `json:"kind"`

	// Dir carries options for the "dir" source kind.
	Dir SourceDir `json:"dir"`
}

// SourceDir holds configuration for the "dir" source kind: every *.csv file
// directly inside Path is one dataset, keyed by its file stem.
type SourceDir struct {
	Path string `json:"path"`
}

// Parser selects how to parse the raw source into tables.
type Parser struct {
	// Kind selects the parser implementation. Current value: "csv".
	Kind string `json:"kind"`

	// Options is a free-form map interpreted by the parser implementation.
	// For CSV: comma (string), trim_space (bool), header_map (object),
	// log_limit (int).
	Options Options `json:"options"`
}

// Transform holds the engine options.
type Transform struct {
	// DateThreshold is the minimum parse success rate for a date-named column
	// to be converted to timestamps. Must be in (0, 1].
	DateThreshold float64 `json:"date_threshold"`

	// NullFlags selects how derived flags treat null inputs: "false" (default)
	// or "null".
	NullFlags string `json:"null_flags"`
}

// Output configures the flat-file sink.
type Output struct {
	// Dir receives one <table>.csv per output table.
	Dir string `json:"dir"`
}

// Storage selects the relational sink.
type Storage struct {
	// Kind selects the backend: postgres, mysql, mssql, sqlite or none.
	Kind string `json:"kind"`

	DB DBConfig `json:"db"`
}

// DBConfig configures the DB sink.
type DBConfig struct {
	// DSN is the backend connection string.
	DSN string `json:"dsn"`

	// AutoCreateTable creates the star tables before loading when true.
	AutoCreateTable bool `json:"auto_create_table"`

	// BatchSize is the number of rows per insert call.
	BatchSize int `json:"batch_size"`
}

// Metrics selects the metrics backend.
type Metrics struct {
	// Backend is one of: none, prometheus, datadog.
	Backend        string `json:"backend"`
	PushgatewayURL string `json:"pushgateway_url"`
	DatadogAddr    string `json:"datadog_addr"`
}

// StorageNone disables the relational load.
const StorageNone = "none"

// Defaults returns the pipeline used when a file does not override a field.
func Defaults() Pipeline {
	return Pipeline{
		Job:       "olist",
		Source:    Source{Kind: "dir", Dir: SourceDir{Path: "data/raw"}},
		Parser:    Parser{Kind: "csv", Options: Options{}},
		Transform: Transform{DateThreshold: 0.7, NullFlags: "false"},
		Output:    Output{Dir: "data/processed"},
		Storage:   Storage{Kind: StorageNone, DB: DBConfig{BatchSize: 1000}},
		Runtime:   RuntimeConfig{ReaderWorkers: 4, WriterWorkers: 0},
		Metrics:   Metrics{Backend: "none"},
	}
}

// Load decodes the pipeline file at path over Defaults. An empty path returns
// the defaults. Parser.Options is never nil in the result.
func Load(path string) (Pipeline, error) {
	p := Defaults()
	if path == "" {
		return p, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Pipeline{}, fmt.Errorf("read config: %w", err)
	}
	if err := json.Unmarshal(b, &p); err != nil {
		return Pipeline{}, fmt.Errorf("decode config %s: %w", path, err)
	}
	if p.Parser.Options == nil {
		p.Parser.Options = Options{}
	}
	return p, nil
}

// Options is a small helper to fetch typed values from arbitrary JSON maps
// without introducing third-party configuration libraries. It purposefully
// performs only minimal type coercion and returns provided defaults when a key
// is absent or of an unexpected type.
//
// Options is used for parser/transform-specific configuration where the shape
// varies by implementation.
type Options map[string]any

// String returns the string value for key or def if key is missing or not a string.
func (o Options) String(key, def string) string {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

// Bool returns the bool value for key or def if key is missing or not a bool.
func (o Options) Bool(key string, def bool) bool {
	if v, ok := o[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

// Int returns the int value for key or def. JSON numbers are decoded as
// float64 by encoding/json, so this method accepts float64 and casts to int.
// If the value is neither float64 nor int, def is returned.
func (o Options) Int(key string, def int) int {
	if v, ok := o[key]; ok {
		switch n := v.(type) {
		case float64:
			return int(n)
		case int:
			return n
		}
	}
	return def
}

// Rune returns the first rune of a string value for key, or def if key is
// missing or empty. This is useful for single-character parser settings such as
// a CSV delimiter.
func (o Options) Rune(key string, def rune) rune {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok && len(s) > 0 {
			return []rune(s)[0]
		}
	}
	return def
}

// StringMap returns a map[string]string for key when the value is an object
// whose values are strings. Non-string values are ignored. Returns an empty map
// when the key is missing or the value is not an object.
func (o Options) StringMap(key string) map[string]string {
	res := map[string]string{}
	if v, ok := o[key]; ok {
		if m, ok := v.(map[string]any); ok {
			for k, vv := range m {
				if s, ok := vv.(string); ok {
					res[k] = s
				}
			}
		}
	}
	return res
}

// StringSlice returns a []string for key when the value is an array of strings
// (or an array of interface values containing strings). Returns nil when the
// key is missing or the value is not an array.
func (o Options) StringSlice(key string) []string {
	if v, ok := o[key]; ok {
		switch vv := v.(type) {
		case []any:
			out := make([]string, 0, len(vv))
			for _, x := range vv {
				if s, ok := x.(string); ok {
					out = append(out, s)
				}
			}
			return out
		case []string:
			return vv
		}
	}
	return nil
}

// Any returns the raw value for key (which may itself be a nested
// map[string]any, []any, or primitive). This is useful for retrieving nested
// configuration blocks that will be unmarshaled into a typed struct by the
// caller (e.g., an inline validation contract).
func (o Options) Any(key string) any {
	if v, ok := o[key]; ok {
		return v
	}
	return nil
}

// UnmarshalJSON implements json.Unmarshaler so that a missing or null "options"
// object in JSON decodes to a non-nil, empty Options map. This simplifies call
// sites by removing the need to nil-check Options values.
func (o *Options) UnmarshalJSON(b []byte) error {
	var tmp map[string]any
	if len(b) == 0 || string(b) == "null" {
		*o = Options{}
		return nil
	}
	if err := json.Unmarshal(b, &tmp); err != nil {
		return err
	}
	*o = Options(tmp)
	return nil
}
