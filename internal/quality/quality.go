// Package quality implements the data-quality gate that a finished fact table
// must pass before it is handed to any sink.
//
// A Gate holds a fixed list of rules. Check evaluates every rule (no
// short-circuit), and when any rule fails it returns a *CheckError that lists
// the failed rules. CheckError matches ErrCheckFailed under errors.Is, so
// callers can branch on the error kind and then on CheckError.Failed.
package quality

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"greencart/internal/metrics"
	"greencart/internal/schema"
	"greencart/internal/table"
)

// ErrCheckFailed is the sentinel matched by every *CheckError.
var ErrCheckFailed = errors.New("data quality check failed")

// maxSamples bounds the offending values kept per rule.
const maxSamples = 5

// RuleResult is the outcome of one rule.
type RuleResult struct {
	Rule          string // e.g. "unique(order_id)"
	Column        string
	Success       bool
	Unexpected    int   // offending rows
	Samples       []any // up to maxSamples offending values
	MissingColumn bool
}

// Rule evaluates one invariant over a table.
type Rule interface {
	Name() string
	Evaluate(t *table.Table) RuleResult
}

// CheckError reports the rules a table failed.
type CheckError struct {
	Table   string
	Results []RuleResult // failed rules only, in gate order
}

// Failed returns the names of the failed rules.
func (e *CheckError) Failed() []string {
	out := make([]string, len(e.Results))
	for i, r := range e.Results {
		out[i] = r.Rule
	}
	return out
}

func (e *CheckError) Error() string {
	parts := make([]string, len(e.Results))
	for i, r := range e.Results {
		if r.MissingColumn {
			parts[i] = fmt.Sprintf("%s: column missing", r.Rule)
			continue
		}
		parts[i] = fmt.Sprintf("%s: %d unexpected %v", r.Rule, r.Unexpected, r.Samples)
	}
	return fmt.Sprintf("%s for %s: %s", ErrCheckFailed, e.Table, strings.Join(parts, "; "))
}

// Is makes errors.Is(err, ErrCheckFailed) true for any *CheckError.
func (e *CheckError) Is(target error) bool { return target == ErrCheckFailed }

// Gate is an ordered rule set for one table.
type Gate struct {
	Table string
	Rules []Rule
	Log   logrus.FieldLogger // nil uses the standard logger
}

// FactOrders returns the gate applied to fact_orders: unique order_id,
// total_order_value >= 0 and non-null customer_id.
func FactOrders() Gate {
	zero := 0.0
	return Gate{
		Table: schema.FactOrdersName,
		Rules: []Rule{
			Unique{Column: "order_id"},
			Between{Column: "total_order_value", Min: &zero},
			NotNull{Column: "customer_id"},
		},
	}
}

// Evaluate runs every rule and returns all results.
func (g Gate) Evaluate(t *table.Table) []RuleResult {
	out := make([]RuleResult, 0, len(g.Rules))
	for _, r := range g.Rules {
		out = append(out, r.Evaluate(t))
	}
	return out
}

// Check evaluates all rules and returns t unchanged when every rule passes.
func (g Gate) Check(t *table.Table) (*table.Table, error) {
	log := g.Log
	if log == nil {
		log = logrus.StandardLogger()
	}

	var failed []RuleResult
	for _, res := range g.Evaluate(t) {
		if !res.Success {
			failed = append(failed, res)
		}
	}
	if len(failed) > 0 {
		err := &CheckError{Table: g.Table, Results: failed}
		for _, rule := range err.Failed() {
			metrics.RecordQualityFailure(g.Table, rule)
		}
		log.WithField("table", g.Table).WithField("failed", err.Failed()).Error("data quality checks failed")
		return nil, err
	}
	log.WithField("table", g.Table).WithField("rules", len(g.Rules)).Info("data quality checks passed")
	return t, nil
}

// columnOrMissing resolves col or fills a failed MissingColumn result.
func columnOrMissing(t *table.Table, name, col string) (int, *RuleResult) {
	idx := t.Index(col)
	if idx < 0 {
		return -1, &RuleResult{Rule: name, Column: col, MissingColumn: true}
	}
	return idx, nil
}

func addSample(res *RuleResult, v any) {
	res.Unexpected++
	if len(res.Samples) < maxSamples {
		res.Samples = append(res.Samples, v)
	}
}

// Unique requires every non-null value of Column to occur once.
type Unique struct{ Column string }

// Name implements Rule.
func (u Unique) Name() string { return fmt.Sprintf("unique(%s)", u.Column) }

// Evaluate counts every row whose value occurs more than once.
func (u Unique) Evaluate(t *table.Table) RuleResult {
	idx, miss := columnOrMissing(t, u.Name(), u.Column)
	if miss != nil {
		return *miss
	}
	counts := make(map[string]int, t.Len())
	for _, r := range t.Rows {
		if !table.IsNull(r[idx]) {
			counts[table.String(r[idx])]++
		}
	}
	res := RuleResult{Rule: u.Name(), Column: u.Column}
	for _, r := range t.Rows {
		if table.IsNull(r[idx]) {
			continue
		}
		if counts[table.String(r[idx])] > 1 {
			addSample(&res, r[idx])
		}
	}
	res.Success = res.Unexpected == 0
	return res
}

// NotNull requires every value of Column to be non-null.
type NotNull struct{ Column string }

// Name implements Rule.
func (n NotNull) Name() string { return fmt.Sprintf("not_null(%s)", n.Column) }

// Evaluate counts null rows.
func (n NotNull) Evaluate(t *table.Table) RuleResult {
	idx, miss := columnOrMissing(t, n.Name(), n.Column)
	if miss != nil {
		return *miss
	}
	res := RuleResult{Rule: n.Name(), Column: n.Column}
	for i, r := range t.Rows {
		if table.IsNull(r[idx]) {
			addSample(&res, i)
		}
	}
	res.Success = res.Unexpected == 0
	return res
}

// Between requires non-null values of Column to be numeric and within
// [Min, Max]. A nil bound is open; Strict* make that bound exclusive.
type Between struct {
	Column    string
	Min, Max  *float64
	StrictMin bool
	StrictMax bool
}

// Name implements Rule.
func (b Between) Name() string {
	lo, hi := "-inf", "+inf"
	if b.Min != nil {
		lo = fmt.Sprint(*b.Min)
	}
	if b.Max != nil {
		hi = fmt.Sprint(*b.Max)
	}
	return fmt.Sprintf("between(%s,%s,%s)", b.Column, lo, hi)
}

// Evaluate counts out-of-range or non-numeric values; nulls are skipped.
func (b Between) Evaluate(t *table.Table) RuleResult {
	idx, miss := columnOrMissing(t, b.Name(), b.Column)
	if miss != nil {
		return *miss
	}
	res := RuleResult{Rule: b.Name(), Column: b.Column}
	for _, r := range t.Rows {
		v := r[idx]
		if table.IsNull(v) {
			continue
		}
		f, ok := table.Float(v)
		if !ok || !b.within(f) {
			addSample(&res, v)
		}
	}
	res.Success = res.Unexpected == 0
	return res
}

func (b Between) within(f float64) bool {
	if b.Min != nil {
		if f < *b.Min || (b.StrictMin && f == *b.Min) {
			return false
		}
	}
	if b.Max != nil {
		if f > *b.Max || (b.StrictMax && f == *b.Max) {
			return false
		}
	}
	return true
}
