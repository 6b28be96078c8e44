// Package star turns the raw e-commerce extracts into the star schema: three
// deduplicated dimension tables and two fact tables, gated by the data
// quality rules on fact_orders.
//
// The engine is synchronous and works entirely in memory. Every step takes
// its own copy of the tables it changes, so the caller's input set is never
// modified.
package star

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"greencart/internal/quality"
	"greencart/internal/schema"
	"greencart/internal/table"
	"greencart/internal/transformer"
	"greencart/internal/transformer/builtin"
)

// Raw dataset names, as produced by extracting <name>.csv files.
const (
	OrdersDataset     = "olist_orders_dataset"
	OrderItemsDataset = "olist_order_items_dataset"
	PaymentsDataset   = "olist_order_payments_dataset"
	ReviewsDataset    = "olist_order_reviews_dataset"
	CustomersDataset  = "olist_customers_dataset"
	ProductsDataset   = "olist_products_dataset"
	SellersDataset    = "olist_sellers_dataset"
)

// RequiredDatasets must all be present in the input set.
var RequiredDatasets = []string{
	OrdersDataset,
	OrderItemsDataset,
	PaymentsDataset,
	ReviewsDataset,
	CustomersDataset,
	ProductsDataset,
	SellersDataset,
}

// DeliveredStatus is the only order status that reaches the fact tables.
const DeliveredStatus = "delivered"

// ErrMissingDataset is returned when a required dataset is absent.
var ErrMissingDataset = errors.New("dataset not found")

// numericTypes lists the raw columns coerced before the business rules run.
var numericTypes = map[string]map[string]string{
	OrderItemsDataset: {"order_item_id": "int", "price": "float", "freight_value": "float"},
	PaymentsDataset:   {"payment_value": "float"},
	ReviewsDataset:    {"review_score": "int"},
	ProductsDataset: {
		"product_weight_g":  "int",
		"product_length_cm": "int",
		"product_height_cm": "int",
		"product_width_cm":  "int",
	},
}

// dateNormalized lists the raw datasets that go through the date normalizer.
var dateNormalized = []string{OrdersDataset, OrderItemsDataset, ReviewsDataset}

// Config configures one engine. The zero value uses the default date
// threshold, null-as-false flags and the fact_orders quality gate.
type Config struct {
	// DateThreshold is the parse ratio a date-like column needs to be
	// converted; zero means builtin.DefaultDateThreshold.
	DateThreshold float64

	// NullFlags selects how derived flags treat null operands.
	NullFlags NullPolicy

	// Source names where the raw set came from; used in error messages.
	Source string

	// Gate overrides the fact_orders quality gate.
	Gate *quality.Gate

	Log logrus.FieldLogger
}

// Engine runs the transformation for one configuration. It holds no state
// between runs and may be reused.
type Engine struct {
	cfg  Config
	gate quality.Gate
	log  logrus.FieldLogger
}

// New returns an Engine for cfg.
func New(cfg Config) *Engine {
	e := &Engine{cfg: cfg, log: cfg.Log}
	if e.log == nil {
		e.log = logrus.StandardLogger()
	}
	if cfg.Gate != nil {
		e.gate = *cfg.Gate
	} else {
		e.gate = quality.FactOrders()
		e.gate.Log = e.log
	}
	return e
}

// Run transforms raw into the five output tables keyed by their schema
// names. It fails on a missing dataset or required column and on any
// quality rule violation; no partial output is returned.
func (e *Engine) Run(raw table.Set) (table.Set, error) {
	for _, key := range RequiredDatasets {
		if _, ok := raw[key]; !ok || raw[key] == nil {
			return nil, fmt.Errorf("%w: %q in %s; ensure the CSV file exists", ErrMissingDataset, key, e.cfg.Source)
		}
	}

	clean, err := e.clean(raw)
	if err != nil {
		return nil, err
	}

	items, err := builtin.Require{Fields: []string{"price"}}.Apply(clean[OrderItemsDataset])
	if err != nil {
		return nil, fmt.Errorf("filter order items: %w", err)
	}
	delivered, err := builtin.Equals{Field: "order_status", Value: DeliveredStatus}.Apply(clean[OrdersDataset])
	if err != nil {
		return nil, fmt.Errorf("filter orders: %w", err)
	}
	e.log.WithFields(logrus.Fields{
		"items_kept":      items.Len(),
		"items_dropped":   clean[OrderItemsDataset].Len() - items.Len(),
		"orders_kept":     delivered.Len(),
		"orders_filtered": clean[OrdersDataset].Len() - delivered.Len(),
	}).Debug("business rules applied")

	dims, err := BuildDimensions(clean)
	if err != nil {
		return nil, err
	}

	factOrders, err := BuildFactOrders(delivered, items, clean[PaymentsDataset], clean[ReviewsDataset], e.cfg.NullFlags)
	if err != nil {
		return nil, err
	}
	factItems, err := BuildFactOrderItems(delivered, items)
	if err != nil {
		return nil, err
	}

	if _, err := e.gate.Check(factOrders); err != nil {
		return nil, err
	}

	out := table.Set{
		schema.FactOrdersName:     factOrders,
		schema.FactOrderItemsName: factItems,
	}
	for name, t := range dims {
		out[name] = t
	}
	return out, nil
}

// clean runs the date normalizer and numeric coercion over copies of the
// raw tables.
func (e *Engine) clean(raw table.Set) (table.Set, error) {
	dates := builtin.Dates{Threshold: e.cfg.DateThreshold}
	out := make(table.Set, len(RequiredDatasets))
	for _, key := range RequiredDatasets {
		var chain transformer.Chain
		for _, d := range dateNormalized {
			if d == key {
				chain = append(chain, dates)
			}
		}
		if types, ok := numericTypes[key]; ok {
			chain = append(chain, builtin.Coerce{Types: types})
		}
		src := raw[key]
		if len(chain) == 0 {
			out[key] = src
			continue
		}
		t, err := chain.Apply(src)
		if err != nil {
			return nil, fmt.Errorf("clean %s: %w", key, err)
		}
		out[key] = t
	}
	return out, nil
}
