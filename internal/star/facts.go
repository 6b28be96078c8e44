package star

import (
	"fmt"

	"greencart/internal/schema"
	"greencart/internal/table"
)

// itemTotals is the per-order aggregate of surviving order items.
type itemTotals struct {
	items   int64
	product float64
	freight float64
}

// aggregateItems groups items by order_id. Rows without an order_id are
// skipped; null prices and freights contribute nothing to their sums.
func aggregateItems(items *table.Table) (map[string]*itemTotals, error) {
	idx, err := items.Indexes("order_id", "price", "freight_value")
	if err != nil {
		return nil, err
	}
	out := make(map[string]*itemTotals)
	for _, r := range items.Rows {
		if table.IsNull(r[idx[0]]) {
			continue
		}
		id := table.String(r[idx[0]])
		agg := out[id]
		if agg == nil {
			agg = &itemTotals{}
			out[id] = agg
		}
		agg.items++
		if p, ok := table.Float(r[idx[1]]); ok {
			agg.product += p
		}
		if f, ok := table.Float(r[idx[2]]); ok {
			agg.freight += f
		}
	}
	return out, nil
}

// aggregatePayments sums payment_value per order_id.
func aggregatePayments(payments *table.Table) (map[string]float64, error) {
	idx, err := payments.Indexes("order_id", "payment_value")
	if err != nil {
		return nil, err
	}
	out := make(map[string]float64)
	for _, r := range payments.Rows {
		if table.IsNull(r[idx[0]]) {
			continue
		}
		id := table.String(r[idx[0]])
		v, _ := table.Float(r[idx[1]])
		out[id] += v
	}
	return out, nil
}

// resolveReviews picks one review score per order: the highest score wins,
// ties keep the earliest row and null scores rank below any score. An order
// whose reviews are all unscored resolves to nil.
func resolveReviews(reviews *table.Table) (map[string]any, error) {
	idx, err := reviews.Indexes("order_id", "review_score")
	if err != nil {
		return nil, err
	}
	best := make(map[string]any)
	for _, r := range reviews.Rows {
		if table.IsNull(r[idx[0]]) {
			continue
		}
		id := table.String(r[idx[0]])
		score, ok := table.Int(r[idx[1]])
		cur, seen := best[id]
		if !seen {
			if ok {
				best[id] = score
			} else {
				best[id] = nil
			}
			continue
		}
		if !ok {
			continue
		}
		if cur == nil || score > cur.(int64) {
			best[id] = score
		}
	}
	return best, nil
}

// BuildFactOrders assembles fact_orders: one row per delivered order, left
// joined with the item aggregate, the payment total and the resolved review
// score, plus the three derived flags. Monetary totals are rounded to cents.
//
// total_order_value is the cent-rounded sum of the raw item sums, so it equals
// total_product_value + total_freight_value to the cent, not as exact float
// equality. payment_mismatch compares the two cent-rounded values.
func BuildFactOrders(delivered, items, payments, reviews *table.Table, nulls NullPolicy) (*table.Table, error) {
	oi, err := delivered.Indexes(
		"order_id",
		"customer_id",
		"order_purchase_timestamp",
		"order_delivered_customer_date",
		"order_estimated_delivery_date",
	)
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", schema.FactOrdersName, err)
	}
	itemAgg, err := aggregateItems(items)
	if err != nil {
		return nil, fmt.Errorf("aggregate order items: %w", err)
	}
	payAgg, err := aggregatePayments(payments)
	if err != nil {
		return nil, fmt.Errorf("aggregate payments: %w", err)
	}
	scores, err := resolveReviews(reviews)
	if err != nil {
		return nil, fmt.Errorf("resolve reviews: %w", err)
	}

	out := table.New(schema.FactOrdersName, schema.FactOrders.ColumnNames()...)
	out.Rows = make([][]any, 0, delivered.Len())
	for _, r := range delivered.Rows {
		id := table.String(r[oi[0]])

		var totalItems, product, freight, total, payment, score any
		if agg, ok := itemAgg[id]; ok {
			totalItems = agg.items
			product = table.RoundCents(agg.product)
			freight = table.RoundCents(agg.freight)
			total = table.RoundCents(agg.product + agg.freight)
		}
		if v, ok := payAgg[id]; ok {
			payment = table.RoundCents(v)
		}
		if v, ok := scores[id]; ok {
			score = v
		}

		out.Append(
			r[oi[0]],
			r[oi[1]],
			r[oi[2]],
			r[oi[3]],
			r[oi[4]],
			totalItems,
			product,
			freight,
			total,
			payment,
			score,
			nulls.lateDelivery(r[oi[3]], r[oi[4]]),
			nulls.badReview(score),
			nulls.paymentMismatch(payment, total),
		)
	}
	return out, nil
}

// BuildFactOrderItems inner joins delivered orders with the surviving items.
// Orders without items produce no rows. Row order follows the orders table,
// then the item table within each order.
func BuildFactOrderItems(delivered, items *table.Table) (*table.Table, error) {
	oi, err := delivered.Indexes("order_id", "customer_id")
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", schema.FactOrderItemsName, err)
	}
	ii, err := items.Indexes("order_id", "order_item_id", "product_id", "seller_id", "price", "freight_value")
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", schema.FactOrderItemsName, err)
	}

	byOrder := make(map[string][][]any)
	for _, r := range items.Rows {
		if table.IsNull(r[ii[0]]) {
			continue
		}
		id := table.String(r[ii[0]])
		byOrder[id] = append(byOrder[id], r)
	}

	out := table.New(schema.FactOrderItemsName, schema.FactOrderItems.ColumnNames()...)
	for _, o := range delivered.Rows {
		if table.IsNull(o[oi[0]]) {
			continue
		}
		for _, r := range byOrder[table.String(o[oi[0]])] {
			var total any
			p, okP := table.Float(r[ii[4]])
			f, okF := table.Float(r[ii[5]])
			if okP && okF {
				total = table.RoundCents(p + f)
			}
			out.Append(
				o[oi[0]],
				r[ii[1]],
				o[oi[1]],
				r[ii[2]],
				r[ii[3]],
				r[ii[4]],
				r[ii[5]],
				total,
				int64(1),
			)
		}
	}
	return out, nil
}
