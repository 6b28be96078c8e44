package star

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"greencart/internal/quality"
	"greencart/internal/schema"
	"greencart/internal/table"
)

func quietLog() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// rawSet builds a minimal raw input: two delivered orders, one shipped order,
// three items for o1 and one null-priced item for o2.
func rawSet() table.Set {
	orders := table.New(OrdersDataset,
		"order_id", "customer_id", "order_status",
		"order_purchase_timestamp", "order_delivered_customer_date", "order_estimated_delivery_date")
	orders.Append("o1", "c1", "delivered", "2017-10-02 10:56:33", "2017-10-10 21:25:13", "2017-10-18 00:00:00")
	orders.Append("o2", "c2", "delivered", "2018-07-24 20:41:37", "2018-08-20 15:00:00", "2018-08-13 00:00:00")
	orders.Append("o3", "c1", "shipped", "2018-08-08 08:38:49", "", "2018-09-04 00:00:00")

	items := table.New(OrderItemsDataset, "order_id", "order_item_id", "product_id", "seller_id", "price", "freight_value")
	items.Append("o1", "1", "p1", "s1", "21.33", "15.10")
	items.Append("o1", "2", "p1", "s1", "21.33", "15.10")
	items.Append("o1", "3", "p2", "s1", "21.33", "15.10")
	items.Append("o2", "1", "p2", "s2", "", "8.00")
	items.Append("o3", "1", "p1", "s2", "10.00", "1.00")

	payments := table.New(PaymentsDataset, "order_id", "payment_sequential", "payment_value")
	payments.Append("o1", "1", "100.00")
	payments.Append("o1", "2", "9.29")
	payments.Append("o2", "1", "5.00")

	reviews := table.New(ReviewsDataset, "review_id", "order_id", "review_score", "review_creation_date")
	reviews.Append("r1", "o1", "3", "2017-10-11 00:00:00")
	reviews.Append("r2", "o1", "5", "2017-10-12 00:00:00")
	reviews.Append("r3", "o1", "5", "2017-10-13 00:00:00")
	reviews.Append("r4", "o2", "1", "2018-08-21 00:00:00")

	customers := table.New(CustomersDataset, "customer_id", "customer_unique_id", "customer_zip_code_prefix", "customer_city", "customer_state")
	customers.Append("c1", "u1", "01001", "sao paulo", "SP")
	customers.Append("c1", "u1", "01001", "sao paulo", "SP")
	customers.Append("c2", "u2", "20000", "rio de janeiro", "RJ")

	products := table.New(ProductsDataset, "product_id", "product_category_name", "product_weight_g",
		"product_length_cm", "product_height_cm", "product_width_cm")
	products.Append("p1", "perfumaria", "225", "16", "10", "14")
	products.Append("p2", "", "1000", "30", "18", "20")

	sellers := table.New(SellersDataset, "seller_id", "seller_zip_code_prefix", "seller_city", "seller_state")
	sellers.Append("s1", "13023", "campinas", "SP")
	sellers.Append("s2", "04195", "sao paulo", "SP")

	return table.Set{
		OrdersDataset:     orders,
		OrderItemsDataset: items,
		PaymentsDataset:   payments,
		ReviewsDataset:    reviews,
		CustomersDataset:  customers,
		ProductsDataset:   products,
		SellersDataset:    sellers,
	}
}

func rowFor(t *testing.T, tbl *table.Table, orderID string) map[string]any {
	t.Helper()
	for i, r := range tbl.Rows {
		if r[tbl.Index("order_id")] == orderID {
			out := make(map[string]any, len(tbl.Columns))
			for _, c := range tbl.Columns {
				out[c] = tbl.Value(i, c)
			}
			return out
		}
	}
	t.Fatalf("order %s not in %s", orderID, tbl.Name)
	return nil
}

func TestRun_ProducesFiveTables(t *testing.T) {
	out, err := New(Config{Log: quietLog()}).Run(rawSet())
	require.NoError(t, err)
	require.Equal(t, []string{
		schema.DimCustomersName,
		schema.DimProductsName,
		schema.DimSellersName,
		schema.FactOrderItemsName,
		schema.FactOrdersName,
	}, out.Names())
	for _, def := range schema.Star {
		require.Equal(t, def.ColumnNames(), out[def.Name].Columns, def.Name)
	}
}

func TestRun_OrderTotalsMatchItems(t *testing.T) {
	out, err := New(Config{Log: quietLog()}).Run(rawSet())
	require.NoError(t, err)

	fo := out[schema.FactOrdersName]
	require.Equal(t, 2, fo.Len(), "only delivered orders")

	o1 := rowFor(t, fo, "o1")
	require.Equal(t, int64(3), o1["total_items"])
	require.Equal(t, 63.99, o1["total_product_value"])
	require.Equal(t, 45.30, o1["total_freight_value"])
	require.Equal(t, 109.29, o1["total_order_value"])
	require.Equal(t, 109.29, o1["payment_value"])
	require.Equal(t, int64(5), o1["review_score"])
	require.Equal(t, false, o1["is_late_delivery"])
	require.Equal(t, false, o1["bad_review_flag"])
	require.Equal(t, false, o1["payment_mismatch"])
	require.IsType(t, time.Time{}, o1["order_purchase_timestamp"])
}

func TestRun_NullPricedItemsNeverReachFacts(t *testing.T) {
	out, err := New(Config{Log: quietLog()}).Run(rawSet())
	require.NoError(t, err)

	o2 := rowFor(t, out[schema.FactOrdersName], "o2")
	require.Nil(t, o2["total_items"])
	require.Nil(t, o2["total_order_value"])
	require.Equal(t, 5.0, o2["payment_value"])
	require.Equal(t, true, o2["is_late_delivery"])
	require.Equal(t, true, o2["bad_review_flag"])
	require.Equal(t, false, o2["payment_mismatch"], "null total under null-as-false")

	foi := out[schema.FactOrderItemsName]
	require.Equal(t, 3, foi.Len())
	for i := range foi.Rows {
		require.Equal(t, "o1", foi.Value(i, "order_id"))
		require.Equal(t, "c1", foi.Value(i, "customer_id"))
		require.Equal(t, 36.43, foi.Value(i, "total_item_value"))
		require.Equal(t, int64(1), foi.Value(i, "quantity"))
	}
	require.Equal(t, int64(3), foi.Value(2, "order_item_id"))
}

func TestRun_NullPropagatesPolicy(t *testing.T) {
	out, err := New(Config{NullFlags: NullPropagates, Log: quietLog()}).Run(rawSet())
	require.NoError(t, err)

	o2 := rowFor(t, out[schema.FactOrdersName], "o2")
	require.Nil(t, o2["payment_mismatch"])
	require.Equal(t, true, o2["bad_review_flag"])
}

func TestRun_DimensionsAreDeduplicated(t *testing.T) {
	out, err := New(Config{Log: quietLog()}).Run(rawSet())
	require.NoError(t, err)

	dc := out[schema.DimCustomersName]
	require.Equal(t, 2, dc.Len())
	require.Equal(t, []any{"c1", "u1", "sao paulo", "SP"}, dc.Rows[0])

	dp := out[schema.DimProductsName]
	require.Equal(t, int64(225), dp.Value(0, "product_weight_g"))
	require.True(t, table.IsNull(dp.Value(1, "product_category_name")))
}

func TestRun_DoesNotModifyInput(t *testing.T) {
	raw := rawSet()
	_, err := New(Config{Log: quietLog()}).Run(raw)
	require.NoError(t, err)
	require.Equal(t, "21.33", raw[OrderItemsDataset].Value(0, "price"))
	require.Equal(t, "2017-10-02 10:56:33", raw[OrdersDataset].Value(0, "order_purchase_timestamp"))
}

func TestRun_MissingDataset(t *testing.T) {
	raw := rawSet()
	delete(raw, SellersDataset)

	_, err := New(Config{Source: "/data/raw", Log: quietLog()}).Run(raw)
	require.ErrorIs(t, err, ErrMissingDataset)
	require.Contains(t, err.Error(), SellersDataset)
	require.Contains(t, err.Error(), "/data/raw")
}

func TestRun_MissingColumn(t *testing.T) {
	raw := rawSet()
	raw[OrderItemsDataset] = table.New(OrderItemsDataset, "order_id", "order_item_id")

	_, err := New(Config{Log: quietLog()}).Run(raw)
	require.ErrorIs(t, err, table.ErrMissingColumn)
}

func TestRun_QualityGateAborts(t *testing.T) {
	raw := rawSet()
	raw[OrdersDataset].Append("o1", "c1", "delivered", "2017-10-02 10:56:33", "", "")

	out, err := New(Config{Log: quietLog()}).Run(raw)
	require.Nil(t, out)
	require.ErrorIs(t, err, quality.ErrCheckFailed)

	var ce *quality.CheckError
	require.True(t, errors.As(err, &ce))
	require.Equal(t, []string{"unique(order_id)"}, ce.Failed())
}

func TestParseNullPolicy(t *testing.T) {
	for in, want := range map[string]NullPolicy{"": NullAsFalse, "false": NullAsFalse, "NULL": NullPropagates} {
		got, err := ParseNullPolicy(in)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
	_, err := ParseNullPolicy("maybe")
	require.Error(t, err)
}
