package ddl

import (
	"strings"
	"testing"

	"greencart/internal/schema"
)

func TestBuildCreateTableSQL_FactOrders(t *testing.T) {
	t.Parallel()

	got, err := BuildCreateTableSQL(schema.FactOrders)
	if err != nil {
		t.Fatalf("BuildCreateTableSQL error: %v", err)
	}
	for _, want := range []string{
		`CREATE TABLE IF NOT EXISTS "fact_orders" (`,
		`"order_id" VARCHAR(50) NOT NULL,`,
		`"order_purchase_timestamp" TIMESTAMP,`,
		`"total_items" INTEGER,`,
		`"total_order_value" NUMERIC(10,2),`,
		`"payment_mismatch" BOOLEAN,`,
		`PRIMARY KEY ("order_id")`,
		`FOREIGN KEY ("customer_id") REFERENCES "dim_customers" ("customer_id")`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("DDL missing %q:\n%s", want, got)
		}
	}
}

func TestMapType(t *testing.T) {
	t.Parallel()

	cases := map[schema.Column]string{
		{Kind: schema.KindString, Size: 10}: "VARCHAR(10)",
		{Kind: schema.KindString}:           "TEXT",
		{Kind: schema.KindInt}:              "INTEGER",
		{Kind: schema.KindDecimal}:          "NUMERIC(10,2)",
		{Kind: schema.KindTimestamp}:        "TIMESTAMP",
		{Kind: schema.KindBool}:             "BOOLEAN",
	}
	for in, want := range cases {
		if got := MapType(in); got != want {
			t.Errorf("MapType(%+v) = %q, want %q", in, got, want)
		}
	}
}

func TestQuoteIdent(t *testing.T) {
	t.Parallel()

	if got := QuoteIdent(`we"ird`); got != `"we""ird"` {
		t.Fatalf("QuoteIdent = %s", got)
	}
}
