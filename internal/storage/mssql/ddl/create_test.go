package ddl

import (
	"strings"
	"testing"

	"greencart/internal/schema"
)

func TestBuildCreateTableSQL_Guarded(t *testing.T) {
	t.Parallel()

	got, err := BuildCreateTableSQL(schema.DimCustomers)
	if err != nil {
		t.Fatalf("BuildCreateTableSQL: %v", err)
	}
	if !strings.HasPrefix(got, "IF OBJECT_ID(N'[dim_customers]', N'U') IS NULL\nBEGIN\nCREATE TABLE [dim_customers] (") {
		t.Fatalf("unexpected prefix:\n%s", got)
	}
	for _, want := range []string{
		"[customer_id] NVARCHAR(50) NOT NULL,",
		"[customer_state] NVARCHAR(10),",
		"PRIMARY KEY ([customer_id])",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in:\n%s", want, got)
		}
	}
	if !strings.HasSuffix(got, "\nEND") {
		t.Fatalf("missing END:\n%s", got)
	}
}

func TestBuildCreateTableSQL_ForeignKey(t *testing.T) {
	t.Parallel()

	got, err := BuildCreateTableSQL(schema.FactOrders)
	if err != nil {
		t.Fatalf("BuildCreateTableSQL: %v", err)
	}
	for _, want := range []string{
		"[order_purchase_timestamp] DATETIME2,",
		"[total_order_value] DECIMAL(10,2),",
		"[is_late_delivery] BIT,",
		"FOREIGN KEY ([customer_id]) REFERENCES [dim_customers] ([customer_id])",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in:\n%s", want, got)
		}
	}
}

func TestQuoteIdent(t *testing.T) {
	t.Parallel()

	if got := QuoteIdent("a]b"); got != "[a]]b]" {
		t.Fatalf("QuoteIdent = %s", got)
	}
	if got := MapType(schema.Column{Kind: schema.KindString}); got != "NVARCHAR(MAX)" {
		t.Fatalf("MapType(unsized) = %s", got)
	}
}
