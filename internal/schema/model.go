// Package schema defines the star schema produced by the pipeline: the five
// output tables, their column order, logical column types, primary keys and
// the foreign key from fact_orders to dim_customers.
//
// Column order here is the contract between the transformation engine, the
// flat-file writer and the relational loader.
package schema

// Kind is a logical column type, mapped to a SQL type by each storage dialect.
type Kind string

const (
	KindString    Kind = "string"    // VARCHAR(Size)
	KindInt       Kind = "int"       // INT
	KindDecimal   Kind = "decimal"   // DECIMAL(10,2)
	KindTimestamp Kind = "timestamp" // DATETIME
	KindBool      Kind = "bool"      // TINYINT(1) / BOOLEAN
)

// Column describes one output column.
type Column struct {
	Name string
	Kind Kind
	Size int // for KindString
}

// ForeignKey links Columns of the owning table to RefColumns of RefTable.
type ForeignKey struct {
	Columns    []string
	RefTable   string
	RefColumns []string
}

// Table describes one output table.
type Table struct {
	Name        string
	Columns     []Column
	PrimaryKey  []string
	ForeignKeys []ForeignKey
}

// ColumnNames returns the column names in output order.
func (t Table) ColumnNames() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Name
	}
	return out
}

// Output table names.
const (
	DimCustomersName   = "dim_customers"
	DimProductsName    = "dim_products"
	DimSellersName     = "dim_sellers"
	FactOrdersName     = "fact_orders"
	FactOrderItemsName = "fact_order_items"
)

func str(name string, size int) Column { return Column{Name: name, Kind: KindString, Size: size} }
func col(name string, k Kind) Column   { return Column{Name: name, Kind: k} }

var (
	DimCustomers = Table{
		Name: DimCustomersName,
		Columns: []Column{
			str("customer_id", 50),
			str("customer_unique_id", 50),
			str("customer_city", 50),
			str("customer_state", 10),
		},
		PrimaryKey: []string{"customer_id"},
	}

	DimProducts = Table{
		Name: DimProductsName,
		Columns: []Column{
			str("product_id", 50),
			str("product_category_name", 100),
			col("product_weight_g", KindInt),
			col("product_length_cm", KindInt),
			col("product_height_cm", KindInt),
			col("product_width_cm", KindInt),
		},
		PrimaryKey: []string{"product_id"},
	}

	DimSellers = Table{
		Name: DimSellersName,
		Columns: []Column{
			str("seller_id", 50),
			str("seller_city", 50),
			str("seller_state", 10),
		},
		PrimaryKey: []string{"seller_id"},
	}

	FactOrders = Table{
		Name: FactOrdersName,
		Columns: []Column{
			str("order_id", 50),
			str("customer_id", 50),
			col("order_purchase_timestamp", KindTimestamp),
			col("order_delivered_customer_date", KindTimestamp),
			col("order_estimated_delivery_date", KindTimestamp),
			col("total_items", KindInt),
			col("total_product_value", KindDecimal),
			col("total_freight_value", KindDecimal),
			col("total_order_value", KindDecimal),
			col("payment_value", KindDecimal),
			col("review_score", KindInt),
			col("is_late_delivery", KindBool),
			col("bad_review_flag", KindBool),
			col("payment_mismatch", KindBool),
		},
		PrimaryKey: []string{"order_id"},
		ForeignKeys: []ForeignKey{{
			Columns:    []string{"customer_id"},
			RefTable:   DimCustomersName,
			RefColumns: []string{"customer_id"},
		}},
	}

	// FactOrderItems has no primary key; its grain is (order_id, order_item_id)
	// but the store does not enforce it.
	FactOrderItems = Table{
		Name: FactOrderItemsName,
		Columns: []Column{
			str("order_id", 50),
			col("order_item_id", KindInt),
			str("customer_id", 50),
			str("product_id", 50),
			str("seller_id", 50),
			col("price", KindDecimal),
			col("freight_value", KindDecimal),
			col("total_item_value", KindDecimal),
			col("quantity", KindInt),
		},
	}
)

// Star lists every output table in load order: dimensions before facts, so
// that foreign keys resolve.
var Star = []Table{DimCustomers, DimProducts, DimSellers, FactOrders, FactOrderItems}

// Lookup returns the table definition for name.
func Lookup(name string) (Table, bool) {
	for _, t := range Star {
		if t.Name == name {
			return t, true
		}
	}
	return Table{}, false
}
