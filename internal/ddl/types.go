package ddl

// ColumnDef describes a single column in a table definition. It uses simple,
// database-agnostic fields.
//
// Fields:
//   - Name: logical column name (unquoted; quoting happens at render time)
//   - SQLType: target SQL type (e.g., VARCHAR(50), DECIMAL(10,2))
//   - Nullable: whether NULL is allowed
//   - PrimaryKey: whether the column is part of the primary key
//   - Default: raw default expression (e.g., 'anon', CURRENT_TIMESTAMP)
type ColumnDef struct {
	Name       string
	SQLType    string
	Nullable   bool
	PrimaryKey bool
	Default    string
}

// ForeignKeyDef references RefColumns of RefTable from Columns.
type ForeignKeyDef struct {
	Columns    []string
	RefTable   string
	RefColumns []string
}

// TableDef holds the table name (optionally schema-qualified, e.g.
// "analytics.fact_orders"), an ordered list of columns and any foreign keys.
type TableDef struct {
	FQN         string
	Columns     []ColumnDef
	ForeignKeys []ForeignKeyDef
}
