package star

import (
	"fmt"

	"greencart/internal/schema"
	"greencart/internal/table"
	"greencart/internal/transformer/builtin"
)

// dimensionSources maps each dimension to the raw dataset it projects.
var dimensionSources = []struct {
	def    schema.Table
	source string
}{
	{schema.DimCustomers, CustomersDataset},
	{schema.DimProducts, ProductsDataset},
	{schema.DimSellers, SellersDataset},
}

// BuildDimensions projects and de-duplicates the customer, product and
// seller sources.
func BuildDimensions(raw table.Set) (table.Set, error) {
	out := make(table.Set, len(dimensionSources))
	for _, d := range dimensionSources {
		t, err := BuildDimension(raw[d.source], d.def)
		if err != nil {
			return nil, fmt.Errorf("build %s: %w", d.def.Name, err)
		}
		out[d.def.Name] = t
	}
	return out, nil
}

// BuildDimension selects def's columns from src and drops duplicate rows
// across that column subset, keeping the first. The primary key column must
// exist, even when src has no rows; other absent columns become null. An
// empty source yields an empty dimension.
func BuildDimension(src *table.Table, def schema.Table) (*table.Table, error) {
	if src == nil {
		return nil, fmt.Errorf("%w: source for %s", ErrMissingDataset, def.Name)
	}
	if err := src.Require(def.PrimaryKey...); err != nil {
		return nil, err
	}
	cols := def.ColumnNames()
	if src.Len() == 0 {
		return table.New(def.Name, cols...), nil
	}
	proj, err := src.Project(def.Name, cols, def.PrimaryKey...)
	if err != nil {
		return nil, err
	}
	return builtin.DeDup{Policy: "keep-first"}.Apply(proj)
}
