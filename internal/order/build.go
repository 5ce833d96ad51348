package order

import (
	"fmt"
	"log/slog"

	"github.com/JonMunkholm/OrderSheet/internal/table"
)

// Stats counts rows at each stage of a build.
type Stats struct {
	OrderRows   int // rows in the order list
	CatalogRows int // rows in the catalog
	Joined      int // rows after the join
	Removed     int // rows dropped as unavailable
	Output      int // rows in the result
}

// Build runs the default workflow. See Workflow.Build.
func Build(orders, catalog *table.Table) (*table.Table, Stats, error) {
	return DefaultWorkflow().Build(orders, catalog)
}

// Build turns an order list and a catalog into the display table:
// join on the identifier columns, translate headers, insert the empty and
// computed columns, drop unavailable products and project to the display
// schema.
func (w Workflow) Build(orders, catalog *table.Table) (*table.Table, Stats, error) {
	stats := Stats{OrderRows: orders.Len(), CatalogRows: catalog.Len()}

	joined, err := orders.Join(catalog)
	if err != nil {
		return nil, stats, fmt.Errorf("join order list with catalog: %w", err)
	}
	stats.Joined = joined.Len()

	renamed, err := joined.Rename(w.Translations)
	if err != nil {
		return nil, stats, fmt.Errorf("translate headers: %w", err)
	}

	inserted, err := InsertColumnsWith(renamed, w.EmptyColumns)
	if err != nil {
		return nil, stats, err
	}

	available, err := RemoveUnavailableProducts(inserted)
	if err != nil {
		return nil, stats, fmt.Errorf("remove unavailable products: %w", err)
	}
	stats.Removed = inserted.Len() - available.Len()

	out := available.Select(w.DisplayColumns...)
	stats.Output = out.Len()

	slog.Debug("order list built",
		"order_rows", stats.OrderRows,
		"catalog_rows", stats.CatalogRows,
		"joined", stats.Joined,
		"removed", stats.Removed,
		"output", stats.Output,
		"columns", out.Width(),
	)
	return out, stats, nil
}
