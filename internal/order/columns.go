package order

import (
	"fmt"

	"github.com/JonMunkholm/OrderSheet/internal/table"
)

// InsertColumns appends the default empty columns and the computed
// "Will be available" column. See InsertColumnsWith.
func InsertColumns(t *table.Table) (*table.Table, error) {
	return InsertColumnsWith(t, defaultEmptyColumns)
}

// InsertColumnsWith appends one empty column per name in empty, skipping
// names the table already has, followed by the computed "Will be available"
// column, which always comes last. An existing "Will be available" column is
// replaced by the recomputed one.
func InsertColumnsWith(t *table.Table, empty []string) (*table.Table, error) {
	t = t.Drop(ColWillBeAvailable)

	specs := make([]table.ColumnSpec, 0, len(empty)+1)
	seen := make(map[string]bool, len(empty))
	for _, name := range empty {
		if name == ColWillBeAvailable || seen[name] || t.Has(name) {
			continue
		}
		seen[name] = true
		specs = append(specs, table.EmptyColumn(name))
	}
	specs = append(specs, table.ColumnSpec{Name: ColWillBeAvailable, Compute: WillBeAvailable})

	out, err := t.Append(specs...)
	if err != nil {
		return nil, fmt.Errorf("insert columns: %w", err)
	}
	return out, nil
}

// WillBeAvailable computes stock coming + ordered - delivered for a row.
// Blank quantities count as zero.
func WillBeAvailable(r table.Row) (table.Cell, error) {
	coming, err := r.Int(ColStockComing)
	if err != nil {
		return table.Cell{}, err
	}
	ordered, err := r.Int(ColOrdered)
	if err != nil {
		return table.Cell{}, err
	}
	delivered, err := r.Int(ColDelivered)
	if err != nil {
		return table.Cell{}, err
	}
	return table.Int(coming + ordered - delivered), nil
}
