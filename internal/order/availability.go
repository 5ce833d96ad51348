package order

import (
	"strings"

	"github.com/JonMunkholm/OrderSheet/internal/table"
)

// IsUnavailable reports whether a product should be left off the order list:
// nothing is coming into stock and the status marks it discontinued or on
// sell-off. A status mentioning POS always keeps the product.
//
// Status matching is case-sensitive.
func IsUnavailable(r table.Row) (bool, error) {
	coming, err := r.Int(ColStockComing)
	if err != nil {
		return false, err
	}
	status, err := r.Text(ColStockStatus)
	if err != nil {
		return false, err
	}
	return unavailable(coming, status), nil
}

func unavailable(coming int64, status string) bool {
	if strings.Contains(status, StatusPOS) {
		return false
	}
	if coming != 0 {
		return false
	}
	return strings.Contains(status, StatusDiscontinued) || strings.Contains(status, StatusSellOff)
}

// RemoveUnavailableProducts drops every row for which IsUnavailable holds.
func RemoveUnavailableProducts(t *table.Table) (*table.Table, error) {
	return t.Filter(func(r table.Row) (bool, error) {
		drop, err := IsUnavailable(r)
		return !drop, err
	})
}
