// Package order implements the order-list workflow on top of package table:
// the header translation map, the display schema, the computed availability
// column and the unavailable-product filter.
package order

import "maps"

// Display column names. Source spreadsheets use Czech headers; they are
// translated to these names before columns are inserted or filtered.
const (
	ColImage           = "Image"
	ColItemCode        = "Item code"
	ColName            = "Name"
	ColEAN             = "EAN"
	ColCategory        = "Category"
	ColTheme           = "Theme"
	ColPrice           = "Price"
	ColInStock         = "In stock"
	ColWillBeAvailable = "Will be available"
	ColStockStatus     = "Stock status"
	ColOrder           = "Order"
	ColNoteForStock    = "Note for stock"

	ColStockComing  = "Stock coming"
	ColOrdered      = "Ordered"
	ColDelivered    = "Delivered"
	ColNote         = "Note"
	ColManufacturer = "Manufacturer"
)

// DefaultIDColumn is the identifier header shared by both source
// spreadsheets, before translation.
const DefaultIDColumn = "Kód"

// Substrings of the stock status text checked by the availability filter.
const (
	StatusDiscontinued = "ukončeno"
	StatusSellOff      = "doprodej"
	StatusPOS          = "POS"
)

// defaultTranslations maps source headers to display names. It covers both
// the order list and the catalog export, so most keys are absent from any
// single table.
var defaultTranslations = map[string]string{
	"Kód":         ColItemCode,
	"Název":       ColName,
	"EAN":         ColEAN,
	"Cena":        ColPrice,
	"Skladem":     ColInStock,
	"Naskladnění": ColStockComing,
	"Objednáno":   ColOrdered,
	"Dodáno":      ColDelivered,
	"Stav":        ColStockStatus,
	"Poznámka":    ColNote,
	"Kategorie":   ColCategory,
	"Výrobce":     ColManufacturer,
	"Téma":        ColTheme,
	"Bude bude":   ColWillBeAvailable,
}

var defaultDisplayColumns = []string{
	ColImage,
	ColItemCode,
	ColName,
	ColEAN,
	ColCategory,
	ColTheme,
	ColPrice,
	ColInStock,
	ColWillBeAvailable,
	ColStockStatus,
	ColOrder,
	ColNoteForStock,
}

var defaultEmptyColumns = []string{ColImage, ColOrder, ColNoteForStock, ColTheme}

// DefaultTranslations returns a copy of the built-in header translation map.
func DefaultTranslations() map[string]string {
	return maps.Clone(defaultTranslations)
}

// DefaultDisplayColumns returns the built-in display schema.
func DefaultDisplayColumns() []string {
	return append([]string(nil), defaultDisplayColumns...)
}

// DefaultEmptyColumns returns the columns inserted without values.
func DefaultEmptyColumns() []string {
	return append([]string(nil), defaultEmptyColumns...)
}

// Workflow holds the tunable parts of an order-list build.
type Workflow struct {
	// Translations renames source headers to display names.
	Translations map[string]string

	// DisplayColumns is the final column order. Columns the data lacks are
	// skipped.
	DisplayColumns []string

	// EmptyColumns are appended without values for the user to fill in.
	EmptyColumns []string
}

// DefaultWorkflow returns the built-in workflow.
func DefaultWorkflow() Workflow {
	return Workflow{
		Translations:   DefaultTranslations(),
		DisplayColumns: DefaultDisplayColumns(),
		EmptyColumns:   DefaultEmptyColumns(),
	}
}
