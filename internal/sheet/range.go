// Package sheet moves tables in and out of spreadsheet files: reading a
// rectangular range from an xlsx workbook or a CSV file, writing tables back
// as CSV, and rendering the formatted order-list workbook.
package sheet

import (
	"math"
	"strconv"
	"strings"

	"github.com/JonMunkholm/OrderSheet/internal/table"
)

// Range is a raw rectangular block read from a sheet: one header row and the
// data rows below it, every data row as wide as the header.
type Range struct {
	Header []table.Cell
	Rows   [][]table.Cell
}

// Table builds a table from the range keyed on idColumn.
func (r Range) Table(idColumn string) (*table.Table, error) {
	return table.FromRange(r.Header, r.Rows, idColumn)
}

// Columns returns the header as text.
func (r Range) Columns() []string {
	out := make([]string, len(r.Header))
	for i, h := range r.Header {
		out[i] = h.String()
	}
	return out
}

// newRange shapes raw sheet rows into a Range. The first row holding any
// non-blank value is the header; blank cells at the end of the header are
// trimmed. Data rows are cut or padded to the header width and rows that are
// entirely blank are skipped.
func newRange(raw [][]string) Range {
	start := -1
	for i, row := range raw {
		if !isBlankRow(row) {
			start = i
			break
		}
	}
	if start < 0 {
		return Range{}
	}

	headerRow := raw[start]
	width := len(headerRow)
	for width > 0 && strings.TrimSpace(headerRow[width-1]) == "" {
		width--
	}
	header := make([]table.Cell, width)
	for i := 0; i < width; i++ {
		header[i] = table.Text(cleanHeader(headerRow[i]))
	}

	rows := make([][]table.Cell, 0, len(raw)-start-1)
	for _, row := range raw[start+1:] {
		if len(row) > width {
			row = row[:width]
		}
		if isBlankRow(row) {
			continue
		}
		cells := make([]table.Cell, width)
		for j, v := range row {
			cells[j] = ParseCell(v)
		}
		rows = append(rows, cells)
	}

	return Range{Header: header, Rows: rows}
}

func isBlankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// cleanHeader trims whitespace and a stray byte order mark.
func cleanHeader(s string) string {
	return strings.TrimSpace(strings.TrimPrefix(s, "\ufeff"))
}

// ParseCell turns raw text from a sheet into a typed cell:
//
//   - blank text becomes Empty
//   - TRUE and FALSE become Bool
//   - plain integers and decimals become Int or Float
//   - everything else, including numbers with leading zeros such as EAN or
//     item codes, stays Text
func ParseCell(s string) table.Cell {
	if strings.TrimSpace(s) == "" {
		return table.Empty()
	}
	switch s {
	case "TRUE":
		return table.Bool(true)
	case "FALSE":
		return table.Bool(false)
	}
	if !looksNumeric(s) {
		return table.Text(s)
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return table.Int(n)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsInf(f, 0) {
		return table.Float(f)
	}
	return table.Text(s)
}

// looksNumeric reports whether s is written the way a spreadsheet stores a
// number: optional sign, digits, optional fraction and exponent, and no
// leading zero that would be lost on conversion.
func looksNumeric(s string) bool {
	digits := strings.TrimPrefix(s, "-")
	if digits == "" || digits[0] < '0' || digits[0] > '9' {
		return false
	}
	if len(digits) > 1 && digits[0] == '0' && digits[1] != '.' {
		return false
	}
	for _, r := range digits {
		switch {
		case r >= '0' && r <= '9':
		case r == '.', r == 'e', r == 'E', r == '+', r == '-':
		default:
			return false
		}
	}
	return true
}
