package sheet

import (
	"fmt"
	"io"
	"log/slog"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/OrderSheet/internal/table"
)

// ImageSource finds the image file for an item identifier.
type ImageSource interface {
	Resolve(itemID string) (path string, ok bool)
}

// Layout names the columns the renderer treats specially.
type Layout struct {
	Sheet        string   // worksheet name
	ImageColumn  string   // column that receives embedded pictures
	KeyColumn    string   // column whose text is looked up in the ImageSource
	InputColumns []string // highlighted columns the user fills in
}

// Excel number format ids.
const (
	numFmtInteger = 1 // 0
	numFmtDecimal = 4 // #,##0.00
)

const (
	minColumnWidth  = 8.0
	maxColumnWidth  = 50.0
	imageColumnCols = 14.0
	imageRowHeight  = 60.0
	headerRowHeight = 30.0
)

// Renderer turns a table into a formatted workbook.
type Renderer struct {
	layout Layout
	images ImageSource
}

// NewRenderer creates a renderer. images may be nil, in which case no
// pictures are embedded.
func NewRenderer(layout Layout, images ImageSource) *Renderer {
	if layout.Sheet == "" {
		layout.Sheet = "Sheet1"
	}
	return &Renderer{layout: layout, images: images}
}

// RenderStats reports what the renderer did.
type RenderStats struct {
	Rows          int
	Images        int // pictures embedded
	MissingImages int // rows whose item had no picture
}

type styles struct {
	header, body, integer, decimal, input int
}

// Render builds the workbook for t. The caller must Close the returned file.
func (r *Renderer) Render(t *table.Table) (*excelize.File, RenderStats, error) {
	stats := RenderStats{Rows: t.Len()}

	f := excelize.NewFile()
	if err := r.render(f, t, &stats); err != nil {
		f.Close()
		return nil, stats, err
	}
	return f, stats, nil
}

// Write renders t and writes the workbook to w.
func (r *Renderer) Write(w io.Writer, t *table.Table) (RenderStats, error) {
	f, stats, err := r.Render(t)
	if err != nil {
		return stats, err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return stats, fmt.Errorf("write workbook: %w", err)
	}
	return stats, nil
}

func (r *Renderer) render(f *excelize.File, t *table.Table, stats *RenderStats) error {
	sheet := r.layout.Sheet
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	st, err := newStyles(f)
	if err != nil {
		return err
	}

	columns := t.Columns()
	header := make([]interface{}, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i := 0; i < t.Len(); i++ {
		cells := t.Row(i).Cells()
		values := make([]interface{}, len(cells))
		for j, c := range cells {
			values[j] = c.Value()
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}

	if len(columns) == 0 {
		return nil
	}

	if err := r.styleColumns(f, t, st); err != nil {
		return err
	}

	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freeze header: %w", err)
	}

	return r.embedImages(f, t, stats)
}

func newStyles(f *excelize.File) (styles, error) {
	border := []excelize.Border{
		{Type: "left", Color: "BFBFBF", Style: 1},
		{Type: "right", Color: "BFBFBF", Style: 1},
		{Type: "top", Color: "BFBFBF", Style: 1},
		{Type: "bottom", Color: "BFBFBF", Style: 1},
	}
	center := &excelize.Alignment{Vertical: "center", WrapText: true}

	var err error
	create := func(s *excelize.Style) int {
		if err != nil {
			return 0
		}
		id, e := f.NewStyle(s)
		if e != nil {
			err = fmt.Errorf("create style: %w", e)
		}
		return id
	}

	st := styles{
		header: create(&excelize.Style{
			Font:      &excelize.Font{Bold: true},
			Fill:      excelize.Fill{Type: "pattern", Color: []string{"D9E1F2"}, Pattern: 1},
			Border:    border,
			Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
		}),
		body:    create(&excelize.Style{Border: border, Alignment: center}),
		integer: create(&excelize.Style{Border: border, Alignment: center, NumFmt: numFmtInteger}),
		decimal: create(&excelize.Style{Border: border, Alignment: center, NumFmt: numFmtDecimal}),
		input: create(&excelize.Style{
			Border:    border,
			Alignment: center,
			Fill:      excelize.Fill{Type: "pattern", Color: []string{"FFF2CC"}, Pattern: 1},
		}),
	}
	return st, err
}

// styleColumns applies the header style, a body style chosen from each
// column's values, and widths sized to the longest text.
func (r *Renderer) styleColumns(f *excelize.File, t *table.Table, st styles) error {
	sheet := r.layout.Sheet
	columns := t.Columns()
	lastRow := t.Len() + 1

	input := make(map[string]bool, len(r.layout.InputColumns))
	for _, c := range r.layout.InputColumns {
		input[c] = true
	}

	for i, name := range columns {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, col+"1", col+"1", st.header); err != nil {
			return fmt.Errorf("style header %q: %w", name, err)
		}

		cells, _ := t.Column(name)
		if lastRow > 1 {
			style := numericStyle(cells, st)
			if input[name] {
				style = st.input
			}
			if err := f.SetCellStyle(sheet, col+"2", fmt.Sprintf("%s%d", col, lastRow), style); err != nil {
				return fmt.Errorf("style column %q: %w", name, err)
			}
		}

		width := columnWidth(name, cells)
		if name == r.layout.ImageColumn && r.images != nil {
			width = imageColumnCols
		}
		if err := f.SetColWidth(sheet, col, col, width); err != nil {
			return fmt.Errorf("size column %q: %w", name, err)
		}
	}

	return f.SetRowHeight(sheet, 1, headerRowHeight)
}

// numericStyle picks the integer or decimal format for columns holding only
// numbers (blanks allowed), and the plain body style otherwise.
func numericStyle(cells []table.Cell, st styles) int {
	style := st.body
	for _, c := range cells {
		switch c.Kind() {
		case table.KindEmpty:
		case table.KindInt:
			if style == st.body {
				style = st.integer
			}
		case table.KindFloat:
			style = st.decimal
		default:
			return st.body
		}
	}
	return style
}

func columnWidth(name string, cells []table.Cell) float64 {
	longest := utf8.RuneCountInString(name)
	for _, c := range cells {
		if n := utf8.RuneCountInString(c.String()); n > longest {
			longest = n
		}
	}
	w := float64(longest) + 2
	if w < minColumnWidth {
		return minColumnWidth
	}
	if w > maxColumnWidth {
		return maxColumnWidth
	}
	return w
}

// embedImages places each item's picture in the image column of its row.
// Items without a picture are counted and skipped; a picture excelize cannot
// read is logged and skipped.
func (r *Renderer) embedImages(f *excelize.File, t *table.Table, stats *RenderStats) error {
	if r.images == nil {
		return nil
	}
	imgPos, ok := t.Index(r.layout.ImageColumn)
	if !ok {
		return nil
	}
	if !t.Has(r.layout.KeyColumn) {
		return nil
	}

	sheet := r.layout.Sheet
	for i := 0; i < t.Len(); i++ {
		key, _ := t.Value(i, r.layout.KeyColumn)
		path, found := r.images.Resolve(key.String())
		if !found {
			stats.MissingImages++
			continue
		}

		cell, err := excelize.CoordinatesToCellName(imgPos+1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetRowHeight(sheet, i+2, imageRowHeight); err != nil {
			return fmt.Errorf("size row %d: %w", i+2, err)
		}
		if err := f.AddPicture(sheet, cell, path, &excelize.GraphicOptions{
			AutoFit:         true,
			LockAspectRatio: true,
			Positioning:     "oneCell",
		}); err != nil {
			slog.Warn("skipping unreadable image", "item", key.String(), "path", path, "error", err)
			stats.MissingImages++
			continue
		}
		stats.Images++
	}

	slog.Debug("images embedded", "embedded", stats.Images, "missing", stats.MissingImages)
	return nil
}
