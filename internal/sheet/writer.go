package sheet

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/JonMunkholm/OrderSheet/internal/table"
)

// utf8BOM lets spreadsheet applications detect UTF-8 in CSV files.
const utf8BOM = "\ufeff"

// WriteCSV writes t as comma separated UTF-8 text: a header line followed by
// one line per row, cells in their text form.
func WriteCSV(w io.Writer, t *table.Table) error {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns()); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	record := make([]string, t.Width())
	for i := 0; i < t.Len(); i++ {
		for j, c := range t.Row(i).Cells() {
			record[j] = c.String()
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row %d: %w", i, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}
