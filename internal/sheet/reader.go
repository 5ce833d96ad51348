package sheet

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var (
	// ErrUnsupportedFormat is returned for files that are neither xlsx
	// workbooks nor CSV text.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrSheetNotFound is returned when the requested worksheet does not exist.
	ErrSheetNotFound = errors.New("sheet not found")

	// ErrUnknownEncoding is returned for a CSV encoding name that is not
	// recognised.
	ErrUnknownEncoding = errors.New("unknown text encoding")
)

// Format is a supported input file format.
type Format int

const (
	FormatUnknown Format = iota
	FormatXLSX
	FormatCSV
)

func (f Format) String() string {
	switch f {
	case FormatXLSX:
		return "xlsx"
	case FormatCSV:
		return "csv"
	default:
		return "unknown"
	}
}

// DetectFormat picks the format from a file name's extension.
func DetectFormat(filename string) Format {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm", ".xltx", ".xltm":
		return FormatXLSX
	case ".csv", ".txt":
		return FormatCSV
	default:
		return FormatUnknown
	}
}

// Options control how a source file is read.
type Options struct {
	// Sheet names the worksheet to read. The first sheet is used when empty.
	// Ignored for CSV.
	Sheet string

	// Encoding is the CSV text encoding, e.g. "utf-8" or "windows-1250".
	// UTF-8 is assumed when empty. Ignored for workbooks.
	Encoding string

	// Comma is the CSV field delimiter. When zero it is detected from the
	// header line (semicolon or comma).
	Comma rune
}

// Read reads a range from r, choosing the format from filename.
func Read(r io.Reader, filename string, opts Options) (Range, error) {
	switch DetectFormat(filename) {
	case FormatXLSX:
		return ReadWorkbook(r, opts.Sheet)
	case FormatCSV:
		return ReadCSV(r, opts)
	default:
		return Range{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(filename))
	}
}

// ReadWorkbook reads the used range of one worksheet of an xlsx workbook.
// Numbers are read from their stored values, not their display format.
func ReadWorkbook(r io.Reader, sheet string) (Range, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return Range{}, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	name, err := resolveSheet(f, sheet)
	if err != nil {
		return Range{}, err
	}

	raw, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return Range{}, fmt.Errorf("read sheet %q: %w", name, err)
	}
	return newRange(raw), nil
}

func resolveSheet(f *excelize.File, sheet string) (string, error) {
	names := f.GetSheetList()
	if len(names) == 0 {
		return "", fmt.Errorf("%w: workbook has no sheets", ErrSheetNotFound)
	}
	if sheet == "" {
		return names[0], nil
	}
	for _, n := range names {
		if n == sheet {
			return n, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrSheetNotFound, sheet)
}

// ReadCSV reads delimited text. The input is decoded with opts.Encoding; a
// UTF-8 byte order mark is stripped and invalid UTF-8 is replaced.
func ReadCSV(r io.Reader, opts Options) (Range, error) {
	dec, err := lookupEncoding(opts.Encoding)
	if err != nil {
		return Range{}, err
	}

	data, err := io.ReadAll(transform.NewReader(r, dec.NewDecoder()))
	if err != nil {
		return Range{}, fmt.Errorf("decode csv: %w", err)
	}

	cr := csv.NewReader(bytes.NewReader(data))
	cr.Comma = opts.Comma
	if cr.Comma == 0 {
		cr.Comma = detectComma(data)
	}
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	raw, err := cr.ReadAll()
	if err != nil {
		return Range{}, fmt.Errorf("parse csv: %w", err)
	}
	return newRange(raw), nil
}

// lookupEncoding resolves an encoding label. UTF-8 input has any byte order
// mark removed.
func lookupEncoding(name string) (encoding.Encoding, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.EqualFold(name, "utf-8") || strings.EqualFold(name, "utf8") {
		return bomStripping{}, nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, name)
	}
	if enc == unicode.UTF8 {
		return bomStripping{}, nil
	}
	return enc, nil
}

// bomStripping decodes UTF-8, dropping a leading byte order mark.
type bomStripping struct{}

func (bomStripping) NewDecoder() *encoding.Decoder {
	return &encoding.Decoder{Transformer: unicode.BOMOverride(unicode.UTF8.NewDecoder())}
}

func (bomStripping) NewEncoder() *encoding.Encoder {
	return unicode.UTF8.NewEncoder()
}

// detectComma guesses the delimiter from the first line. Spreadsheet
// exports in locales with a decimal comma use semicolons.
func detectComma(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	if bytes.Count(line, []byte{';'}) > bytes.Count(line, []byte{','}) {
		return ';'
	}
	if bytes.Count(line, []byte{'\t'}) > bytes.Count(line, []byte{','}) {
		return '\t'
	}
	return ','
}

// SheetInfo describes one worksheet for picking a table and its identifier
// column.
type SheetInfo struct {
	Name    string   `json:"name"`
	Columns []string `json:"columns"`
	Rows    int      `json:"rows"`
}

// ListSheets returns every worksheet of a workbook with its header columns.
// A CSV file is reported as a single sheet named after the file.
func ListSheets(r io.Reader, filename string, opts Options) ([]SheetInfo, error) {
	switch DetectFormat(filename) {
	case FormatCSV:
		rng, err := ReadCSV(r, opts)
		if err != nil {
			return nil, err
		}
		base := filepath.Base(filename)
		name := strings.TrimSuffix(base, filepath.Ext(base))
		return []SheetInfo{{Name: name, Columns: rng.Columns(), Rows: len(rng.Rows)}}, nil

	case FormatXLSX:
		f, err := excelize.OpenReader(r)
		if err != nil {
			return nil, fmt.Errorf("open workbook: %w", err)
		}
		defer f.Close()

		var out []SheetInfo
		for _, name := range f.GetSheetList() {
			raw, err := f.GetRows(name, excelize.Options{RawCellValue: true})
			if err != nil {
				return nil, fmt.Errorf("read sheet %q: %w", name, err)
			}
			rng := newRange(raw)
			out = append(out, SheetInfo{Name: name, Columns: rng.Columns(), Rows: len(rng.Rows)})
		}
		return out, nil

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(filename))
	}
}
