package table

import "fmt"

// Table is an immutable relation: ordered unique columns, rows aligned to
// them, and the name of the identifier column used by Join.
type Table struct {
	columns []string
	rows    [][]Cell
	id      string
	index   map[string]int
}

// New builds a table from column names and rows. Inputs are copied.
// It fails with ErrSchemaViolation when a name repeats or a row length
// differs from the column count. idColumn may name a column that is not
// present; that only fails once an identifier-dependent operator runs.
func New(columns []string, rows [][]Cell, idColumn string) (*Table, error) {
	cols := append([]string(nil), columns...)
	index, err := buildIndex(cols)
	if err != nil {
		return nil, err
	}

	out := make([][]Cell, len(rows))
	for i, r := range rows {
		if len(r) != len(cols) {
			return nil, &SchemaError{
				Row:    i,
				Reason: fmt.Sprintf("has %d cells, expected %d", len(r), len(cols)),
			}
		}
		out[i] = append([]Cell(nil), r...)
	}

	return &Table{columns: cols, rows: out, id: idColumn, index: index}, nil
}

// MustNew is like New but panics on error. Intended for tests and fixed
// fixtures.
func MustNew(columns []string, rows [][]Cell, idColumn string) *Table {
	t, err := New(columns, rows, idColumn)
	if err != nil {
		panic(err)
	}
	return t
}

// FromRange builds a table from a raw spreadsheet range: the header cells
// are coerced to text to become column names. An empty header yields a
// table with no columns and no rows, whatever the data rows hold.
func FromRange(header []Cell, rows [][]Cell, idColumn string) (*Table, error) {
	if len(header) == 0 {
		return &Table{id: idColumn, index: map[string]int{}}, nil
	}
	cols := make([]string, len(header))
	for i, h := range header {
		cols[i] = h.String()
	}
	return New(cols, rows, idColumn)
}

// buildIndex maps each column name to its position.
func buildIndex(columns []string) (map[string]int, error) {
	index := make(map[string]int, len(columns))
	for i, name := range columns {
		if _, dup := index[name]; dup {
			return nil, duplicateColumn(name)
		}
		index[name] = i
	}
	return index, nil
}

// derive returns a table sharing t's schema with a new row set.
func (t *Table) derive(rows [][]Cell) *Table {
	return &Table{columns: t.columns, rows: rows, id: t.id, index: t.index}
}

// Columns returns a copy of the column names in order.
func (t *Table) Columns() []string {
	return append([]string(nil), t.columns...)
}

// IDColumn returns the name of the identifier column.
func (t *Table) IDColumn() string { return t.id }

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Width returns the number of columns.
func (t *Table) Width() int { return len(t.columns) }

// Index returns the position of the named column.
func (t *Table) Index(name string) (int, bool) {
	i, ok := t.index[name]
	return i, ok
}

// Has reports whether the named column exists.
func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Row returns a read-only view of row i. It panics if i is out of range.
func (t *Table) Row(i int) Row {
	if i < 0 || i >= len(t.rows) {
		panic(fmt.Sprintf("table: row %d out of range [0,%d)", i, len(t.rows)))
	}
	return Row{t: t, pos: i}
}

// Rows returns a deep copy of all rows.
func (t *Table) Rows() [][]Cell {
	out := make([][]Cell, len(t.rows))
	for i, r := range t.rows {
		out[i] = append([]Cell(nil), r...)
	}
	return out
}

// Column returns a copy of the named column's cells.
func (t *Table) Column(name string) ([]Cell, error) {
	pos, ok := t.index[name]
	if !ok {
		return nil, &ColumnError{Column: name}
	}
	out := make([]Cell, len(t.rows))
	for i, r := range t.rows {
		out[i] = r[pos]
	}
	return out, nil
}

// Value returns the cell at row i in the named column.
func (t *Table) Value(i int, name string) (Cell, error) {
	return t.Row(i).Get(name)
}

// idIndex resolves the identifier column for op.
func (t *Table) idIndex(op string) (int, error) {
	pos, ok := t.index[t.id]
	if !ok || t.id == "" {
		return 0, &ColumnError{Op: op, Column: t.id}
	}
	return pos, nil
}

// Row is a read-only view of one table row, addressed by column name.
type Row struct {
	t   *Table
	pos int
}

// Position returns the row's index within its table.
func (r Row) Position() int { return r.pos }

// Get returns the cell in the named column.
func (r Row) Get(name string) (Cell, error) {
	i, ok := r.t.index[name]
	if !ok {
		return Cell{}, &ColumnError{Column: name}
	}
	return r.t.rows[r.pos][i], nil
}

// Int reads the named column as an integer quantity (see Cell.Int).
// Coercion failures carry the column name and row position.
func (r Row) Int(name string) (int64, error) {
	c, err := r.Get(name)
	if err != nil {
		return 0, err
	}
	n, err := c.Int()
	if err != nil {
		return 0, &CoercionError{Column: name, Row: r.pos, Value: c, Want: "integer"}
	}
	return n, nil
}

// Text returns the text form of the named column.
func (r Row) Text(name string) (string, error) {
	c, err := r.Get(name)
	if err != nil {
		return "", err
	}
	return c.String(), nil
}

// Cells returns a copy of the row's cells in column order.
func (r Row) Cells() []Cell {
	return append([]Cell(nil), r.t.rows[r.pos]...)
}
