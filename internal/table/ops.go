package table

import "fmt"

// Select projects t onto names, in the order given. Names that are not
// columns of t are skipped, and a name listed twice is emitted once. The
// identifier column name is kept even if it is projected away.
func (t *Table) Select(names ...string) *Table {
	cols := make([]string, 0, len(names))
	positions := make([]int, 0, len(names))
	index := make(map[string]int, len(names))
	for _, name := range names {
		if _, seen := index[name]; seen {
			continue
		}
		pos, ok := t.index[name]
		if !ok {
			continue
		}
		index[name] = len(cols)
		cols = append(cols, name)
		positions = append(positions, pos)
	}

	rows := make([][]Cell, len(t.rows))
	for i, src := range t.rows {
		row := make([]Cell, len(positions))
		for j, pos := range positions {
			row[j] = src[pos]
		}
		rows[i] = row
	}

	return &Table{columns: cols, rows: rows, id: t.id, index: index}
}

// Drop removes the named columns. Unknown names are ignored.
func (t *Table) Drop(names ...string) *Table {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[n] = true
	}
	keep := make([]string, 0, len(t.columns))
	for _, c := range t.columns {
		if !drop[c] {
			keep = append(keep, c)
		}
	}
	if len(keep) == len(t.columns) {
		return t
	}
	return t.Select(keep...)
}

// Rename renames every column whose current name is a key of mapping.
// Keys that match no column are ignored. Column order and data are kept, and
// the identifier column follows its column's new name.
//
// A rename that would leave two columns with the same name fails with
// ErrSchemaViolation.
func (t *Table) Rename(mapping map[string]string) (*Table, error) {
	cols := make([]string, len(t.columns))
	for i, name := range t.columns {
		if to, ok := mapping[name]; ok {
			cols[i] = to
		} else {
			cols[i] = name
		}
	}

	index, err := buildIndex(cols)
	if err != nil {
		return nil, fmt.Errorf("rename: %w", err)
	}

	id := t.id
	if to, ok := mapping[id]; ok && t.Has(id) {
		id = to
	}
	return &Table{columns: cols, rows: t.rows, id: id, index: index}, nil
}

// ColumnSpec describes a column to append. A nil Compute yields an empty
// column.
type ColumnSpec struct {
	Name    string
	Compute func(Row) (Cell, error)
}

// EmptyColumn returns a spec for a column with no values.
func EmptyColumn(name string) ColumnSpec {
	return ColumnSpec{Name: name}
}

// Append adds columns after the existing ones, in the order given.
// Compute sees the source row only, never cells appended in the same call.
// A name clash fails with ErrSchemaViolation and a Compute error aborts the
// whole call.
func (t *Table) Append(specs ...ColumnSpec) (*Table, error) {
	if len(specs) == 0 {
		return t, nil
	}

	cols := make([]string, 0, len(t.columns)+len(specs))
	cols = append(cols, t.columns...)
	for _, s := range specs {
		cols = append(cols, s.Name)
	}
	index, err := buildIndex(cols)
	if err != nil {
		return nil, fmt.Errorf("append: %w", err)
	}

	width := len(t.columns)
	rows := make([][]Cell, len(t.rows))
	for i, src := range t.rows {
		row := make([]Cell, len(cols))
		copy(row, src)
		view := Row{t: t, pos: i}
		for j, s := range specs {
			if s.Compute == nil {
				continue
			}
			c, err := s.Compute(view)
			if err != nil {
				return nil, fmt.Errorf("compute %q: %w", s.Name, err)
			}
			row[width+j] = c
		}
		rows[i] = row
	}

	return &Table{columns: cols, rows: rows, id: t.id, index: index}, nil
}

// Predicate decides whether a row is kept by Filter.
type Predicate func(Row) (bool, error)

// Filter keeps the rows for which keep returns true, in their original
// order. A predicate error aborts the call.
func (t *Table) Filter(keep Predicate) (*Table, error) {
	rows := make([][]Cell, 0, len(t.rows))
	for i, r := range t.rows {
		ok, err := keep(Row{t: t, pos: i})
		if err != nil {
			return nil, fmt.Errorf("filter: %w", err)
		}
		if ok {
			rows = append(rows, r)
		}
	}
	return t.derive(rows), nil
}
