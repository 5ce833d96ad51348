package table

import (
	"errors"
	"log/slog"
)

// Join performs an inner equi-join of t (left) and right on their
// identifier columns under Cell.Equal.
//
// Output rows are ordered by left row, then by right row, and a left row
// matching several right rows appears once per match. Each output row is the
// left row followed by the right cells whose column names do not already
// appear on the left, so shared names (the right identifier included) are
// taken from the left only. The result keeps the left identifier column.
//
// Blank identifiers never match.
func (t *Table) Join(right *Table) (*Table, error) {
	if right == nil {
		return nil, errors.New("join: right table is nil")
	}

	leftID, err := t.idIndex("join")
	if err != nil {
		return nil, err
	}
	rightID, err := right.idIndex("join")
	if err != nil {
		return nil, err
	}

	columns := make([]string, 0, len(t.columns)+len(right.columns))
	columns = append(columns, t.columns...)
	keep := make([]int, 0, len(right.columns))
	for i, name := range right.columns {
		if _, shared := t.index[name]; shared {
			continue
		}
		keep = append(keep, i)
		columns = append(columns, name)
	}

	slog.Debug("building join index",
		"left_rows", len(t.rows),
		"right_rows", len(right.rows),
		"left_id", t.id,
		"right_id", right.id,
	)
	matches := buildJoinIndex(right, rightID)

	var rows [][]Cell
	for _, l := range t.rows {
		key, ok := l[leftID].key()
		if !ok {
			continue
		}
		for _, pos := range matches[key] {
			r := right.rows[pos]
			joined := make([]Cell, 0, len(columns))
			joined = append(joined, l...)
			for _, i := range keep {
				joined = append(joined, r[i])
			}
			rows = append(rows, joined)
		}
	}

	slog.Debug("join complete", "result_rows", len(rows), "result_columns", len(columns))

	index, err := buildIndex(columns)
	if err != nil {
		return nil, err
	}
	return &Table{columns: columns, rows: rows, id: t.id, index: index}, nil
}

// buildJoinIndex maps each identifier key of t to the positions of the rows
// carrying it, in row order. Rows with blank identifiers are left out.
func buildJoinIndex(t *Table, idPos int) map[string][]int {
	index := make(map[string][]int, len(t.rows))
	for i, r := range t.rows {
		key, ok := r[idPos].key()
		if !ok {
			continue
		}
		index[key] = append(index[key], i)
	}
	return index
}
