package table

import (
	"errors"
	"reflect"
	"testing"
)

func assertColumns(t *testing.T, tbl *Table, want ...string) {
	t.Helper()
	got := tbl.Columns()
	if len(got) != len(want) {
		t.Fatalf("columns = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("columns = %v, want %v", got, want)
		}
	}
}

func assertRows(t *testing.T, tbl *Table, want [][]Cell) {
	t.Helper()
	got := tbl.Rows()
	if len(got) != len(want) {
		t.Fatalf("row count = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if !reflect.DeepEqual(got[i], want[i]) {
			t.Errorf("row %d = %v, want %v", i, got[i], want[i])
		}
	}
}

// assertUnchanged fails when an operator has modified its source table.
// want is a snapshot taken with snapshot before the call.
func assertUnchanged(t *testing.T, tbl *Table, want tableSnapshot) {
	t.Helper()
	if got := snapshot(tbl); !reflect.DeepEqual(got, want) {
		t.Errorf("source modified:\n got %+v\nwant %+v", got, want)
	}
}

type tableSnapshot struct {
	columns []string
	rows    [][]Cell
	id      string
}

func snapshot(tbl *Table) tableSnapshot {
	return tableSnapshot{columns: tbl.Columns(), rows: tbl.Rows(), id: tbl.IDColumn()}
}

// assertSchema checks the invariants every table must hold.
func assertSchema(t *testing.T, tbl *Table) {
	t.Helper()
	seen := map[string]bool{}
	for _, c := range tbl.Columns() {
		if seen[c] {
			t.Fatalf("duplicate column %q", c)
		}
		seen[c] = true
	}
	for i, r := range tbl.Rows() {
		if len(r) != tbl.Width() {
			t.Fatalf("row %d has %d cells, want %d", i, len(r), tbl.Width())
		}
	}
}

func TestNew(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		tbl, err := New([]string{"Id", "Name"}, [][]Cell{Cells(1, "a"), Cells(2, "b")}, "Id")
		if err != nil {
			t.Fatalf("New() error: %v", err)
		}
		if tbl.Len() != 2 || tbl.Width() != 2 {
			t.Errorf("size = %dx%d, want 2x2", tbl.Len(), tbl.Width())
		}
		if tbl.IDColumn() != "Id" {
			t.Errorf("IDColumn() = %q", tbl.IDColumn())
		}
	})

	t.Run("ragged row", func(t *testing.T) {
		_, err := New([]string{"Id", "Name"}, [][]Cell{Cells(1, "a"), Cells(2)}, "Id")
		if !errors.Is(err, ErrSchemaViolation) {
			t.Fatalf("error = %v, want ErrSchemaViolation", err)
		}
		var se *SchemaError
		if !errors.As(err, &se) || se.Row != 1 {
			t.Errorf("expected SchemaError for row 1, got %v", err)
		}
	})

	t.Run("duplicate column", func(t *testing.T) {
		_, err := New([]string{"Id", "Id"}, nil, "Id")
		if !errors.Is(err, ErrSchemaViolation) {
			t.Fatalf("error = %v, want ErrSchemaViolation", err)
		}
	})

	t.Run("inputs are copied", func(t *testing.T) {
		cols := []string{"Id"}
		rows := [][]Cell{Cells(1)}
		tbl := MustNew(cols, rows, "Id")
		cols[0] = "X"
		rows[0][0] = Int(99)
		assertColumns(t, tbl, "Id")
		assertRows(t, tbl, [][]Cell{Cells(1)})
	})
}

func TestFromRange(t *testing.T) {
	t.Run("header coerced to text", func(t *testing.T) {
		tbl, err := FromRange(Cells("Id", 2024, true), [][]Cell{Cells(1, "x", false)}, "Id")
		if err != nil {
			t.Fatalf("FromRange() error: %v", err)
		}
		assertColumns(t, tbl, "Id", "2024", "TRUE")
	})

	t.Run("empty header drops data", func(t *testing.T) {
		tbl, err := FromRange(nil, [][]Cell{Cells(1, 2)}, "Id")
		if err != nil {
			t.Fatalf("FromRange() error: %v", err)
		}
		if tbl.Width() != 0 || tbl.Len() != 0 {
			t.Errorf("size = %dx%d, want 0x0", tbl.Len(), tbl.Width())
		}
	})

	t.Run("missing id is deferred", func(t *testing.T) {
		tbl, err := FromRange(Cells("Name"), [][]Cell{Cells("a")}, "Id")
		if err != nil {
			t.Fatalf("FromRange() error: %v", err)
		}
		if _, err := tbl.Join(tbl); !errors.Is(err, ErrColumnNotFound) {
			t.Errorf("Join() error = %v, want ErrColumnNotFound", err)
		}
	})
}

func TestSelect(t *testing.T) {
	tbl := MustNew([]string{"A", "B", "C"}, [][]Cell{Cells(1, 2, 3), Cells(4, 5, 6)}, "A")

	tests := []struct {
		name     string
		desired  []string
		wantCols []string
		wantRows [][]Cell
	}{
		{"reorder", []string{"C", "A"}, []string{"C", "A"}, [][]Cell{Cells(3, 1), Cells(6, 4)}},
		{"missing skipped", []string{"X", "B", "Y"}, []string{"B"}, [][]Cell{Cells(2), Cells(5)}},
		{"duplicates emitted once", []string{"B", "B", "A"}, []string{"B", "A"}, [][]Cell{Cells(2, 1), Cells(5, 4)}},
		{"nothing present", []string{"Z"}, []string{}, [][]Cell{{}, {}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tbl.Select(tt.desired...)
			assertColumns(t, got, tt.wantCols...)
			assertRows(t, got, tt.wantRows)
			assertSchema(t, got)
			if got.IDColumn() != "A" {
				t.Errorf("IDColumn() = %q, want A", got.IDColumn())
			}
		})
	}

	assertColumns(t, tbl, "A", "B", "C")
}

func TestDrop(t *testing.T) {
	tbl := MustNew([]string{"A", "B", "C"}, [][]Cell{Cells(1, 2, 3)}, "A")

	got := tbl.Drop("B", "missing")
	assertColumns(t, got, "A", "C")
	assertRows(t, got, [][]Cell{Cells(1, 3)})

	if same := tbl.Drop("missing"); same.Width() != 3 {
		t.Errorf("Drop(unknown) width = %d, want 3", same.Width())
	}
}

func TestRename(t *testing.T) {
	tbl := MustNew([]string{"Kód", "Název", "Cena"}, [][]Cell{Cells("A1", "Lamp", 10.5)}, "Kód")

	t.Run("renames known and ignores unknown", func(t *testing.T) {
		got, err := tbl.Rename(map[string]string{
			"Kód":     "Item code",
			"Název":   "Name",
			"Neznámý": "Unknown",
		})
		if err != nil {
			t.Fatalf("Rename() error: %v", err)
		}
		assertColumns(t, got, "Item code", "Name", "Cena")
		assertRows(t, got, [][]Cell{Cells("A1", "Lamp", 10.5)})
		if got.IDColumn() != "Item code" {
			t.Errorf("IDColumn() = %q, want Item code", got.IDColumn())
		}
		assertColumns(t, tbl, "Kód", "Název", "Cena")
	})

	t.Run("empty mapping", func(t *testing.T) {
		got, err := tbl.Rename(nil)
		if err != nil {
			t.Fatalf("Rename() error: %v", err)
		}
		assertColumns(t, got, "Kód", "Název", "Cena")
	})

	t.Run("collision", func(t *testing.T) {
		_, err := tbl.Rename(map[string]string{"Název": "Cena"})
		if !errors.Is(err, ErrSchemaViolation) {
			t.Fatalf("error = %v, want ErrSchemaViolation", err)
		}
	})

	t.Run("swap", func(t *testing.T) {
		got, err := tbl.Rename(map[string]string{"Název": "Cena", "Cena": "Název"})
		if err != nil {
			t.Fatalf("Rename() error: %v", err)
		}
		assertColumns(t, got, "Kód", "Cena", "Název")
	})
}

func TestAppend(t *testing.T) {
	tbl := MustNew([]string{"Id", "Qty"}, [][]Cell{Cells(1, 3), Cells(2, "4")}, "Id")

	t.Run("empty and computed", func(t *testing.T) {
		got, err := tbl.Append(
			EmptyColumn("Note"),
			ColumnSpec{Name: "Double", Compute: func(r Row) (Cell, error) {
				n, err := r.Int("Qty")
				if err != nil {
					return Cell{}, err
				}
				return Int(n * 2), nil
			}},
		)
		if err != nil {
			t.Fatalf("Append() error: %v", err)
		}
		assertColumns(t, got, "Id", "Qty", "Note", "Double")
		assertRows(t, got, [][]Cell{
			{Int(1), Int(3), Empty(), Int(6)},
			{Int(2), Text("4"), Empty(), Int(8)},
		})
		assertSchema(t, got)
		assertColumns(t, tbl, "Id", "Qty")
	})

	t.Run("duplicate name", func(t *testing.T) {
		_, err := tbl.Append(EmptyColumn("Qty"))
		if !errors.Is(err, ErrSchemaViolation) {
			t.Fatalf("error = %v, want ErrSchemaViolation", err)
		}
	})

	t.Run("compute cannot see appended cells", func(t *testing.T) {
		_, err := tbl.Append(
			EmptyColumn("First"),
			ColumnSpec{Name: "Second", Compute: func(r Row) (Cell, error) {
				return r.Get("First")
			}},
		)
		if !errors.Is(err, ErrColumnNotFound) {
			t.Fatalf("error = %v, want ErrColumnNotFound", err)
		}
	})

	t.Run("coercion failure aborts", func(t *testing.T) {
		bad := MustNew([]string{"Qty"}, [][]Cell{Cells("many")}, "")
		got, err := bad.Append(ColumnSpec{Name: "N", Compute: func(r Row) (Cell, error) {
			n, err := r.Int("Qty")
			return Int(n), err
		}})
		if got != nil {
			t.Error("expected nil table on failure")
		}
		var ce *CoercionError
		if !errors.As(err, &ce) {
			t.Fatalf("error = %v, want *CoercionError", err)
		}
		if ce.Column != "Qty" || ce.Row != 0 {
			t.Errorf("coercion error at %q row %d, want Qty row 0", ce.Column, ce.Row)
		}
	})
}

func TestFilter(t *testing.T) {
	tbl := MustNew([]string{"Id", "Qty"}, [][]Cell{Cells(1, 0), Cells(2, 5), Cells(3, 1)}, "Id")

	got, err := tbl.Filter(func(r Row) (bool, error) {
		n, err := r.Int("Qty")
		return n > 0, err
	})
	if err != nil {
		t.Fatalf("Filter() error: %v", err)
	}
	assertRows(t, got, [][]Cell{Cells(2, 5), Cells(3, 1)})
	if tbl.Len() != 3 {
		t.Errorf("source modified: len = %d", tbl.Len())
	}

	_, err = tbl.Filter(func(r Row) (bool, error) {
		_, err := r.Get("Missing")
		return false, err
	})
	if !errors.Is(err, ErrColumnNotFound) {
		t.Errorf("error = %v, want ErrColumnNotFound", err)
	}
}

func TestOperatorsLeaveSourceUnchanged(t *testing.T) {
	tests := []struct {
		name string
		op   func(src, other *Table) (*Table, error)
	}{
		{"join", func(src, other *Table) (*Table, error) { return src.Join(other) }},
		{"rename", func(src, _ *Table) (*Table, error) {
			return src.Rename(map[string]string{"Id": "Item code", "Qty": "Quantity"})
		}},
		{"append", func(src, _ *Table) (*Table, error) {
			return src.Append(EmptyColumn("Note"), ColumnSpec{Name: "Double", Compute: func(r Row) (Cell, error) {
				n, err := r.Int("Qty")
				return Int(n * 2), err
			}})
		}},
		{"filter", func(src, _ *Table) (*Table, error) {
			return src.Filter(func(r Row) (bool, error) {
				n, err := r.Int("Qty")
				return n > 1, err
			})
		}},
		{"select", func(src, _ *Table) (*Table, error) { return src.Select("Qty"), nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := MustNew([]string{"Id", "Qty"}, [][]Cell{Cells(1, 3), Cells(2, "4"), Cells(1, 1)}, "Id")
			other := MustNew([]string{"Id", "Name"}, [][]Cell{Cells(1, "Lamp"), Cells("2", "Vase")}, "Id")
			before, otherBefore := snapshot(src), snapshot(other)

			got, err := tt.op(src, other)
			if err != nil {
				t.Fatalf("error: %v", err)
			}
			assertSchema(t, got)
			assertUnchanged(t, src, before)
			assertUnchanged(t, other, otherBefore)
		})
	}
}

func TestAccessors(t *testing.T) {
	tbl := MustNew([]string{"Id", "Name"}, [][]Cell{Cells(1, "a"), Cells(2, "b")}, "Id")

	col, err := tbl.Column("Name")
	if err != nil {
		t.Fatalf("Column() error: %v", err)
	}
	if !reflect.DeepEqual(col, Cells("a", "b")) {
		t.Errorf("Column() = %v", col)
	}
	if _, err := tbl.Column("Nope"); !errors.Is(err, ErrColumnNotFound) {
		t.Errorf("Column(missing) error = %v", err)
	}

	v, err := tbl.Value(1, "Id")
	if err != nil || v != Int(2) {
		t.Errorf("Value(1, Id) = %v, %v", v, err)
	}
	if pos, ok := tbl.Index("Name"); !ok || pos != 1 {
		t.Errorf("Index(Name) = %d, %v", pos, ok)
	}

	rows := tbl.Rows()
	rows[0][0] = Int(100)
	if v, _ := tbl.Value(0, "Id"); v != Int(1) {
		t.Error("Rows() must return a copy")
	}
}
