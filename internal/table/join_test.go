package table

import (
	"errors"
	"testing"
)

func TestJoin(t *testing.T) {
	orders := MustNew(
		[]string{"Id", "Qty"},
		[][]Cell{Cells(1, 5), Cells(2, 3), Cells(9, 1)},
		"Id",
	)
	catalog := MustNew(
		[]string{"Id", "Name"},
		[][]Cell{Cells(2, "B"), Cells(1, "A"), Cells(3, "C")},
		"Id",
	)

	got, err := orders.Join(catalog)
	if err != nil {
		t.Fatalf("Join() error: %v", err)
	}
	assertColumns(t, got, "Id", "Qty", "Name")
	assertRows(t, got, [][]Cell{Cells(1, 5, "A"), Cells(2, 3, "B")})
	assertSchema(t, got)
	if got.IDColumn() != "Id" {
		t.Errorf("IDColumn() = %q, want Id", got.IDColumn())
	}
}

func TestJoinLooseEquality(t *testing.T) {
	left := MustNew([]string{"Kód", "Qty"}, [][]Cell{Cells(1001, 2), Cells("A7", 1)}, "Kód")
	right := MustNew([]string{"Code", "Name"}, [][]Cell{Cells("1001", "Lamp"), Cells(" A7", "Vase")}, "Code")

	got, err := left.Join(right)
	if err != nil {
		t.Fatalf("Join() error: %v", err)
	}
	// "1001" is numeric text and matches 1001; " A7" is not numeric and its
	// text form differs from "A7".
	assertColumns(t, got, "Kód", "Qty", "Code", "Name")
	assertRows(t, got, [][]Cell{Cells(1001, 2, "1001", "Lamp")})
}

func TestJoinLargeIDs(t *testing.T) {
	left := MustNew([]string{"Id", "Qty"}, [][]Cell{Cells(int64(9007199254740993), 1)}, "Id")
	right := MustNew([]string{"Id", "Name"}, [][]Cell{
		Cells(int64(9007199254740992), "wrong"),
		Cells("9007199254740993", "right"),
	}, "Id")

	got, err := left.Join(right)
	if err != nil {
		t.Fatalf("Join() error: %v", err)
	}
	assertRows(t, got, [][]Cell{Cells(int64(9007199254740993), 1, "right")})
}

func TestJoinFanOut(t *testing.T) {
	left := MustNew([]string{"Id", "L"}, [][]Cell{Cells(1, "l1"), Cells(1, "l2")}, "Id")
	right := MustNew([]string{"Id", "R"}, [][]Cell{Cells(1, "r1"), Cells(2, "x"), Cells(1, "r2")}, "Id")

	got, err := left.Join(right)
	if err != nil {
		t.Fatalf("Join() error: %v", err)
	}
	assertRows(t, got, [][]Cell{
		Cells(1, "l1", "r1"),
		Cells(1, "l1", "r2"),
		Cells(1, "l2", "r1"),
		Cells(1, "l2", "r2"),
	})
}

func TestJoinSharedColumnsTakenFromLeft(t *testing.T) {
	left := MustNew([]string{"Id", "Name", "Qty"}, [][]Cell{Cells(1, "left", 4)}, "Id")
	right := MustNew([]string{"Name", "Id", "Price"}, [][]Cell{Cells("right", 1, 9.5)}, "Id")

	got, err := left.Join(right)
	if err != nil {
		t.Fatalf("Join() error: %v", err)
	}
	assertColumns(t, got, "Id", "Name", "Qty", "Price")
	assertRows(t, got, [][]Cell{Cells(1, "left", 4, 9.5)})
}

func TestJoinBlankIDsNeverMatch(t *testing.T) {
	left := MustNew([]string{"Id", "L"}, [][]Cell{{Empty(), Text("a")}, Cells(1, "b")}, "Id")
	right := MustNew([]string{"Id", "R"}, [][]Cell{{Empty(), Text("c")}, Cells(1, "d")}, "Id")

	got, err := left.Join(right)
	if err != nil {
		t.Fatalf("Join() error: %v", err)
	}
	assertRows(t, got, [][]Cell{Cells(1, "b", "d")})
}

func TestJoinMissingID(t *testing.T) {
	ok := MustNew([]string{"Id"}, [][]Cell{Cells(1)}, "Id")
	noID := MustNew([]string{"Id"}, [][]Cell{Cells(1)}, "Code")
	unset := MustNew([]string{"Id"}, [][]Cell{Cells(1)}, "")

	tests := []struct {
		name        string
		left, right *Table
	}{
		{"left", noID, ok},
		{"right", ok, noID},
		{"unset", unset, ok},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.left.Join(tt.right)
			if !errors.Is(err, ErrColumnNotFound) {
				t.Fatalf("error = %v, want ErrColumnNotFound", err)
			}
			if got != nil {
				t.Error("expected nil table on failure")
			}
		})
	}
}

func TestJoinEmptySides(t *testing.T) {
	left := MustNew([]string{"Id", "Qty"}, nil, "Id")
	right := MustNew([]string{"Id", "Name"}, [][]Cell{Cells(1, "A")}, "Id")

	got, err := left.Join(right)
	if err != nil {
		t.Fatalf("Join() error: %v", err)
	}
	assertColumns(t, got, "Id", "Qty", "Name")
	if got.Len() != 0 {
		t.Errorf("Len() = %d, want 0", got.Len())
	}
}
