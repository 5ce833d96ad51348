package table

import (
	"errors"
	"math"
	"testing"
)

func TestCellInt(t *testing.T) {
	tests := []struct {
		name    string
		cell    Cell
		want    int64
		wantErr bool
	}{
		{"int", Int(7), 7, false},
		{"negative int", Int(-3), -3, false},
		{"float truncates", Float(2.9), 2, false},
		{"negative float truncates toward zero", Float(-2.9), -2, false},
		{"numeric text", Text("12"), 12, false},
		{"padded text", Text("  5 "), 5, false},
		{"decimal text truncates", Text("3.7"), 3, false},
		{"decimal comma", Text("4,5"), 4, false},
		{"grouped digits", Text("1 200"), 1200, false},
		{"nbsp grouped digits", Text("1\u00a0200"), 1200, false},
		{"empty reads zero", Empty(), 0, false},
		{"blank text reads zero", Text("   "), 0, false},
		{"word fails", Text("abc"), 0, true},
		{"bool fails", Bool(true), 0, true},
		{"nan fails", Float(math.NaN()), 0, true},
		{"infinity text fails", Text("Inf"), 0, true},
		{"infinite float fails", Float(math.Inf(1)), 0, true},
		{"max int", Int(math.MaxInt64), math.MaxInt64, false},
		{"max int text", Text("9223372036854775807"), math.MaxInt64, false},
		{"min int text", Text("-9223372036854775808"), math.MinInt64, false},
		{"oversized text fails", Text("99999999999999999999"), 0, true},
		{"oversized negative text fails", Text("-99999999999999999999"), 0, true},
		{"oversized float fails", Float(1e30), 0, true},
		{"two to the 63 fails", Float(0x1p63), 0, true},
		{"oversized exponent text fails", Text("1e30"), 0, true},
		{"large float in range", Float(-0x1p62), -0x1p62, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.cell.Int()
			if tt.wantErr {
				if !errors.Is(err, ErrTypeCoercion) {
					t.Fatalf("Int() error = %v, want ErrTypeCoercion", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Int() unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Int() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCellString(t *testing.T) {
	tests := []struct {
		cell Cell
		want string
	}{
		{Empty(), ""},
		{Int(42), "42"},
		{Float(3), "3"},
		{Float(2.5), "2.5"},
		{Text("Kód"), "Kód"},
		{Bool(true), "TRUE"},
		{Bool(false), "FALSE"},
	}

	for _, tt := range tests {
		if got := tt.cell.String(); got != tt.want {
			t.Errorf("%s.String() = %q, want %q", tt.cell.Kind(), got, tt.want)
		}
	}
}

func TestCellEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b Cell
		want bool
	}{
		{"same int", Int(1), Int(1), true},
		{"int and float", Int(1), Float(1.0), true},
		{"int and numeric text", Int(1), Text("1"), true},
		{"int and padded text", Int(10), Text(" 10 "), true},
		{"float text and int", Text("1.0"), Int(1), true},
		{"different numbers", Int(1), Int(2), false},
		{"same text", Text("A-1"), Text("A-1"), true},
		{"text is case sensitive", Text("a"), Text("A"), false},
		{"number and word", Int(1), Text("one"), false},
		{"empty never matches", Empty(), Empty(), false},
		{"empty and text", Empty(), Text(""), false},
		{"bools", Bool(true), Bool(true), true},
		{"bool and text", Bool(true), Text("TRUE"), false},
		{"negative zero", Float(math.Copysign(0, -1)), Int(0), true},
		{"ints above 2^53 stay distinct", Int(9007199254740993), Int(9007199254740992), false},
		{"large int and its text", Int(9007199254740993), Text("9007199254740993"), true},
		{"large int and zero fraction text", Int(9007199254740993), Text("9007199254740993.00"), true},
		{"large text ids stay distinct", Text("9007199254740993"), Text("9007199254740992"), false},
		{"max int and float 2^63", Int(math.MaxInt64), Float(0x1p63), false},
		{"int and fraction", Int(2), Float(2.5), false},
		{"same fraction", Float(2.5), Text("2,5"), true},
		{"out of range floats", Float(1e30), Text("1e30"), true},
		{"infinity and its text", Float(math.Inf(1)), Text("+Inf"), true},
		{"infinity and max int", Float(math.Inf(1)), Int(math.MaxInt64), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equal(tt.b); got != tt.want {
				t.Errorf("Equal() = %v, want %v", got, tt.want)
			}
			if got := tt.b.Equal(tt.a); got != tt.want {
				t.Errorf("Equal() reversed = %v, want %v", got, tt.want)
			}

			ka, okA := tt.a.key()
			kb, okB := tt.b.key()
			sameKey := okA && okB && ka == kb
			if sameKey != tt.want {
				t.Errorf("key() agreement = %v (%q, %q), want %v", sameKey, ka, kb, tt.want)
			}
		})
	}
}

func TestFromAny(t *testing.T) {
	tests := []struct {
		in   any
		want Cell
	}{
		{nil, Empty()},
		{3, Int(3)},
		{int64(4), Int(4)},
		{1.5, Float(1.5)},
		{"x", Text("x")},
		{true, Bool(true)},
		{Int(9), Int(9)},
	}

	for _, tt := range tests {
		if got := FromAny(tt.in); got != tt.want {
			t.Errorf("FromAny(%v) = %#v, want %#v", tt.in, got, tt.want)
		}
	}
}

func TestCoercionErrorMessage(t *testing.T) {
	_, err := Text("lots").Int()

	var ce *CoercionError
	if !errors.As(err, &ce) {
		t.Fatalf("expected *CoercionError, got %T", err)
	}
	if ce.Want != "integer" {
		t.Errorf("Want = %q, want integer", ce.Want)
	}
	if ce.Value != Text("lots") {
		t.Errorf("Value = %v, want lots", ce.Value)
	}
}
