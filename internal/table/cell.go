package table

// cell.go defines the tagged value stored in every table position.
//
// Coercion happens in exactly two places, both documented here:
//
//   - Cell.Int reads a quantity (used by filters and computed columns)
//   - Cell.Equal compares identifiers (used by Join)
//
// Everything else treats cells as opaque values.

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind identifies which variant a Cell holds.
type Kind uint8

const (
	KindEmpty Kind = iota
	KindInt
	KindFloat
	KindText
	KindBool
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindText:
		return "text"
	case KindBool:
		return "bool"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Cell is a single spreadsheet value. The zero Cell is empty.
type Cell struct {
	kind Kind
	i    int64
	f    float64
	s    string
	b    bool
}

// Empty returns the absent value.
func Empty() Cell { return Cell{} }

// Int returns an integer cell.
func Int(v int64) Cell { return Cell{kind: KindInt, i: v} }

// Float returns a decimal cell.
func Float(v float64) Cell { return Cell{kind: KindFloat, f: v} }

// Text returns a text cell. Empty strings are kept as text; use Empty for
// absent values.
func Text(s string) Cell { return Cell{kind: KindText, s: s} }

// Bool returns a boolean cell.
func Bool(v bool) Cell { return Cell{kind: KindBool, b: v} }

// FromAny converts an untyped Go value into a Cell.
// nil becomes Empty, integer types become Int, float types become Float,
// strings become Text and bools become Bool. Any other value is stored as
// its fmt representation.
func FromAny(v any) Cell {
	switch x := v.(type) {
	case nil:
		return Empty()
	case Cell:
		return x
	case int:
		return Int(int64(x))
	case int8:
		return Int(int64(x))
	case int16:
		return Int(int64(x))
	case int32:
		return Int(int64(x))
	case int64:
		return Int(x)
	case uint8:
		return Int(int64(x))
	case uint16:
		return Int(int64(x))
	case uint32:
		return Int(int64(x))
	case float32:
		return Float(float64(x))
	case float64:
		return Float(x)
	case string:
		return Text(x)
	case bool:
		return Bool(x)
	default:
		return Text(fmt.Sprint(x))
	}
}

// Cells converts a list of untyped values with FromAny.
func Cells(values ...any) []Cell {
	out := make([]Cell, len(values))
	for i, v := range values {
		out[i] = FromAny(v)
	}
	return out
}

// Kind reports the variant held by c.
func (c Cell) Kind() Kind { return c.kind }

// IsEmpty reports whether c holds no value.
func (c Cell) IsEmpty() bool { return c.kind == KindEmpty }

// Value returns the underlying Go value: nil, int64, float64, string or bool.
func (c Cell) Value() any {
	switch c.kind {
	case KindInt:
		return c.i
	case KindFloat:
		return c.f
	case KindText:
		return c.s
	case KindBool:
		return c.b
	default:
		return nil
	}
}

// String returns the text form of the cell. Floats with an integral value
// print without a fraction; booleans print as TRUE or FALSE.
func (c Cell) String() string {
	switch c.kind {
	case KindInt:
		return strconv.FormatInt(c.i, 10)
	case KindFloat:
		return strconv.FormatFloat(c.f, 'f', -1, 64)
	case KindText:
		return c.s
	case KindBool:
		if c.b {
			return "TRUE"
		}
		return "FALSE"
	default:
		return ""
	}
}

// Contains reports whether the text form of c contains sub.
// Matching is case-sensitive literal containment.
func (c Cell) Contains(sub string) bool {
	return strings.Contains(c.String(), sub)
}

// Int reads c as an integer quantity:
//
//   - Int is returned as is
//   - Float is truncated toward zero
//   - Text is trimmed and parsed as an integer or decimal number (decimals
//     truncate); a decimal comma and space/NBSP digit grouping are accepted
//   - Empty, and Text that is blank after trimming, read as 0
//   - Bool and any other Text fail with ErrTypeCoercion
func (c Cell) Int() (int64, error) {
	switch c.kind {
	case KindEmpty:
		return 0, nil
	case KindInt:
		return c.i, nil
	case KindFloat:
		if n, ok := truncInt(c.f); ok {
			return n, nil
		}
	case KindText:
		s := strings.TrimSpace(c.s)
		if s == "" {
			return 0, nil
		}
		if n, err := strconv.ParseInt(normalizeNumber(s), 10, 64); err == nil {
			return n, nil
		}
		if f, ok := parseNumber(s); ok {
			if n, ok := truncInt(f); ok {
				return n, nil
			}
		}
	}
	return 0, c.coercionError("integer")
}

// truncInt truncates f toward zero. It fails for NaN, infinities and
// values outside the int64 range.
func truncInt(f float64) (int64, bool) {
	if math.IsNaN(f) {
		return 0, false
	}
	t := math.Trunc(f)
	if t < -0x1p63 || t >= 0x1p63 {
		return 0, false
	}
	return int64(t), true
}

func (c Cell) coercionError(want string) *CoercionError {
	return &CoercionError{Row: -1, Value: c, Want: want}
}

// Equal reports loose value equality. Two cells are equal when both have a
// numeric reading (Int, Float or numeric Text) and the numbers match;
// otherwise when their text forms match. Bools only equal bools. Empty
// cells never equal anything, including other empty cells.
//
// Whole numbers compare as int64, so identifiers above 2^53 stay distinct.
func (c Cell) Equal(o Cell) bool {
	if c.kind == KindEmpty || o.kind == KindEmpty {
		return false
	}
	if c.kind == KindBool || o.kind == KindBool {
		return c.kind == o.kind && c.b == o.b
	}
	if a, ok := c.number(); ok {
		if b, ok := o.number(); ok {
			return a == b
		}
	}
	return c.String() == o.String()
}

// key returns a canonical string such that a.Equal(b) iff a.key() == b.key().
// The second result is false for empty cells, which match nothing.
func (c Cell) key() (string, bool) {
	switch c.kind {
	case KindEmpty:
		return "", false
	case KindBool:
		return "b:" + c.String(), true
	}
	if n, ok := c.number(); ok {
		if n.whole {
			return "i:" + strconv.FormatInt(n.i, 10), true
		}
		return "f:" + strconv.FormatFloat(n.f, 'g', -1, 64), true
	}
	return "s:" + c.String(), true
}

// numeric is the reading used by Equal. Values that are whole and fit in
// int64 are kept in i; everything else is a finite, non-whole or
// out-of-range float in f. The two forms never overlap, so comparing the
// structs compares the numbers.
type numeric struct {
	whole bool
	i     int64
	f     float64
}

func fromFloat(f float64) numeric {
	if f == math.Trunc(f) {
		if n, ok := truncInt(f); ok {
			return numeric{whole: true, i: n}
		}
	}
	return numeric{f: f}
}

// number returns the numeric reading of c. NaN and infinities have none.
func (c Cell) number() (numeric, bool) {
	switch c.kind {
	case KindInt:
		return numeric{whole: true, i: c.i}, true
	case KindFloat:
		if math.IsNaN(c.f) || math.IsInf(c.f, 0) {
			return numeric{}, false
		}
		return fromFloat(c.f), true
	case KindText:
		s := normalizeNumber(strings.TrimSpace(c.s))
		if n, ok := parseWhole(s); ok {
			return numeric{whole: true, i: n}, true
		}
		f, ok := parseNumber(s)
		if !ok {
			return numeric{}, false
		}
		return fromFloat(f), true
	default:
		return numeric{}, false
	}
}

// parseWhole parses normalized integer text exactly, allowing a fraction
// made only of zeros ("12", "+12", "12.00").
func parseWhole(s string) (int64, bool) {
	if i := strings.IndexByte(s, '.'); i >= 0 {
		if strings.Trim(s[i+1:], "0") != "" {
			return 0, false
		}
		s = s[:i]
	}
	n, err := strconv.ParseInt(s, 10, 64)
	return n, err == nil
}

// parseNumber parses decimal text, rejecting NaN and infinities.
func parseNumber(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(normalizeNumber(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

var numberSpaces = strings.NewReplacer(" ", "", "\u00a0", "", "\u202f", "")

// normalizeNumber strips digit grouping spaces and turns a lone decimal
// comma into a point ("1 234,5" -> "1234.5").
func normalizeNumber(s string) string {
	s = numberSpaces.Replace(s)
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	return s
}
