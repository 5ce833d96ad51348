package table

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by the engine. Concrete errors wrap one of these.
var (
	// ErrSchemaViolation is returned when rows and columns disagree in length
	// or a column name appears twice.
	ErrSchemaViolation = errors.New("schema violation")

	// ErrColumnNotFound is returned when an operator references a column that
	// is not part of the table's schema.
	ErrColumnNotFound = errors.New("column not found")

	// ErrTypeCoercion is returned when a value required to be numeric cannot
	// be read as a number.
	ErrTypeCoercion = errors.New("type coercion error")
)

// SchemaError describes a violated schema invariant.
type SchemaError struct {
	Column string // offending column name (empty for row length errors)
	Row    int    // offending row position, -1 if not row specific
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Row >= 0 {
		return fmt.Sprintf("%s: row %d: %s", ErrSchemaViolation, e.Row, e.Reason)
	}
	if e.Column != "" {
		return fmt.Sprintf("%s: column %q: %s", ErrSchemaViolation, e.Column, e.Reason)
	}
	return fmt.Sprintf("%s: %s", ErrSchemaViolation, e.Reason)
}

func (e *SchemaError) Unwrap() error {
	return ErrSchemaViolation
}

func duplicateColumn(name string) *SchemaError {
	return &SchemaError{Column: name, Row: -1, Reason: "duplicate column name"}
}

// ColumnError reports a column reference that does not resolve.
type ColumnError struct {
	Op     string // operation that needed the column ("join", "filter", ...)
	Column string
}

func (e *ColumnError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s: %q", ErrColumnNotFound, e.Column)
	}
	return fmt.Sprintf("%s: %s: %q", e.Op, ErrColumnNotFound, e.Column)
}

func (e *ColumnError) Unwrap() error {
	return ErrColumnNotFound
}

// CoercionError reports a cell that could not be converted to the type an
// operator needs.
type CoercionError struct {
	Column string // empty when the cell was coerced outside a table
	Row    int    // row position, -1 when unknown
	Value  Cell
	Want   string // target type, e.g. "integer"
}

func (e *CoercionError) Error() string {
	msg := fmt.Sprintf("%s: cannot convert %s %q to %s", ErrTypeCoercion, e.Value.Kind(), e.Value.String(), e.Want)
	if e.Column != "" {
		msg += fmt.Sprintf(" (column %q, row %d)", e.Column, e.Row)
	}
	return msg
}

func (e *CoercionError) Unwrap() error {
	return ErrTypeCoercion
}
