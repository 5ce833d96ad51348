// Package table provides the in-memory relational table used to reshape
// spreadsheet data.
//
// A [Table] is an ordered list of unique column names, a list of rows
// aligned positionally to those columns, and the name of one identifier
// column used as the join key. Cells are tagged values (see [Cell]) so that
// numeric, text, boolean and blank spreadsheet contents survive the trip
// through the engine without implicit conversion.
//
// # Operators
//
// Every operator returns a new Table and leaves its inputs untouched:
//
//   - [Table.Join]: inner equi-join on the identifier columns of both sides
//   - [Table.Select]: projection onto a desired column order
//   - [Table.Rename]: column renaming through a name mapping
//   - [Table.Append]: appending empty or computed columns
//   - [Table.Filter]: keeping rows that satisfy a predicate
//   - [Table.Drop]: removing columns by name
//
// Tables are immutable after construction, so operators share row storage
// with their inputs where the rows are unchanged.
//
// # Errors
//
// Failures are reported with three distinguishable kinds, each matched with
// errors.Is:
//
//   - [ErrSchemaViolation]: ragged rows or duplicate column names
//   - [ErrColumnNotFound]: a referenced column is absent from the schema
//   - [ErrTypeCoercion]: a value that must be numeric is not
//
// An operator that fails returns a nil Table; a partially built result is
// never exposed.
package table
