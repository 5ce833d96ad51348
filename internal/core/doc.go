// Package core runs order-list builds for any frontend.
//
// It reads the two uploaded spreadsheets, runs the order workflow over them,
// renders the result and records the build. Web handlers and the CLI share
// the same [Service]; neither depends on the other.
//
// # Build
//
//  1. [Service.Build] takes a slot from the [BuildLimiter]
//  2. both sources are read with the sheet package and turned into tables
//  3. the order workflow joins, translates, extends and filters them
//  4. the result is rendered as xlsx (with product images) or csv
//  5. a [BuildRecord] is written when a [HistoryStore] is configured
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - SCH001, COL001, VAL001: table errors
//   - FILE001-FILE007: file errors (size, format, encoding, sheet)
//   - BLD001-BLD004: build errors (cancelled, busy, timeout, history)
//   - DB004-DB006: database errors
package core
