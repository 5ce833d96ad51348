package core

// # Error Codes Reference
//
// Users quote these codes to support staff. Errors are classified by kind
// first (errors.Is against the sentinels below), then by case-insensitive
// substring patterns for errors that only carry text, such as driver errors.
//
// # Table Errors
//
//	SCH001 - Schema violation: duplicate or misaligned columns
//	         Action: Make sure every header appears once and rows match the header
//	COL001 - Column not found: a required column is missing
//	         Action: Check the identifier column and the stock columns exist
//	VAL001 - Not a number: a quantity cell holds text
//	         Action: Fix the quantity cells named in the message
//
// # File Errors
//
//	FILE001 - File too large
//	FILE002 - Unsupported format (only .xlsx and .csv)
//	FILE003 - Unknown text encoding
//	FILE004 - No file provided
//	FILE005 - Empty file (no header row)
//	FILE006 - Sheet not found
//	FILE007 - Not a valid workbook
//
// # Build Errors
//
//	BLD001 - Build cancelled
//	BLD002 - Too many builds in progress
//	BLD003 - Build timed out
//	BLD004 - Build history disabled
//
// # Database Errors
//
//	DB004 - Connection refused
//	DB005 - Connection reset
//	DB006 - Database timeout
//
// # Other
//
//	RATE001 - Rate limited
//	ERR000  - Unknown error: check application logs for the technical error

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/OrderSheet/internal/sheet"
	"github.com/JonMunkholm/OrderSheet/internal/table"
)

// Errors raised by the service for user input problems.
var (
	ErrFileTooLarge    = errors.New("file too large")
	ErrNoFile          = errors.New("no file provided")
	ErrEmptyFile       = errors.New("empty file")
	ErrHistoryDisabled = errors.New("build history disabled")
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// errorKind maps a sentinel error to its user message.
type errorKind struct {
	target error
	msg    UserMessage
}

// errorKinds are checked with errors.Is, in order.
var errorKinds = []errorKind{
	{table.ErrSchemaViolation, UserMessage{
		Message: "The spreadsheet layout is inconsistent",
		Action:  "Make sure every header appears once and rows match the header",
		Code:    "SCH001",
	}},
	{table.ErrColumnNotFound, UserMessage{
		Message: "A required column is missing",
		Action:  "Check the identifier column and the stock columns exist in both files",
		Code:    "COL001",
	}},
	{table.ErrTypeCoercion, UserMessage{
		Message: "A quantity cell does not contain a number",
		Action:  "Fix the cell named in the details and try again",
		Code:    "VAL001",
	}},
	{ErrFileTooLarge, UserMessage{
		Message: "File exceeds the maximum size limit",
		Action:  "Remove unused sheets or rows and upload again",
		Code:    "FILE001",
	}},
	{sheet.ErrUnsupportedFormat, UserMessage{
		Message: "This file format is not supported",
		Action:  "Save the file as .xlsx or .csv",
		Code:    "FILE002",
	}},
	{sheet.ErrUnknownEncoding, UserMessage{
		Message: "The text encoding is not recognised",
		Action:  "Save the CSV as UTF-8 or configure CSV_ENCODING",
		Code:    "FILE003",
	}},
	{ErrNoFile, UserMessage{
		Message: "No file was selected",
		Action:  "Choose both the order list and the catalog",
		Code:    "FILE004",
	}},
	{ErrEmptyFile, UserMessage{
		Message: "The uploaded file has no header row",
		Action:  "Check you picked the right sheet",
		Code:    "FILE005",
	}},
	{sheet.ErrSheetNotFound, UserMessage{
		Message: "The selected sheet does not exist in the workbook",
		Action:  "Pick one of the sheets listed for the file",
		Code:    "FILE006",
	}},
	{context.Canceled, UserMessage{
		Message: "The build was cancelled",
		Action:  "Please try again",
		Code:    "BLD001",
	}},
	{ErrTooManyBuilds, UserMessage{
		Message: "The system is busy with other builds",
		Action:  "Please wait a moment and try again",
		Code:    "BLD002",
	}},
	{context.DeadlineExceeded, UserMessage{
		Message: "The build took too long",
		Action:  "Try smaller files or try again later",
		Code:    "BLD003",
	}},
	{ErrHistoryDisabled, UserMessage{
		Message: "Build history is not available",
		Action:  "Configure DATABASE_URL to keep a build history",
		Code:    "BLD004",
	}},
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns catch errors that carry no sentinel. The first matching
// pattern wins, so specific patterns come first.
var errorPatterns = []errorPattern{
	{"not a valid zip", UserMessage{
		Message: "The file is not a valid Excel workbook",
		Action:  "Open the file in Excel and save it as .xlsx",
		Code:    "FILE007",
	}},
	{"open workbook", UserMessage{
		Message: "The file is not a valid Excel workbook",
		Action:  "Open the file in Excel and save it as .xlsx",
		Code:    "FILE007",
	}},
	{"connection refused", UserMessage{
		Message: "Unable to connect to database",
		Action:  "Please try again in a few moments",
		Code:    "DB004",
	}},
	{"connection reset", UserMessage{
		Message: "Database connection was interrupted",
		Action:  "Please try again",
		Code:    "DB005",
	}},
	{"timeout", UserMessage{
		Message: "Database operation timed out",
		Action:  "Please try again later",
		Code:    "DB006",
	}},
	{"rate limit", UserMessage{
		Message: "Too many requests",
		Action:  "Please wait a moment before trying again",
		Code:    "RATE001",
	}},
}

// defaultMessage is returned when nothing matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
//
// Example:
//
//	_, err := orders.Join(catalog) // id column missing
//	msg := MapError(err)
//	// msg.Code == "COL001"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, k := range errorKinds {
		if errors.Is(err, k.target) {
			return k.msg
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific code rather than the
// generic ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error, kept for logging, with the message
// shown to users.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
