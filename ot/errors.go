package ot

import (
	"errors"
	"fmt"
)

// ErrBufferBounds signals an access outside the bounds of a table's byte
// segment. It is the root cause of most malformed-offset conditions.
var ErrBufferBounds = errors.New("internal inconsistency: buffer bounds error")

// ErrorSeverity represents the severity level of a table decoding error.
type ErrorSeverity int

const (
	// SeverityCritical indicates a severe error that makes the table
	// unusable or unreliable.
	SeverityCritical ErrorSeverity = iota
	// SeverityMajor indicates a significant error that may affect
	// functionality but doesn't prevent usage.
	SeverityMajor
	// SeverityMinor indicates a minor issue that can be safely ignored in
	// most cases.
	SeverityMinor
)

// String returns a human-readable representation of the error severity.
func (s ErrorSeverity) String() string {
	switch s {
	case SeverityCritical:
		return "CRITICAL"
	case SeverityMajor:
		return "MAJOR"
	case SeverityMinor:
		return "MINOR"
	default:
		return "UNKNOWN"
	}
}

// TableError represents an error encountered while decoding a layout
// table. The only fatal condition for clients walking the layout
// hierarchy is a malformed offset or count, which always surfaces as a
// TableError with critical severity.
type TableError struct {
	Table    Tag           // the layout table where the error occurred (e.g., "GSUB")
	Section  string        // specific section within the table (e.g., "ScriptList")
	Issue    string        // human-readable description of the issue
	Severity ErrorSeverity // severity level of the error
	Offset   uint32        // byte offset within the table (0 if unknown)
	err      error         // wrapped cause, if any
}

// Error implements the error interface.
func (e TableError) Error() string {
	if e.Offset > 0 {
		return fmt.Sprintf("[%s] %s/%s at offset %d: %s", e.Severity, e.Table, e.Section, e.Offset, e.Issue)
	}
	return fmt.Sprintf("[%s] %s/%s: %s", e.Severity, e.Table, e.Section, e.Issue)
}

// Unwrap returns the wrapped cause, if any.
func (e TableError) Unwrap() error {
	return e.err
}

// errMalformedOffset constructs a critical TableError for an offset or
// count field pointing outside its table.
func errMalformedOffset(table Tag, section string, offset uint32, issue string) error {
	return TableError{
		Table:    table,
		Section:  section,
		Issue:    issue,
		Severity: SeverityCritical,
		Offset:   offset,
		err:      ErrBufferBounds,
	}
}
