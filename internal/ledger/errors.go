package ledger

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinels matched via errors.Is by the corresponding error types.
var (
	ErrParse    = errors.New("malformed ledger row")
	ErrSchema   = errors.New("ledger header mismatch")
	ErrNotFound = errors.New("no matching record")
)

// ParseError reports a single ledger row that could not be read. It is
// isolated to that row: scans continue past it.
type ParseError struct {
	Line   int    // 1-based line in the file
	Column string // offending column, empty for structural problems
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("line %d: parsing %s %q: %v", e.Line, e.Column, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Is reports ErrParse as a match.
func (e *ParseError) Is(target error) bool { return target == ErrParse }

// SchemaError reports a header row that does not match Header. It is fatal
// to any operation on the file.
type SchemaError struct {
	Path string
	Got  []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: header %q does not match %q", e.Path, strings.Join(e.Got, ","), Header)
}

// Is reports ErrSchema as a match.
func (e *SchemaError) Is(target error) bool { return target == ErrSchema }

// NotFoundError reports that an update or delete matched no rows.
type NotFoundError struct {
	Query string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no record matches %s", e.Query)
}

// Is reports ErrNotFound as a match.
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }
