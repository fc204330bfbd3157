// Package parsererror holds the typed errors shared by the import pipeline
// and the ledger operations. Surfaces (CLI, HTTP) map them to user-facing
// outcomes with errors.As.
package parsererror

import (
	"errors"
	"fmt"
)

// ErrNotFound is matched by every *NotFoundError through errors.Is.
var ErrNotFound = errors.New("not found")

// ParseError is a row-level failure inside a statement. It is logged and the
// row is skipped; it never reaches the caller of an import.
type ParseError struct {
	Dialect string
	Row     int
	Field   string
	Value   string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s row %d: failed to parse %s='%s': %v",
		e.Dialect, e.Row, e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ValidationError reports invalid input supplied by a caller.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// CategorizationError records a failed prediction attempt. The categorizer
// logs it and falls back to the sentinel category.
type CategorizationError struct {
	Description string
	Strategy    string
	Err         error
}

func (e *CategorizationError) Error() string {
	return fmt.Sprintf("categorization failed for '%s' using %s: %v",
		e.Description, e.Strategy, e.Err)
}

func (e *CategorizationError) Unwrap() error {
	return e.Err
}

// InvalidFormatError means a file could not be matched to any known
// statement dialect, or is not a CSV file at all.
type InvalidFormatError struct {
	Filename string
	Msg      string
	Headers  []string
}

func (e *InvalidFormatError) Error() string {
	if len(e.Headers) > 0 {
		return fmt.Sprintf("invalid format in file '%s': %s. Headers: %v", e.Filename, e.Msg, e.Headers)
	}
	return fmt.Sprintf("invalid format in file '%s': %s", e.Filename, e.Msg)
}

// DuplicateFileError rejects a whole file whose name was already imported.
type DuplicateFileError struct {
	Filename string
}

func (e *DuplicateFileError) Error() string {
	return fmt.Sprintf("file '%s' has already been imported", e.Filename)
}

// NotFoundError reports a missing record addressed by id.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// Is makes errors.Is(err, ErrNotFound) succeed for any NotFoundError.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NotFound builds a NotFoundError, formatting id with %v.
func NotFound(resource string, id interface{}) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: fmt.Sprint(id)}
}
