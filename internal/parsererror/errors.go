// Package parsererror defines the typed errors surfaced by the extraction
// pipeline. Only UnsupportedFormatError and NoDataFoundError are meant to
// reach callers; the others describe local failures that are logged and
// recovered from.
package parsererror

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedFormat is matched by errors.Is for any UnsupportedFormatError.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrNoTransactions is matched by errors.Is for any NoDataFoundError.
	ErrNoTransactions = errors.New("no transactions found")

	// ErrServiceUnavailable is matched by errors.Is for any ServiceUnavailableError.
	ErrServiceUnavailable = errors.New("service unavailable")
)

// UnsupportedFormatError reports an input whose format the pipeline refuses to parse.
type UnsupportedFormatError struct {
	FileName  string
	Extension string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported format %q for file '%s'", e.Extension, e.FileName)
}

func (e *UnsupportedFormatError) Unwrap() error {
	return ErrUnsupportedFormat
}

// NoDataFoundError reports that nothing could be extracted from the input.
type NoDataFoundError struct {
	Source string // file name or "text"
	Hint   string
}

func (e *NoDataFoundError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("no transactions found in %s: %s", e.Source, e.Hint)
	}
	return fmt.Sprintf("no transactions found in %s", e.Source)
}

func (e *NoDataFoundError) Unwrap() error {
	return ErrNoTransactions
}

// ParseError represents a record that could not be parsed
type ParseError struct {
	Parser string
	Field  string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: failed to parse %s='%s': %v",
		e.Parser, e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ServiceUnavailableError wraps a failure of an external service such as
// the AI completer (network error, timeout or malformed response).
type ServiceUnavailableError struct {
	Service string
	Err     error
}

func (e *ServiceUnavailableError) Error() string {
	return fmt.Sprintf("%s unavailable: %v", e.Service, e.Err)
}

// Is reports ErrServiceUnavailable as a match so callers need not know the wrapped cause.
func (e *ServiceUnavailableError) Is(target error) bool {
	return target == ErrServiceUnavailable
}

func (e *ServiceUnavailableError) Unwrap() error {
	return e.Err
}

// InvalidFormatError represents an input that does not conform to the
// format its extension or content announced.
type InvalidFormatError struct {
	FilePath             string
	ExpectedFormat       string
	ActualContentSnippet string
	Msg                  string
}

func (e *InvalidFormatError) Error() string {
	if e.ActualContentSnippet != "" {
		return fmt.Sprintf("invalid format in file '%s': %s. Expected: %s. Content snippet: '%s'",
			e.FilePath, e.Msg, e.ExpectedFormat, e.ActualContentSnippet)
	}
	return fmt.Sprintf("invalid format in file '%s': %s. Expected: %s",
		e.FilePath, e.Msg, e.ExpectedFormat)
}
