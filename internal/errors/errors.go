// Package errors defines the structured errors reported at the CLI boundary.
// Library packages return plain wrapped errors; the CLI wraps them here to
// attach a category and a suggested fix.
package errors

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// Error codes.
const (
	ErrConfig      = "CONFIG"
	ErrCredentials = "CREDENTIALS"
	ErrTerminal    = "TERMINAL"
	ErrUsage       = "USAGE"
)

// Error renders as:
//
//	✗ <what failed>
//
//	  <cause>
//
//	  <suggestion>
type Error struct {
	Code       string
	Message    string
	Suggestion string
	Cause      error
}

func New(code, message, suggestion string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
	}
}

func WrapWithCode(err error, code, message, suggestion string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
		Cause:      err,
	}
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "✗ %s\n", e.Message)
	if e.Cause != nil {
		fmt.Fprintf(&b, "\n  %s\n", e.Cause.Error())
	}
	if e.Suggestion != "" {
		fmt.Fprintf(&b, "\n  %s\n", e.Suggestion)
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// IsCode reports whether err wraps an *Error with the given code.
func IsCode(err error, code string) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// ExitError carries a status for a command that has already reported its
// outcome, so nothing more is printed.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// ExitCode maps an error to a process exit status: 0 for nil, the carried
// status for *ExitError, 2 for usage errors, 1 for everything else.
func ExitCode(err error) int {
	var exit *ExitError
	switch {
	case err == nil:
		return 0
	case errors.As(err, &exit):
		return exit.Code
	case IsCode(err, ErrUsage):
		return 2
	default:
		return 1
	}
}

// Report writes err for the user. Structured errors print as-is, *ExitError
// prints nothing and anything else gets an "error:" prefix.
func Report(w io.Writer, err error) {
	var exit *ExitError
	var structured *Error
	switch {
	case err == nil, errors.As(err, &exit):
	case errors.As(err, &structured):
		fmt.Fprint(w, structured.Error())
	default:
		fmt.Fprintf(w, "error: %v\n", err)
	}
}
