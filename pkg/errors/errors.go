package errors

import (
	"errors"
	"fmt"
)

// Process exit codes reported by the CLI.
const (
	ExitOK         = 0
	ExitInternal   = 1
	ExitValidation = 2
	ExitSource     = 3
	ExitDB         = 4
	ExitDBWrite    = 5
	ExitLocked     = 6
	ExitUsage      = 64
)

// Error represents a typed application error carrying the process exit code.
type Error struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	ExitCode int    `json:"exit_code"`
	Err      error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New creates a new Error instance.
func New(code string, exitCode int, message string) *Error {
	return &Error{Code: code, ExitCode: exitCode, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, exitCode int, message string) *Error {
	return &Error{Code: code, ExitCode: exitCode, Message: message, Err: err}
}

// WrapAs wraps err using the code and exit code of a predefined error.
func WrapAs(err error, kind *Error, message string) *Error {
	return Wrap(err, kind.Code, kind.ExitCode, message)
}

// Predefined errors for common scenarios.
var (
	ErrValidation     = New("VALIDATION_ERROR", ExitValidation, "validation failed")
	ErrClassification = New("CLASSIFICATION_ERROR", ExitValidation, "class name not recognised")
	ErrConsistency    = New("CONSISTENCY_ERROR", ExitValidation, "roster and configurations disagree")
	ErrSource         = New("SOURCE_ERROR", ExitSource, "failed to read source")
	ErrDatabase       = New("DB_ERROR", ExitDB, "database unavailable")
	ErrDatabaseWrite  = New("DB_WRITE_ERROR", ExitDBWrite, "database write failed")
	ErrLocked         = New("LOCKED", ExitLocked, "another load is running")
	ErrUsage          = New("USAGE_ERROR", ExitUsage, "invalid usage")
	ErrInternal       = New("INTERNAL_ERROR", ExitInternal, "internal error")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.ExitCode, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}

// ExitCodeOf returns the exit code the process should terminate with for err.
func ExitCodeOf(err error) int {
	if err == nil {
		return ExitOK
	}
	return FromError(err).ExitCode
}
