package order

import (
	"errors"
	"fmt"
)

// Sentinel errors for upload parsing
var (
	ErrEmptyFile       = errors.New("file is empty")
	ErrMissingHeader   = errors.New("file has no header row")
	ErrNoRecords       = errors.New("no data found in file")
	ErrInvalidEncoding = errors.New("file is not valid UTF-8")
)

// ValidationError reports a malformed batch. It is surfaced synchronously to
// whoever submitted the batch and never reaches the engine.
type ValidationError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	msg := e.Reason
	if e.Field != "" {
		msg = fmt.Sprintf("%s: %s", e.Field, e.Reason)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError builds a ValidationError for a named input field.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidationError reports whether err is or wraps a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
