package shopify

import (
	"errors"
	"fmt"
)

// RejectionError is returned when the store answers an order creation with
// anything other than 201 Created. Body is the raw response body.
type RejectionError struct {
	StatusCode int
	Body       string
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("order rejected with status %d: %s", e.StatusCode, e.Body)
}

// TransportError wraps connection, timeout and decode failures.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsRejection reports whether err is or wraps a RejectionError.
func IsRejection(err error) bool {
	var re *RejectionError
	return errors.As(err, &re)
}
