package satispay

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument is returned when a local precondition fails
	// (missing identifier, out-of-range numeric parameter) before any
	// network call is made.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrClientClosed is returned by every call made after Close.
	ErrClientClosed = errors.New("satispay: client closed")
)

// ErrorKind discriminates the provider-side error variants.
type ErrorKind int

const (
	// ErrorKindProvider covers any non-2xx, non-500 status that carries a
	// parseable provider error body.
	ErrorKindProvider ErrorKind = iota

	// ErrorKindUnauthorized maps HTTP 401.
	ErrorKindUnauthorized

	// ErrorKindValidation maps HTTP 400.
	ErrorKindValidation

	// ErrorKindInternal maps HTTP 500. The body is treated as opaque and
	// never parsed as a structured provider error.
	ErrorKindInternal
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorKindUnauthorized:
		return "unauthorized"
	case ErrorKindValidation:
		return "validation"
	case ErrorKindInternal:
		return "internal"
	default:
		return "provider"
	}
}

// Error is a failure reported by the Satispay service. Code, Message and Wlt
// are the three fields of the provider error body and are kept independent of
// each other.
type Error struct {
	Kind       ErrorKind
	StatusCode int

	Code    int
	Message string
	Wlt     string
}

func (e *Error) Error() string {
	if e.Kind == ErrorKindInternal {
		return fmt.Sprintf("satispay: internal server error (status %d)", e.StatusCode)
	}
	return fmt.Sprintf("satispay: %s error (status %d, code %d): %s", e.Kind, e.StatusCode, e.Code, e.Message)
}

// IsUnauthorized reports whether err is a provider error with HTTP 401.
func IsUnauthorized(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == ErrorKindUnauthorized
}

// IsValidation reports whether err is a provider error with HTTP 400.
func IsValidation(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == ErrorKindValidation
}
