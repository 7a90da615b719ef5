package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// ErrorMapper maps transport failures to the error taxonomy
type ErrorMapper interface {
	MapStatus(status int, body string) error
	Category(err error) string
}

// DefaultErrorMapper implements the error taxonomy mapping
type DefaultErrorMapper struct{}

// NewDefaultErrorMapper creates a new error mapper
func NewDefaultErrorMapper() *DefaultErrorMapper {
	return &DefaultErrorMapper{}
}

// MapStatus turns a non-2xx vendor status into an opaque transport error.
// The body is carried verbatim; it is never interpreted.
func (m *DefaultErrorMapper) MapStatus(status int, body string) error {
	switch {
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return fmt.Errorf("http %d (access denied): %s: %w", status, body, ErrTransport)
	case status == http.StatusTooManyRequests:
		return fmt.Errorf("http %d (rate limited): %s: %w", status, body, ErrTransport)
	case status >= 500:
		return fmt.Errorf("http %d (upstream failure): %s: %w", status, body, ErrTransport)
	default:
		return fmt.Errorf("http %d: %s: %w", status, body, ErrTransport)
	}
}

// Category returns the error category name for an error
func (m *DefaultErrorMapper) Category(err error) string {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, context.Canceled):
		return "Canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return "DeadlineExceeded"
	case errors.Is(err, ErrConfiguration):
		return "ErrConfiguration"
	case errors.Is(err, ErrUnsupportedOperation):
		return "ErrUnsupportedOperation"
	case errors.Is(err, ErrMalformedResponse):
		return "ErrMalformedResponse"
	case errors.Is(err, ErrTransport):
		return "ErrTransport"
	case errors.Is(err, ErrInvalidInput):
		return "ErrInvalidInput"
	case errors.Is(err, ErrNotFound):
		return "ErrNotFound"
	case errors.Is(err, ErrInternal):
		return "ErrInternal"
	default:
		return "Unknown"
	}
}

// Wrap wraps an error with context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}

	return fmt.Errorf("%s: %w", message, err)
}

// WrapWithCategory wraps an error and tags it with a category. Both the
// category and the original error remain visible to errors.Is.
func WrapWithCategory(err error, message string, category error) error {
	if err == nil {
		return nil
	}

	return fmt.Errorf("%s: %w: %w", message, category, err)
}

// IsCategory checks if error belongs to specific category
func IsCategory(err error, category error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, category)
}

// Configuration wraps error as configuration error
func Configuration(message string) error {
	return fmt.Errorf("%s: %w", message, ErrConfiguration)
}

// Unsupported wraps error as unsupported operation
func Unsupported(message string) error {
	return fmt.Errorf("%s: %w", message, ErrUnsupportedOperation)
}

// InvalidInput wraps error as invalid input
func InvalidInput(message string) error {
	return fmt.Errorf("%s: %w", message, ErrInvalidInput)
}

// Transport wraps error as transport error
func Transport(message string) error {
	return fmt.Errorf("%s: %w", message, ErrTransport)
}

// NotFound wraps error as not found
func NotFound(message string) error {
	return fmt.Errorf("%s: %w", message, ErrNotFound)
}

// Internal wraps error as internal
func Internal(message string) error {
	return fmt.Errorf("%s: %w", message, ErrInternal)
}
