package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for different categories
var (
	// ErrConfiguration - a required credential or construction parameter is missing or invalid (fatal, raised once at construction)
	ErrConfiguration = errors.New("configuration error")

	// ErrUnsupportedOperation - the capability is not implemented by this vendor surface (fatal for the call, never retried)
	ErrUnsupportedOperation = errors.New("unsupported operation")

	// ErrMalformedResponse - vendor payload does not have the expected shape
	ErrMalformedResponse = errors.New("malformed response")

	// ErrTransport - network or HTTP failure reported by the transport
	ErrTransport = errors.New("transport error")

	// ErrInvalidInput - the caller violated the canonical message contract
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound - resource not found
	ErrNotFound = errors.New("not found")

	// ErrInternal - internal error
	ErrInternal = errors.New("internal error")
)

// MalformedResponseError reports a vendor payload that could not be
// converted. Cause holds the original decode or shape failure.
type MalformedResponseError struct {
	Reason string
	Cause  error
}

func (e *MalformedResponseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("malformed response: %s: %v", e.Reason, e.Cause)
	}
	return fmt.Sprintf("malformed response: %s", e.Reason)
}

func (e *MalformedResponseError) Unwrap() error { return e.Cause }

// Is lets errors.Is(err, ErrMalformedResponse) match without losing Cause.
func (e *MalformedResponseError) Is(target error) bool {
	return target == ErrMalformedResponse
}

var _ error = (*MalformedResponseError)(nil)

// Malformed builds a MalformedResponseError.
func Malformed(reason string, cause error) error {
	return &MalformedResponseError{Reason: reason, Cause: cause}
}
