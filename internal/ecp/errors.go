package ecp

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument is returned before any request is made when an input is rejected
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrUnsupportedOperation is returned when the device does not expose a capability
	ErrUnsupportedOperation = errors.New("unsupported operation")

	// ErrMalformedResponse is returned when a response lacks a structurally required field
	ErrMalformedResponse = errors.New("malformed response")
)

// ProtocolError reports a non-success HTTP status from the device
type ProtocolError struct {
	StatusCode int
	Method     string
	URL        string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("%d: ECP path not defined: %s %s", e.StatusCode, e.Method, e.URL)
}

// IsProtocolError checks if an error is, or wraps, a ProtocolError
func IsProtocolError(err error) bool {
	var protoErr *ProtocolError
	return errors.As(err, &protoErr)
}

func invalidArgument(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

func errorMissingField(element, field string) error {
	return fmt.Errorf("%w: <%s> has no %s", ErrMalformedResponse, element, field)
}
