package transport

import (
	"errors"
	"fmt"
)

// ErrNotConfigured is wrapped by ConfigurationError.
var ErrNotConfigured = errors.New("gateway url not configured")

// TransportError is a network-level failure: the request never produced a
// readable response. Only this kind of failure triggers the opaque fallback.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ApplicationError means the gateway answered but refused the request.
type ApplicationError struct {
	Status  int
	Message string
}

func (e *ApplicationError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("gateway returned %d: %s", e.Status, e.Message)
	}
	return e.Message
}

// ConfigurationError reports a missing gateway endpoint.
type ConfigurationError struct {
	Setting string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Setting, ErrNotConfigured)
}

func (e *ConfigurationError) Unwrap() error { return ErrNotConfigured }
