package gateway

import "errors"

var (
	// ErrValidation marks a request the gateway refuses to store.
	ErrValidation = errors.New("validation failed")
	// ErrMissingPayload is returned by uploadFile when fileData is absent.
	ErrMissingPayload   = errors.New("missing file payload")
	ErrUnknownAction    = errors.New("invalid action")
	ErrMalformedRequest = errors.New("malformed request")
)
