package form

import (
	"errors"
	"net/http"

	"github.com/Teddy-225/Event-Travel/transport"
)

// UserMessage turns a submission failure into the text shown to the guest.
func UserMessage(err error) string {
	var (
		cfgErr *transport.ConfigurationError
		netErr *transport.TransportError
		appErr *transport.ApplicationError
		valErr *ValidationError
	)
	switch {
	case errors.As(err, &valErr):
		return valErr.Message
	case errors.As(err, &cfgErr):
		return "System configuration error. Please contact the event organizers."
	case errors.As(err, &netErr):
		return "Network error. Please check your internet connection and try again."
	case errors.As(err, &appErr) && appErr.Status == http.StatusForbidden:
		return "Access denied. Please contact the event organizers."
	case errors.As(err, &appErr) && appErr.Status == http.StatusNotFound:
		return "Service not found. Please contact the event organizers."
	case errors.As(err, &appErr):
		return "Unable to save your data: " + appErr.Message
	case err == nil:
		return ""
	default:
		return "Unable to save your data: " + err.Error()
	}
}
