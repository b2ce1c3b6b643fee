package models

import "time"

// Envelope is the single response shape returned by every gateway action.
// Exactly one of Data and Error carries the outcome; Success agrees with it.
type Envelope struct {
	Success   bool      `json:"success"`
	Data      any       `json:"data,omitempty"`
	Message   string    `json:"message,omitempty"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Health is the liveness payload returned for GET requests without a known action.
type Health struct {
	Status    string        `json:"status"`
	Message   string        `json:"message"`
	Timestamp time.Time     `json:"timestamp"`
	Event     *EventFacts   `json:"event,omitempty"`
	Uploads   *UploadPolicy `json:"uploads,omitempty"`
}

// UploadPolicy is what the gateway accepts for uploadFile. An empty
// AllowedTypes list accepts any type.
type UploadPolicy struct {
	AllowedTypes []string `json:"allowedTypes"`
	MaxBytes     int64    `json:"maxBytes,omitempty"`
}

// EventFacts are the public event details clients use to build notification text.
type EventFacts struct {
	Name       string `json:"name"`
	Date       string `json:"date,omitempty"`
	Venue      string `json:"venue,omitempty"`
	AdminEmail string `json:"adminEmail,omitempty"`
}

func Succeeded(data any, message string, now time.Time) Envelope {
	return Envelope{Success: true, Data: data, Message: message, Timestamp: now.UTC()}
}

func Failed(err error, now time.Time) Envelope {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return Envelope{Success: false, Error: msg, Timestamp: now.UTC()}
}

// Declined is a non-exceptional negative outcome: success is false but nothing went wrong.
func Declined(message string, now time.Time) Envelope {
	return Envelope{Success: false, Message: message, Timestamp: now.UTC()}
}
