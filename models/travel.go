package models

import (
	"strings"
	"time"
)

// Placeholders written instead of empty cells.
const (
	NotProvided  = "Not provided"
	NotSpecified = "Not specified"
	NoNotes      = "No notes"
)

// TravelHeaders is the fixed column order of the travel sheet.
var TravelHeaders = []string{
	"Timestamp", "Guest Name", "Number of Guests", "Arrival Date", "Arrival Time",
	"Arrival Location", "Transport Mode", "Departure Date", "Departure Time",
	"Contact Number", "Email Address", "Notes", "Event Name",
}

// TravelRecord is one guest's RSVP and travel details.
type TravelRecord struct {
	GuestName       string `json:"guestName" validate:"required"`
	NumberOfGuests  string `json:"numberOfGuests" validate:"required"`
	ArrivalDate     string `json:"arrivalDate" validate:"required"`
	ArrivalTime     string `json:"arrivalTime" validate:"required"`
	ArrivalLocation string `json:"arrivalLocation" validate:"required"`
	TransportMode   string `json:"transportMode" validate:"required"`
	DepartureDate   string `json:"departureDate,omitempty"`
	DepartureTime   string `json:"departureTime,omitempty"`
	ContactNumber   string `json:"contactNumber" validate:"required"`
	GuestEmail      string `json:"guestEmail" validate:"required"`
	Notes           string `json:"notes,omitempty"`
	EventName       string `json:"eventName,omitempty"`
	SubmissionTime  string `json:"submissionTime,omitempty"`
}

// Row renders the record in TravelHeaders order. Blank optional fields become
// placeholders and a blank event name falls back to defaultEvent.
func (r TravelRecord) Row(ts time.Time, defaultEvent string) []string {
	return []string{
		ts.UTC().Format(time.RFC3339),
		orDefault(r.GuestName, NotProvided),
		orDefault(r.NumberOfGuests, NotProvided),
		orDefault(r.ArrivalDate, NotProvided),
		orDefault(r.ArrivalTime, NotProvided),
		orDefault(r.ArrivalLocation, NotProvided),
		orDefault(r.TransportMode, NotProvided),
		orDefault(r.DepartureDate, NotSpecified),
		orDefault(r.DepartureTime, NotSpecified),
		orDefault(r.ContactNumber, NotProvided),
		orDefault(r.GuestEmail, NotProvided),
		orDefault(r.Notes, NoNotes),
		orDefault(r.EventName, defaultEvent),
	}
}

// HasDeparture reports whether both departure fields were filled in.
func (r TravelRecord) HasDeparture() bool {
	return strings.TrimSpace(r.DepartureDate) != "" && strings.TrimSpace(r.DepartureTime) != ""
}

// RowObject turns a sheet row into a key/value object keyed by the header with
// whitespace removed and letters lower-cased ("Guest Name" -> "guestname").
func RowObject(headers, row []string) map[string]string {
	obj := make(map[string]string, len(headers))
	for i, header := range headers {
		key := HeaderKey(header)
		if i < len(row) {
			obj[key] = row[i]
		} else {
			obj[key] = ""
		}
	}
	return obj
}

func HeaderKey(header string) string {
	return strings.ToLower(strings.Join(strings.Fields(header), ""))
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
