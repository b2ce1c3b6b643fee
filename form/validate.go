package form

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jinzhu/now"

	"github.com/Teddy-225/Event-Travel/models"
)

const dateLayout = "2006-01-02"

var (
	phonePattern = regexp.MustCompile(`^\+?[0-9\s\-()]{10,}$`)
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// fieldLabels names the required fields the way the form shows them.
var fieldLabels = map[string]string{
	"GuestName":       "Guest Name",
	"NumberOfGuests":  "Number of Guests",
	"ArrivalDate":     "Arrival Date",
	"ArrivalTime":     "Arrival Time",
	"ArrivalLocation": "Arrival Location",
	"TransportMode":   "Transport Mode",
	"ContactNumber":   "Contact Number",
	"GuestEmail":      "Email Address",
}

// ValidationError is a problem with the guest's input. It is shown to the
// guest and the record is not sent.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Validator checks a record in a fixed order and stops at the first problem.
type Validator struct {
	validate *validator.Validate
	cutoff   time.Time
	clock    func() time.Time
}

// NewValidator builds a validator. A non-zero cutoff rejects arrivals after it.
func NewValidator(cutoff time.Time) *Validator {
	v := validator.New()
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("looseemail", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})
	return &Validator{validate: v, cutoff: cutoff, clock: time.Now}
}

func (v *Validator) Validate(rec models.TravelRecord) error {
	rec = Normalize(rec)

	if err := v.validate.Struct(rec); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			field := verrs[0].StructField()
			return &ValidationError{Field: field, Message: fmt.Sprintf("Please fill in the %s field.", fieldLabels[field])}
		}
		return err
	}

	arrival, err := time.ParseInLocation(dateLayout, rec.ArrivalDate, time.Local)
	if err != nil {
		return &ValidationError{Field: "ArrivalDate", Message: "Please enter a valid arrival date."}
	}
	today := now.With(v.clock()).BeginningOfDay()
	if arrival.Before(today) {
		return &ValidationError{Field: "ArrivalDate", Message: "Arrival date cannot be in the past. Please select a future date."}
	}
	if !v.cutoff.IsZero() && arrival.After(v.cutoff) {
		return &ValidationError{
			Field:   "ArrivalDate",
			Message: fmt.Sprintf("Arrival date cannot be after %s. Please check your dates.", FormatDate(v.cutoff.Format(dateLayout))),
		}
	}

	if rec.DepartureDate != "" {
		departure, err := time.ParseInLocation(dateLayout, rec.DepartureDate, time.Local)
		if err != nil {
			return &ValidationError{Field: "DepartureDate", Message: "Please enter a valid departure date."}
		}
		if departure.Before(arrival) {
			return &ValidationError{Field: "DepartureDate", Message: "Departure date cannot be before arrival date. Please check your dates."}
		}
	}

	if err := v.validate.Var(rec.ContactNumber, "phone"); err != nil {
		return &ValidationError{Field: "ContactNumber", Message: "Please enter a valid contact number (at least 10 digits)."}
	}
	if err := v.validate.Var(rec.GuestEmail, "looseemail"); err != nil {
		return &ValidationError{Field: "GuestEmail", Message: "Please enter a valid email address."}
	}
	return nil
}

// Normalize trims surrounding whitespace from every text field.
func Normalize(rec models.TravelRecord) models.TravelRecord {
	for _, f := range []*string{
		&rec.GuestName, &rec.NumberOfGuests, &rec.ArrivalDate, &rec.ArrivalTime,
		&rec.ArrivalLocation, &rec.TransportMode, &rec.DepartureDate, &rec.DepartureTime,
		&rec.ContactNumber, &rec.GuestEmail, &rec.Notes,
	} {
		*f = strings.TrimSpace(*f)
	}
	return rec
}
