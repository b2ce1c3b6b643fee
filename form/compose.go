package form

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/Teddy-225/Event-Travel/models"
)

// Composer writes the notification bodies for a submitted record.
type Composer interface {
	HostMessage(ctx context.Context, rec models.TravelRecord, event models.EventFacts) string
	GuestMessage(ctx context.Context, rec models.TravelRecord, event models.EventFacts) string
}

// FormatDate renders a yyyy-mm-dd date as "02 Jan 2006"; anything else is
// returned unchanged.
func FormatDate(s string) string {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return s
	}
	return t.Format("02 Jan 2006")
}

// TemplateComposer fills fixed plain-text templates.
type TemplateComposer struct{}

func (TemplateComposer) HostMessage(_ context.Context, rec models.TravelRecord, event models.EventFacts) string {
	departure := "Not specified yet"
	if rec.HasDeparture() {
		departure = fmt.Sprintf("%s at %s", FormatDate(rec.DepartureDate), rec.DepartureTime)
	}

	var b strings.Builder
	b.WriteString("New Travel Details Received!\n\n")
	fmt.Fprintf(&b, "Guest: %s\n", rec.GuestName)
	fmt.Fprintf(&b, "Number of Guests: %s\n", rec.NumberOfGuests)
	fmt.Fprintf(&b, "Arrival: %s at %s\n", FormatDate(rec.ArrivalDate), rec.ArrivalTime)
	fmt.Fprintf(&b, "From: %s\n", rec.ArrivalLocation)
	fmt.Fprintf(&b, "Transport: %s\n", rec.TransportMode)
	fmt.Fprintf(&b, "Departure: %s\n", departure)
	fmt.Fprintf(&b, "Contact: %s\n", rec.ContactNumber)
	fmt.Fprintf(&b, "Email: %s\n", orDefault(rec.GuestEmail, models.NotProvided))
	fmt.Fprintf(&b, "Notes: %s\n", orDefault(rec.Notes, "None"))
	fmt.Fprintf(&b, "Event: %s\n", event.Name)
	return b.String()
}

func (TemplateComposer) GuestMessage(_ context.Context, rec models.TravelRecord, event models.EventFacts) string {
	departure := "Departure: To be confirmed later"
	if rec.HasDeparture() {
		departure = fmt.Sprintf("Departure: %s at %s", FormatDate(rec.DepartureDate), rec.DepartureTime)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Dear %s,\n\n", rec.GuestName)
	fmt.Fprintf(&b, "Thank you for sharing your travel details for %s!\n", event.Name)
	fmt.Fprintf(&b, "We're so excited to celebrate this special moment with you and your %s guest(s).\n\n", rec.NumberOfGuests)
	b.WriteString("Your Details:\n")
	fmt.Fprintf(&b, "- Arrival: %s at %s\n", FormatDate(rec.ArrivalDate), rec.ArrivalTime)
	fmt.Fprintf(&b, "- From: %s\n", rec.ArrivalLocation)
	fmt.Fprintf(&b, "- Transport: %s\n", rec.TransportMode)
	fmt.Fprintf(&b, "- %s\n\n", departure)
	b.WriteString("Event Details:\n")
	fmt.Fprintf(&b, "Date: %s\n", orDefault(event.Date, "To be announced"))
	fmt.Fprintf(&b, "Venue: %s\n\n", orDefault(event.Venue, "To be announced"))
	b.WriteString("We can't wait to see you soon!\n\n")
	b.WriteString("With love,\nThe hosts\n")
	return b.String()
}

// DefaultGeminiModel is used when GeminiComposer.Model is empty.
const DefaultGeminiModel = "gemini-2.5-flash"

// contentGenerator is the part of *genai.Models the composer needs.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiComposer rewrites the guest acknowledgment into a warmer note with
// Gemini. The host message stays on the template, and any model failure
// falls back to the template text.
type GeminiComposer struct {
	Template TemplateComposer
	Model    string

	models contentGenerator
	logger *slog.Logger
}

func NewGeminiComposer(ctx context.Context, apiKey string, logger *slog.Logger) (*GeminiComposer, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiComposer{
		Model:  DefaultGeminiModel,
		models: client.Models,
		logger: logger.With(slog.String("component", "composer")),
	}, nil
}

func (g *GeminiComposer) HostMessage(ctx context.Context, rec models.TravelRecord, event models.EventFacts) string {
	return g.Template.HostMessage(ctx, rec, event)
}

func (g *GeminiComposer) GuestMessage(ctx context.Context, rec models.TravelRecord, event models.EventFacts) string {
	base := g.Template.GuestMessage(ctx, rec, event)

	model := g.Model
	if model == "" {
		model = DefaultGeminiModel
	}
	resp, err := g.models.GenerateContent(ctx, model, genai.Text(guestPrompt(base)), &genai.GenerateContentConfig{})
	if err != nil {
		g.logger.Warn("gemini rewrite failed, using template", slog.String("error", err.Error()))
		return base
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return base
	}
	return text + "\n"
}

func guestPrompt(message string) string {
	return fmt.Sprintf(`You write short, warm thank-you emails for event hosts.
Rewrite the email below so it sounds personal and joyful. Keep every date,
time, place and number exactly as written. Plain text only, no subject line.

Email:
%s`, message)
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
