package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Teddy-225/Event-Travel/docstore"
	"github.com/Teddy-225/Event-Travel/models"
)

func (g *Gateway) addTravelDetails(ctx context.Context, p Payload) (models.Envelope, error) {
	data, ok := p.Object("data")
	if !ok || strings.TrimSpace(data.String("guestName")) == "" {
		return models.Envelope{}, fmt.Errorf("%w: missing required data", ErrValidation)
	}
	rec := travelRecord(data)

	if _, err := g.ensureHeader(ctx, g.cfg.SheetName, models.TravelHeaders); err != nil {
		return models.Envelope{}, fmt.Errorf("failed to add travel details to sheet: %w", err)
	}
	row := rec.Row(g.now(), g.cfg.Event.Name)
	if err := g.docs.AppendRow(ctx, g.cfg.SheetName, row); err != nil {
		return models.Envelope{}, fmt.Errorf("failed to add travel details to sheet: %w", err)
	}

	g.logger.Info("travel details stored",
		slog.String("guest", rec.GuestName),
		slog.String("event", row[len(row)-1]),
	)
	return models.Succeeded(models.RowObject(models.TravelHeaders, row), "Travel details added successfully", g.now()), nil
}

func travelRecord(p Payload) models.TravelRecord {
	return models.TravelRecord{
		GuestName:       p.String("guestName"),
		NumberOfGuests:  p.String("numberOfGuests"),
		ArrivalDate:     p.String("arrivalDate"),
		ArrivalTime:     p.String("arrivalTime"),
		ArrivalLocation: p.String("arrivalLocation"),
		TransportMode:   p.String("transportMode"),
		DepartureDate:   p.String("departureDate"),
		DepartureTime:   p.String("departureTime"),
		ContactNumber:   p.String("contactNumber"),
		GuestEmail:      p.String("guestEmail"),
		Notes:           p.String("notes"),
		EventName:       p.String("eventName"),
		SubmissionTime:  p.String("submissionTime"),
	}
}

func (g *Gateway) getTravelData(ctx context.Context, _ Payload) (models.Envelope, error) {
	records, err := g.travelData(ctx)
	if err != nil {
		return models.Envelope{}, fmt.Errorf("failed to retrieve travel data: %w", err)
	}
	return models.Succeeded(records, "Travel data retrieved successfully", g.now()), nil
}

// travelData returns every row after the header as an object. The result is
// never nil so it encodes as [] rather than null.
func (g *Gateway) travelData(ctx context.Context) ([]map[string]string, error) {
	rows, err := g.docs.ReadAll(ctx, g.cfg.SheetName)
	if errors.Is(err, docstore.ErrSheetNotFound) {
		return []map[string]string{}, nil
	}
	if err != nil {
		return nil, err
	}
	if len(rows) <= 1 {
		return []map[string]string{}, nil
	}

	headers := rows[0]
	out := make([]map[string]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		out = append(out, models.RowObject(headers, row))
	}
	return out, nil
}

// setupSheets makes sure both sheets exist and start with their header row.
func (g *Gateway) setupSheets(ctx context.Context, _ Payload) (models.Envelope, error) {
	created := make(map[string]bool, 2)
	for _, s := range []struct {
		name   string
		header []string
	}{
		{g.cfg.SheetName, models.TravelHeaders},
		{g.cfg.AlbumSheetName, models.AlbumHeaders},
	} {
		if _, err := g.docs.EnsureSheet(ctx, s.name); err != nil {
			return models.Envelope{}, fmt.Errorf("failed to create sheet: %w", err)
		}
		wrote, err := g.ensureHeader(ctx, s.name, s.header)
		if err != nil {
			return models.Envelope{}, fmt.Errorf("failed to create sheet: %w", err)
		}
		created[s.name] = wrote
	}
	return models.Succeeded(created, "Sheets are ready", g.now()), nil
}

// testSetup checks that the document store answers for the travel sheet.
func (g *Gateway) testSetup(ctx context.Context, _ Payload) (models.Envelope, error) {
	n, err := g.docs.RowCount(ctx, g.cfg.SheetName)
	if err != nil {
		return models.Envelope{}, fmt.Errorf("setup test failed: %w", err)
	}
	return models.Succeeded(map[string]any{
		"sheet": g.cfg.SheetName,
		"rows":  n,
	}, "Setup test completed", g.now()), nil
}
