package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Teddy-225/Event-Travel/mailer"
	"github.com/Teddy-225/Event-Travel/models"
)

// HostSubject and GuestSubject build the notification subjects for an event.
func HostSubject(event string) string  { return "New Travel Details - " + event }
func GuestSubject(event string) string { return "Thank you for your travel details - " + event }

// sendHostNotification mails the organisers. Without an address there is
// nobody to notify and the call succeeds without sending.
func (g *Gateway) sendHostNotification(ctx context.Context, p Payload) (models.Envelope, error) {
	email := strings.TrimSpace(p.String("email"))
	if email == "" {
		return models.Succeeded(map[string]bool{"sent": false}, "No host email provided, nothing sent", g.now()), nil
	}

	err := g.mail.Send(ctx, mailer.Message{
		To:       email,
		Subject:  HostSubject(g.cfg.Event.Name),
		Body:     p.String("message"),
		FromName: g.cfg.Event.Name,
	})
	if err != nil {
		return models.Envelope{}, fmt.Errorf("failed to send host notification: %w", err)
	}
	g.logger.Info("host notified", slog.String("to", email))
	return models.Succeeded(map[string]bool{"sent": true}, "Host notification sent via email", g.now()), nil
}

func (g *Gateway) sendGuestAcknowledgment(ctx context.Context, p Payload) (models.Envelope, error) {
	email := strings.TrimSpace(p.String("guestEmail"))
	if email == "" {
		return models.Declined("No guest email provided", g.now()), nil
	}

	err := g.mail.Send(ctx, mailer.Message{
		To:       email,
		Subject:  GuestSubject(g.cfg.Event.Name),
		Body:     p.String("message"),
		FromName: g.cfg.Event.Name,
	})
	if err != nil {
		return models.Envelope{}, fmt.Errorf("failed to send guest acknowledgment: %w", err)
	}
	g.logger.Info("guest acknowledged", slog.String("to", email))
	return models.Succeeded(map[string]bool{"sent": true}, "Guest acknowledgment sent via email", g.now()), nil
}
