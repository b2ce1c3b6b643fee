// Package mailer delivers plain-text notification emails.
//
// The gateway only depends on Sender; Gmail is the production transport and
// NoopSender logs messages when mail is disabled.
package mailer

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/mail"
	"strings"
	"time"

	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// ErrNoRecipient is returned when a message has no To address.
var ErrNoRecipient = errors.New("message has no recipient")

// Message is a single plain-text email. FromName is the display name shown
// to the recipient.
type Message struct {
	To       string
	Subject  string
	Body     string
	FromName string
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// GmailSender sends through the Gmail API as the authorised account.
type GmailSender struct {
	svc  *gmail.Service
	from string
	now  func() time.Time
}

// NewGmailSender builds a sender for the account behind opts. from is the
// address placed in the From header.
func NewGmailSender(ctx context.Context, from string, opts ...option.ClientOption) (*GmailSender, error) {
	opts = append(opts, option.WithScopes(gmail.GmailSendScope))
	svc, err := gmail.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create gmail service: %w", err)
	}
	return &GmailSender{svc: svc, from: from, now: time.Now}, nil
}

func (g *GmailSender) Send(ctx context.Context, msg Message) error {
	if strings.TrimSpace(msg.To) == "" {
		return ErrNoRecipient
	}
	raw := buildRaw(g.from, msg, g.now())

	_, err := g.svc.Users.Messages.
		Send("me", &gmail.Message{Raw: base64.URLEncoding.EncodeToString(raw)}).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("send mail to %s: %w", msg.To, err)
	}
	return nil
}

// buildRaw renders an RFC 2822 message.
func buildRaw(from string, msg Message, now time.Time) []byte {
	var b strings.Builder
	if from != "" {
		addr := mail.Address{Name: msg.FromName, Address: from}
		b.WriteString("From: " + addr.String() + "\r\n")
	}
	b.WriteString("To: " + msg.To + "\r\n")
	b.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", msg.Subject) + "\r\n")
	b.WriteString("Date: " + now.Format(time.RFC1123Z) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(msg.Body, "\n", "\r\n"))
	return []byte(b.String())
}

// NoopSender drops messages after logging them.
type NoopSender struct {
	logger *slog.Logger
}

func NewNoopSender(logger *slog.Logger) *NoopSender {
	return &NoopSender{logger: logger.With(slog.String("component", "mailer"))}
}

func (n *NoopSender) Send(_ context.Context, msg Message) error {
	if strings.TrimSpace(msg.To) == "" {
		return ErrNoRecipient
	}
	n.logger.Info("mail delivery disabled, dropping message",
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
	)
	return nil
}
