package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/Teddy-225/Event-Travel/form"
	"github.com/Teddy-225/Event-Travel/models"
	"github.com/Teddy-225/Event-Travel/transport"
)

func newRSVPCommand(ctx *commandContext) *cobra.Command {
	var (
		rec    models.TravelRecord
		cutoff string
	)
	cmd := &cobra.Command{
		Use:   "rsvp",
		Short: "Submit a guest's travel details",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var limit time.Time
			if strings.TrimSpace(cutoff) != "" {
				t, err := time.ParseInLocation("2006-01-02", cutoff, time.Local)
				if err != nil {
					return fmt.Errorf("invalid --cutoff %q: %w", cutoff, err)
				}
				limit = t
			}

			logger := ctx.logger(cmd)
			tx, err := ctx.transport(cmd)
			if err != nil {
				return err
			}

			// The gateway knows the event and the hosts' address.
			var event models.EventFacts
			if h, err := transport.Health(cmd.Context(), ctx.httpClient(), ctx.url()); err == nil && h.Event != nil {
				event = *h.Event
			} else if err != nil {
				logger.Warn("event details unavailable", slog.String("error", err.Error()))
			}

			var composer form.Composer = form.TemplateComposer{}
			if key := envOr("GEMINI_API_KEY", ""); key != "" {
				gc, err := form.NewGeminiComposer(cmd.Context(), key, logger)
				if err != nil {
					logger.Warn("gemini unavailable, using templates", slog.String("error", err.Error()))
				} else {
					composer = gc
				}
			}

			out := cmd.OutOrStdout()
			r := newTerminalRenderer(out, shouldColorize(out))
			p := form.NewPipeline(tx, form.NewValidator(limit), composer, event, r, logger)

			err = p.Submit(cmd.Context(), rec)
			p.Wait()

			var verr *form.ValidationError
			if errors.As(err, &verr) {
				return errReported
			}
			if err != nil {
				return err
			}
			if r.failed() {
				return errReported
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&rec.GuestName, "guest-name", "", "Guest name")
	f.StringVar(&rec.NumberOfGuests, "guests", "", "Number of guests in the party")
	f.StringVar(&rec.ArrivalDate, "arrival-date", "", "Arrival date (YYYY-MM-DD)")
	f.StringVar(&rec.ArrivalTime, "arrival-time", "", "Arrival time (HH:MM)")
	f.StringVar(&rec.ArrivalLocation, "from", "", "Where the guest is arriving from")
	f.StringVar(&rec.TransportMode, "transport", "", "Transport mode")
	f.StringVar(&rec.DepartureDate, "departure-date", "", "Departure date (YYYY-MM-DD)")
	f.StringVar(&rec.DepartureTime, "departure-time", "", "Departure time (HH:MM)")
	f.StringVar(&rec.ContactNumber, "phone", "", "Contact number")
	f.StringVar(&rec.GuestEmail, "email", "", "Guest email address")
	f.StringVar(&rec.Notes, "notes", "", "Anything the hosts should know")
	f.StringVar(&cutoff, "cutoff", "", "Latest accepted arrival date (YYYY-MM-DD)")
	return cmd
}

// terminalRenderer prints form feedback as status lines. Errors may arrive
// from background goroutines after the confirmation.
type terminalRenderer struct {
	mu       sync.Mutex
	out      io.Writer
	colorize bool
	errors   int
}

func newTerminalRenderer(out io.Writer, colorize bool) *terminalRenderer {
	return &terminalRenderer{out: out, colorize: colorize}
}

func (t *terminalRenderer) SetSubmitting(busy bool) {
	if busy {
		t.println(renderStatus(statusInfo, "Submitting...", t.colorize))
	}
}

func (t *terminalRenderer) ShowError(message string) {
	t.mu.Lock()
	t.errors++
	t.mu.Unlock()
	t.println(renderStatus(statusError, message, t.colorize))
}

func (t *terminalRenderer) ShowConfirmation() {
	t.println(renderStatus(statusOK, "Thank you! Your travel details have been submitted.", t.colorize))
}

func (t *terminalRenderer) Reset() {}

func (t *terminalRenderer) failed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.errors > 0
}

func (t *terminalRenderer) println(s string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.out, s)
}
