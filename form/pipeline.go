// Package form runs the guest travel form: validation, submission through
// the fallback transport and the two follow-up notifications.
package form

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Teddy-225/Event-Travel/models"
	"github.com/Teddy-225/Event-Travel/transport"
)

// ErrSubmitInProgress is returned when Submit is called while another
// submission has not returned yet.
var ErrSubmitInProgress = errors.New("submission already in progress")

type State int32

const (
	StateIdle State = iota
	StateValidating
	StateInvalid
	StateSubmitting
	StateConfirmed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateInvalid:
		return "invalid"
	case StateSubmitting:
		return "submitting"
	case StateConfirmed:
		return "confirmed"
	default:
		return "unknown"
	}
}

// Renderer is the view the pipeline drives. ShowError may be called from
// background goroutines after Submit has returned.
type Renderer interface {
	SetSubmitting(busy bool)
	ShowError(message string)
	ShowConfirmation()
	Reset()
}

type Pipeline struct {
	tx        transport.Transport
	validator *Validator
	composer  Composer
	event     models.EventFacts
	renderer  Renderer
	logger    *slog.Logger
	clock     func() time.Time

	busy  atomic.Bool
	state atomic.Int32
	tasks sync.WaitGroup
}

func NewPipeline(tx transport.Transport, v *Validator, c Composer, event models.EventFacts, r Renderer, logger *slog.Logger) *Pipeline {
	if c == nil {
		c = TemplateComposer{}
	}
	return &Pipeline{
		tx:        tx,
		validator: v,
		composer:  c,
		event:     event,
		renderer:  r,
		logger:    logger.With(slog.String("component", "form")),
		clock:     time.Now,
	}
}

func (p *Pipeline) State() State {
	return State(p.state.Load())
}

// Submit validates rec and, when valid, dispatches it and the two
// notifications without waiting for them, then shows the confirmation.
// The returned error is only ever a validation error or ErrSubmitInProgress;
// delivery problems reach the renderer later.
func (p *Pipeline) Submit(ctx context.Context, rec models.TravelRecord) error {
	if !p.busy.CompareAndSwap(false, true) {
		return ErrSubmitInProgress
	}
	p.renderer.SetSubmitting(true)
	defer func() {
		p.renderer.SetSubmitting(false)
		p.busy.Store(false)
	}()

	p.setState(StateValidating)
	rec = Normalize(rec)
	if err := p.validator.Validate(rec); err != nil {
		p.setState(StateInvalid)
		p.renderer.ShowError(UserMessage(err))
		p.setState(StateIdle)
		return err
	}

	p.setState(StateSubmitting)
	if rec.EventName == "" {
		rec.EventName = p.event.Name
	}
	rec.SubmissionTime = p.clock().UTC().Format(time.RFC3339)

	// Detached work outlives the caller's context.
	bg := context.WithoutCancel(ctx)
	p.detach(func() { p.submitRecord(bg, rec) })
	p.detach(func() { p.notifyHost(bg, rec) })
	p.detach(func() { p.acknowledgeGuest(bg, rec) })

	p.renderer.ShowConfirmation()
	p.renderer.Reset()
	p.setState(StateConfirmed)
	return nil
}

// Wait blocks until every detached task has finished.
func (p *Pipeline) Wait() {
	p.tasks.Wait()
}

func (p *Pipeline) detach(fn func()) {
	p.tasks.Add(1)
	go func() {
		defer p.tasks.Done()
		defer func() {
			if r := recover(); r != nil {
				p.logger.Error("background task panicked", slog.Any("panic", r))
			}
		}()
		fn()
	}()
}

func (p *Pipeline) submitRecord(ctx context.Context, rec models.TravelRecord) {
	res, err := p.tx.Send(ctx, transport.Request{
		Action: "addTravelDetails",
		Fields: map[string]any{"data": rec},
	})
	if err == nil && !res.OK() {
		msg := res.Reply.Error
		if msg == "" {
			msg = res.Reply.Message
		}
		err = &transport.ApplicationError{Message: msg}
	}
	if err != nil {
		p.logger.Error("travel details not saved",
			slog.String("guest", rec.GuestName),
			slog.String("error", err.Error()),
		)
		p.renderer.ShowError(UserMessage(err))
		return
	}
	p.logger.Info("travel details submitted",
		slog.String("guest", rec.GuestName),
		slog.Bool("confirmed", res.Readable),
	)
}

func (p *Pipeline) notifyHost(ctx context.Context, rec models.TravelRecord) {
	p.notify(ctx, transport.Request{
		Action: "sendHostNotification",
		Fields: map[string]any{
			"email":   p.event.AdminEmail,
			"message": p.composer.HostMessage(ctx, rec, p.event),
		},
	})
}

func (p *Pipeline) acknowledgeGuest(ctx context.Context, rec models.TravelRecord) {
	p.notify(ctx, transport.Request{
		Action: "sendGuestAcknowledgment",
		Fields: map[string]any{
			"guestEmail": rec.GuestEmail,
			"message":    p.composer.GuestMessage(ctx, rec, p.event),
		},
	})
}

// notify failures are logged and otherwise ignored.
func (p *Pipeline) notify(ctx context.Context, req transport.Request) {
	res, err := p.tx.Send(ctx, req)
	switch {
	case err != nil:
		p.logger.Warn("notification failed", slog.String("action", req.Action), slog.String("error", err.Error()))
	case !res.OK():
		p.logger.Warn("notification declined", slog.String("action", req.Action), slog.String("message", res.Reply.Message))
	default:
		p.logger.Debug("notification sent", slog.String("action", req.Action), slog.Bool("confirmed", res.Readable))
	}
}

func (p *Pipeline) setState(s State) {
	p.state.Store(int32(s))
}
