// Package gateway dispatches named actions against the document store, the
// blob store and the mail channel, and wraps every outcome in an Envelope.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Teddy-225/Event-Travel/blobstore"
	"github.com/Teddy-225/Event-Travel/config"
	"github.com/Teddy-225/Event-Travel/docstore"
	"github.com/Teddy-225/Event-Travel/mailer"
	"github.com/Teddy-225/Event-Travel/models"
)

// Action names accepted by Dispatch.
const (
	ActionAddTravelDetails        = "addTravelDetails"
	ActionGetTravelData           = "getTravelData"
	ActionGetOrCreateAlbum        = "getOrCreateAlbum"
	ActionUploadFile              = "uploadFile"
	ActionSendHostNotification    = "sendHostNotification"
	ActionSendGuestAcknowledgment = "sendGuestAcknowledgment"
	ActionSetupSheets             = "setupSheets"
	ActionTestSetup               = "testSetup"
)

type actionFunc func(ctx context.Context, p Payload) (models.Envelope, error)

// Deps are the external systems the gateway talks to.
type Deps struct {
	Docs   docstore.Store
	Blobs  blobstore.Store
	Mail   mailer.Sender
	Logger *slog.Logger
}

type Gateway struct {
	cfg    *config.Config
	docs   docstore.Store
	blobs  blobstore.Store
	mail   mailer.Sender
	logger *slog.Logger

	albums  *albumCache
	resolve singleflight.Group
	// sheetLocks holds a *sync.Mutex per sheet for header creation.
	sheetLocks sync.Map
	actions    map[string]actionFunc
	now        func() time.Time
}

func New(cfg *config.Config, deps Deps) *Gateway {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	g := &Gateway{
		cfg:    cfg,
		docs:   deps.Docs,
		blobs:  deps.Blobs,
		mail:   deps.Mail,
		logger: logger.With(slog.String("component", "gateway")),
		albums: newAlbumCache(cfg.AlbumCacheTTL),
		now:    time.Now,
	}
	g.actions = map[string]actionFunc{
		ActionAddTravelDetails:        g.addTravelDetails,
		ActionGetTravelData:           g.getTravelData,
		ActionGetOrCreateAlbum:        g.getOrCreateAlbum,
		ActionUploadFile:              g.uploadFile,
		ActionSendHostNotification:    g.sendHostNotification,
		ActionSendGuestAcknowledgment: g.sendGuestAcknowledgment,
		ActionSetupSheets:             g.setupSheets,
		ActionTestSetup:               g.testSetup,
	}
	return g
}

// Dispatch runs one action. It never returns an error: failures and panics
// come back as envelopes with success=false.
func (g *Gateway) Dispatch(ctx context.Context, p Payload) (env models.Envelope) {
	log := g.logger.With(slog.String("action", p.Action))

	defer func() {
		if r := recover(); r != nil {
			log.Error("action panicked", slog.Any("panic", r))
			actionsTotal.WithLabelValues(metricAction(p.Action), "error").Inc()
			env = models.Failed(fmt.Errorf("internal error: %v", r), g.now())
		}
	}()

	action, ok := g.actions[p.Action]
	if !ok {
		actionsTotal.WithLabelValues("unknown", "error").Inc()
		return models.Failed(fmt.Errorf("%w: %s", ErrUnknownAction, p.Action), g.now())
	}

	env, err := action(ctx, p)
	if err != nil {
		if errors.Is(err, ErrValidation) || errors.Is(err, ErrMissingPayload) {
			log.Warn("action rejected", slog.String("error", err.Error()))
		} else {
			log.Error("action failed", slog.String("error", err.Error()))
		}
		actionsTotal.WithLabelValues(p.Action, "error").Inc()
		return models.Failed(err, g.now())
	}

	result := "success"
	if !env.Success {
		result = "declined"
	}
	actionsTotal.WithLabelValues(p.Action, result).Inc()
	log.Debug("action completed", slog.String("result", result))
	return env
}

// Health is the liveness payload for plain GET requests.
func (g *Gateway) Health() models.Health {
	return models.Health{
		Status:    "success",
		Message:   "Event gateway is working!",
		Timestamp: g.now().UTC(),
		Event: &models.EventFacts{
			Name:       g.cfg.Event.Name,
			Date:       g.cfg.Event.Date,
			Venue:      g.cfg.Event.Venue,
			AdminEmail: g.cfg.AdminEmail,
		},
		Uploads: &models.UploadPolicy{
			AllowedTypes: g.cfg.AllowedMIMETypes,
			MaxBytes:     g.cfg.MaxUploadBytes,
		},
	}
}

func metricAction(action string) string {
	if action == "" {
		return "unknown"
	}
	return action
}

// ensureHeader writes header as the first row of an empty sheet. Callers on
// the same sheet are serialised so concurrent first writes add one header.
func (g *Gateway) ensureHeader(ctx context.Context, sheet string, header []string) (bool, error) {
	mu, _ := g.sheetLocks.LoadOrStore(sheet, &sync.Mutex{})
	mu.(*sync.Mutex).Lock()
	defer mu.(*sync.Mutex).Unlock()

	n, err := g.docs.RowCount(ctx, sheet)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}
	if err := g.docs.AppendRow(ctx, sheet, header); err != nil {
		return false, err
	}
	return true, nil
}
