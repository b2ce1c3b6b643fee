package handler

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Teddy-225/Event-Travel/gateway"
	"github.com/Teddy-225/Event-Travel/models"
)

// Dispatcher runs gateway actions.
type Dispatcher interface {
	Dispatch(ctx context.Context, p gateway.Payload) models.Envelope
	Health() models.Health
}

// GatewayHandler exposes the gateway over HTTP. Every response is 200 with
// the outcome carried in the envelope.
type GatewayHandler struct {
	gw     Dispatcher
	logger *slog.Logger
}

func NewGatewayHandler(gw Dispatcher, logger *slog.Logger) *GatewayHandler {
	return &GatewayHandler{gw: gw, logger: logger.With(slog.String("component", "handler"))}
}

// Get serves getTravelData reads; any other query gets the health payload.
func (h *GatewayHandler) Get(c *fiber.Ctx) error {
	if c.Query("action") == gateway.ActionGetTravelData {
		env := h.gw.Dispatch(c.UserContext(), gateway.FromValues(c.Queries()))
		return c.Status(fiber.StatusOK).JSON(env)
	}
	return c.Status(fiber.StatusOK).JSON(h.gw.Health())
}

// Post accepts JSON (whatever the declared content type, since opaque
// clients send text/plain), URL-encoded forms and multipart forms.
func (h *GatewayHandler) Post(c *fiber.Ctx) error {
	p, err := h.payload(c)
	if err != nil {
		h.logger.Warn("unreadable request",
			slog.String("content_type", c.Get(fiber.HeaderContentType)),
			slog.String("error", err.Error()),
		)
		return c.Status(fiber.StatusOK).JSON(models.Failed(err, time.Now()))
	}
	return c.Status(fiber.StatusOK).JSON(h.gw.Dispatch(c.UserContext(), p))
}

func (h *GatewayHandler) payload(c *fiber.Ctx) (gateway.Payload, error) {
	contentType := strings.ToLower(c.Get(fiber.HeaderContentType))

	switch {
	case strings.HasPrefix(contentType, fiber.MIMEMultipartForm):
		return multipartPayload(c)
	case strings.HasPrefix(contentType, fiber.MIMEApplicationForm):
		values := make(map[string]string)
		c.Request().PostArgs().VisitAll(func(k, v []byte) {
			values[string(k)] = string(v)
		})
		return gateway.FromValues(values), nil
	default:
		return gateway.ParseJSON(c.Body())
	}
}

// multipartPayload takes the first value of every field. A "file" part is
// folded into fileData and fills in name, type and size when absent.
func multipartPayload(c *fiber.Ctx) (gateway.Payload, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return gateway.Payload{}, fmt.Errorf("%w: %v", gateway.ErrMalformedRequest, err)
	}

	values := make(map[string]string, len(form.Value)+4)
	for k, v := range form.Value {
		if len(v) > 0 {
			values[k] = v[0]
		}
	}

	if files := form.File["file"]; len(files) > 0 && values["fileData"] == "" {
		fh := files[0]
		f, err := fh.Open()
		if err != nil {
			return gateway.Payload{}, fmt.Errorf("open uploaded file: %w", err)
		}
		defer f.Close()

		data, err := io.ReadAll(f)
		if err != nil {
			return gateway.Payload{}, fmt.Errorf("read uploaded file: %w", err)
		}
		values["fileData"] = base64.StdEncoding.EncodeToString(data)
		setDefault(values, "fileName", fh.Filename)
		setDefault(values, "mimeType", fh.Header.Get(fiber.HeaderContentType))
		setDefault(values, "fileSize", strconv.Itoa(len(data)))
	}
	return gateway.FromValues(values), nil
}

func setDefault(values map[string]string, key, val string) {
	if values[key] == "" {
		values[key] = val
	}
}
