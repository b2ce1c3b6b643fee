package handler

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Teddy-225/Event-Travel/blobstore"
	"github.com/Teddy-225/Event-Travel/config"
	"github.com/Teddy-225/Event-Travel/docstore"
	"github.com/Teddy-225/Event-Travel/gateway"
	"github.com/Teddy-225/Event-Travel/mailer"
)

type envelope struct {
	Success   bool            `json:"success"`
	Data      json.RawMessage `json:"data"`
	Message   string          `json:"message"`
	Error     string          `json:"error"`
	Timestamp time.Time       `json:"timestamp"`
}

func newTestApp(t *testing.T) (*fiber.App, *docstore.MemoryStore) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	docs := docstore.NewMemoryStore()

	gw := gateway.New(&config.Config{
		SheetName:       "Travel Details",
		AlbumSheetName:  "Album Uploads",
		AlbumFolderName: "Event Photo Album",
		Event:           config.Event{Name: "Roka Celebration"},
		AlbumCacheTTL:   time.Minute,
	}, gateway.Deps{
		Docs:   docs,
		Blobs:  blobstore.NewMemoryStore(),
		Mail:   mailer.NewNoopSender(logger),
		Logger: logger,
	})

	h := NewGatewayHandler(gw, logger)
	app := fiber.New()
	app.Get("/api/exec", h.Get)
	app.Post("/api/exec", h.Post)
	return app, docs
}

func send(t *testing.T, app *fiber.App, req *http.Request) envelope {
	t.Helper()
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return env
}

func postJSON(contentType, body string) *http.Request {
	req := httptest.NewRequest("POST", "/api/exec", strings.NewReader(body))
	req.Header.Set("Content-Type", contentType)
	return req
}

func TestGet_HealthForUnknownQuery(t *testing.T) {
	app, _ := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/exec?action=whatever", nil))
	require.NoError(t, err)

	var health struct {
		Status  string `json:"status"`
		Message string `json:"message"`
		Event   struct {
			Name string `json:"name"`
		} `json:"event"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "success", health.Status)
	assert.NotEmpty(t, health.Message)
	assert.Equal(t, "Roka Celebration", health.Event.Name)
}

func TestGet_TravelDataEmpty(t *testing.T) {
	app, _ := newTestApp(t)

	env := send(t, app, httptest.NewRequest("GET", "/api/exec?action=getTravelData", nil))
	assert.True(t, env.Success)
	assert.JSONEq(t, `[]`, string(env.Data))
	assert.False(t, env.Timestamp.IsZero())
}

func TestPost_JSONAndPlainText(t *testing.T) {
	app, docs := newTestApp(t)
	body := `{"action":"addTravelDetails","data":{"guestName":"Asha Rao","numberOfGuests":"2"}}`

	env := send(t, app, postJSON(fiber.MIMEApplicationJSON, body))
	require.True(t, env.Success, env.Error)

	// Opaque clients cannot set a JSON content type.
	env = send(t, app, postJSON(fiber.MIMETextPlainCharsetUTF8, body))
	require.True(t, env.Success, env.Error)

	rows, err := docs.ReadAll(t.Context(), "Travel Details")
	require.NoError(t, err)
	assert.Len(t, rows, 3)

	env = send(t, app, httptest.NewRequest("GET", "/api/exec?action=getTravelData", nil))
	var records []map[string]string
	require.NoError(t, json.Unmarshal(env.Data, &records))
	require.Len(t, records, 2)
	assert.Equal(t, "Asha Rao", records[0]["guestname"])
	assert.Equal(t, "Not specified", records[0]["departuredate"])
}

func TestPost_MalformedBody(t *testing.T) {
	app, _ := newTestApp(t)

	env := send(t, app, postJSON(fiber.MIMETextPlain, "not json"))
	assert.False(t, env.Success)
	assert.Contains(t, env.Error, "malformed request")
}

func TestPost_URLEncodedUpload(t *testing.T) {
	app, _ := newTestApp(t)
	form := url.Values{
		"action":   {"uploadFile"},
		"fileName": {"cake.jpg"},
		"mimeType": {"image/jpeg"},
		"fileData": {base64.StdEncoding.EncodeToString([]byte{0xff, 0xd8, 0xff, 0xfb, '+', '/'})},
	}

	env := send(t, app, postJSON(fiber.MIMEApplicationForm, form.Encode()))
	require.True(t, env.Success, env.Error)

	var data struct {
		FileName string `json:"fileName"`
		Size     int64  `json:"size"`
		URL      string `json:"url"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "cake.jpg", data.FileName)
	assert.EqualValues(t, 6, data.Size)
	assert.NotEmpty(t, data.URL)
}

func TestPost_MultipartFilePart(t *testing.T) {
	app, docs := newTestApp(t)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("action", "uploadFile"))
	require.NoError(t, w.WriteField("uploader", "Meera"))
	part, err := w.CreateFormFile("file", "clip.mp4")
	require.NoError(t, err)
	_, err = part.Write([]byte("not really a video"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/api/exec", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())

	env := send(t, app, req)
	require.True(t, env.Success, env.Error)

	rows, err := docs.ReadAll(t.Context(), "Album Uploads")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "clip.mp4", rows[1][1])
	assert.Equal(t, "18", rows[1][4])
	assert.Equal(t, "Meera", rows[1][5])
}

func TestPost_UnknownAction(t *testing.T) {
	app, _ := newTestApp(t)

	env := send(t, app, postJSON(fiber.MIMEApplicationJSON, `{"action":"nope"}`))
	assert.False(t, env.Success)
	assert.Equal(t, "invalid action: nope", env.Error)
}
