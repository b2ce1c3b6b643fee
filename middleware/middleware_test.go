package middleware

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApp() *fiber.App {
	app := fiber.New()
	app.Use(Metrics(), CORS())
	app.Get("/api/exec", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"success": true})
	})
	return app
}

func TestCORS_HeadersOnEveryResponse(t *testing.T) {
	app := newApp()

	resp, err := app.Test(httptest.NewRequest("GET", "/api/exec", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get(fiber.HeaderAccessControlAllowOrigin))
	assert.Equal(t, corsAllowMethods, resp.Header.Get(fiber.HeaderAccessControlAllowMethods))
	assert.Equal(t, corsAllowHeaders, resp.Header.Get(fiber.HeaderAccessControlAllowHeaders))
}

func TestCORS_Preflight(t *testing.T) {
	app := newApp()

	req := httptest.NewRequest("OPTIONS", "/api/exec", nil)
	req.Header.Set("Origin", "https://guests.example.com")
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get(fiber.HeaderAccessControlAllowOrigin))
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Empty(t, body)
}

func TestMetrics_CountsByRoute(t *testing.T) {
	app := newApp()
	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/api/exec", "200"))

	_, err := app.Test(httptest.NewRequest("GET", "/api/exec", nil))
	require.NoError(t, err)

	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/api/exec", "200"))
	assert.Equal(t, before+1, after)
}
