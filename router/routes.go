package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	handler "github.com/Teddy-225/Event-Travel/handlers"
	"github.com/Teddy-225/Event-Travel/middleware"
)

// ExecPath is the single action endpoint.
const ExecPath = "/api/exec"

func SetupRoutes(app *fiber.App, gw *handler.GatewayHandler) {
	app.Use(recover.New(), middleware.Metrics(), middleware.CORS())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api", logger.New())
	api.Get("/exec", gw.Get)
	api.Post("/exec", gw.Post)
}
