package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRoutes registers every route of the API on app.
func SetupRoutes(app *fiber.App, analyze *AnalyzeHandler, customize *CustomizeHandler) {
	api := app.Group("/api")

	api.Get("/health", HandleHealth)
	api.Post("/analyze", analyze.HandleAnalyze)
	api.Post("/customize", customize.HandleCustomize)

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	app.Get("/", HandleRoot)
}
