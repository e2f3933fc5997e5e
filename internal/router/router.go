package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/capstone-dashboard-api/internal/config"
	"github.com/noah-isme/capstone-dashboard-api/internal/handler"
	"github.com/noah-isme/capstone-dashboard-api/internal/middleware"
	"github.com/noah-isme/capstone-dashboard-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	CourseHandler  *handler.CourseHandler
	StudentHandler *handler.StudentHandler
	ExportHandler  *handler.ExportHandler
	HealthProbes   map[string]handler.Probe
	JWTMiddleware  fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg, deps.HealthProbes))
	app.Get("/metrics", observability.MetricsHandler())

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.CourseHandler != nil {
		deps.CourseHandler.Register(api.Group("/courses", jwtMiddleware))
	}

	if deps.StudentHandler != nil {
		uploadLimit := middleware.RateLimit("upload", cfg.UploadRateLimit, cfg.UploadRateWindow)
		deps.StudentHandler.Register(api.Group("/students", jwtMiddleware), uploadLimit)
	}

	if deps.ExportHandler != nil {
		deps.ExportHandler.Register(api.Group("/export", jwtMiddleware))
	}
}
