package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/appointment-parser/internal/api/http/handlers"
	"github.com/spec-kit/appointment-parser/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Parse          *handlers.ParseHandler
	Appointments   *handlers.AppointmentsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/auth/token", cfg.Auth.IssueToken)

	protected := app.Group("/appointments", cfg.AuthMiddleware.Handle)
	protected.Post("/parse", cfg.Parse.Parse)
	protected.Get("/", cfg.Appointments.List)
	protected.Get("/:id", cfg.Appointments.Get)
}
