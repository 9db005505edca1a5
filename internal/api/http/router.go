package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/spec-kit/ticket-dataset/internal/api/http/handlers"
	"github.com/spec-kit/ticket-dataset/internal/auth"
	"github.com/spec-kit/ticket-dataset/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Categorize     *handlers.CategorizeHandler
	Repair         *handlers.RepairHandler
	Runs           *handlers.RunsHandler
	Tickets        *handlers.TicketsHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	app.Post("/auth/token", cfg.Auth.Token)

	v1 := app.Group("/v1", cfg.AuthMiddleware.Handle)
	viewer := auth.RequireRole(auth.RoleViewer)
	operator := auth.RequireRole(auth.RoleOperator)

	v1.Post("/categorize", viewer, cfg.Categorize.Categorize)
	v1.Post("/repair", operator, cfg.Repair.Repair)
	v1.Get("/tickets/:id", viewer, cfg.Tickets.Get)
	v1.Get("/tickets/:id/changes", viewer, cfg.Repair.TicketChanges)

	v1.Post("/runs", operator, cfg.Runs.Start)
	v1.Get("/runs/latest", viewer, cfg.Runs.Latest)
	v1.Get("/runs/:id", viewer, cfg.Runs.Get)
}
