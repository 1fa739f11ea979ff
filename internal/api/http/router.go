package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/spec-kit/support-desk/internal/api/http/handlers"
	"github.com/spec-kit/support-desk/internal/auth"
	"github.com/spec-kit/support-desk/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Tickets        *handlers.TicketsHandler
	AuthMiddleware *auth.AuthMiddleware
	RateLimiter    *RateLimiter
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	tickets := app.Group("/api/tickets", cfg.AuthMiddleware.Handle)

	// Fixed paths must precede /:id.
	tickets.Get("/", cfg.Tickets.ListTickets)
	tickets.Get("/my-tickets", cfg.Tickets.ListMyTickets)
	tickets.Get("/stats/summary", cfg.Tickets.Stats)
	tickets.Get("/:id", cfg.Tickets.GetTicket)

	tickets.Post("/", cfg.RateLimiter.Handle, cfg.Tickets.CreateTicket)
	tickets.Patch("/:id/status", cfg.RateLimiter.Handle, cfg.Tickets.UpdateStatus)
	tickets.Post("/:id/responses", cfg.RateLimiter.Handle, cfg.Tickets.AddResponse)
	tickets.Patch("/:id/assign", cfg.RateLimiter.Handle, cfg.Tickets.AssignTicket)
}
