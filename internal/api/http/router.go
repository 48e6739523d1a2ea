package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spec-kit/freshdesk-migrator/internal/api/http/handlers"
	"github.com/spec-kit/freshdesk-migrator/internal/auth"
	"github.com/spec-kit/freshdesk-migrator/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Migrations     *handlers.MigrationsHandler
	Metrics        *observability.Metrics
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(cfg.Metrics.Registry(), promhttp.HandlerOpts{})))
	}

	migrations := app.Group("/migrations", cfg.AuthMiddleware.Handle)
	migrations.Post("/tickets/:id", auth.RequireScope(auth.ScopeRun), cfg.Migrations.MigrateTicket)
	migrations.Post("/range", auth.RequireScope(auth.ScopeRun), cfg.Migrations.StartRange)
	migrations.Get("/runs/:id", auth.RequireScope(auth.ScopeRead), cfg.Migrations.GetRun)
	migrations.Get("/tickets/:id", auth.RequireScope(auth.ScopeRead), cfg.Migrations.TicketHistory)
}
