package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/expedition-service/internal/api/http/handlers"
	"github.com/spec-kit/expedition-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Operators      *handlers.OperatorsHandler
	Pickups        *handlers.PickupsHandler
	Carriers       *handlers.CarriersHandler
	Settings       *handlers.SettingsHandler
	Tiny           *handlers.TinyHandler
	AuthMiddleware *auth.AuthMiddleware
	Workspace      fiber.Handler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/operators/register", cfg.Operators.Register)
	authGroup.Post("/operators/login", cfg.Operators.Login)
	authGroup.Post("/password/change", cfg.AuthMiddleware.Handle, cfg.Operators.ChangePassword)

	// OAuth callback is hit by the browser redirect, before any bearer token
	// exists.
	app.Get("/api/v1/tiny/oauth/callback", cfg.Tiny.Callback)

	api := app.Group("/api/v1", cfg.AuthMiddleware.Handle, auth.RequireRole(), cfg.Workspace)

	pickups := api.Group("/pickups")
	pickups.Post("", cfg.Pickups.Create)
	pickups.Get("", cfg.Pickups.List)
	pickups.Delete("", auth.RequireAdmin(), cfg.Pickups.DeleteAll)
	pickups.Get("/:id", cfg.Pickups.Get)
	pickups.Put("/:id/status", cfg.Pickups.UpdateStatus)
	pickups.Delete("/:id", cfg.Pickups.Delete)
	pickups.Post("/:id/timeline", cfg.Pickups.AddTimelineEntry)
	pickups.Post("/:id/timeline/:entryId/close", cfg.Pickups.CloseTimelineEntry)
	pickups.Post("/:id/occurrences", cfg.Pickups.AddOccurrence)
	pickups.Post("/:id/occurrences/:occurrenceId/resolve", cfg.Pickups.ResolveOccurrence)

	carriers := api.Group("/carriers")
	carriers.Get("", cfg.Carriers.List)
	carriers.Post("", cfg.Carriers.Create)
	carriers.Get("/resolve", cfg.Carriers.Resolve)
	carriers.Put("/:id", cfg.Carriers.Update)

	settings := api.Group("/settings/tiny")
	settings.Get("", cfg.Settings.Get)
	settings.Put("/token", cfg.Settings.SetToken)
	settings.Put("/environment", auth.RequireAdmin(), cfg.Settings.SetEnvironment)

	tinyGroup := api.Group("/tiny")
	tinyGroup.Get("/orders", cfg.Tiny.SearchOrders)
	tinyGroup.Get("/orders/:id", cfg.Tiny.GetOrder)
	tinyGroup.Put("/orders/:id/mark-shipped", cfg.Tiny.MarkShipped)
	tinyGroup.Get("/expeditions/:id", cfg.Tiny.GetExpedition)
	tinyGroup.Get("/carriers", cfg.Tiny.SearchCarrierCatalogue)
	tinyGroup.Get("/oauth/authorize-url", cfg.Tiny.AuthorizeURL)
	tinyGroup.Post("/oauth/exchange", cfg.Tiny.Exchange)
}
