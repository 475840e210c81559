package http

import (
	nethttp "net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/spec-kit/xpertshub/internal/api/http/handlers"
	"github.com/spec-kit/xpertshub/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Services       *handlers.ServicesHandler
	Requests       *handlers.RequestsHandler
	Ratings        *handlers.RatingsHandler
	Profiles       *handlers.ProfilesHandler
	Moderation     *handlers.ModerationHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        nethttp.Handler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	mw := cfg.AuthMiddleware

	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics))
	}
	app.Get("/fields", cfg.Services.Fields)
	app.Get("/stats", cfg.Profiles.Stats)

	authGroup := app.Group("/auth")
	authGroup.Post("/customers/register", cfg.Auth.RegisterCustomer)
	authGroup.Post("/companies/register", cfg.Auth.RegisterCompany)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/staff/login", cfg.Auth.StaffLogin)
	authGroup.Post("/password/change", mw.Handle, auth.RequireAnyRole(), cfg.Auth.ChangePassword)

	services := app.Group("/services")
	services.Get("/", cfg.Services.List)
	services.Post("/", mw.Handle, auth.RequireCompany(), cfg.Services.Create)
	services.Get("/:id", mw.Optional, cfg.Services.Get)
	services.Get("/:id/ratings", mw.Optional, cfg.Ratings.List)
	services.Post("/:id/ratings", mw.Handle, auth.RequireCustomer(), cfg.Ratings.Create)
	services.Post("/:id/requests", mw.Handle, auth.RequireCustomer(), cfg.Requests.Create)
	services.Get("/:id/requests", mw.Handle, auth.RequireCompany(), cfg.Requests.ListForService)

	app.Get("/me/requests", mw.Handle, auth.RequireIdentity(), cfg.Requests.ListMine)
	app.Get("/profiles/:username", mw.Optional, cfg.Profiles.Get)

	moderation := app.Group("/moderation", mw.Handle, auth.RequireModerator())
	moderation.Get("/services", cfg.Moderation.Queue)
	moderation.Post("/services/approve", cfg.Moderation.ApproveMany)
	moderation.Post("/services/reject", cfg.Moderation.RejectMany)
	moderation.Post("/services/:id/approve", cfg.Moderation.Approve)
	moderation.Post("/services/:id/reject", cfg.Moderation.Reject)
}
