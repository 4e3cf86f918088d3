package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/lead-service/internal/api/http/handlers"
	"github.com/spec-kit/lead-service/internal/auth"
	apperrors "github.com/spec-kit/lead-service/pkg/util"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Leads          *handlers.LeadsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/logout", cfg.Auth.Logout)
	authGroup.Get("/me", cfg.AuthMiddleware.Handle, cfg.Auth.Me)

	leads := app.Group("/leads", cfg.AuthMiddleware.Handle)
	leads.Get("/", cfg.Leads.List)
	// Registered before /:id so "stats" is never treated as a lead id.
	leads.Get("/stats/overview", cfg.Leads.Stats)
	leads.Get("/:id", cfg.Leads.Get)
	leads.Post("/", cfg.Leads.Create)
	leads.Put("/:id", cfg.Leads.Update)
	leads.Delete("/:id", cfg.Leads.Delete)

	app.Use(func(c *fiber.Ctx) error {
		return apperrors.NewNotFound("route")
	})
}
