package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/storefront-auth/internal/api/http/handlers"
	"github.com/spec-kit/storefront-auth/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health        *handlers.HealthHandler
	Auth          *handlers.AuthHandler
	Admin         *handlers.AdminHandler
	Profile       *handlers.ProfileHandler
	Gate          *auth.Gate
	Authenticator *auth.Authenticator
}

// RegisterRoutes wires HTTP routes. The gate runs first and makes coarse
// redirect decisions for page paths; API routes are exempt from it and carry
// their own guards.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Use(cfg.Gate.Handle)

	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Post("/sign-up", cfg.Auth.SignUp)
	authGroup.Post("/sign-in", cfg.Auth.SignIn)
	authGroup.Post("/otp/request", cfg.Auth.RequestOTP)
	authGroup.Post("/otp/verify", cfg.Auth.VerifyOTP)
	authGroup.Post("/oauth/link", cfg.Auth.LinkOAuth)
	authGroup.Post("/refresh", cfg.Auth.Refresh)
	authGroup.Post("/sign-out", cfg.Auth.SignOut)

	api.Get("/profile", cfg.Authenticator.Handle, cfg.Profile.Me)

	admin := api.Group("/admin")
	admin.Get("/users", cfg.Admin.ListUsers)
	admin.Get("/all-admins", cfg.Admin.ListAdmins)
	admin.Get("/me", cfg.Admin.Me)
	admin.Patch("/users/:id/role", cfg.Admin.ChangeRole)
}
