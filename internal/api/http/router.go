package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/parking-pilot/internal/api/http/handlers"
	"github.com/spec-kit/parking-pilot/internal/auth"
	"github.com/spec-kit/parking-pilot/internal/domain"
	"github.com/spec-kit/parking-pilot/internal/security"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	CSRF           *handlers.CSRFHandler
	Vehicles       *handlers.VehiclesHandler
	AuthMiddleware *auth.AuthMiddleware
	CSRFService    *security.CSRFService
	AuthLimiter    *security.RateLimiter
	GeneralLimiter *security.RateLimiter
}

// csrfExemptPaths bypass the anti-forgery check: safe verbs are exempt by
// method, and these routes run before a session exists.
var csrfExemptPaths = []string{
	"/auth/register",
	"/auth/login",
	"/auth/forgot-password",
	"/auth/reset-password",
	"/auth/send-email-verification",
	"/auth/send-phone-verification",
	"/auth/verify-email-otp",
	"/auth/verify-phone-otp",
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Use(cfg.GeneralLimiter.Middleware())
	app.Use(security.CSRFMiddleware(cfg.CSRFService, csrfExemptPaths...))

	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Get("/csrf-token", cfg.CSRF.Issue)

	authGroup := app.Group("/auth", cfg.AuthLimiter.Middleware())
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/forgot-password", cfg.Auth.ForgotPassword)
	authGroup.Post("/reset-password", cfg.Auth.ResetPassword)
	authGroup.Post("/send-email-verification", cfg.Auth.SendEmailVerification)
	authGroup.Post("/send-phone-verification", cfg.Auth.SendPhoneVerification)
	authGroup.Post("/verify-email-otp", cfg.Auth.VerifyEmailOTP)
	authGroup.Post("/verify-phone-otp", cfg.Auth.VerifyPhoneOTP)
	authGroup.Get("/profile", cfg.AuthMiddleware.Handle, cfg.Auth.Profile)

	vehicles := app.Group("/vehicles", cfg.AuthMiddleware.Handle)
	vehicles.Post("/", cfg.Vehicles.Create)
	vehicles.Get("/", cfg.Vehicles.List)
	vehicles.Get("/:id", cfg.Vehicles.Get)
	vehicles.Put("/:id", cfg.Vehicles.Update)
	vehicles.Delete("/:id", auth.RequireRole(domain.RoleAdmin), cfg.Vehicles.Delete)
}
