package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/job-tracker/internal/api/http/handlers"
	"github.com/spec-kit/job-tracker/internal/auth"
)

// routeConfig bundles dependencies for route registration.
type routeConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Jobs           *handlers.JobsHandler
	AuthMiddleware *auth.AuthMiddleware
	RateLimiter    *auth.RateLimiter
}

// registerRoutes wires HTTP routes.
func registerRoutes(app *fiber.App, cfg routeConfig) {
	app.Get("/health", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", cfg.Health.Metrics)

	api := app.Group("/api/v1")
	api.Get("", func(c *fiber.Ctx) error {
		return c.SendString("Hello")
	})

	authGroup := api.Group("/auth")
	authGroup.Post("/register", cfg.RateLimiter.Handle, cfg.Auth.Register)
	authGroup.Post("/login", cfg.RateLimiter.Handle, cfg.Auth.Login)
	authGroup.Get("/logout", cfg.Auth.Logout)
	authGroup.Get("/getCurrentUser", cfg.AuthMiddleware.Handle, auth.WithIdentity(cfg.Auth.CurrentUser))
	authGroup.Patch("/updateUser", cfg.AuthMiddleware.Handle, auth.WithIdentity(cfg.Auth.UpdateUser))

	// per route, not on the group: a group middleware would also catch /api/v1/jobsX
	requireAuth := cfg.AuthMiddleware.Handle
	jobs := api.Group("/jobs")
	jobs.Get("", requireAuth, auth.WithIdentity(cfg.Jobs.ListJobs))
	jobs.Post("", requireAuth, auth.WithIdentity(cfg.Jobs.CreateJob))
	jobs.Get("/stats", requireAuth, auth.WithIdentity(cfg.Jobs.Stats))
	jobs.Get("/:id", requireAuth, auth.WithIdentity(cfg.Jobs.GetJob))
	jobs.Patch("/:id", requireAuth, auth.WithIdentity(cfg.Jobs.UpdateJob))
	jobs.Delete("/:id", requireAuth, auth.WithIdentity(cfg.Jobs.DeleteJob))
}
