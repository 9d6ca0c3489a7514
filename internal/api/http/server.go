package http

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime/debug"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/job-tracker/internal/api/http/handlers"
	"github.com/spec-kit/job-tracker/internal/auth"
	"github.com/spec-kit/job-tracker/internal/config"
	"github.com/spec-kit/job-tracker/internal/observability"
	"github.com/spec-kit/job-tracker/internal/service"
	apperrors "github.com/spec-kit/job-tracker/pkg/util/errorutil"
)

const bodyLimit = 1 << 20

// Deps carries everything the HTTP layer needs.
type Deps struct {
	Config         *config.Config
	Logger         *zap.Logger
	Metrics        *observability.Metrics
	AuthService    *service.AuthService
	JobService     *service.JobService
	AuthMiddleware *auth.AuthMiddleware
	RateLimiter    *auth.RateLimiter
	Readiness      []handlers.Dependency
}

// Server owns the fiber app and its request pipeline.
type Server struct {
	app    *fiber.App
	logger *zap.Logger
}

// New builds the app. Stages run in the order listed in pipeline; routes, the front-end
// stage and the not-found stage follow, and errors from any of them land in errorHandler.
func New(deps Deps) *Server {
	cfg := deps.Config
	logger := deps.Logger
	production := cfg.IsProduction()

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		BodyLimit:    bodyLimit,
		ErrorHandler: errorHandler(logger, deps.Metrics, production),
	})

	for _, stage := range pipeline(cfg, logger, deps.Metrics) {
		app.Use(stage)
	}

	registerRoutes(app, routeConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, deps.Metrics, deps.Readiness...),
		Auth:           handlers.NewAuthHandler(deps.AuthService, handlers.CookieConfig{Name: cfg.Auth.CookieName, Secure: production}),
		Jobs:           handlers.NewJobsHandler(deps.JobService),
		AuthMiddleware: deps.AuthMiddleware,
		RateLimiter:    deps.RateLimiter,
	})

	mountFrontend(app, cfg)

	app.Use(func(c *fiber.Ctx) error {
		return apperrors.NewDomainError(apperrors.CodeNotFound, "route does not exist", fiber.StatusNotFound, nil)
	})

	return &Server{app: app, logger: logger}
}

func pipeline(cfg *config.Config, logger *zap.Logger, metrics *observability.Metrics) []fiber.Handler {
	stages := []fiber.Handler{
		recover.New(recover.Config{
			EnableStackTrace: true,
			StackTraceHandler: func(c *fiber.Ctx, e any) {
				logger.Error("panic recovered",
					zap.String("path", c.Path()),
					zap.Any("panic", e),
					zap.ByteString("stack", debug.Stack()))
			},
		}),
		requestid.New(requestid.Config{Generator: uuid.NewString}),
		helmet.New(helmet.Config{
			ContentSecurityPolicy:     contentSecurityPolicy(cfg.App.CORSOrigin),
			CrossOriginEmbedderPolicy: "unsafe-none",
			CrossOriginResourcePolicy: "cross-origin",
		}),
		cors.New(cors.Config{
			AllowOrigins:     cfg.App.CORSOrigin,
			AllowCredentials: cfg.App.CORSOrigin != "*",
			AllowMethods:     "GET,POST,PUT,DELETE,PATCH,HEAD,OPTIONS",
			AllowHeaders:     "Content-Type,Authorization",
		}),
	}
	if timeout := cfg.App.RequestTimeout(); timeout > 0 {
		stages = append(stages, requestTimeoutMiddleware(timeout))
	}
	return append(stages,
		sanitizeMiddleware(logger),
		observability.RequestLogger(logger, metrics, statusOf),
	)
}

func contentSecurityPolicy(origin string) string {
	return strings.Join([]string{
		"default-src 'self'",
		"connect-src 'self' " + origin,
		"script-src 'self' 'unsafe-inline'",
		"style-src 'self' 'unsafe-inline'",
		"img-src 'self' data: https:",
	}, "; ")
}

// mountFrontend serves the client bundle in production and a banner otherwise.
func mountFrontend(app *fiber.App, cfg *config.Config) {
	if !cfg.IsProduction() {
		app.Get("/", func(c *fiber.Ctx) error {
			return c.SendString("API is running...")
		})
		return
	}

	dir := cfg.App.ClientBuildDir
	app.Static("/", dir)
	app.Get("/*", func(c *fiber.Ctx) error {
		if strings.HasPrefix(c.Path(), "/api") {
			return c.Next()
		}
		return c.SendFile(filepath.Join(dir, "index.html"))
	})
}

// App exposes the underlying fiber app, mainly for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen blocks serving on addr.
func (s *Server) Listen(addr string) error {
	s.logger.Info("http server listening", zap.String("addr", addr))
	if err := s.app.Listen(addr); err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}
