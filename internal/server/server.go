// Package server contains the HTTP handlers for the posts API.
package server

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"

	"devconnect/internal/auth"
	"devconnect/internal/config"
	"devconnect/internal/middleware"
	"devconnect/internal/models"
	"devconnect/internal/notifications"
	"devconnect/internal/observability"
	"devconnect/internal/repository"
	"devconnect/internal/service"
)

// Deps are the already-initialized collaborators of a Server.
type Deps struct {
	Posts repository.PostRepository
	Users repository.UserRepository
	// Redis may be nil, which disables event publishing.
	Redis *redis.Client
}

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	posts          repository.PostRepository
	redis          *redis.Client
	verifier       *auth.Verifier
	postService    *service.PostService
	notifier       *notifications.Notifier
	promMiddleware *fiberprometheus.FiberPrometheus
	app            *fiber.App
}

// NewServer wires the handlers to deps.
func NewServer(cfg *config.Config, deps Deps) *Server {
	var verifierOpts []auth.Option
	if cfg.JWTRequireExpiry {
		verifierOpts = append(verifierOpts, auth.WithRequiredExpiry())
	}
	if cfg.JWTLeeway > 0 {
		verifierOpts = append(verifierOpts, auth.WithLeeway(cfg.JWTLeeway))
	}

	return &Server{
		config:         cfg,
		posts:          deps.Posts,
		redis:          deps.Redis,
		verifier:       auth.NewVerifier(cfg.JWTSecret, verifierOpts...),
		postService:    service.NewPostService(deps.Posts, deps.Users),
		notifier:       notifications.NewNotifier(deps.Redis),
		promMiddleware: middleware.InitMetrics(observability.ServiceName),
	}
}

// errorHandler answers routing errors such as 404 and 405 with their own
// status and everything else through RespondWithError.
func errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) && fe.Code < fiber.StatusInternalServerError {
		return c.Status(fe.Code).JSON(models.ErrorResponse{
			Errors: []models.ErrorDetail{{Msg: fe.Message}},
		})
	}
	return models.RespondWithError(c, err)
}

// App builds the fiber application with middleware and routes installed.
func (s *Server) App() *fiber.App {
	if s.app != nil {
		return s.app
	}
	app := fiber.New(fiber.Config{
		AppName:      "DevConnect API",
		Immutable:    true, // handler values outlive the request in spans and events
		ErrorHandler: errorHandler,
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	s.app = app
	return app
}

// SetupMiddleware installs the middleware shared by every route.
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())
	// After requestid and tracing so that both ids reach the request context.
	app.Use(middleware.ContextMiddleware())
	app.Use(s.promMiddleware.Middleware)
	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "*"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, " + middleware.TokenHeader,
		// fiber refuses credentials together with a wildcard origin.
		AllowCredentials: origins != "*",
		MaxAge:           86400,
	}))
}

// SetupRoutes registers the operational and API routes.
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("API Running")
	})
	app.Get("/health", s.HealthCheck)
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	s.promMiddleware.RegisterAt(app, "/metrics")

	api := app.Group("/api")
	posts := api.Group("/posts", middleware.AuthRequired(s.verifier))
	posts.Post("/", s.CreatePost)
	posts.Get("/", s.ListPosts)
	posts.Put("/like/:id", s.LikePost)
	posts.Put("/unlike/:id", s.UnlikePost)
	posts.Post("/comment/:id", s.AddComment)
	posts.Delete("/comment/:id/:comment_id", s.DeleteComment)
	posts.Get("/:id", s.GetPost)
	posts.Delete("/:id", s.DeletePost)
}

// HealthCheck is an alias of ReadinessCheck.
func (s *Server) HealthCheck(c *fiber.Ctx) error {
	return s.ReadinessCheck(c)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck reports whether the post store and Redis respond. Redis is
// optional: without a client it is reported as "disabled" and does not fail
// the check.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	storeStatus := "healthy"
	if err := s.posts.Ping(ctx); err != nil {
		slog.WarnContext(ctx, "post store ping failed", slog.Any("error", err))
		storeStatus = "unhealthy"
	}

	redisStatus := "disabled"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overall := "healthy"
	if storeStatus != "healthy" || redisStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overall = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overall,
		"checks": fiber.Map{
			"store": storeStatus,
			"redis": redisStatus,
		},
		"time": time.Now(),
	})
}

// Start listens on the configured port until Shutdown is called.
func (s *Server) Start() error {
	slog.Info("server starting", slog.String("port", s.config.Port))
	return s.App().Listen(":" + s.config.Port)
}

// Shutdown gracefully stops the HTTP listener.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app == nil {
		return nil
	}
	return s.app.ShutdownWithContext(ctx)
}
