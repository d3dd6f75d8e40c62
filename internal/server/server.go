// Package server wires the HTTP API of the student portal.
package server

import (
	"context"
	"time"

	"canteenhub/internal/cache"
	"canteenhub/internal/config"
	"canteenhub/internal/database"
	"canteenhub/internal/mailer"
	"canteenhub/internal/middleware"
	"canteenhub/internal/repository"
	"canteenhub/internal/service"
	"canteenhub/internal/storage"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"gorm.io/gorm"
)

// Server holds the application dependencies and the Fiber app.
type Server struct {
	config *config.Config
	db     *gorm.DB
	store  *cache.Store
	app    *fiber.App
	prom   *fiberprometheus.FiberPrometheus

	users   *service.UserService
	reviews *service.ReviewService
	mailer  mailer.Mailer
}

// NewServer builds a fully wired server from configuration: database,
// cache, object storage, mail and the HTTP stack.
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, err
	}

	store := cache.New(cfg.RedisURL)

	var uploader storage.Uploader
	if cfg.S3Bucket != "" {
		up, err := storage.NewS3Uploader(context.Background(), storage.Config{
			Endpoint:      cfg.S3Endpoint,
			Region:        cfg.S3Region,
			Bucket:        cfg.S3Bucket,
			AccessKey:     cfg.S3AccessKey,
			SecretKey:     cfg.S3SecretKey,
			PublicBaseURL: cfg.S3PublicBaseURL,
		})
		if err != nil {
			return nil, err
		}
		uploader = up
	}

	var m mailer.Mailer
	if cfg.SMTPHost != "" {
		m = mailer.NewSMTPMailer(mailer.Config{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.MailFrom,
		})
	}

	userRepo := repository.NewUserRepository(db)
	reviewRepo := repository.NewReviewRepository(db)

	users := service.NewUserService(userRepo, store)
	reviews := service.NewReviewService(reviewRepo, userRepo, store, uploader)

	return NewServerWithDeps(cfg, db, store, users, reviews, m), nil
}

// NewServerWithDeps builds a server from pre-constructed dependencies.
// Tests use it to inject mocks and in-memory stores.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, store *cache.Store, users *service.UserService, reviews *service.ReviewService, m mailer.Mailer) *Server {
	app := fiber.New(fiber.Config{
		AppName:      "canteenhub",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
		ErrorHandler: errorHandler,
	})

	s := &Server{
		config:  cfg,
		db:      db,
		store:   store,
		app:     app,
		users:   users,
		reviews: reviews,
		mailer:  m,
	}
	s.SetupMiddleware()
	s.SetupRoutes()
	return s
}

// App exposes the Fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// SetupMiddleware installs the shared middleware chain.
func (s *Server) SetupMiddleware() {
	s.app.Use(recover.New())
	s.app.Use(requestid.New())
	s.app.Use(middleware.ContextMiddleware())

	s.prom = middleware.InitMetrics("canteenhub")
	s.prom.RegisterAt(s.app, "/metrics")
	s.app.Use(middleware.MetricsMiddleware(s.prom))

	s.app.Use(helmet.New())
	s.app.Use(middleware.StructuredLogger())

	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:3000"
	}
	s.app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, DELETE, OPTIONS",
		AllowCredentials: true,
	}))

	if s.config.Env != "test" && s.config.Env != "development" {
		s.app.Use(middleware.RateLimit(s.store.Client(), 120, time.Minute, "api"))
	}

	if s.config.TracingEnabled {
		s.app.Use(middleware.TracingMiddleware())
	}
}

// SetupRoutes registers every HTTP route.
func (s *Server) SetupRoutes() {
	s.app.Get("/health/live", s.LivenessCheck)
	s.app.Get("/health/ready", s.ReadinessCheck)

	api := s.app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", s.Register)
	auth.Post("/login", s.loginLimiter(), s.Login)
	auth.Get("/logout", s.Logout)
	auth.Get("/me", s.AuthRequired, s.Me)
	auth.Post("/forgot-password", s.loginLimiter(), s.ForgotPassword)
	auth.Post("/reset-password", s.ResetPassword)

	api.Get("/reviews", s.GetReviews)
	api.Post("/reviews", s.AuthRequired, s.CreateReview)
	api.Put("/reviews", s.AuthRequired, s.UpdateReview)
	api.Delete("/reviews", s.AuthRequired, s.DeleteReview)

	api.Get("/users", s.GetUsers)
	api.Put("/users/me", s.AuthRequired, s.UpdateMyProfile)
}

// loginLimiter applies a tighter rate limit to credential endpoints.
func (s *Server) loginLimiter() fiber.Handler {
	if s.config.Env == "test" || s.config.Env == "development" {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return middleware.RateLimit(s.store.Client(), 10, time.Minute, "auth")
}

// LivenessCheck reports that the process is up.
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// ReadinessCheck reports whether the database and cache are reachable.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	checks := fiber.Map{"database": "ok", "cache": "ok"}
	status := fiber.StatusOK

	sqlDB, err := s.db.DB()
	if err != nil || sqlDB.PingContext(c.Context()) != nil {
		checks["database"] = "unreachable"
		status = fiber.StatusServiceUnavailable
	}

	if !s.store.Enabled() {
		checks["cache"] = "disabled"
	} else if err := s.store.Ping(c.Context()); err != nil {
		checks["cache"] = "unreachable"
	}

	return c.Status(status).JSON(checks)
}

// Start begins serving on the configured port.
func (s *Server) Start() error {
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown drains in-flight requests and closes the cache connection.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.app.ShutdownWithContext(ctx)
	if cerr := s.store.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}
