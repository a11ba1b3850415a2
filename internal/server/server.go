// Package server contains the Fiber application, the server-rendered HTML
// views and the JSON API for Warbler.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"warbler/internal/auth"
	"warbler/internal/config"
	"warbler/internal/database"
	"warbler/internal/middleware"
	"warbler/internal/repository"
	"warbler/web"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/gofiber/template/html/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Session cookie and session key holding the current user's id.
const (
	sessionCookie = "warbler_session"
	currUserKey   = "curr_user"
)

// Prometheus collectors register globally, so the middleware is created once
// no matter how many apps a process builds.
var (
	promOnce sync.Once
	prom     *fiberprometheus.FiberPrometheus
)

func promMiddleware() *fiberprometheus.FiberPrometheus {
	promOnce.Do(func() {
		prom = fiberprometheus.New("warbler")
	})
	return prom
}

// Server holds all dependencies and provides handlers
type Server struct {
	config   *config.Config
	db       *gorm.DB
	redis    *redis.Client
	store    *session.Store
	auth     *auth.Service
	users    repository.UserRepository
	messages repository.MessageRepository
	follows  repository.FollowRepository
	likes    repository.LikeRepository
}

// New creates a server instance with all dependencies
func New(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	var redisClient *redis.Client
	if cfg.AppEnv != "test" && cfg.RedisURL != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.RedisURL})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			middleware.Logger.Warn("redis unavailable, rate limiting disabled", "error", err)
			redisClient = nil
		}
	}

	users := repository.NewUserRepository(db)

	return &Server{
		config: cfg,
		db:     db,
		redis:  redisClient,
		store: session.New(session.Config{
			KeyLookup:      "cookie:" + sessionCookie,
			CookieHTTPOnly: true,
		}),
		auth:     auth.NewService(users),
		users:    users,
		messages: repository.NewMessageRepository(db),
		follows:  repository.NewFollowRepository(db),
		likes:    repository.NewLikeRepository(db),
	}, nil
}

// App builds the Fiber application with templates, middleware and routes.
func (s *Server) App() *fiber.App {
	engine := html.NewFileSystem(http.FS(web.Templates()), ".html")

	app := fiber.New(fiber.Config{
		AppName:     "Warbler",
		Views:       engine,
		ViewsLayout: "layouts/base",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			middleware.Logger.Error("unhandled error", "path", c.Path(), "error", err)
			return c.Status(fiber.StatusInternalServerError).Render("error", fiber.Map{
				"Message": "Something went wrong.", "CurrentUser": nil,
			})
		},
	})

	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Request ID for tracing
	app.Use(requestid.New())

	// Security headers
	app.Use(helmet.New())

	// Structured logging middleware
	app.Use(middleware.StructuredLogger())

	// Prometheus metrics
	prom := promMiddleware()
	prom.RegisterAt(app, "/metrics")
	app.Use(prom.Middleware)
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/healthz", s.HealthCheck)

	app.Get("/", s.Home)
	app.Get("/signup", s.ShowSignup)
	app.Post("/signup", middleware.RateLimit(s.redis, 5, 10*time.Minute, "signup"), s.HandleSignup)
	app.Get("/login", s.ShowLogin)
	app.Post("/login", middleware.RateLimit(s.redis, 10, 5*time.Minute, "login"), s.HandleLogin)
	app.Post("/logout", s.Logout)

	users := app.Group("/users")
	users.Get("/", s.ListUsers)
	// Define fixed routes BEFORE the generic /:id route
	users.Get("/profile", s.ShowEditProfile)
	users.Post("/profile", s.HandleEditProfile)
	users.Post("/delete", s.DeleteAccount)
	users.Post("/follow/:id", s.FollowUser)
	users.Post("/stop-following/:id", s.UnfollowUser)
	users.Post("/add_like/:messageId", s.ToggleLike)
	users.Get("/:id/following", s.ShowFollowing)
	users.Get("/:id/followers", s.ShowFollowers)
	users.Get("/:id/likes", s.ShowLikes)
	users.Get("/:id", s.ShowUser)

	messages := app.Group("/messages")
	messages.Get("/new", s.ShowNewMessage)
	messages.Post("/new", s.CreateMessage)
	messages.Post("/:id/delete", s.DeleteMessage)
	messages.Get("/:id", s.ShowMessage)

	// Token-based JSON API
	api := app.Group("/api")
	apiAuth := api.Group("/auth")
	apiAuth.Post("/signup", middleware.RateLimit(s.redis, 3, 10*time.Minute, "api_signup"), s.APISignup)
	apiAuth.Post("/login", middleware.RateLimit(s.redis, 10, 5*time.Minute, "api_login"), s.APILogin)
	api.Get("/users/me", s.TokenRequired(), s.APIMe)
}

// HealthCheck handles GET /healthz
func (s *Server) HealthCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	status := fiber.StatusOK
	if dbStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
	}

	return c.Status(status).JSON(fiber.Map{
		"status": dbStatus,
		"time":   time.Now(),
	})
}

// Shutdown releases server resources.
func (s *Server) Shutdown(ctx context.Context) error {
	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", "error", cerr)
		}
	}
	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", "error", rerr)
		}
	}
	return nil
}
