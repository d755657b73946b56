// Package server contains the HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"errors"
	"time"

	"agora/internal/bootstrap"
	"agora/internal/cache"
	"agora/internal/config"
	"agora/internal/middleware"
	"agora/internal/models"
	"agora/internal/repository"
	"agora/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config *config.Config
	db     *gorm.DB
	redis  *redis.Client
	kv     redis.Cmdable // nil when Redis is not configured
	app    *fiber.App

	tokens         *service.TokenService
	authService    *service.AuthService
	feedService    *service.FeedService
	postService    *service.PostService
	commentService *service.CommentService
	followService  *service.FollowService
	userService    *service.UserService
}

// NewServer connects to the database and Redis, prepares reference data and
// wires every service.
func NewServer(cfg *config.Config) (*Server, error) {
	db, redisClient, err := bootstrap.InitRuntime(context.Background(), cfg)
	if err != nil {
		return nil, err
	}

	return NewServerWithDeps(cfg, db, redisClient)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// redisClient may be nil: the token cache is skipped and the engagement limiter
// fails open.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	if db == nil {
		return nil, errors.New("server: database is required")
	}

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	followRepo := repository.NewFollowRepository(db)
	tokenRepo := repository.NewTokenRepository(db)
	themeRepo := repository.NewThemeRepository(db)

	var kv redis.Cmdable
	if redisClient != nil {
		kv = redisClient
	}

	policy := service.NewAccessPolicy(followRepo)
	limiter := service.NewEngagementLimiter(counterStore(kv), cfg.CommentLimit, cfg.CommentWindow())
	tokens := service.NewTokenService(tokenRepo, userRepo, kv, cfg.TokenCacheTTL())

	return &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		kv:             kv,
		tokens:         tokens,
		authService:    service.NewAuthService(userRepo, tokens),
		feedService:    service.NewFeedService(postRepo, policy, cfg.FeedPageSize),
		postService:    service.NewPostService(postRepo, themeRepo, policy),
		commentService: service.NewCommentService(commentRepo, postRepo, policy, limiter, cfg.FeedPageSize, cfg.CommentsLatestMaxRows),
		followService:  service.NewFollowService(followRepo, userRepo, cfg.SuggestionLimit),
		userService:    service.NewUserService(userRepo, followRepo, cfg.SearchResultLimit),
	}, nil
}

func counterStore(kv redis.Cmdable) cache.CounterStore {
	if kv == nil {
		return unavailableCounterStore{}
	}
	return cache.NewRedisCounterStore(kv)
}

// unavailableCounterStore stands in when Redis is not configured. Every call
// errors, so the engagement limiter lets comments through.
type unavailableCounterStore struct{}

var errNoCounterStore = errors.New("counter store not configured")

func (unavailableCounterStore) Get(context.Context, string) (int64, error) {
	return 0, errNoCounterStore
}

func (unavailableCounterStore) Incr(context.Context, string) (int64, error) {
	return 0, errNoCounterStore
}

func (unavailableCounterStore) SetWithTTL(context.Context, string, int64, time.Duration) error {
	return errNoCounterStore
}

func (unavailableCounterStore) TTL(context.Context, string) (time.Duration, error) {
	return 0, errNoCounterStore
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.ContextMiddleware())
	app.Use(middleware.TracingMiddleware())
	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so rejected requests still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		ExposeHeaders:    "Retry-After, X-Trace-ID",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return models.RespondWithError(c, fiber.StatusTooManyRequests,
				models.NewRateLimitedError("Too many requests, please try again later."))
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	middleware.InitMetrics(app, "agora-api")
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	api := app.Group("/api")
	authRequired := middleware.AuthRequired(s.tokens)
	authOptional := middleware.AuthOptional(s.tokens)

	auth := api.Group("/auth")
	auth.Post("/register", middleware.RateLimit(s.kv, 3, 10*time.Minute, "register"), s.Register)
	auth.Post("/login", middleware.RateLimit(s.kv, 10, 5*time.Minute, "login"), s.Login)
	auth.Post("/logout", s.Logout)

	api.Get("/themes", s.GetThemes)

	posts := api.Group("/posts")
	posts.Get("/", authOptional, s.GetPosts)
	posts.Get("/search", authOptional, middleware.RateLimit(s.kv, 30, time.Minute, "search"), s.SearchPosts)
	posts.Post("/", authRequired, s.CreatePost)
	// Define specific /:id/:resource routes BEFORE generic /:id route
	posts.Get("/:id/comments/latest", authOptional, s.GetLatestComments)
	posts.Get("/:id/comments", authOptional, s.GetComments)
	posts.Post("/:id/comments", authRequired, s.CreateComment)
	posts.Post("/:id/share", authRequired, s.SharePost)
	posts.Post("/:id/like", authRequired, s.ToggleLike)
	posts.Get("/:id", authOptional, s.GetPost)
	posts.Put("/:id", authRequired, s.UpdatePost)
	posts.Delete("/:id", authRequired, s.DeletePost)

	comments := api.Group("/comments", authRequired)
	comments.Put("/:id", s.UpdateComment)
	comments.Delete("/:id", s.DeleteComment)

	users := api.Group("/users")
	users.Get("/search", authOptional, middleware.RateLimit(s.kv, 30, time.Minute, "user_search"), s.SearchUsers)
	users.Get("/suggestions", authRequired, s.GetSuggestions)
	users.Get("/:id/posts", authOptional, s.GetUserPosts)
	users.Get("/:id/followers", authOptional, s.GetFollowers)
	users.Post("/:id/follow", authRequired, s.Follow)
	users.Delete("/:id/follow", authRequired, s.Unfollow)
	users.Get("/:id", authOptional, s.GetUserProfile)
}

// App builds the Fiber application with middleware and routes installed.
func (s *Server) App() *fiber.App {
	if s.app != nil {
		return s.app
	}
	app := fiber.New(fiber.Config{
		AppName: "Agora API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message})
			}
			middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", "error", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
		},
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	s.app = app
	return app
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" || redisStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// Start starts the server
func (s *Server) Start() error {
	app := s.App()
	middleware.Logger.Info("server starting", "port", s.config.Port, "env", s.config.Env)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", "error", err)
		}
	}

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

	middleware.Logger.Info("server shutdown complete")
	return nil
}
