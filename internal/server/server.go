// Package server contains the HTTP handlers for the Foodgram API.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"foodgram/internal/cache"
	"foodgram/internal/config"
	"foodgram/internal/database"
	"foodgram/internal/featureflags"
	"foodgram/internal/middleware"
	"foodgram/internal/models"
	"foodgram/internal/repository"
	"foodgram/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	featureFlags   *featureflags.Manager

	userService         *service.UserService
	recipeService       *service.RecipeService
	relationService     *service.RelationService
	catalogService      *service.CatalogService
	shoppingListService *service.ShoppingListService
}

// NewServer connects to the database and Redis and builds a Server on top of them.
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	return NewServerWithDeps(cfg, db, cache.GetClient())
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	if db == nil {
		return nil, errors.New("database is required")
	}

	userRepo := repository.NewUserRepository(db)
	recipeRepo := repository.NewRecipeRepository(db)
	relationRepo := repository.NewRelationRepository(db)
	tagRepo := repository.NewTagRepository(db)
	ingredientRepo := repository.NewIngredientRepository(db)
	shoppingListRepo := repository.NewShoppingListRepository(db)

	flags := featureflags.NewManager(featureflags.Defaults, cfg.FeatureFlags)
	cacheTTL := time.Duration(cfg.RecipeCacheTTLSeconds) * time.Second

	return &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("foodgram-api"),
		featureFlags:   flags,

		userService:         service.NewUserService(userRepo, recipeRepo, relationRepo, cfg.RecipesLimit),
		recipeService:       service.NewRecipeService(recipeRepo, relationRepo, flags, cacheTTL),
		relationService:     service.NewRelationService(relationRepo, recipeRepo, userRepo, cfg.RecipesLimit),
		catalogService:      service.NewCatalogService(tagRepo, ingredientRepo),
		shoppingListService: service.NewShoppingListService(shoppingListRepo, flags, cfg.ShoppingListFilename),
	}, nil
}

// NewApp builds the fiber application with middleware and routes installed.
func (s *Server) NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:     "Foodgram API",
		JSONEncoder: json.Marshal,
		JSONDecoder: json.Unmarshal,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				return models.RespondWithError(c, fe.Code, err)
			}
			middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", slog.String("error", err.Error()))
			return models.RespondWithAppError(c, models.NewInternalError(err))
		},
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())

	// Tracing runs before ContextMiddleware so the trace ID reaches the logger.
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	// CORS must run before the limiter so rejected requests still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:3000,http://127.0.0.1:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		ExposeHeaders:    "Content-Disposition",
		AllowCredentials: origins != "*",
		MaxAge:           86400,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return models.RespondWithAppError(c, models.NewRateLimitedError("Too many requests, please try again later."))
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	authRequired := middleware.AuthRequired(s.config.JWTSecret, s.redis)
	api := app.Group("/api", middleware.OptionalAuth(s.config.JWTSecret, s.redis))

	auth := api.Group("/auth")
	skipLimits := !s.config.RateLimitEnabled()
	auth.Post("/signup", middleware.RateLimit(s.redis, middleware.RateRule{
		Name: "signup", Limit: 3, Window: 10 * time.Minute, Disabled: skipLimits,
	}), s.Signup)
	auth.Post("/login", middleware.RateLimit(s.redis, middleware.RateRule{
		Name: "login", Limit: 10, Window: 5 * time.Minute, Disabled: skipLimits,
	}), s.Login)
	auth.Post("/logout", authRequired, s.Logout)

	tags := api.Group("/tags")
	tags.Get("/", s.ListTags)
	tags.Get("/:id", s.GetTag)

	ingredients := api.Group("/ingredients")
	ingredients.Get("/", s.ListIngredients)
	ingredients.Get("/:id", s.GetIngredient)

	// Static segments are registered before /:id.
	recipes := api.Group("/recipes")
	recipes.Get("/", s.ListRecipes)
	recipes.Get("/download_shopping_cart", authRequired, s.DownloadShoppingCart)
	recipes.Post("/", authRequired, s.CreateRecipe)
	recipes.Post("/:id/favorite", authRequired, s.AddFavorite)
	recipes.Delete("/:id/favorite", authRequired, s.RemoveFavorite)
	recipes.Post("/:id/shopping_cart", authRequired, s.AddToShoppingCart)
	recipes.Delete("/:id/shopping_cart", authRequired, s.RemoveFromShoppingCart)
	recipes.Get("/:id", s.GetRecipe)
	recipes.Patch("/:id", authRequired, s.UpdateRecipe)
	recipes.Delete("/:id", authRequired, s.DeleteRecipe)

	users := api.Group("/users")
	users.Get("/", s.ListUsers)
	users.Get("/me", authRequired, s.GetMyProfile)
	users.Get("/subscriptions", authRequired, s.ListSubscriptions)
	users.Post("/set_password", authRequired, s.SetPassword)
	users.Post("/:id/subscribe", authRequired, s.Subscribe)
	users.Delete("/:id/subscribe", authRequired, s.Unsubscribe)
	users.Get("/:id", s.GetUserProfile)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck pings the database and Redis concurrently.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus, redisStatus := "healthy", "unavailable"
	var g errgroup.Group
	g.Go(func() error {
		sqlDB, err := s.db.DB()
		if err == nil {
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			dbStatus = "unhealthy"
		}
		return err
	})
	if s.redis != nil {
		g.Go(func() error {
			err := s.redis.Ping(ctx).Err()
			if err != nil {
				redisStatus = "unhealthy"
			} else {
				redisStatus = "healthy"
			}
			return err
		})
	}
	_ = g.Wait()

	// A missing Redis degrades readiness without failing it.
	status := fiber.StatusOK
	overall := "healthy"
	switch {
	case dbStatus != "healthy":
		status = fiber.StatusServiceUnavailable
		overall = "unhealthy"
	case redisStatus != "healthy":
		overall = "degraded"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overall,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// Start builds the app and listens on the configured port.
func (s *Server) Start() error {
	s.app = s.NewApp()
	middleware.Logger.Info("Server starting", slog.String("port", s.config.Port))
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", slog.String("error", cerr.Error()))
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", slog.String("error", rerr.Error()))
		}
	}

	middleware.Logger.Info("Server shutdown complete")
	return nil
}
