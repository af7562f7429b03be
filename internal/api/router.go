package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/pharmatrack/pharmacy-api/internal/api/handler"
	"github.com/pharmatrack/pharmacy-api/internal/api/middleware"
	"github.com/pharmatrack/pharmacy-api/internal/core/domain"
	"github.com/pharmatrack/pharmacy-api/internal/core/ports"
	"github.com/pharmatrack/pharmacy-api/internal/core/service"
	"github.com/pharmatrack/pharmacy-api/internal/infrastructure/config"
	memorydb "github.com/pharmatrack/pharmacy-api/internal/infrastructure/db/memory"
	mongodb "github.com/pharmatrack/pharmacy-api/internal/infrastructure/db/mongo"
	redisdb "github.com/pharmatrack/pharmacy-api/internal/infrastructure/db/redis"
	httphandlers "github.com/pharmatrack/pharmacy-api/internal/infrastructure/http/handlers"
)

// NewRouter builds and returns the Echo instance with all routes registered.
// Mongo and Redis are optional: without them the user store and the login
// throttle fall back to their in-memory implementations.
func NewRouter(cfg *config.Config, db *mongo.Database, rdb *redis.Client, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("pharmacy_auth"))

	// --- Dependencies ---
	var userRepo ports.UserRepository
	if db != nil {
		userRepo = mongodb.NewUserRepository(db)
	} else {
		userRepo = memorydb.NewUserRepository()
	}

	var throttle ports.LoginThrottle
	if rdb != nil {
		throttle = redisdb.NewLoginThrottle(rdb, cfg.Auth.MaxLoginAttempts, cfg.Auth.LockoutWindow())
	} else {
		throttle = service.NewLoginThrottle(cfg.Auth.MaxLoginAttempts, cfg.Auth.LockoutWindow())
	}

	hasher := service.NewPasswordHasher(cfg.Auth.BcryptCost)
	tokens := service.NewTokenService(
		cfg.Auth.JWTSecret,
		cfg.Auth.JWTRefreshSecret,
		service.ParseLifetime(cfg.Auth.AccessExpiresIn),
		service.ParseLifetime(cfg.Auth.RefreshExpiresIn),
	)
	authService := service.NewAuthService(userRepo, hasher, tokens, throttle, log)

	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(authService)
	authed := middleware.Auth(tokens)

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/refresh", authHandler.Refresh)

	// --- User routes ---
	users := e.Group("/users", authed)
	users.GET("/me", userHandler.Me)
	users.GET("/:id", userHandler.Get, middleware.RequireLevel(domain.LevelRead))
	users.PATCH("/:id/role", userHandler.UpdateRole, middleware.RBAC(domain.RoleAdmin))
	users.PATCH("/:id/access-level", userHandler.UpdateAccessLevel, middleware.RequireLevel(domain.LevelAdmin))

	// --- Observability (no auth required) ---
	e.GET("/metrics", echoprometheus.NewHandler())

	// --- Health probes (no auth required) ---
	healthHandler := httphandlers.NewHealthHandler()
	healthDepsHandler := httphandlers.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	return e
}
