package api

import (
	"context"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/rentcar/rental-api/docs"
	"github.com/rentcar/rental-api/internal/api/handler"
	"github.com/rentcar/rental-api/internal/api/metrics"
	"github.com/rentcar/rental-api/internal/api/middleware"
	"github.com/rentcar/rental-api/internal/core/domain"
	"github.com/rentcar/rental-api/internal/core/service"
	"github.com/rentcar/rental-api/internal/infrastructure/config"
	mongorepo "github.com/rentcar/rental-api/internal/infrastructure/db/mongo"
	redisstore "github.com/rentcar/rental-api/internal/infrastructure/db/redis"
	"github.com/rentcar/rental-api/internal/infrastructure/security"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(cfg *config.Config, db *mongo.Database, rdb *redis.Client, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(metrics.Middleware(statusOf))
	e.Use(requestLogger(log))

	// --- Dependencies ---
	tokens := security.NewJWTIssuer(cfg.JWT.Secret, cfg.JWT.TTL)

	authService := service.NewAuthService(
		mongorepo.NewUserRepository(db),
		mongorepo.NewRoleRepository(db),
		security.NewBcryptHasher(),
		tokens,
		log.With().Str("component", "auth").Logger(),
	)
	carService := service.NewCarService(
		mongorepo.NewCarRepository(db),
		mongorepo.NewRentalRepository(db),
		redisstore.NewCarCache(rdb, cfg.Redis.CarCacheTTL),
		redisstore.NewRentLock(rdb, cfg.Redis.RentLockTTL),
		log.With().Str("component", "cars").Logger(),
	)

	authHandler := handler.NewAuthHandler(authService)
	carHandler := handler.NewCarHandler(carService)
	requireAuth := middleware.Auth(tokens)
	adminOnly := middleware.RBAC(domain.RoleAdmin, domain.RoleSuperAdmin)
	customerOnly := middleware.RBAC(domain.RoleCustomer)

	v1 := e.Group("/v1")

	// --- Auth routes ---
	auth := v1.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/register", authHandler.Register)
	auth.GET("/whoami", authHandler.WhoAmI, requireAuth)

	// --- Car routes ---
	cars := v1.Group("/cars")
	cars.GET("", carHandler.List)
	cars.GET("/:id", carHandler.Get)
	cars.POST("", carHandler.Create, requireAuth, adminOnly)
	cars.POST("/:id/rent", carHandler.Rent, requireAuth, customerOnly)
	cars.DELETE("/:id", carHandler.Delete, requireAuth, adminOnly)

	// --- Health probes (no auth required) ---
	health := handler.NewHealthHandler(map[string]handler.Check{
		"mongodb": func(ctx context.Context) error { return db.Client().Ping(ctx, nil) },
		"redis":   func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
	})
	e.GET("/health", health.Liveness)
	e.GET("/health/ready", health.Readiness)

	// --- Operational endpoints ---
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

// requestLogger emits one zerolog line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			event := log.Info()
			if v.Error != nil {
				event = log.Warn().Err(v.Error)
			}
			event.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
