package router

import (
	"context"
	"strings"
	"time"

	"dira-directory/backend/pkg/config"
	"dira-directory/backend/pkg/di"
	"dira-directory/backend/pkg/errors"
	"dira-directory/backend/pkg/health"
	"dira-directory/backend/pkg/logger"
	"dira-directory/backend/pkg/middleware"

	"github.com/gin-gonic/gin"
)

// Router is the main router for the application
type Router struct {
	Engine    *gin.Engine
	Container *di.Container
	Logger    *logger.Logger
	Config    *config.Config
	Health    *health.Checker
}

// New creates a new router with the given container
func New(container *di.Container) *Router {
	logger.SetGlobal(container.Logger)

	cfg := container.Config

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	engine.Use(logger.Middleware(container.Logger))
	engine.Use(errors.ErrorHandler())
	engine.Use(errors.RecoveryWithLogger())

	rateLimiter := middleware.NewRateLimiter(container.Logger)
	engine.Use(rateLimiter.Middleware())

	checker := health.NewChecker(container.Logger, 30*time.Second)
	checker.RegisterDatabaseCheck(func() error {
		return container.DB.Exec("SELECT 1").Error
	})
	if container.Redis != nil {
		redisClient := container.Redis
		checker.RegisterRedisCheck(func() error {
			return redisClient.Ping(context.Background())
		})
	}
	checker.Start()

	return &Router{
		Engine:    engine,
		Container: container,
		Logger:    container.Logger,
		Config:    cfg,
		Health:    checker,
	}
}

// SetupRoutes registers all application routes
func (r *Router) SetupRoutes() {
	r.Engine.Use(corsMiddleware(r.Config.Security.AllowedOrigins))

	requireAuth := middleware.RequireAuth(r.Container.JWTService, r.Logger)
	optionalAuth := middleware.OptionalAuth(r.Container.JWTService)

	r.Engine.GET("/health", gin.WrapF(r.Health.HTTPHandler()))
	r.Engine.GET("/api/health", gin.WrapF(r.Health.HTTPHandler()))

	v1 := r.Engine.Group("/api/v1")
	v1.Use(optionalAuth)

	r.Container.ProductHandler.RegisterRoutes(v1, requireAuth)
	r.Container.OpportunityHandler.RegisterRoutes(v1, requireAuth)
	r.Container.FeedbackHandler.RegisterRoutes(v1, requireAuth)
	r.Container.ChatHandler.RegisterRoutes(v1, requireAuth)
	r.Container.UserHandler.RegisterRoutes(v1, requireAuth)
}

// corsMiddleware applies the configured origin allowlist
func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	allowAll := len(allowedOrigins) == 0
	for _, o := range allowedOrigins {
		if o == "*" {
			allowAll = true
		}
	}

	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		switch {
		case allowAll:
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		case origin != "" && originAllowed(origin, allowedOrigins):
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Vary", "Origin")
		}

		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept, Accept-Encoding, Authorization, Origin, Cache-Control, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

func originAllowed(origin string, allowed []string) bool {
	for _, a := range allowed {
		if strings.EqualFold(a, origin) {
			return true
		}
	}
	return false
}
