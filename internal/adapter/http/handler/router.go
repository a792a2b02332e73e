package handler

import (
	"webhook-ingest-gateway/internal/adapter/http/middleware"
	redisStore "webhook-ingest-gateway/internal/adapter/storage/redis"
	"webhook-ingest-gateway/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	IngestSvc      ports.IngestService
	QuerySvc       ports.QueryService
	ConfigSvc      ports.ConfigurationService
	TokenSvc       ports.TokenService
	APIKey         string
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Health check (deep — verifies PostgreSQL + Redis)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	// Rate limit rules
	rules := middleware.DefaultRateLimitRules()

	// Helper: return rate limiter middleware if store is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	// API v1 routes
	v1 := r.Group("/api/v1")

	// --- Provider-facing routes (signature verified upstream) ---
	webhookHandler := NewWebhookHandler(deps.IngestSvc)
	webhooks := v1.Group("/webhooks")
	{
		webhooks.POST("/:source", rl("webhooks"), webhookHandler.Ingest)
	}

	// --- Public routes ---
	authHandler := NewAuthHandler(deps.APIKey, deps.TokenSvc)
	auth := v1.Group("/auth")
	{
		auth.POST("/token", rl("auth_token"), authHandler.Token)
	}

	// --- JWT-authenticated routes (dashboard) ---
	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)
	eventHandler := NewEventHandler(deps.QuerySvc)
	configHandler := NewConfigurationHandler(deps.ConfigSvc)

	events := v1.Group("/events", jwtAuth)
	{
		events.GET("", rl("dashboard"), eventHandler.List)
		events.GET("/summary", rl("dashboard"), eventHandler.Summary)
	}

	configurations := v1.Group("/configurations", jwtAuth)
	{
		configurations.POST("", rl("configurations"), configHandler.Register)
		configurations.GET("/:source", rl("configurations"), configHandler.ListBySource)
	}

	return r
}
