package handler

import (
	"payment-core/internal/adapter/http/middleware"
	redisStore "payment-core/internal/adapter/storage/redis"
	"payment-core/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	CheckoutSvc    ports.CheckoutService
	WebhookSvc     ports.WebhookService
	Factory        ports.ProviderFactory
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

	// --- Checkout API (called by the storefront backend) ---
	checkoutHandler := NewCheckoutHandler(deps.CheckoutSvc)
	v1 := r.Group("/api/v1")
	{
		v1.POST("/checkout", rl("checkout"), checkoutHandler.CreateCheckout)
	}

	// --- Gateway callbacks (authenticated by HMAC signature, never rate
	// limited: dropping a retry would lose a payment notification) ---
	webhookHandler := NewWebhookHandler(deps.WebhookSvc, deps.Factory, deps.Logger)
	r.POST("/api/webhooks/payment", webhookHandler.HandlePaymentWebhook)

	return r
}
