package app

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"carshare/internal/domain"
	"carshare/internal/handler"
	"carshare/internal/metrics"
	"carshare/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	VehicleHandler *handler.VehicleHandler
	RentalHandler  *handler.RentalHandler
	PaymentHandler *handler.PaymentHandler
	Tokens         middleware.TokenValidator
	RedisClient    *redis.Client // Optional; idempotency replay is off without it.
	NewRelicApp    *newrelic.Application
	Logger         *logrus.Entry
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	if deps.Logger != nil {
		router.Use(middleware.RequestLogger(deps.Logger))
	}

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	// API v1 routes. Idempotency keys are scoped per requester, so the
	// middleware runs after authentication.
	v1 := router.Group("/v1")
	v1.Use(middleware.Auth(deps.Tokens))
	v1.Use(middleware.IdempotencyMiddleware(deps.RedisClient))
	{
		// Vehicle routes.
		vehicles := v1.Group("/vehicles")
		{
			vehicles.GET("", deps.VehicleHandler.List)
			vehicles.GET("/:id", deps.VehicleHandler.Get)

			manage := vehicles.Group("", middleware.RequireRole(domain.RoleManager))
			manage.POST("", deps.VehicleHandler.Create)
			manage.PUT("/:id", deps.VehicleHandler.Update)
			manage.DELETE("/:id", deps.VehicleHandler.Retire)
		}

		// Rental routes.
		rentals := v1.Group("/rentals")
		{
			rentals.POST("", deps.RentalHandler.Open)
			rentals.GET("", deps.RentalHandler.List)
			rentals.GET("/:id", deps.RentalHandler.Get)
			rentals.POST("/:id/return", deps.RentalHandler.Return)
		}

		// Payment routes.
		payments := v1.Group("/payments")
		{
			payments.POST("", deps.PaymentHandler.Create)
			payments.GET("", deps.PaymentHandler.List)
			payments.GET("/success/:id", deps.PaymentHandler.Success)
			payments.GET("/cancel/:id", deps.PaymentHandler.Cancel)
		}
	}

	return router
}
