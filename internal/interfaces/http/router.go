// Package http assembles the gin route tree and the HTTP server around it.
package http

import (
	"github.com/gin-gonic/gin"

	"github.com/tradeinlabs/phoneworth/internal/infrastructure/monitoring/logging"
	"github.com/tradeinlabs/phoneworth/internal/infrastructure/monitoring/prometheus"
	"github.com/tradeinlabs/phoneworth/internal/interfaces/http/handlers"
	"github.com/tradeinlabs/phoneworth/internal/interfaces/http/middleware"
)

// RouterConfig aggregates the handlers and middleware dependencies of the
// complete route tree.
type RouterConfig struct {
	Pricing   *handlers.PricingHandler
	Catalog   *handlers.CatalogHandler
	Recommend *handlers.RecommendHandler
	Health    *handlers.HealthHandler

	Logger  logging.Logger
	Metrics *prometheus.AppMetrics

	// Mode is the gin mode: "debug" | "release" | "test".
	Mode string
	// RateLimiter is optional; nil disables limiting.
	RateLimiter *middleware.RateLimiter
	// CORSOrigins lists allowed origins; empty allows any.
	CORSOrigins []string
}

// NewRouter constructs the complete route tree: global middleware, public
// probes, the metrics endpoint, and the /api/v1 resource group.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.CORS(cfg.CORSOrigins))
	if cfg.Logger != nil {
		r.Use(middleware.RequestLogging(cfg.Logger, middleware.DefaultLoggingConfig()))
	}
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Handler())
	}

	r.GET("/healthz", cfg.Health.Liveness)
	r.GET("/readyz", cfg.Health.Readiness)
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	api := r.Group("/api/v1")
	{
		api.GET("/models", cfg.Pricing.ListModels)
		api.GET("/predictions", cfg.Pricing.Predictions)
		api.GET("/sense", cfg.Pricing.Sense)

		api.GET("/families/:family/devices", cfg.Catalog.ListDevices)
		api.GET("/families/:family/devices/:key", cfg.Catalog.GetDevice)
		api.GET("/phones", cfg.Catalog.ListPhones)

		api.POST("/recommendations", cfg.Recommend.Recommend)
	}

	return r
}
