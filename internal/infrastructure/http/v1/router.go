// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Roak-kenandy/Billing-Report-Generation-sub000/internal/domain/reference"
	"github.com/Roak-kenandy/Billing-Report-Generation-sub000/internal/domain/reports"
	"github.com/Roak-kenandy/Billing-Report-Generation-sub000/internal/infrastructure/http/v1/handlers"
	"github.com/Roak-kenandy/Billing-Report-Generation-sub000/internal/infrastructure/http/v1/middleware"
	"github.com/Roak-kenandy/Billing-Report-Generation-sub000/pkg/logger"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	Logger *logger.Logger

	Reports   *reports.Service
	Reference *reference.Service

	// HealthChecks are pinged by /health/ready.
	HealthChecks map[string]handlers.Pinger

	// JWTValidator guards /api/v1 when set.
	JWTValidator middleware.JWTValidator

	// Metrics records request metrics when set.
	Metrics middleware.RequestObserver

	// Gatherer backs /metrics. Defaults to the global registry.
	Gatherer prometheus.Gatherer

	Debug bool
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Default()
	}
	if cfg.Gatherer == nil {
		cfg.Gatherer = prometheus.DefaultGatherer
	}

	router := gin.New()

	// Order matters: Recovery records panics for ErrorHandler to render.
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	if cfg.Metrics != nil {
		router.Use(middleware.Metrics(cfg.Metrics))
	}
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.Recovery())

	healthHandler := handlers.NewHealthHandler(cfg.HealthChecks)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
	}
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))

	api := router.Group("/api/v1")
	if cfg.JWTValidator != nil {
		api.Use(middleware.Auth(cfg.JWTValidator))
	}

	base := handlers.NewBaseHandler()
	if cfg.Reports != nil {
		handlers.NewReportsHandler(base, cfg.Reports).RegisterRoutes(api.Group("/reports"))
	}
	if cfg.Reference != nil {
		handlers.NewReferenceHandler(base, cfg.Reference).RegisterRoutes(api.Group("/reference"))
	}

	return router
}
