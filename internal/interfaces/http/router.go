// Package http wires the prediction API onto gin.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/solubility-bench/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/solubility-bench/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/solubility-bench/internal/interfaces/http/handlers"
	"github.com/turtacn/solubility-bench/internal/interfaces/http/middleware"
	"github.com/turtacn/solubility-bench/pkg/errors"
)

type RouterConfig struct {
	// Handlers
	PredictHandler *handlers.PredictHandler
	HealthHandler  *handlers.HealthHandler

	// Middleware
	Logging middleware.LoggingConfig

	// Infrastructure
	Logger           logging.Logger
	MetricsCollector prometheus.MetricsCollector
	Metrics          *prometheus.BenchMetrics

	// Mode is the gin mode: debug, release or test.  Empty means release.
	Mode string
}

func NewRouter(cfg RouterConfig) http.Handler {
	mode := cfg.Mode
	if mode == "" {
		mode = gin.ReleaseMode
	}
	gin.SetMode(mode)

	r := gin.New()
	r.HandleMethodNotAllowed = true

	// --- Global middleware ---
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.RequestLogging(cfg.Logger, cfg.Logging))
	r.Use(middleware.Metrics(cfg.Metrics))

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, handlers.ErrorResponse{
			Code:    string(errors.ErrCodeNotFound),
			Message: "route not found",
		})
	})
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, handlers.ErrorResponse{
			Code:    string(errors.ErrCodeBadRequest),
			Message: "method not allowed",
		})
	})

	// --- Health ---
	if cfg.HealthHandler != nil {
		r.GET("/healthz", cfg.HealthHandler.Liveness)
		r.GET("/readyz", cfg.HealthHandler.Readiness)
	}

	if cfg.MetricsCollector != nil {
		r.GET("/metrics", gin.WrapH(cfg.MetricsCollector.Handler()))
	}

	// --- API v1 ---
	api := r.Group("/api/v1")
	registerPredictRoutes(api, cfg.PredictHandler)

	return r
}

func registerPredictRoutes(r *gin.RouterGroup, h *handlers.PredictHandler) {
	if h == nil {
		return
	}
	r.POST("/predict", h.Predict)
	r.GET("/models", h.Models)
}

//Personal.AI order the ending
