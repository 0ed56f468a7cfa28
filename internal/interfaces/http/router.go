// Package http assembles the gin route tree and the HTTP server of the
// query surface.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/juristack/juristack/internal/infrastructure/monitoring/logging"
	"github.com/juristack/juristack/internal/infrastructure/monitoring/prometheus"
	"github.com/juristack/juristack/internal/interfaces/http/handlers"
	"github.com/juristack/juristack/internal/interfaces/http/middleware"
)

// RouterConfig aggregates all handler and middleware dependencies required
// to construct the complete HTTP route tree.
type RouterConfig struct {
	// Handlers
	CaseHandler    *handlers.CaseHandler
	ChatHandler    *handlers.ChatHandler
	PredictHandler *handlers.PredictHandler
	HealthHandler  *handlers.HealthHandler

	// Middleware
	CORS      *middleware.CORSConfig
	Logging   *middleware.LoggingConfig
	RateLimit middleware.RateLimiter

	// Infrastructure
	Logger         logging.Logger
	Metrics        *prometheus.AppMetrics
	MetricsHandler http.Handler
}

// NewRouter constructs the complete HTTP route tree from the given
// configuration. It wires global middleware, the public health endpoints,
// and the API v1 resource groups into a single http.Handler suitable for
// use with http.Server.
func NewRouter(cfg RouterConfig) http.Handler {
	r := gin.New()

	// --- Global middleware (applied to every request) ---
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())

	corsCfg := middleware.DefaultCORSConfig()
	if cfg.CORS != nil {
		corsCfg = *cfg.CORS
	}
	r.Use(middleware.CORS(corsCfg))

	logCfg := middleware.DefaultLoggingConfig()
	if cfg.Logging != nil {
		logCfg = *cfg.Logging
	}
	if cfg.Logger != nil {
		r.Use(middleware.RequestLogging(cfg.Logger, cfg.Metrics, logCfg))
	}
	if cfg.RateLimit != nil {
		r.Use(middleware.RateLimit(cfg.RateLimit, middleware.DefaultRateLimitConfig()))
	}

	// --- Public health endpoints ---
	if cfg.HealthHandler != nil {
		r.GET("/healthz", cfg.HealthHandler.Liveness)
		r.GET("/readyz", cfg.HealthHandler.Readiness)
		r.GET("/healthz/detail", cfg.HealthHandler.Detailed)
	}

	// --- Metrics endpoint. Exposed without auth; keep it behind an internal
	// firewall rule in production. ---
	if cfg.MetricsHandler != nil {
		r.GET("/metrics", gin.WrapH(cfg.MetricsHandler))
	}

	// --- API v1 ---
	api := r.Group("/api/v1")
	registerCaseRoutes(api, cfg.CaseHandler)
	registerChatRoutes(api, cfg.ChatHandler)
	registerPredictRoutes(api, cfg.PredictHandler)

	return r
}

// registerCaseRoutes mounts case ingestion and query endpoints under /cases.
func registerCaseRoutes(r *gin.RouterGroup, h *handlers.CaseHandler) {
	if h == nil {
		return
	}
	cases := r.Group("/cases")
	cases.POST("", h.Upload)
	cases.GET("/:number/status", h.Status)
	cases.GET("/:number/analyze", h.Analyze)
	cases.POST("/:number/reset", h.Reset)
}

// registerChatRoutes mounts the chatbot endpoints under /chat.
func registerChatRoutes(r *gin.RouterGroup, h *handlers.ChatHandler) {
	if h == nil {
		return
	}
	chat := r.Group("/chat")
	chat.POST("/ask", h.Ask)
	chat.GET("/:number/history", h.History)
}

// registerPredictRoutes mounts the standalone prediction endpoint under
// /predict.
func registerPredictRoutes(r *gin.RouterGroup, h *handlers.PredictHandler) {
	if h == nil {
		return
	}
	predict := r.Group("/predict")
	predict.POST("/manual", h.Manual)
}
