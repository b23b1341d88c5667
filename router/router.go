package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/tadweer/tadweer-site/config"
	"github.com/tadweer/tadweer-site/handlers"
	"github.com/tadweer/tadweer-site/middleware"
)

// Dependencies struct holds all dependencies required for setting up routes.
type Dependencies struct {
	Config            *config.Config
	SuggestionHandler *handlers.SuggestionHandler
	HealthHandler     *handlers.HealthHandler
	// MetricsHandler serves /metrics; nil means the default Prometheus registry.
	MetricsHandler http.Handler
	Logger         *zap.SugaredLogger
}

// SetupRouter configures and returns the main Gin engine with all routes defined.
func SetupRouter(deps Dependencies) *gin.Engine {
	r := gin.Default()
	r.HandleMethodNotAllowed = true

	// CORS runs before the error handler so error responses carry the headers too
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.CORSMiddleware(&deps.Config.Server))
	r.Use(middleware.SecurityHeadersMiddleware(&deps.Config.Server))
	r.Use(middleware.ErrorHandler())

	r.NoMethod(handlers.MethodNotAllowed)

	metricsHandler := deps.MetricsHandler
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}

	r.GET("/health", deps.HealthHandler.DetailedHealth)
	r.GET("/health/liveness", deps.HealthHandler.LivenessCheck)
	r.GET("/health/readiness", deps.HealthHandler.ReadinessCheck)
	r.GET("/metrics", gin.WrapH(metricsHandler))

	// The same endpoint is served at the site root and under the serverless-style /api prefix
	deps.SuggestionHandler.RegisterRoutes(r.Group("/suggestions"))
	deps.SuggestionHandler.RegisterRoutes(r.Group("/api/suggestions"))

	if deps.Logger != nil {
		deps.Logger.Infow("Routes registered",
			"suggestions", []string{"/suggestions", "/api/suggestions"},
			"environment", deps.Config.Server.Environment)
	}

	return r
}
