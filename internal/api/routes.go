package api

import (
	"github.com/gin-gonic/gin"

	"github.com/irfndi/polymarket-insight/internal/api/handlers"
	"github.com/irfndi/polymarket-insight/internal/logging"
	"github.com/irfndi/polymarket-insight/internal/metrics"
	"github.com/irfndi/polymarket-insight/internal/web"
)

// SetupRoutes configures the HTML dashboard, the JSON API (v1), health probes
// and the metrics endpoint.
//
// Parameters:
//
//	router: The Gin engine instance to register routes on.
//	insight: The generate, process and present pipeline.
//	renderer: Parsed page templates.
//	collector: Prometheus-backed metrics; its registry is served at /metrics.
//	logger: Structured logger for handler failures and business events.
//	version: Application version reported by /health.
func SetupRoutes(
	router *gin.Engine,
	insight handlers.InsightProvider,
	renderer *web.Renderer,
	collector *metrics.MetricsCollector,
	logger *logging.StandardLogger,
	version string,
) {
	router.SetHTMLTemplate(renderer.Template())

	healthHandler := handlers.NewHealthHandler(insight, renderer, version)
	router.GET("/health", gin.WrapF(healthHandler.HealthCheck))
	router.HEAD("/health", gin.WrapF(healthHandler.HealthCheck))
	router.GET("/ready", gin.WrapF(healthHandler.ReadinessCheck))
	router.GET("/live", gin.WrapF(healthHandler.LivenessCheck))

	if collector != nil {
		router.GET("/metrics", gin.WrapH(collector.Handler()))
	}

	dashboardHandler := handlers.NewDashboardHandler(insight, logger)
	router.GET("/", dashboardHandler.ShowDashboard)
	router.GET("/dashboard", dashboardHandler.ShowDashboard)

	marketHandler := handlers.NewMarketHandler(insight, logger)

	v1 := router.Group("/api/v1")
	{
		markets := v1.Group("/markets")
		{
			markets.GET("", marketHandler.GetMarkets)
			markets.GET("/:id", marketHandler.GetMarketDetails)
			markets.GET("/:id/history", marketHandler.GetMarketHistory)
			markets.GET("/:id/analytics", marketHandler.GetMarketAnalytics)
			markets.GET("/:id/dashboard", marketHandler.GetMarketDashboard)
		}
	}
}
