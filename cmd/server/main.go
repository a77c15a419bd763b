package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/irfndi/polymarket-insight/internal/api"
	"github.com/irfndi/polymarket-insight/internal/config"
	"github.com/irfndi/polymarket-insight/internal/logging"
	"github.com/irfndi/polymarket-insight/internal/metrics"
	"github.com/irfndi/polymarket-insight/internal/middleware"
	"github.com/irfndi/polymarket-insight/internal/services"
	"github.com/irfndi/polymarket-insight/internal/telemetry"
	"github.com/irfndi/polymarket-insight/internal/web"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Application failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, closeLogger := newStandardLogger(cfg)
	defer func() {
		if err := closeLogger(); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to flush logs: %v\n", err)
		}
	}()
	slog.SetDefault(logger.Logger())

	// Create logrus logger for services
	logrusLogger := logging.NewLogrusLogger(cfg.LogLevel, cfg.Environment)

	// Initialize telemetry before the router so otelgin picks up the provider
	if err := telemetry.InitTelemetry(telemetry.TelemetryConfig{
		Enabled:        cfg.Telemetry.Enabled,
		Exporter:       cfg.Telemetry.Exporter,
		OTLPEndpoint:   cfg.Telemetry.OTLPEndpoint,
		ServiceName:    cfg.Telemetry.ServiceName,
		ServiceVersion: cfg.Telemetry.ServiceVersion,
		Environment:    cfg.Environment,
		SampleRate:     cfg.Telemetry.SampleRate,
		LogLevel:       cfg.LogLevel,
	}); err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := telemetry.Shutdown(ctx); err != nil {
			logrusLogger.WithError(err).Error("Failed to shutdown telemetry")
		}
	}()

	router, err := newRouter(cfg, logrusLogger, logger)
	if err != nil {
		return err
	}
	srv := newHTTPServer(cfg, router)

	serverErr := make(chan error, 1)
	go func() {
		logger.LogStartup(cfg.Telemetry.ServiceName, cfg.Telemetry.ServiceVersion, cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-serverErr:
		return fmt.Errorf("failed to start server: %w", err)
	case sig := <-quit:
		logger.LogShutdown(cfg.Telemetry.ServiceName, "signal received: "+sig.String())
	}

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), config.Duration(cfg.Server.ShutdownTimeout, 30*time.Second))
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logrusLogger.Info("Server exited gracefully")
	return nil
}

// newStandardLogger returns the slog-based logger and a flush function. Logs go
// to the OTLP collector when telemetry log export is enabled.
func newStandardLogger(cfg *config.Config) (*logging.StandardLogger, func() error) {
	if cfg.Telemetry.Enabled && cfg.Telemetry.ExportLogs {
		return logging.NewStandardOTLPLogger(logging.OTLPConfig{
			Enabled:        true,
			Endpoint:       cfg.Telemetry.OTLPEndpoint,
			ServiceName:    cfg.Telemetry.ServiceName,
			ServiceVersion: cfg.Telemetry.ServiceVersion,
			Environment:    cfg.Environment,
			LogLevel:       cfg.LogLevel,
		})
	}
	return logging.NewStandardLogger(cfg.LogLevel, cfg.Environment), func() error { return nil }
}

// newRouter wires the pipeline, middleware and routes
func newRouter(cfg *config.Config, logrusLogger *logrus.Logger, logger *logging.StandardLogger) (*gin.Engine, error) {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	renderer, err := web.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}

	collector := metrics.NewMetricsCollector(logger, cfg.Telemetry.ServiceName)
	mockData := services.NewMockDataService(cfg.MockData, logrusLogger)
	processor := services.NewAnalyticsProcessor(cfg.Analytics, logrusLogger)
	insight := services.NewInsightService(
		mockData,
		processor,
		collector,
		logrusLogger,
		cfg.MockData.HistoryDays,
		cfg.Analytics.RecentRows,
	)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(otelgin.Middleware(cfg.Telemetry.ServiceName,
		otelgin.WithFilter(func(r *http.Request) bool {
			return middleware.ShouldTrace(r.URL.Path)
		}),
	))
	router.Use(middleware.TelemetryMiddleware())
	router.Use(middleware.RequestLogger(logrusLogger))
	router.Use(collector.Middleware())

	api.SetupRoutes(router, insight, renderer, collector, logger, cfg.Telemetry.ServiceVersion)
	return router, nil
}

// newHTTPServer creates the HTTP server with the configured timeouts
func newHTTPServer(cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           handler,
		ReadTimeout:       config.Duration(cfg.Server.ReadTimeout, 10*time.Second),
		WriteTimeout:      config.Duration(cfg.Server.WriteTimeout, 10*time.Second),
		ReadHeaderTimeout: config.Duration(cfg.Server.ReadHeaderTimeout, 5*time.Second),
		IdleTimeout:       config.Duration(cfg.Server.IdleTimeout, 15*time.Second),
	}
}
