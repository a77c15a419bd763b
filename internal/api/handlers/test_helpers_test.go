package handlers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/irfndi/polymarket-insight/internal/config"
	"github.com/irfndi/polymarket-insight/internal/logging"
	"github.com/irfndi/polymarket-insight/internal/models"
	"github.com/irfndi/polymarket-insight/internal/services"
	"github.com/irfndi/polymarket-insight/internal/web"
)

// MockInsightProvider is a mock implementation of InsightProvider for testing
type MockInsightProvider struct {
	mock.Mock
}

func (m *MockInsightProvider) Markets() []models.MarketSummary {
	args := m.Called()
	return args.Get(0).([]models.MarketSummary)
}

func (m *MockInsightProvider) Details(ctx context.Context, marketID string) (*models.MarketDetails, error) {
	args := m.Called(ctx, marketID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MarketDetails), args.Error(1)
}

func (m *MockInsightProvider) History(ctx context.Context, marketID string, days int) (*models.MarketRecord, error) {
	args := m.Called(ctx, marketID, days)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MarketRecord), args.Error(1)
}

func (m *MockInsightProvider) Analytics(ctx context.Context, marketID string, opts services.AnalyticsOptions) (*models.DerivedSeries, error) {
	args := m.Called(ctx, marketID, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DerivedSeries), args.Error(1)
}

func (m *MockInsightProvider) BuildDashboard(ctx context.Context, marketID string) (*models.Dashboard, error) {
	args := m.Called(ctx, marketID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Dashboard), args.Error(1)
}

func discardLogrus() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func discardLogger() *logging.StandardLogger {
	return logging.NewStandardLoggerWithWriter(io.Discard, "error", "test")
}

// newTestInsight wires the real pipeline with a fixed seed
func newTestInsight() *services.InsightService {
	logger := discardLogrus()
	mockData := services.NewMockDataService(config.MockDataConfig{
		HistoryDays:      180,
		Seed:             42,
		SpikeProbability: 0.1,
	}, logger)
	processor := services.NewAnalyticsProcessor(config.AnalyticsConfig{
		ShortWindow:      7,
		LongWindow:       30,
		VolatilityWindow: 14,
		HighVolumeK:      1.0,
		RecentRows:       7,
	}, logger)
	return services.NewInsightService(mockData, processor, nil, logger, 180, 7)
}

func newTestRenderer(t *testing.T) *web.Renderer {
	t.Helper()
	renderer, err := web.NewRenderer()
	require.NoError(t, err)
	return renderer
}

func performRequest(router http.Handler, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func newMarketRouter(insight InsightProvider) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	handler := NewMarketHandler(insight, discardLogger())
	router.GET("/api/v1/markets", handler.GetMarkets)
	router.GET("/api/v1/markets/:id", handler.GetMarketDetails)
	router.GET("/api/v1/markets/:id/history", handler.GetMarketHistory)
	router.GET("/api/v1/markets/:id/analytics", handler.GetMarketAnalytics)
	router.GET("/api/v1/markets/:id/dashboard", handler.GetMarketDashboard)
	return router
}
