package handlers

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/irfndi/polymarket-insight/internal/config"
	"github.com/irfndi/polymarket-insight/internal/logging"
	"github.com/irfndi/polymarket-insight/internal/middleware"
	"github.com/irfndi/polymarket-insight/internal/models"
	"github.com/irfndi/polymarket-insight/internal/services"
	"github.com/irfndi/polymarket-insight/internal/utils"
)

// InsightProvider is the pipeline surface the handlers depend on
type InsightProvider interface {
	Markets() []models.MarketSummary
	Details(ctx context.Context, marketID string) (*models.MarketDetails, error)
	History(ctx context.Context, marketID string, days int) (*models.MarketRecord, error)
	Analytics(ctx context.Context, marketID string, opts services.AnalyticsOptions) (*models.DerivedSeries, error)
	BuildDashboard(ctx context.Context, marketID string) (*models.Dashboard, error)
}

type MarketHandler struct {
	insight InsightProvider
	logger  *logging.StandardLogger
}

// MarketsResponse represents the market catalog
type MarketsResponse struct {
	Markets   []models.MarketSummary `json:"markets"`
	Total     int                    `json:"total"`
	Timestamp time.Time              `json:"timestamp"`
}

func NewMarketHandler(insight InsightProvider, logger *logging.StandardLogger) *MarketHandler {
	return &MarketHandler{
		insight: insight,
		logger:  logger,
	}
}

// GetMarkets lists the predefined markets
func (h *MarketHandler) GetMarkets(c *gin.Context) {
	markets := h.insight.Markets()
	c.JSON(http.StatusOK, MarketsResponse{
		Markets:   markets,
		Total:     len(markets),
		Timestamp: time.Now(),
	})
}

// GetMarketDetails returns the details card of a market
func (h *MarketHandler) GetMarketDetails(c *gin.Context) {
	details, err := h.insight.Details(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleError(c, err, "Failed to retrieve market details")
		return
	}
	c.JSON(http.StatusOK, details)
}

// GetMarketHistory returns the generated daily series
func (h *MarketHandler) GetMarketHistory(c *gin.Context) {
	days, err := parseDays(c)
	if err != nil {
		h.handleError(c, err, "")
		return
	}

	record, err := h.insight.History(c.Request.Context(), c.Param("id"), days)
	if err != nil {
		h.handleError(c, err, "Failed to generate market history")
		return
	}
	middleware.AddSpanAttribute(c, "series.points", record.Len())
	c.JSON(http.StatusOK, record)
}

// GetMarketAnalytics returns the derived series. Query parameters: days, k.
func (h *MarketHandler) GetMarketAnalytics(c *gin.Context) {
	days, err := parseDays(c)
	if err != nil {
		h.handleError(c, err, "")
		return
	}
	k, err := parseHighVolumeK(c)
	if err != nil {
		h.handleError(c, err, "")
		return
	}

	series, err := h.insight.Analytics(c.Request.Context(), c.Param("id"), services.AnalyticsOptions{
		Days:        days,
		HighVolumeK: k,
	})
	if err != nil {
		h.handleError(c, err, "Failed to process market analytics")
		return
	}
	middleware.AddSpanAttribute(c, "series.points", len(series.Points))
	c.JSON(http.StatusOK, series)
}

// GetMarketDashboard returns the dashboard view model as JSON
func (h *MarketHandler) GetMarketDashboard(c *gin.Context) {
	dashboard, err := h.insight.BuildDashboard(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleError(c, err, "Failed to build dashboard")
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

// handleError maps validation failures to 400 and everything else to 500
func (h *MarketHandler) handleError(c *gin.Context, err error, description string) {
	if utils.IsValidationError(err) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	middleware.RecordError(c, err, description)
	h.logger.WithMarket(c.Param("id")).Error(description,
		"error", err.Error(),
		"request_id", middleware.GetRequestID(c),
	)
	c.JSON(http.StatusInternalServerError, gin.H{"error": description})
}

// parseDays reads the optional days query parameter. Zero means "use the default".
func parseDays(c *gin.Context) (int, error) {
	raw := strings.TrimSpace(c.Query("days"))
	if raw == "" {
		return 0, nil
	}
	days, err := strconv.Atoi(raw)
	if err != nil || days < 1 || days > config.MaxHistoryDays {
		return 0, utils.NewValidationErrorf("days must be a positive integer no greater than %d", config.MaxHistoryDays)
	}
	return days, nil
}

// parseHighVolumeK reads the optional k query parameter
func parseHighVolumeK(c *gin.Context) (*float64, error) {
	raw := strings.TrimSpace(c.Query("k"))
	if raw == "" {
		return nil, nil
	}
	k, err := strconv.ParseFloat(raw, 64)
	if err != nil || k < 0 || math.IsNaN(k) || math.IsInf(k, 0) {
		return nil, utils.NewFieldError("k", "must be a non-negative number")
	}
	return &k, nil
}
