package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/irfndi/polymarket-insight/internal/logging"
	"github.com/irfndi/polymarket-insight/internal/middleware"
	"github.com/irfndi/polymarket-insight/internal/web"
)

// DashboardHandler serves the HTML dashboard
type DashboardHandler struct {
	insight InsightProvider
	logger  *logging.StandardLogger
}

func NewDashboardHandler(insight InsightProvider, logger *logging.StandardLogger) *DashboardHandler {
	return &DashboardHandler{
		insight: insight,
		logger:  logger,
	}
}

// ShowDashboard renders the page for the market_id query parameter. Without
// one the page only shows the market picker and a prompt.
func (h *DashboardHandler) ShowDashboard(c *gin.Context) {
	web.SetSecurityHeaders(c.Writer.Header())

	markets := h.insight.Markets()
	marketID := strings.TrimSpace(c.Query("market_id"))
	if marketID == "" {
		c.HTML(http.StatusOK, web.DashboardTemplate, web.NewPageData(markets, "", nil))
		return
	}

	ctx, span := middleware.StartSpan(c, "dashboard.page")
	defer span.End()

	dashboard, err := h.insight.BuildDashboard(ctx, marketID)
	if err != nil {
		middleware.RecordError(c, err, "Failed to build dashboard")
		h.logger.WithMarket(marketID).Error("Failed to build dashboard",
			"error", err.Error(),
			"request_id", middleware.GetRequestID(c),
		)
		data := web.NewPageData(markets, marketID, nil)
		data.Message = "Could not build the dashboard for this market. Please try again."
		c.HTML(http.StatusInternalServerError, web.DashboardTemplate, data)
		return
	}

	h.logger.LogBusinessEvent("dashboard_viewed", map[string]interface{}{
		"market_id": dashboard.MarketID,
		"known":     dashboard.Warning() == "",
		"points":    dashboard.Series.Summary.Points,
	})
	c.HTML(http.StatusOK, web.DashboardTemplate, web.NewPageData(markets, marketID, dashboard))
}
