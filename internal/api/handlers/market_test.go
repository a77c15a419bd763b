package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/irfndi/polymarket-insight/internal/models"
)

func decodeError(t *testing.T, body []byte) string {
	t.Helper()
	var payload map[string]string
	require.NoError(t, json.Unmarshal(body, &payload))
	return payload["error"]
}

func TestMarketHandler_GetMarkets(t *testing.T) {
	router := newMarketRouter(newTestInsight())

	w := performRequest(router, http.MethodGet, "/api/v1/markets")
	require.Equal(t, http.StatusOK, w.Code)

	var response MarketsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, 5, response.Total)
	require.Len(t, response.Markets, 5)
	assert.Equal(t, "market1", response.Markets[0].ID)
}

func TestMarketHandler_GetMarketDetails(t *testing.T) {
	router := newMarketRouter(newTestInsight())

	tests := []struct {
		name           string
		path           string
		expectedStatus int
		check          func(t *testing.T, body []byte)
	}{
		{
			name:           "known market",
			path:           "/api/v1/markets/market1",
			expectedStatus: http.StatusOK,
			check: func(t *testing.T, body []byte) {
				var details models.MarketDetails
				require.NoError(t, json.Unmarshal(body, &details))
				assert.Equal(t, "Will AI achieve AGI by 2030?", details.Name)
				assert.Empty(t, details.Warning)
			},
		},
		{
			name:           "unknown market gets placeholder",
			path:           "/api/v1/markets/something-else",
			expectedStatus: http.StatusOK,
			check: func(t *testing.T, body []byte) {
				var details models.MarketDetails
				require.NoError(t, json.Unmarshal(body, &details))
				assert.Equal(t, "Mock Market: something-else (Generic)", details.Name)
				assert.NotEmpty(t, details.Warning)
			},
		},
		{
			name:           "blank market ID",
			path:           "/api/v1/markets/%20%20",
			expectedStatus: http.StatusBadRequest,
			check: func(t *testing.T, body []byte) {
				assert.Contains(t, decodeError(t, body), "market ID cannot be empty")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performRequest(router, http.MethodGet, tt.path)
			assert.Equal(t, tt.expectedStatus, w.Code)
			tt.check(t, w.Body.Bytes())
		})
	}
}

func TestMarketHandler_GetMarketHistory(t *testing.T) {
	router := newMarketRouter(newTestInsight())

	tests := []struct {
		name           string
		path           string
		expectedStatus int
		expectedPoints int
	}{
		{name: "explicit days", path: "/api/v1/markets/market2/history?days=30", expectedStatus: http.StatusOK, expectedPoints: 30},
		{name: "default days", path: "/api/v1/markets/market2/history", expectedStatus: http.StatusOK, expectedPoints: 180},
		{name: "maximum days", path: "/api/v1/markets/market2/history?days=3650", expectedStatus: http.StatusOK, expectedPoints: 3650},
		{name: "unknown market is empty", path: "/api/v1/markets/nope/history?days=30", expectedStatus: http.StatusOK, expectedPoints: 0},
		{name: "blank market is empty", path: "/api/v1/markets/%20/history?days=30", expectedStatus: http.StatusOK, expectedPoints: 0},
		{name: "zero days", path: "/api/v1/markets/market2/history?days=0", expectedStatus: http.StatusBadRequest},
		{name: "negative days", path: "/api/v1/markets/market2/history?days=-3", expectedStatus: http.StatusBadRequest},
		{name: "non-numeric days", path: "/api/v1/markets/market2/history?days=abc", expectedStatus: http.StatusBadRequest},
		{name: "too many days", path: "/api/v1/markets/market2/history?days=3651", expectedStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performRequest(router, http.MethodGet, tt.path)
			require.Equal(t, tt.expectedStatus, w.Code)

			if tt.expectedStatus != http.StatusOK {
				assert.Contains(t, decodeError(t, w.Body.Bytes()), "days must be a positive integer")
				return
			}

			var record models.MarketRecord
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &record))
			assert.Len(t, record.Observations, tt.expectedPoints)
			assert.NotNil(t, record.Observations)
		})
	}
}

func TestMarketHandler_GetMarketAnalytics(t *testing.T) {
	router := newMarketRouter(newTestInsight())

	w := performRequest(router, http.MethodGet, "/api/v1/markets/market1/analytics?days=90")
	require.Equal(t, http.StatusOK, w.Code)

	var series models.DerivedSeries
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &series))
	require.Len(t, series.Points, 90)
	assert.Equal(t, 1.0, series.Windows.HighVolumeK)
	assert.False(t, series.Points[0].MAShort.Valid)
	assert.True(t, series.Points[6].MAShort.Valid)

	// Undefined statistics are serialized as null
	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
	first := raw["points"].([]interface{})[0].(map[string]interface{})
	assert.Nil(t, first["ma_short"])
	assert.Nil(t, first["change_ratio"])

	w = performRequest(router, http.MethodGet, "/api/v1/markets/market1/analytics?days=90&k=0")
	require.Equal(t, http.StatusOK, w.Code)
	var relaxed models.DerivedSeries
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &relaxed))
	assert.Equal(t, 0.0, relaxed.Windows.HighVolumeK)
	assert.GreaterOrEqual(t, relaxed.Summary.HighVolumeDays, series.Summary.HighVolumeDays)
}

func TestMarketHandler_GetMarketAnalytics_BlankOrUnknownMarket(t *testing.T) {
	router := newMarketRouter(newTestInsight())

	for _, path := range []string{
		"/api/v1/markets/%20/analytics",
		"/api/v1/markets/%20%20/analytics?k=2",
		"/api/v1/markets/nope/analytics",
	} {
		w := performRequest(router, http.MethodGet, path)
		require.Equal(t, http.StatusOK, w.Code, path)

		var series models.DerivedSeries
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &series), path)
		assert.Empty(t, series.Points, path)
		assert.Equal(t, 0, series.Summary.Points, path)
	}
}

func TestMarketHandler_GetMarketAnalytics_InvalidParams(t *testing.T) {
	router := newMarketRouter(newTestInsight())

	tests := []struct {
		name     string
		query    string
		contains string
	}{
		{name: "negative k", query: "k=-1", contains: "k: must be a non-negative number"},
		{name: "non-numeric k", query: "k=lots", contains: "k: must be a non-negative number"},
		{name: "NaN k", query: "k=NaN", contains: "k: must be a non-negative number"},
		{name: "infinite k", query: "k=Inf", contains: "k: must be a non-negative number"},
		{name: "bad days", query: "days=1.5", contains: "days must be a positive integer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performRequest(router, http.MethodGet, "/api/v1/markets/market1/analytics?"+tt.query)
			require.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, decodeError(t, w.Body.Bytes()), tt.contains)
		})
	}
}

func TestMarketHandler_GetMarketDashboard(t *testing.T) {
	router := newMarketRouter(newTestInsight())

	w := performRequest(router, http.MethodGet, "/api/v1/markets/market1/dashboard")
	require.Equal(t, http.StatusOK, w.Code)

	var dashboard models.Dashboard
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &dashboard))
	assert.Equal(t, "market1", dashboard.MarketID)
	assert.Len(t, dashboard.PriceTraces, 4)
	require.NotNil(t, dashboard.VolumeTrace)
	assert.Len(t, dashboard.Recent, 7)

	w = performRequest(router, http.MethodGet, "/api/v1/markets/unlisted/dashboard")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &dashboard))
	assert.Empty(t, dashboard.PriceTraces)
	assert.NotEmpty(t, dashboard.Details.Warning)
}

func TestMarketHandler_InternalError(t *testing.T) {
	provider := new(MockInsightProvider)
	provider.On("BuildDashboard", mock.Anything, "market1").Return(nil, errors.New("generator exploded"))
	provider.On("Details", mock.Anything, "market1").Return(nil, errors.New("generator exploded"))

	router := newMarketRouter(provider)

	w := performRequest(router, http.MethodGet, "/api/v1/markets/market1/dashboard")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Failed to build dashboard", decodeError(t, w.Body.Bytes()))

	w = performRequest(router, http.MethodGet, "/api/v1/markets/market1")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "exploded")

	provider.AssertExpectations(t)
}

func TestMarketHandler_InvalidParamsSkipPipeline(t *testing.T) {
	provider := new(MockInsightProvider)
	router := newMarketRouter(provider)

	w := performRequest(router, http.MethodGet, "/api/v1/markets/market1/history?days=nope")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	provider.AssertNotCalled(t, "History", mock.Anything, mock.Anything, mock.Anything)
}
