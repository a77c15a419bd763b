package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name     string
		inbound  string
		expectID func(t *testing.T, id string)
	}{
		{
			name: "generates uuid",
			expectID: func(t *testing.T, id string) {
				_, err := uuid.Parse(id)
				assert.NoError(t, err)
			},
		},
		{
			name:    "reuses inbound header",
			inbound: "upstream-123",
			expectID: func(t *testing.T, id string) {
				assert.Equal(t, "upstream-123", id)
			},
		},
		{
			name:    "replaces oversized header",
			inbound: strings.Repeat("x", 200),
			expectID: func(t *testing.T, id string) {
				_, err := uuid.Parse(id)
				assert.NoError(t, err)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(RequestID())

			var seen string
			router.GET("/test", func(c *gin.Context) {
				seen = GetRequestID(c)
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.inbound != "" {
				req.Header.Set(RequestIDHeader, tt.inbound)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			tt.expectID(t, seen)
			assert.Equal(t, seen, w.Header().Get(RequestIDHeader))
		})
	}
}

func TestGetRequestID_Missing(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Equal(t, "", GetRequestID(c))
}

func newBufferedLogger(level logrus.Level) (*logrus.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetLevel(level)
	return logger, &buf
}

func TestRequestLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name      string
		path      string
		status    int
		wantLevel string
		wantMsg   string
	}{
		{"success", "/api/v1/markets?x=1", http.StatusOK, "info", "Request completed"},
		{"client error", "/api/v1/markets", http.StatusBadRequest, "warning", "Request rejected"},
		{"server error", "/api/v1/markets", http.StatusInternalServerError, "error", "Request failed"},
		{"probe", "/health", http.StatusOK, "debug", "Probe request"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, buf := newBufferedLogger(logrus.DebugLevel)
			router := gin.New()
			router.Use(RequestID(), RequestLogger(logger))
			handler := func(c *gin.Context) { c.Status(tt.status) }
			router.GET("/api/v1/markets", handler)
			router.GET("/health", handler)

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			req.Header.Set(RequestIDHeader, "req-7")
			router.ServeHTTP(httptest.NewRecorder(), req)

			var entry map[string]interface{}
			require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
			assert.Equal(t, tt.wantLevel, entry["level"])
			assert.Equal(t, tt.wantMsg, entry["msg"])
			assert.Equal(t, "req-7", entry["request_id"])
			assert.Equal(t, float64(tt.status), entry["status"])
			assert.Equal(t, http.MethodGet, entry["method"])
		})
	}
}

func TestRequestLogger_ProbesSuppressedAtInfo(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger, buf := newBufferedLogger(logrus.InfoLevel)

	router := gin.New()
	router.Use(RequestLogger(logger))
	router.GET("/live", func(c *gin.Context) { c.Status(http.StatusOK) })

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/live", nil))
	assert.Empty(t, buf.String())
}
