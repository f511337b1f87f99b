package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/personal-finance-ledger/internal/platform/auth"
)

func TestLoggerMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newRouter := func(buf *bytes.Buffer, status int) *gin.Engine {
		testLogger := slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
		router := gin.New()
		router.Use(Logger(testLogger))
		router.Use(CorrelationID())
		router.Use(Owner(testLogger, auth.NewHeaderProvider("X-User-ID")))
		router.GET("/api/v1/entries", func(c *gin.Context) {
			c.Status(status)
		})
		return router
	}

	t.Run("LogsRequestDetails", func(t *testing.T) {
		var logBuffer bytes.Buffer
		req := httptest.NewRequest(http.MethodGet, "/api/v1/entries?kind=income", nil)
		req.Header.Set("User-Agent", "test-agent")
		req.Header.Set(CorrelationIDHeader, "corr-42")
		req.Header.Set("X-User-ID", "user-7")
		rr := httptest.NewRecorder()
		newRouter(&logBuffer, http.StatusOK).ServeHTTP(rr, req)

		logOutput := logBuffer.String()
		assert.Contains(t, logOutput, `"level":"INFO"`)
		assert.Contains(t, logOutput, `"msg":"HTTP request"`)
		assert.Contains(t, logOutput, `"method":"GET"`)
		assert.Contains(t, logOutput, `"path":"/api/v1/entries?kind=income"`)
		assert.Contains(t, logOutput, `"status":200`)
		assert.Contains(t, logOutput, `"latency":`)
		assert.Contains(t, logOutput, `"user_agent":"test-agent"`)
		assert.Contains(t, logOutput, `"correlation_id":"corr-42"`)
		assert.Contains(t, logOutput, `"owner_id":"user-7"`)
	})

	t.Run("ClientErrorsLogAtWarn", func(t *testing.T) {
		var logBuffer bytes.Buffer
		rr := httptest.NewRecorder()
		// No owner header: rejected by Owner with 401
		newRouter(&logBuffer, http.StatusOK).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/entries", nil))

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Contains(t, logBuffer.String(), `"level":"WARN","msg":"HTTP request"`)
		assert.NotContains(t, logBuffer.String(), `"owner_id":"`)
	})

	t.Run("ServerErrorsLogAtError", func(t *testing.T) {
		var logBuffer bytes.Buffer
		req := httptest.NewRequest(http.MethodGet, "/api/v1/entries", nil)
		req.Header.Set("X-User-ID", "user-7")
		rr := httptest.NewRecorder()
		newRouter(&logBuffer, http.StatusServiceUnavailable).ServeHTTP(rr, req)

		assert.Contains(t, logBuffer.String(), `"level":"ERROR"`)
		assert.Contains(t, logBuffer.String(), `"status":503`)
	})
}
