package api_gateway

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/personal-finance-ledger/internal/api_gateway/service"
	"github.com/personal-finance-ledger/internal/config"
	"github.com/personal-finance-ledger/internal/data/memory"
	"github.com/personal-finance-ledger/internal/ledger"
)

func newTestServer(t *testing.T, asyncEnabled bool) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := slog.Default()

	engine := ledger.NewEngine(memory.NewEntryStore(logger), ledger.Options{}, logger)
	cfg := &config.Config{
		Application: config.ApplicationConfig{Env: "test"},
		Server:      config.ServerConfig{Port: 0, WriteTimeout: time.Second},
		Kafka:       config.KafkaConfig{Enabled: asyncEnabled},
		Auth:        config.AuthConfig{OwnerHeader: "X-User-ID"},
	}
	return NewServer(logger, cfg, Services{
		Entries:      engine,
		Reports:      ledger.NewAggregator(engine),
		Installments: service.NewInstallmentService(logger, engine, nil, ledger.DefaultFallbackCategory),
	})
}

func serve(s *Server, method, path, owner, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if owner != "" {
		req.Header.Set("X-User-ID", owner)
	}
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)
	return rr
}

func TestServer_Routes(t *testing.T) {
	s := newTestServer(t, false)

	t.Run("HealthNeedsNoOwner", func(t *testing.T) {
		rr := serve(s, http.MethodGet, "/health", "", "")
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"status":"ok"`)
	})

	t.Run("APIRequiresOwner", func(t *testing.T) {
		for _, path := range []string{"/api/v1/entries", "/api/v1/reports/summary", "/api/v1/reports/categories"} {
			rr := serve(s, http.MethodGet, path, "", "")
			assert.Equal(t, http.StatusUnauthorized, rr.Code, path)
		}
	})

	t.Run("CreateThenSummarize", func(t *testing.T) {
		rr := serve(s, http.MethodPost, "/api/v1/entries", "alice",
			`{"description":"Salary","amount":"2500.00","kind":"income","category":"Work","date":"2024-05-01"}`)
		require.Equal(t, http.StatusCreated, rr.Code)
		assert.NotEmpty(t, rr.Header().Get("X-Correlation-ID"))

		rr = serve(s, http.MethodGet, "/api/v1/reports/summary", "alice", "")
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"balance":2500`)
	})

	t.Run("AsyncRouteAbsentWhenKafkaDisabled", func(t *testing.T) {
		rr := serve(s, http.MethodPost, "/api/v1/installments/async", "alice", `{}`)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestServer_AsyncRouteRegisteredWhenEnabled(t *testing.T) {
	s := newTestServer(t, true)
	// No publisher is wired, so the service reports the intake as unavailable
	rr := serve(s, http.MethodPost, "/api/v1/installments/async", "alice",
		`{"total_amount":90,"count":3,"first_date":"2024-01-01","description":"Bike"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestServer_Stop(t *testing.T) {
	s := newTestServer(t, false)
	assert.NoError(t, s.Stop(context.Background()))
}
