package handler

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/personal-finance-ledger/internal/api_gateway/middleware"
	"github.com/personal-finance-ledger/internal/api_gateway/service"
	"github.com/personal-finance-ledger/internal/data/memory"
	"github.com/personal-finance-ledger/internal/ledger"
	"github.com/personal-finance-ledger/internal/platform/auth"
)

const ownerHeader = "X-User-ID"

// envelope mirrors Response with raw data for decoding in tests
type envelope struct {
	Data          json.RawMessage `json:"data"`
	Error         *ErrorInfo      `json:"error"`
	CorrelationID string          `json:"correlation_id"`
	Meta          *MetaInfo       `json:"meta"`
}

type testAPI struct {
	router *gin.Engine
	engine *ledger.Engine
}

// newTestAPI wires the handlers over an in-memory ledger. publisher may be nil.
func newTestAPI(t *testing.T, publisher *MockPublisher) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := slog.Default()

	engine := ledger.NewEngine(memory.NewEntryStore(logger), ledger.Options{AtomicInstallments: true}, logger)
	var installments service.InstallmentService
	if publisher != nil {
		installments = service.NewInstallmentService(logger, engine, publisher, ledger.DefaultFallbackCategory)
	} else {
		installments = service.NewInstallmentService(logger, engine, nil, ledger.DefaultFallbackCategory)
	}

	router := gin.New()
	router.Use(middleware.CorrelationID())
	router.Use(middleware.Owner(logger, auth.NewHeaderProvider(ownerHeader)))
	registerTestRoutes(router,
		NewEntryHandler(logger, engine),
		NewReportHandler(logger, ledger.NewAggregator(engine)),
		NewInstallmentHandler(logger, installments),
	)
	return &testAPI{router: router, engine: engine}
}

func registerTestRoutes(r *gin.Engine, entries *EntryHandler, reports *ReportHandler, installments *InstallmentHandler) {
	r.POST("/entries", entries.Create)
	r.GET("/entries", entries.List)
	r.GET("/entries/:id", entries.GetByID)
	r.PUT("/entries/:id", entries.Update)
	r.DELETE("/entries/:id", entries.Delete)
	r.GET("/reports/summary", reports.Summary)
	r.GET("/reports/categories", reports.Categories)
	r.POST("/installments", installments.Create)
	r.POST("/installments/async", installments.Submit)
}

func (a *testAPI) do(t *testing.T, method, path, owner string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if owner != "" {
		req.Header.Set(ownerHeader, owner)
	}
	rr := httptest.NewRecorder()
	a.router.ServeHTTP(rr, req)

	var env envelope
	if rr.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	}
	return rr, env
}

func decodeData[T any](t *testing.T, env envelope) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}
