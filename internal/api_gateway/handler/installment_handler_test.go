package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/personal-finance-ledger/internal/domain/shared"
)

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishInstallmentRequest(ctx context.Context, request *shared.InstallmentRequest) error {
	args := m.Called(ctx, request)
	return args.Error(0)
}

func (m *MockPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

func laptopPlan() map[string]interface{} {
	return map[string]interface{}{
		"total_amount": 100,
		"count":        3,
		"first_date":   "2024-01-31",
		"description":  "Laptop",
	}
}

func TestInstallmentHandler_Create(t *testing.T) {
	t.Run("CreatesSeries", func(t *testing.T) {
		api := newTestAPI(t, nil)

		rr, env := api.do(t, http.MethodPost, "/installments", "alice", laptopPlan())
		require.Equal(t, http.StatusCreated, rr.Code)

		series := decodeData[[]EntryResponse](t, env)
		require.Len(t, series, 3)

		var total float64
		for i, e := range series {
			assert.Equal(t, "expense", e.Kind)
			assert.Equal(t, "Credit Card", e.Category)
			assert.Equal(t, []string{"Laptop (Installment 1/3)", "Laptop (Installment 2/3)", "Laptop (Installment 3/3)"}[i], e.Description)
			total += e.Amount
		}
		assert.Equal(t, []string{"2024-01-31", "2024-02-29", "2024-03-31"}, []string{series[0].Date, series[1].Date, series[2].Date})
		assert.Equal(t, 33.34, series[2].Amount)
		assert.InDelta(t, 100.0, total, 1e-9)

		_, list := api.do(t, http.MethodGet, "/entries", "alice", nil)
		assert.Equal(t, 3, list.Meta.TotalItems)
	})

	t.Run("Validation", func(t *testing.T) {
		api := newTestAPI(t, nil)
		tests := []struct {
			field  string
			mutate func(map[string]interface{})
		}{
			{"count", func(b map[string]interface{}) { b["count"] = 0 }},
			{"total_amount", func(b map[string]interface{}) { b["total_amount"] = -5 }},
			{"first_date", func(b map[string]interface{}) { delete(b, "first_date") }},
			{"description", func(b map[string]interface{}) { b["description"] = "" }},
		}
		for _, tt := range tests {
			body := laptopPlan()
			tt.mutate(body)
			rr, env := api.do(t, http.MethodPost, "/installments", "alice", body)
			assert.Equal(t, http.StatusBadRequest, rr.Code, tt.field)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.field, env.Error.Field)
		}

		_, list := api.do(t, http.MethodGet, "/entries", "alice", nil)
		assert.Equal(t, 0, list.Meta.TotalItems, "rejected plans leave nothing behind")
	})
}

func TestInstallmentHandler_Submit(t *testing.T) {
	t.Run("Accepted", func(t *testing.T) {
		publisher := new(MockPublisher)
		publisher.On("PublishInstallmentRequest", mock.Anything, mock.MatchedBy(func(r *shared.InstallmentRequest) bool {
			return r.OwnerID == "alice" && r.Count == 3 && r.FirstDate == "2024-01-31" && r.CorrelationID != ""
		})).Return(nil).Once()
		api := newTestAPI(t, publisher)

		rr, env := api.do(t, http.MethodPost, "/installments/async", "alice", laptopPlan())
		require.Equal(t, http.StatusAccepted, rr.Code)

		accepted := decodeData[InstallmentAcceptedResponse](t, env)
		_, err := uuid.Parse(accepted.RequestID)
		assert.NoError(t, err)
		assert.Equal(t, "PENDING", accepted.Status)
		publisher.AssertExpectations(t)

		_, list := api.do(t, http.MethodGet, "/entries", "alice", nil)
		assert.Equal(t, 0, list.Meta.TotalItems, "nothing is written inline")
	})

	t.Run("InvalidPlanIsRejectedBeforePublishing", func(t *testing.T) {
		publisher := new(MockPublisher)
		api := newTestAPI(t, publisher)
		body := laptopPlan()
		body["count"] = -1

		rr, _ := api.do(t, http.MethodPost, "/installments/async", "alice", body)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		publisher.AssertNotCalled(t, "PublishInstallmentRequest", mock.Anything, mock.Anything)
	})

	t.Run("PublishFailure", func(t *testing.T) {
		publisher := new(MockPublisher)
		publisher.On("PublishInstallmentRequest", mock.Anything, mock.Anything).Return(errors.New("broker down")).Once()
		api := newTestAPI(t, publisher)

		rr, env := api.do(t, http.MethodPost, "/installments/async", "alice", laptopPlan())
		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.Equal(t, "INTERNAL_SERVER_ERROR", env.Error.Code)
	})

	t.Run("Disabled", func(t *testing.T) {
		api := newTestAPI(t, nil)
		rr, env := api.do(t, http.MethodPost, "/installments/async", "alice", laptopPlan())
		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
		assert.Equal(t, "ASYNC_DISABLED", env.Error.Code)
	})
}
