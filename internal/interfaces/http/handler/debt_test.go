package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	debtapp "github.com/printworks/backend/internal/application/debt"
	"github.com/printworks/backend/internal/domain/debt"
	"github.com/printworks/backend/internal/interfaces/http/middleware"
	"github.com/printworks/backend/internal/interfaces/http/router"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockDebtRepository struct {
	mock.Mock
}

func (m *MockDebtRepository) FindOutstanding(ctx context.Context, query debt.Query) ([]debt.OutstandingRecord, int64, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]debt.OutstandingRecord), args.Get(1).(int64), args.Error(2)
}

func setupDebtRouter(t *testing.T) (*gin.Engine, *MockDebtRepository) {
	t.Helper()

	repo := new(MockDebtRepository)
	service := debtapp.NewDebtService(repo)

	engine := gin.New()
	engine.Use(middleware.RequestID())
	router.NewRouter(engine).Register(NewDebtHandler(service)).Setup()

	return engine, repo
}

func TestDebtHandler_ListPositions(t *testing.T) {
	t.Run("rolls up records per counterparty", func(t *testing.T) {
		engine, repo := setupDebtRouter(t)

		custID := uuid.New()
		overdueDue := time.Now().AddDate(0, 0, -10)
		records := []debt.OutstandingRecord{
			{
				CounterpartyID:   custID,
				CounterpartyName: "Alpha Print JSC",
				DocumentNumber:   "INV-202608-0001",
				RemainingAmount:  decimal.NewFromInt(300000),
				DueDate:          &overdueDue,
			},
			{
				CounterpartyID:   custID,
				CounterpartyName: "Alpha Print JSC",
				DocumentNumber:   "INV-202608-0002",
				RemainingAmount:  decimal.NewFromInt(200000),
			},
		}
		repo.On("FindOutstanding", mock.Anything, mock.MatchedBy(func(q debt.Query) bool {
			return q.Page == 1 && q.PageSize == 20
		})).Return(records, int64(2), nil)

		w := doJSON(t, engine, "GET", "/api/v1/debt/positions", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		resp := decodeResponse(t, w)
		require.True(t, resp.Success)
		require.NotNil(t, resp.Meta)
		assert.Equal(t, int64(2), resp.Meta.Total)

		positions := resp.Data.([]any)
		require.Len(t, positions, 1)
		pos := positions[0].(map[string]any)
		assert.Equal(t, "Alpha Print JSC", pos["counterparty_name"])
		assert.Equal(t, "500000", pos["total_debt"])
		assert.Equal(t, "300000", pos["overdue_debt"])
		assert.Equal(t, float64(2), pos["document_count"])
		repo.AssertExpectations(t)
	})

	t.Run("propagates repository failures as 500", func(t *testing.T) {
		engine, repo := setupDebtRouter(t)

		repo.On("FindOutstanding", mock.Anything, mock.Anything).
			Return(nil, int64(0), errors.New("connection refused"))

		w := doJSON(t, engine, "GET", "/api/v1/debt/positions", nil)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		resp := decodeResponse(t, w)
		assert.False(t, resp.Success)
	})

	t.Run("rejects malformed counterparty_id", func(t *testing.T) {
		engine, _ := setupDebtRouter(t)

		w := doJSON(t, engine, "GET", "/api/v1/debt/positions?counterparty_id=xyz", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
