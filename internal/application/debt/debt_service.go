package debt

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/printworks/backend/internal/domain/debt"
	"github.com/shopspring/decimal"
)

// DebtService provides the paged debt aging rollup for summary views
type DebtService struct {
	repo debt.Repository
}

// NewDebtService creates a new DebtService
func NewDebtService(repo debt.Repository) *DebtService {
	return &DebtService{repo: repo}
}

// PositionListFilter defines filtering options for debt position queries
type PositionListFilter struct {
	Search         string     `form:"search"`
	CounterpartyID *uuid.UUID `form:"counterparty_id"`
	FromDate       *time.Time `form:"from_date"`
	ToDate         *time.Time `form:"to_date"`
	Page           int        `form:"page"`
	PageSize       int        `form:"page_size"`
}

// DebtPositionResponse represents a per-counterparty debt position
type DebtPositionResponse struct {
	CounterpartyID   uuid.UUID       `json:"counterparty_id"`
	CounterpartyName string          `json:"counterparty_name"`
	TotalDebt        decimal.Decimal `json:"total_debt"`
	CurrentDebt      decimal.Decimal `json:"current_debt"`
	OverdueDebt      decimal.Decimal `json:"overdue_debt"`
	DocumentCount    int             `json:"document_count"`
	MaxDaysOverdue   int             `json:"max_days_overdue"`
	LastPaymentDate  *time.Time      `json:"last_payment_date,omitempty"`
	LastPaymentAmt   decimal.Decimal `json:"last_payment_amount"`
}

// ListDebtPositions loads the outstanding records for the requested page and
// rolls them up per counterparty. The totals cover the loaded window only;
// the returned count is the number of outstanding records, for paging.
func (s *DebtService) ListDebtPositions(ctx context.Context, filter PositionListFilter) ([]DebtPositionResponse, int64, error) {
	query := debt.Query{
		Search:         filter.Search,
		CounterpartyID: filter.CounterpartyID,
		FromDate:       filter.FromDate,
		ToDate:         filter.ToDate,
		Page:           filter.Page,
		PageSize:       filter.PageSize,
	}

	records, total, err := s.repo.FindOutstanding(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	positions := debt.Rollup(records, time.Now())
	responses := make([]DebtPositionResponse, len(positions))
	for i, pos := range positions {
		responses[i] = DebtPositionResponse{
			CounterpartyID:   pos.CounterpartyID,
			CounterpartyName: pos.CounterpartyName,
			TotalDebt:        pos.TotalDebt,
			CurrentDebt:      pos.CurrentDebt,
			OverdueDebt:      pos.OverdueDebt,
			DocumentCount:    pos.DocumentCount,
			MaxDaysOverdue:   pos.MaxDaysOverdue,
			LastPaymentDate:  pos.LastPaymentDate,
			LastPaymentAmt:   pos.LastPaymentAmt,
		}
	}
	return responses, total, nil
}
