package debt

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OutstandingRecord is one unpaid or partially paid document owed by (or to)
// a counterparty, as supplied by the paging collaborator.
type OutstandingRecord struct {
	CounterpartyID   uuid.UUID       `json:"counterparty_id"`
	CounterpartyName string          `json:"counterparty_name"`
	DocumentNumber   string          `json:"document_number"`
	RemainingAmount  decimal.Decimal `json:"remaining_amount"`
	DueDate          *time.Time      `json:"due_date,omitempty"`
	LastPaymentDate  *time.Time      `json:"last_payment_date,omitempty"`
	LastPaymentAmt   decimal.Decimal `json:"last_payment_amount"`
}

// IsOverdue reports whether the record is past its due date at the given
// moment. Records without a due date are never overdue.
func (r OutstandingRecord) IsOverdue(now time.Time) bool {
	if r.DueDate == nil {
		return false
	}
	return r.DueDate.Before(now)
}

// DaysOverdue returns the number of whole days past due, or 0 when the
// record is not overdue.
func (r OutstandingRecord) DaysOverdue(now time.Time) int {
	if !r.IsOverdue(now) {
		return 0
	}
	return int(now.Sub(*r.DueDate).Hours() / 24)
}

// DebtPosition is the per-counterparty rollup shown in summary views.
// TotalDebt always equals CurrentDebt + OverdueDebt: every record lands in
// exactly one bucket.
type DebtPosition struct {
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

// Rollup aggregates outstanding records into per-counterparty positions,
// ordered by first appearance. The reduction covers only the records it is
// given: callers paging through a larger result set get totals for the
// loaded window, not global totals.
func Rollup(records []OutstandingRecord, now time.Time) []DebtPosition {
	index := make(map[uuid.UUID]int)
	positions := make([]DebtPosition, 0)

	for _, rec := range records {
		idx, seen := index[rec.CounterpartyID]
		if !seen {
			idx = len(positions)
			index[rec.CounterpartyID] = idx
			positions = append(positions, DebtPosition{
				CounterpartyID:   rec.CounterpartyID,
				CounterpartyName: rec.CounterpartyName,
				TotalDebt:        decimal.Zero,
				CurrentDebt:      decimal.Zero,
				OverdueDebt:      decimal.Zero,
			})
		}

		pos := &positions[idx]
		pos.TotalDebt = pos.TotalDebt.Add(rec.RemainingAmount)
		if rec.IsOverdue(now) {
			pos.OverdueDebt = pos.OverdueDebt.Add(rec.RemainingAmount)
			if days := rec.DaysOverdue(now); days > pos.MaxDaysOverdue {
				pos.MaxDaysOverdue = days
			}
		} else {
			pos.CurrentDebt = pos.CurrentDebt.Add(rec.RemainingAmount)
		}
		pos.DocumentCount++

		if rec.LastPaymentDate != nil {
			if pos.LastPaymentDate == nil || rec.LastPaymentDate.After(*pos.LastPaymentDate) {
				pos.LastPaymentDate = rec.LastPaymentDate
				pos.LastPaymentAmt = rec.LastPaymentAmt
			}
		}
	}

	return positions
}
