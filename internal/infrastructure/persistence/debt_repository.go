package persistence

import (
	"context"
	"fmt"

	"github.com/printworks/backend/internal/domain/billing"
	"github.com/printworks/backend/internal/domain/debt"
	"github.com/printworks/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormDebtRepository implements debt.Repository over the invoices table.
// An outstanding record is an invoice that still carries a remaining balance;
// the last payment is derived from the invoice's payment history.
type GormDebtRepository struct {
	db *gorm.DB
}

// NewGormDebtRepository creates a new GORM-based debt repository
func NewGormDebtRepository(db *gorm.DB) *GormDebtRepository {
	return &GormDebtRepository{db: db}
}

// FindOutstanding returns one page of outstanding records plus the total
// count of records matching the query
func (r *GormDebtRepository) FindOutstanding(ctx context.Context, query debt.Query) ([]debt.OutstandingRecord, int64, error) {
	base := r.applyQuery(dbFromContext(ctx, r.db).Model(&models.InvoiceModel{}), query)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count outstanding invoices: %w", err)
	}

	page := base.Session(&gorm.Session{})
	if query.PageSize > 0 {
		page = page.Limit(query.PageSize)
		if query.Page > 0 {
			page = page.Offset((query.Page - 1) * query.PageSize)
		}
	}

	var rows []models.InvoiceModel
	if err := page.Order("customer_name ASC, due_date ASC, invoice_number ASC").Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to find outstanding invoices: %w", err)
	}

	records := make([]debt.OutstandingRecord, 0, len(rows))
	for i := range rows {
		records = append(records, toOutstandingRecord(&rows[i]))
	}
	return records, total, nil
}

func (r *GormDebtRepository) applyQuery(q *gorm.DB, query debt.Query) *gorm.DB {
	q = q.Where("status IN ?", []string{
		string(billing.InvoiceStatusPending),
		string(billing.InvoiceStatusPartial),
	})
	if query.Search != "" {
		pattern := "%" + query.Search + "%"
		q = q.Where("LOWER(invoice_number) LIKE LOWER(?) OR LOWER(customer_name) LIKE LOWER(?)", pattern, pattern)
	}
	if query.CounterpartyID != nil {
		q = q.Where("customer_id = ?", *query.CounterpartyID)
	}
	if query.FromDate != nil {
		q = q.Where("issue_date >= ?", *query.FromDate)
	}
	if query.ToDate != nil {
		q = q.Where("issue_date <= ?", *query.ToDate)
	}
	return q
}

func toOutstandingRecord(m *models.InvoiceModel) debt.OutstandingRecord {
	record := debt.OutstandingRecord{
		CounterpartyID:   m.CustomerID,
		CounterpartyName: m.CustomerName,
		DocumentNumber:   m.InvoiceNumber,
		RemainingAmount:  m.RemainingAmount,
		DueDate:          m.DueDate,
	}
	for i := range m.PaymentRecords {
		p := m.PaymentRecords[i]
		if record.LastPaymentDate == nil || p.AppliedAt.After(*record.LastPaymentDate) {
			appliedAt := p.AppliedAt
			record.LastPaymentDate = &appliedAt
			record.LastPaymentAmt = p.Amount
		}
	}
	return record
}
