package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// InvoiceFilter defines filtering options for invoice queries
type InvoiceFilter struct {
	Search     string
	CustomerID *uuid.UUID
	Status     *InvoiceStatus
	FromDate   *time.Time
	ToDate     *time.Time
	Overdue    *bool
	Page       int
	PageSize   int
}

// BillableItemRepository provides access to delivery lines eligible for
// invoicing. The lines themselves are owned by the fulfillment subsystem;
// the only write the billing flow performs is consuming invoiced quantity.
type BillableItemRepository interface {
	FindBillable(ctx context.Context, customerID *uuid.UUID) ([]BillableItem, error)
	FindByLineIDs(ctx context.Context, lineIDs []uuid.UUID) ([]BillableItem, error)
	ConsumeInvoicedQty(ctx context.Context, lineID uuid.UUID, qty int64) error
}

// InvoiceRepository provides persistence for Invoice aggregates
type InvoiceRepository interface {
	Save(ctx context.Context, invoice *Invoice) error
	Update(ctx context.Context, invoice *Invoice) error
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)
	FindByNumber(ctx context.Context, invoiceNumber string) (*Invoice, error)
	FindAll(ctx context.Context, filter InvoiceFilter) ([]Invoice, error)
	Count(ctx context.Context, filter InvoiceFilter) (int64, error)
	CountIssuedInMonth(ctx context.Context, year int, month time.Month) (int64, error)
}
