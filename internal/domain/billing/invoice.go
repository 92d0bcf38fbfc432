package billing

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/printworks/backend/internal/domain/shared"
	"github.com/printworks/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// InvoiceStatus represents the settlement status of an invoice
type InvoiceStatus string

const (
	InvoiceStatusPending   InvoiceStatus = "PENDING"   // Unpaid, outstanding balance > 0
	InvoiceStatusPartial   InvoiceStatus = "PARTIAL"   // Partially paid
	InvoiceStatusPaid      InvoiceStatus = "PAID"      // Fully paid
	InvoiceStatusCancelled InvoiceStatus = "CANCELLED" // Cancelled before any payment
)

// IsValid checks if the status is a valid InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusPending, InvoiceStatusPartial, InvoiceStatusPaid, InvoiceStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of InvoiceStatus
func (s InvoiceStatus) String() string {
	return string(s)
}

// IsTerminal returns true if the invoice is in a terminal state
func (s InvoiceStatus) IsTerminal() bool {
	return s == InvoiceStatusPaid || s == InvoiceStatusCancelled
}

// CanApplyPayment returns true if payments can be applied in this status
func (s InvoiceStatus) CanApplyPayment() bool {
	return s == InvoiceStatusPending || s == InvoiceStatusPartial
}

// InvoiceLine is a frozen line on an issued invoice
type InvoiceLine struct {
	ID              uuid.UUID        `json:"id"`
	DeliveryLineID  uuid.UUID        `json:"delivery_line_id"`
	ProductName     string           `json:"product_name"`
	Unit            string           `json:"unit"`
	InvoiceQty      int64            `json:"invoice_qty"`
	UnitPrice       decimal.Decimal  `json:"unit_price"`
	DiscountPercent *decimal.Decimal `json:"discount_percent,omitempty"`
	Gross           decimal.Decimal  `json:"gross"`
	Discount        decimal.Decimal  `json:"discount"`
	Net             decimal.Decimal  `json:"net"`
}

// InvoiceLines implements Scanner/Valuer so lines persist as a JSONB column
type InvoiceLines []InvoiceLine

// Value implements driver.Valuer for JSONB storage
func (l InvoiceLines) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner for JSONB retrieval
func (l *InvoiceLines) Scan(value interface{}) error {
	if value == nil {
		*l = InvoiceLines{}
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan InvoiceLines: unsupported type")
	}
	if len(bytes) == 0 {
		*l = InvoiceLines{}
		return nil
	}
	return json.Unmarshal(bytes, l)
}

// PaymentRecord represents a payment applied to the invoice.
// It is a value object within the Invoice aggregate, stored as JSONB.
type PaymentRecord struct {
	ID         uuid.UUID       `json:"id"`
	DocumentID uuid.UUID       `json:"document_id"` // Settlement document that recorded the payment
	Amount     decimal.Decimal `json:"amount"`
	AppliedAt  time.Time       `json:"applied_at"`
	Note       string          `json:"note,omitempty"`
}

// PaymentRecords implements Scanner/Valuer for JSONB storage
type PaymentRecords []PaymentRecord

// Value implements driver.Valuer for JSONB storage
func (p PaymentRecords) Value() (driver.Value, error) {
	if p == nil {
		return "[]", nil
	}
	return json.Marshal(p)
}

// Scan implements sql.Scanner for JSONB retrieval
func (p *PaymentRecords) Scan(value interface{}) error {
	if value == nil {
		*p = PaymentRecords{}
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan PaymentRecords: unsupported type")
	}
	if len(bytes) == 0 {
		*p = PaymentRecords{}
		return nil
	}
	return json.Unmarshal(bytes, p)
}

// Invoice represents an issued invoice aggregate root. It freezes the totals
// computed from the draft at submission time and tracks payments against the
// remaining balance.
type Invoice struct {
	shared.BaseAggregateRoot
	InvoiceNumber      string           `json:"invoice_number"`
	OrderID            *uuid.UUID       `json:"order_id,omitempty"`
	CustomerID         uuid.UUID        `json:"customer_id"`
	CustomerName       string           `json:"customer_name"`
	Buyer              BuyerInfo        `json:"buyer"`
	Lines              InvoiceLines     `json:"lines"`
	SubTotal           decimal.Decimal  `json:"sub_total"`
	DiscountKind       DiscountKind     `json:"discount_kind"`
	DiscountInput      decimal.Decimal  `json:"discount_input"`
	DiscountReason     string           `json:"discount_reason,omitempty"`
	DiscountValue      decimal.Decimal  `json:"discount_value"`
	TotalAfterDiscount decimal.Decimal  `json:"total_after_discount"`
	TaxRate            decimal.Decimal  `json:"tax_rate"`
	TaxValue           decimal.Decimal  `json:"tax_value"`
	GrandTotal         decimal.Decimal  `json:"grand_total"`
	PaidAmount         decimal.Decimal  `json:"paid_amount"`
	RemainingAmount    decimal.Decimal  `json:"remaining_amount"`
	Status             InvoiceStatus    `json:"status"`
	IssueDate          time.Time        `json:"issue_date"`
	DueDate            *time.Time       `json:"due_date,omitempty"`
	Notes              string           `json:"notes,omitempty"`
	PaymentRecords     PaymentRecords   `json:"payment_records"`
	PaidAt             *time.Time       `json:"paid_at,omitempty"`
	CancelledAt        *time.Time       `json:"cancelled_at,omitempty"`
	CancelReason       string           `json:"cancel_reason,omitempty"`
}

// NewInvoice builds an invoice from a validated draft and the billable item
// snapshot it was composed against. Totals are computed once here and frozen;
// the grand total becomes the opening remaining balance.
func NewInvoice(
	invoiceNumber string,
	customerID uuid.UUID,
	customerName string,
	orderID *uuid.UUID,
	draft InvoiceDraft,
	items ItemSnapshot,
	issueDate time.Time,
	dueDate *time.Time,
) (*Invoice, error) {
	if invoiceNumber == "" {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number cannot be empty")
	}
	if len(invoiceNumber) > 50 {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number cannot exceed 50 characters")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if customerName == "" {
		return nil, shared.NewDomainError("INVALID_CUSTOMER_NAME", "Customer name cannot be empty")
	}
	if issueDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_ISSUE_DATE", "Issue date is required")
	}
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	totals := ComputeTotals(draft, items)
	if totals.GrandTotal.IsNegative() {
		return nil, shared.NewDomainError("DISCOUNT_EXCEEDS_SUBTOTAL", "Order discount exceeds the invoice subtotal")
	}

	lines := make(InvoiceLines, 0, len(totals.Lines))
	for _, lt := range totals.Lines {
		item := items[lt.DeliveryLineID]
		sel, _ := draft.Selection.Get(lt.DeliveryLineID)
		lines = append(lines, InvoiceLine{
			ID:              uuid.New(),
			DeliveryLineID:  lt.DeliveryLineID,
			ProductName:     item.ProductName,
			Unit:            item.Unit,
			InvoiceQty:      lt.InvoiceQty,
			UnitPrice:       lt.UnitPrice,
			DiscountPercent: sel.DiscountPercent,
			Gross:           lt.Gross,
			Discount:        lt.Discount,
			Net:             lt.Net,
		})
	}

	inv := &Invoice{
		BaseAggregateRoot:  shared.NewBaseAggregateRoot(),
		InvoiceNumber:      invoiceNumber,
		OrderID:            orderID,
		CustomerID:         customerID,
		CustomerName:       customerName,
		Buyer:              draft.Buyer,
		Lines:              lines,
		SubTotal:           totals.SubTotal,
		DiscountKind:       draft.Discount.Kind,
		DiscountInput:      draft.Discount.Value,
		DiscountReason:     draft.DiscountReason,
		DiscountValue:      totals.DiscountValue,
		TotalAfterDiscount: totals.TotalAfterDiscount,
		TaxRate:            draft.TaxRate,
		TaxValue:           totals.TaxValue,
		GrandTotal:         totals.GrandTotal,
		PaidAmount:         decimal.Zero,
		RemainingAmount:    totals.GrandTotal,
		Status:             InvoiceStatusPending,
		IssueDate:          issueDate,
		DueDate:            dueDate,
		Notes:              draft.Notes,
		PaymentRecords:     PaymentRecords{},
	}

	return inv, nil
}

// ApplyPayment applies a payment to the invoice. The amount must already have
// been validated against the remaining balance by the reconciliation engine;
// the aggregate re-checks the no-overpayment rule as its own invariant.
func (inv *Invoice) ApplyPayment(amount valueobject.Money, documentID uuid.UUID, note string) error {
	if !inv.Status.CanApplyPayment() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot apply payment to invoice in %s status", inv.Status))
	}
	if amount.Amount().LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if amount.Amount().GreaterThan(inv.RemainingAmount) {
		return shared.NewDomainError("EXCEEDS_REMAINING", fmt.Sprintf("Payment amount %s exceeds remaining amount %s", amount.StringFixed(0), inv.RemainingAmount.StringFixed(0)))
	}
	if documentID == uuid.Nil {
		return shared.NewDomainError("INVALID_DOCUMENT", "Settlement document ID cannot be empty")
	}

	inv.PaymentRecords = append(inv.PaymentRecords, PaymentRecord{
		ID:         uuid.New(),
		DocumentID: documentID,
		Amount:     amount.Amount(),
		AppliedAt:  time.Now(),
		Note:       note,
	})

	inv.PaidAmount = inv.PaidAmount.Add(amount.Amount())
	inv.RemainingAmount = inv.GrandTotal.Sub(inv.PaidAmount)

	if inv.RemainingAmount.IsZero() {
		now := time.Now()
		inv.Status = InvoiceStatusPaid
		inv.PaidAt = &now
	} else {
		inv.Status = InvoiceStatusPartial
	}

	inv.UpdatedAt = time.Now()
	inv.IncrementVersion()

	return nil
}

// Cancel cancels the invoice. Only invoices without payments can be cancelled.
func (inv *Invoice) Cancel(reason string) error {
	if inv.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot cancel invoice in %s status", inv.Status))
	}
	if inv.PaidAmount.GreaterThan(decimal.Zero) {
		return shared.NewDomainError("HAS_PAYMENTS", "Cannot cancel invoice with existing payments")
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Cancel reason is required")
	}

	now := time.Now()
	inv.Status = InvoiceStatusCancelled
	inv.CancelledAt = &now
	inv.CancelReason = reason
	inv.RemainingAmount = decimal.Zero
	inv.UpdatedAt = now
	inv.IncrementVersion()

	return nil
}

// Helper methods

// GetGrandTotalMoney returns the grand total as Money
func (inv *Invoice) GetGrandTotalMoney() valueobject.Money {
	return valueobject.NewMoneyVND(inv.GrandTotal)
}

// GetRemainingAmountMoney returns the remaining amount as Money
func (inv *Invoice) GetRemainingAmountMoney() valueobject.Money {
	return valueobject.NewMoneyVND(inv.RemainingAmount)
}

// IsPaid returns true if the invoice is fully paid
func (inv *Invoice) IsPaid() bool {
	return inv.Status == InvoiceStatusPaid
}

// IsCancelled returns true if the invoice is cancelled
func (inv *Invoice) IsCancelled() bool {
	return inv.Status == InvoiceStatusCancelled
}

// IsOverdue returns true if the invoice is past due and still outstanding
func (inv *Invoice) IsOverdue(now time.Time) bool {
	if inv.Status.IsTerminal() {
		return false
	}
	if inv.DueDate == nil {
		return false
	}
	return inv.DueDate.Before(now)
}

// DaysOverdue returns the number of whole days past due (0 if not overdue)
func (inv *Invoice) DaysOverdue(now time.Time) int {
	if !inv.IsOverdue(now) {
		return 0
	}
	return int(now.Sub(*inv.DueDate).Hours() / 24)
}

// PaymentCount returns the number of payments applied
func (inv *Invoice) PaymentCount() int {
	return len(inv.PaymentRecords)
}
