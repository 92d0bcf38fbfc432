package settlement

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/printworks/backend/internal/domain/shared"
	"github.com/printworks/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// DocumentKind distinguishes cash receipts (money in) from cash payments
// (money out). Both share the same aggregate and lifecycle.
type DocumentKind string

const (
	DocumentKindReceipt DocumentKind = "CASH_RECEIPT"
	DocumentKindPayment DocumentKind = "CASH_PAYMENT"
)

// IsValid checks if the kind is a valid DocumentKind
func (k DocumentKind) IsValid() bool {
	return k == DocumentKindReceipt || k == DocumentKindPayment
}

// String returns the string representation of DocumentKind
func (k DocumentKind) String() string {
	return string(k)
}

// DocumentStatus represents the lifecycle state of a settlement document
type DocumentStatus string

const (
	DocumentStatusDraft     DocumentStatus = "DRAFT"
	DocumentStatusApproved  DocumentStatus = "APPROVED"
	DocumentStatusPosted    DocumentStatus = "POSTED"
	DocumentStatusCancelled DocumentStatus = "CANCELLED"
)

// IsValid checks if the status is a valid DocumentStatus
func (s DocumentStatus) IsValid() bool {
	switch s {
	case DocumentStatusDraft, DocumentStatusApproved, DocumentStatusPosted, DocumentStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of DocumentStatus
func (s DocumentStatus) String() string {
	return string(s)
}

// IsTerminal returns true if the document is in a terminal state
func (s DocumentStatus) IsTerminal() bool {
	return s == DocumentStatusPosted || s == DocumentStatusCancelled
}

// CanEdit returns true if the document fields may still be edited
func (s DocumentStatus) CanEdit() bool {
	return s == DocumentStatusDraft
}

// CanApprove returns true if the document can be approved in this status
func (s DocumentStatus) CanApprove() bool {
	return s == DocumentStatusDraft
}

// CanPost returns true if the document can be posted in this status.
// A draft can never be posted directly; it must be approved first.
func (s DocumentStatus) CanPost() bool {
	return s == DocumentStatusApproved
}

// CanCancel returns true if the document can be cancelled in this status
func (s DocumentStatus) CanCancel() bool {
	return s == DocumentStatusDraft || s == DocumentStatusApproved
}

// CanDelete returns true if the document can be deleted in this status
func (s DocumentStatus) CanDelete() bool {
	return s == DocumentStatusDraft
}

// ParseDocumentStatus normalizes a raw upstream status string into the closed
// enumeration. Matching is case-insensitive and tolerates substring variants
// ("DraftPending" still maps to DRAFT). This tolerance lives only here, at
// the boundary; the guard predicates above operate on the closed enum.
func ParseDocumentStatus(raw string) (DocumentStatus, bool) {
	normalized := strings.ToUpper(strings.TrimSpace(raw))
	switch {
	case strings.Contains(normalized, "DRAFT"):
		return DocumentStatusDraft, true
	case strings.Contains(normalized, "APPROV"):
		return DocumentStatusApproved, true
	case strings.Contains(normalized, "POST"):
		return DocumentStatusPosted, true
	case strings.Contains(normalized, "CANCEL"):
		return DocumentStatusCancelled, true
	}
	return "", false
}

// Document represents a settlement document aggregate root: a cash receipt
// or cash payment recorded against a counterparty, optionally referencing an
// order or invoice. Once posted or cancelled it is immutable except for
// display metadata.
type Document struct {
	shared.BaseAggregateRoot
	Code             string          `json:"code"`
	Kind             DocumentKind    `json:"kind"`
	Status           DocumentStatus  `json:"status"`
	Amount           decimal.Decimal `json:"amount"`
	VoucherDate      time.Time       `json:"voucher_date"`
	PostingDate      *time.Time      `json:"posting_date,omitempty"`
	CounterpartyName string          `json:"counterparty_name"`
	CounterpartyID   *uuid.UUID      `json:"counterparty_id,omitempty"`
	OrderID          *uuid.UUID      `json:"order_id,omitempty"`
	InvoiceID        *uuid.UUID      `json:"invoice_id,omitempty"`
	Note             string          `json:"note,omitempty"`
	ApprovedAt       *time.Time      `json:"approved_at,omitempty"`
	ApprovedBy       *uuid.UUID      `json:"approved_by,omitempty"`
	PostedAt         *time.Time      `json:"posted_at,omitempty"`
	PostedBy         *uuid.UUID      `json:"posted_by,omitempty"`
	CancelledAt      *time.Time      `json:"cancelled_at,omitempty"`
	CancelledBy      *uuid.UUID      `json:"cancelled_by,omitempty"`
	CancelReason     string          `json:"cancel_reason,omitempty"`
}

// NewDocument creates a new settlement document in DRAFT status
func NewDocument(
	code string,
	kind DocumentKind,
	amount valueobject.Money,
	voucherDate time.Time,
	counterpartyName string,
) (*Document, error) {
	if code == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Document code cannot be empty")
	}
	if len(code) > 50 {
		return nil, shared.NewDomainError("INVALID_CODE", "Document code cannot exceed 50 characters")
	}
	if !kind.IsValid() {
		return nil, shared.NewDomainError("INVALID_KIND", "Document kind is not valid")
	}
	if amount.Amount().LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Amount must be positive")
	}
	if voucherDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_VOUCHER_DATE", "Voucher date is required")
	}
	if counterpartyName == "" {
		return nil, shared.NewDomainError("INVALID_COUNTERPARTY", "Counterparty name cannot be empty")
	}

	return &Document{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		Kind:              kind,
		Status:            DocumentStatusDraft,
		Amount:            amount.Amount(),
		VoucherDate:       voucherDate,
		CounterpartyName:  counterpartyName,
	}, nil
}

// SetReferences attaches optional order/invoice/counterparty references.
// Only allowed while the document is editable.
func (d *Document) SetReferences(counterpartyID, orderID, invoiceID *uuid.UUID) error {
	if !d.Status.CanEdit() {
		return shared.NewDomainError("INVALID_STATE", "Cannot modify references on a non-draft document")
	}
	d.CounterpartyID = counterpartyID
	d.OrderID = orderID
	d.InvoiceID = invoiceID
	d.UpdatedAt = time.Now()
	d.IncrementVersion()
	return nil
}

// SetNote sets the free-text note. Only allowed while editable.
func (d *Document) SetNote(note string) error {
	if !d.Status.CanEdit() {
		return shared.NewDomainError("INVALID_STATE", "Cannot modify note on a non-draft document")
	}
	d.Note = note
	d.UpdatedAt = time.Now()
	d.IncrementVersion()
	return nil
}

// Approve transitions the document from DRAFT to APPROVED
func (d *Document) Approve(approvedBy uuid.UUID) error {
	if !d.Status.CanApprove() {
		return shared.NewDomainError("INVALID_TRANSITION", fmt.Sprintf("Cannot approve document in %s status", d.Status))
	}
	if approvedBy == uuid.Nil {
		return shared.NewDomainError("INVALID_USER", "Approving user ID is required")
	}

	now := time.Now()
	d.Status = DocumentStatusApproved
	d.ApprovedAt = &now
	d.ApprovedBy = &approvedBy
	d.UpdatedAt = now
	d.IncrementVersion()

	return nil
}

// Post transitions the document from APPROVED to POSTED and stamps the
// posting date. POSTED is terminal.
func (d *Document) Post(postedBy uuid.UUID) error {
	if !d.Status.CanPost() {
		return shared.NewDomainError("INVALID_TRANSITION", fmt.Sprintf("Cannot post document in %s status", d.Status))
	}
	if postedBy == uuid.Nil {
		return shared.NewDomainError("INVALID_USER", "Posting user ID is required")
	}

	now := time.Now()
	d.Status = DocumentStatusPosted
	d.PostingDate = &now
	d.PostedAt = &now
	d.PostedBy = &postedBy
	d.UpdatedAt = now
	d.IncrementVersion()

	return nil
}

// Cancel cancels the document from DRAFT or APPROVED. CANCELLED is terminal.
func (d *Document) Cancel(cancelledBy uuid.UUID, reason string) error {
	if !d.Status.CanCancel() {
		return shared.NewDomainError("INVALID_TRANSITION", fmt.Sprintf("Cannot cancel document in %s status", d.Status))
	}
	if cancelledBy == uuid.Nil {
		return shared.NewDomainError("INVALID_USER", "Cancelling user ID is required")
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Cancel reason is required")
	}

	now := time.Now()
	d.Status = DocumentStatusCancelled
	d.CancelledAt = &now
	d.CancelledBy = &cancelledBy
	d.CancelReason = reason
	d.UpdatedAt = now
	d.IncrementVersion()

	return nil
}

// Helper methods

// GetAmountMoney returns the amount as Money
func (d *Document) GetAmountMoney() valueobject.Money {
	return valueobject.NewMoneyVND(d.Amount)
}

// IsDraft returns true if the document is in draft status
func (d *Document) IsDraft() bool {
	return d.Status == DocumentStatusDraft
}

// IsApproved returns true if the document is approved
func (d *Document) IsApproved() bool {
	return d.Status == DocumentStatusApproved
}

// IsPosted returns true if the document is posted
func (d *Document) IsPosted() bool {
	return d.Status == DocumentStatusPosted
}

// IsCancelled returns true if the document is cancelled
func (d *Document) IsCancelled() bool {
	return d.Status == DocumentStatusCancelled
}
