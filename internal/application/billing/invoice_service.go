package billing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/printworks/backend/internal/domain/billing"
	"github.com/printworks/backend/internal/domain/settlement"
	"github.com/printworks/backend/internal/domain/shared"
	"github.com/printworks/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Transactor runs a function within a storage transaction. Repository calls
// made with the context passed to fn join the transaction; an error from fn
// rolls everything back.
type Transactor interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// InvoiceService provides application-level invoicing operations: listing
// billable lines, previewing totals, creating invoices and recording payments.
type InvoiceService struct {
	invoiceRepo billing.InvoiceRepository
	itemRepo    billing.BillableItemRepository
	tx          Transactor
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(
	invoiceRepo billing.InvoiceRepository,
	itemRepo billing.BillableItemRepository,
	tx Transactor,
) *InvoiceService {
	return &InvoiceService{
		invoiceRepo: invoiceRepo,
		itemRepo:    itemRepo,
		tx:          tx,
	}
}

// ===================== DTOs =====================

// BillableItemResponse represents one invoiceable delivery line in API responses
type BillableItemResponse struct {
	DeliveryLineID     uuid.UUID       `json:"delivery_line_id"`
	OrderID            uuid.UUID       `json:"order_id"`
	OrderNumber        string          `json:"order_number"`
	ProductName        string          `json:"product_name"`
	Unit               string          `json:"unit"`
	UnitPrice          decimal.Decimal `json:"unit_price"`
	InvoicedQty        int64           `json:"invoiced_qty"`
	RemainingToInvoice int64           `json:"remaining_to_invoice"`
}

// InvoiceLineRequest is one selected delivery line in a create/preview request
type InvoiceLineRequest struct {
	DeliveryLineID  uuid.UUID        `json:"delivery_line_id" binding:"required"`
	Quantity        int64            `json:"quantity" binding:"required"`
	DiscountPercent *decimal.Decimal `json:"discount_percent,omitempty"`
}

// BuyerInfoRequest is the optional buyer snapshot supplied at invoice creation
type BuyerInfoRequest struct {
	Name        string `json:"name"`
	CompanyName string `json:"company_name"`
	TaxCode     string `json:"tax_code"`
	Address     string `json:"address"`
	Email       string `json:"email"`
}

// PreviewTotalsRequest carries the draft state for a pure totals preview
type PreviewTotalsRequest struct {
	Lines          []InvoiceLineRequest `json:"lines" binding:"required,min=1"`
	DiscountKind   string               `json:"discount_kind"`
	DiscountValue  decimal.Decimal      `json:"discount_value"`
	TaxRate        *decimal.Decimal     `json:"tax_rate,omitempty"`
	DiscountReason string               `json:"discount_reason"`
}

// CreateInvoiceRequest represents a request to create an invoice
type CreateInvoiceRequest struct {
	CustomerID     uuid.UUID            `json:"customer_id" binding:"required"`
	CustomerName   string               `json:"customer_name" binding:"required"`
	OrderID        *uuid.UUID           `json:"order_id,omitempty"`
	Lines          []InvoiceLineRequest `json:"lines" binding:"required,min=1"`
	DiscountKind   string               `json:"discount_kind"`
	DiscountValue  decimal.Decimal      `json:"discount_value"`
	DiscountReason string               `json:"discount_reason"`
	TaxRate        *decimal.Decimal     `json:"tax_rate,omitempty"`
	Notes          string               `json:"notes"`
	Buyer          BuyerInfoRequest     `json:"buyer"`
	IssueDate      *time.Time           `json:"issue_date,omitempty"`
	DueDate        *time.Time           `json:"due_date,omitempty"`
}

// RecordPaymentRequest represents a request to apply a payment to an invoice
type RecordPaymentRequest struct {
	Kind       string    `json:"kind" binding:"required"` // FULL or PARTIAL
	Amount     string    `json:"amount"`                  // Required for partial payments
	DocumentID uuid.UUID `json:"document_id" binding:"required"`
	Note       string    `json:"note"`
}

// CancelInvoiceRequest carries the mandatory cancellation reason
type CancelInvoiceRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// InvoiceListFilter defines filtering options for invoice list queries
type InvoiceListFilter struct {
	Search     string     `form:"search"`
	CustomerID *uuid.UUID `form:"customer_id"`
	Status     string     `form:"status"`
	FromDate   *time.Time `form:"from_date"`
	ToDate     *time.Time `form:"to_date"`
	Overdue    *bool      `form:"overdue"`
	Page       int        `form:"page"`
	PageSize   int        `form:"page_size"`
}

// LineTotalResponse is the per-line breakdown in preview responses
type LineTotalResponse struct {
	DeliveryLineID uuid.UUID       `json:"delivery_line_id"`
	InvoiceQty     int64           `json:"invoice_qty"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	Gross          decimal.Decimal `json:"gross"`
	Discount       decimal.Decimal `json:"discount"`
	Net            decimal.Decimal `json:"net"`
}

// TotalsResponse is the derived monetary summary returned by previews
type TotalsResponse struct {
	Lines              []LineTotalResponse `json:"lines"`
	SubTotal           decimal.Decimal     `json:"sub_total"`
	DiscountValue      decimal.Decimal     `json:"discount_value"`
	TotalAfterDiscount decimal.Decimal     `json:"total_after_discount"`
	TaxValue           decimal.Decimal     `json:"tax_value"`
	GrandTotal         decimal.Decimal     `json:"grand_total"`
}

// InvoiceResponse represents an invoice in API responses
type InvoiceResponse struct {
	ID                 uuid.UUID              `json:"id"`
	InvoiceNumber      string                 `json:"invoice_number"`
	OrderID            *uuid.UUID             `json:"order_id,omitempty"`
	CustomerID         uuid.UUID              `json:"customer_id"`
	CustomerName       string                 `json:"customer_name"`
	Buyer              billing.BuyerInfo      `json:"buyer"`
	Lines              billing.InvoiceLines   `json:"lines"`
	SubTotal           decimal.Decimal        `json:"sub_total"`
	DiscountKind       string                 `json:"discount_kind"`
	DiscountInput      decimal.Decimal        `json:"discount_input"`
	DiscountReason     string                 `json:"discount_reason,omitempty"`
	DiscountValue      decimal.Decimal        `json:"discount_value"`
	TotalAfterDiscount decimal.Decimal        `json:"total_after_discount"`
	TaxRate            decimal.Decimal        `json:"tax_rate"`
	TaxValue           decimal.Decimal        `json:"tax_value"`
	GrandTotal         decimal.Decimal        `json:"grand_total"`
	PaidAmount         decimal.Decimal        `json:"paid_amount"`
	RemainingAmount    decimal.Decimal        `json:"remaining_amount"`
	Status             string                 `json:"status"`
	IssueDate          time.Time              `json:"issue_date"`
	DueDate            *time.Time             `json:"due_date,omitempty"`
	Notes              string                 `json:"notes,omitempty"`
	Payments           billing.PaymentRecords `json:"payments"`
	PaidAt             *time.Time             `json:"paid_at,omitempty"`
	CancelledAt        *time.Time             `json:"cancelled_at,omitempty"`
	CancelReason       string                 `json:"cancel_reason,omitempty"`
	CreatedAt          time.Time              `json:"created_at"`
	UpdatedAt          time.Time              `json:"updated_at"`
	Version            int                    `json:"version"`
}

// ===================== Operations =====================

// ListBillableItems returns fulfilled delivery lines still eligible for
// invoicing, optionally filtered by customer.
func (s *InvoiceService) ListBillableItems(ctx context.Context, customerID *uuid.UUID) ([]BillableItemResponse, error) {
	items, err := s.itemRepo.FindBillable(ctx, customerID)
	if err != nil {
		return nil, err
	}

	responses := make([]BillableItemResponse, len(items))
	for i, item := range items {
		responses[i] = BillableItemResponse{
			DeliveryLineID:     item.DeliveryLineID,
			OrderID:            item.OrderID,
			OrderNumber:        item.OrderNumber,
			ProductName:        item.ProductName,
			Unit:               item.Unit,
			UnitPrice:          item.UnitPrice,
			InvoicedQty:        item.InvoicedQty,
			RemainingToInvoice: item.RemainingToInvoice,
		}
	}
	return responses, nil
}

// PreviewTotals computes invoice totals for the given draft state without
// validating or persisting anything. The response mirrors what submission
// would freeze, including a negative total when the discount exceeds the
// subtotal.
func (s *InvoiceService) PreviewTotals(ctx context.Context, req PreviewTotalsRequest) (*TotalsResponse, error) {
	draft, snapshot, err := s.buildDraft(ctx, req.Lines, req.DiscountKind, req.DiscountValue, req.DiscountReason, req.TaxRate, "", BuyerInfoRequest{})
	if err != nil {
		return nil, err
	}

	totals := billing.ComputeTotals(draft, snapshot)
	return toTotalsResponse(totals), nil
}

// CreateInvoice validates the draft, freezes its totals into an invoice
// aggregate, persists it and consumes the invoiced quantity on each line.
func (s *InvoiceService) CreateInvoice(ctx context.Context, req CreateInvoiceRequest) (*InvoiceResponse, error) {
	draft, snapshot, err := s.buildDraft(ctx, req.Lines, req.DiscountKind, req.DiscountValue, req.DiscountReason, req.TaxRate, req.Notes, req.Buyer)
	if err != nil {
		return nil, err
	}

	issueDate := time.Now()
	if req.IssueDate != nil {
		issueDate = *req.IssueDate
	}

	invoiceNumber, err := s.generateInvoiceNumber(ctx, issueDate)
	if err != nil {
		return nil, err
	}

	invoice, err := billing.NewInvoice(
		invoiceNumber,
		req.CustomerID,
		strings.TrimSpace(req.CustomerName),
		req.OrderID,
		draft,
		snapshot,
		issueDate,
		req.DueDate,
	)
	if err != nil {
		return nil, err
	}

	// Saving the invoice and consuming the delivery lines must land together:
	// a consume failure under a concurrent submission rolls the invoice back
	err = s.tx.Transaction(ctx, func(txCtx context.Context) error {
		if err := s.invoiceRepo.Save(txCtx, invoice); err != nil {
			return err
		}
		for _, line := range invoice.Lines {
			if err := s.itemRepo.ConsumeInvoicedQty(txCtx, line.DeliveryLineID, line.InvoiceQty); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return toInvoiceResponse(invoice), nil
}

// GetInvoiceByID gets an invoice by ID
func (s *InvoiceService) GetInvoiceByID(ctx context.Context, id uuid.UUID) (*InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Invoice not found")
	}
	return toInvoiceResponse(invoice), nil
}

// ListInvoices lists invoices with filtering and pagination
func (s *InvoiceService) ListInvoices(ctx context.Context, filter InvoiceListFilter) ([]InvoiceResponse, int64, error) {
	domainFilter := billing.InvoiceFilter{
		Search:     filter.Search,
		CustomerID: filter.CustomerID,
		FromDate:   filter.FromDate,
		ToDate:     filter.ToDate,
		Overdue:    filter.Overdue,
		Page:       filter.Page,
		PageSize:   filter.PageSize,
	}
	if filter.Status != "" {
		status := billing.InvoiceStatus(strings.ToUpper(filter.Status))
		if !status.IsValid() {
			return nil, 0, shared.NewDomainError("INVALID_STATUS", "Unknown invoice status filter")
		}
		domainFilter.Status = &status
	}

	invoices, err := s.invoiceRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.invoiceRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]InvoiceResponse, len(invoices))
	for i := range invoices {
		responses[i] = *toInvoiceResponse(&invoices[i])
	}
	return responses, total, nil
}

// RecordPayment applies a full or partial payment to the invoice. The plan is
// validated against the remaining balance before the aggregate is touched, so
// an invalid payment leaves the invoice unchanged.
func (s *InvoiceService) RecordPayment(ctx context.Context, invoiceID uuid.UUID, req RecordPaymentRequest) (*InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Invoice not found")
	}

	var plan settlement.PaymentPlan
	switch settlement.PaymentKind(strings.ToUpper(req.Kind)) {
	case settlement.PaymentKindFull:
		plan = settlement.NewFullPayment()
	case settlement.PaymentKindPartial:
		plan = settlement.NewPartialPaymentFromString(req.Amount)
	default:
		return nil, shared.NewDomainError("INVALID_PAYMENT_KIND", "Payment kind must be full or partial")
	}

	remaining := invoice.RemainingAmount
	if err := plan.Validate(remaining); err != nil {
		return nil, err
	}

	amount := valueobject.NewMoneyVND(plan.EffectiveAmount(remaining))
	if err := invoice.ApplyPayment(amount, req.DocumentID, strings.TrimSpace(req.Note)); err != nil {
		return nil, err
	}

	if err := s.invoiceRepo.Update(ctx, invoice); err != nil {
		return nil, err
	}
	return toInvoiceResponse(invoice), nil
}

// CancelInvoice cancels an invoice that has no payments yet
func (s *InvoiceService) CancelInvoice(ctx context.Context, invoiceID uuid.UUID, reason string) (*InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Invoice not found")
	}

	if err := invoice.Cancel(strings.TrimSpace(reason)); err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.Update(ctx, invoice); err != nil {
		return nil, err
	}
	return toInvoiceResponse(invoice), nil
}

// ===================== Internals =====================

// buildDraft resolves the requested lines against the live billable items and
// assembles the draft the domain engines operate on. Requested quantities are
// clamped by the selector; lines that no longer resolve stay selected and
// contribute zero to the totals.
func (s *InvoiceService) buildDraft(
	ctx context.Context,
	lines []InvoiceLineRequest,
	discountKind string,
	discountValue decimal.Decimal,
	discountReason string,
	taxRate *decimal.Decimal,
	notes string,
	buyer BuyerInfoRequest,
) (billing.InvoiceDraft, billing.ItemSnapshot, error) {
	// Toggle semantics would deselect a line listed twice, silently dropping
	// it from the invoice; duplicates are a malformed request
	lineIDs := make([]uuid.UUID, 0, len(lines))
	seen := make(map[uuid.UUID]struct{}, len(lines))
	for _, line := range lines {
		if _, dup := seen[line.DeliveryLineID]; dup {
			return billing.InvoiceDraft{}, nil, shared.NewDomainError("DUPLICATE_LINE",
				fmt.Sprintf("Delivery line %s is listed more than once", line.DeliveryLineID))
		}
		seen[line.DeliveryLineID] = struct{}{}
		lineIDs = append(lineIDs, line.DeliveryLineID)
	}

	items, err := s.itemRepo.FindByLineIDs(ctx, lineIDs)
	if err != nil {
		return billing.InvoiceDraft{}, nil, err
	}
	snapshot := billing.SnapshotOf(items)

	draft := billing.NewInvoiceDraft()
	selection := draft.Selection
	for _, line := range lines {
		item, ok := snapshot[line.DeliveryLineID]
		if !ok {
			// Unresolved lines carry only the identifier; totals treat them as zero
			item = billing.BillableItem{DeliveryLineID: line.DeliveryLineID}
		}
		selection = selection.Toggle(item)
		selection = selection.SetQuantity(item, line.Quantity)
		selection = selection.SetDiscountPercent(line.DeliveryLineID, line.DiscountPercent)
	}
	draft.Selection = selection

	switch strings.ToUpper(strings.TrimSpace(discountKind)) {
	case "", string(billing.DiscountNone):
		draft = draft.WithoutDiscount()
	case string(billing.DiscountPercent):
		draft = draft.WithPercentDiscount(discountValue)
	case string(billing.DiscountAmount):
		draft = draft.WithAmountDiscount(discountValue)
	default:
		return billing.InvoiceDraft{}, nil, shared.NewDomainError("INVALID_ORDER_DISCOUNT", "Discount kind must be NONE, PERCENT or AMOUNT")
	}
	draft.DiscountReason = strings.TrimSpace(discountReason)

	if taxRate != nil {
		draft.TaxRate = *taxRate
	}
	draft.Notes = strings.TrimSpace(notes)
	draft.Buyer = billing.BuyerInfo{
		Name:        strings.TrimSpace(buyer.Name),
		CompanyName: strings.TrimSpace(buyer.CompanyName),
		TaxCode:     strings.TrimSpace(buyer.TaxCode),
		Address:     strings.TrimSpace(buyer.Address),
		Email:       strings.TrimSpace(buyer.Email),
	}

	return draft, snapshot, nil
}

// generateInvoiceNumber produces INV-YYYYMM-NNNN from the per-month sequence
func (s *InvoiceService) generateInvoiceNumber(ctx context.Context, issueDate time.Time) (string, error) {
	count, err := s.invoiceRepo.CountIssuedInMonth(ctx, issueDate.Year(), issueDate.Month())
	if err != nil {
		return "", fmt.Errorf("failed to count invoices for numbering: %w", err)
	}
	return fmt.Sprintf("INV-%04d%02d-%04d", issueDate.Year(), int(issueDate.Month()), count+1), nil
}

func toTotalsResponse(totals billing.InvoiceTotals) *TotalsResponse {
	lines := make([]LineTotalResponse, len(totals.Lines))
	for i, lt := range totals.Lines {
		lines[i] = LineTotalResponse{
			DeliveryLineID: lt.DeliveryLineID,
			InvoiceQty:     lt.InvoiceQty,
			UnitPrice:      lt.UnitPrice,
			Gross:          lt.Gross,
			Discount:       lt.Discount,
			Net:            lt.Net,
		}
	}
	return &TotalsResponse{
		Lines:              lines,
		SubTotal:           totals.SubTotal,
		DiscountValue:      totals.DiscountValue,
		TotalAfterDiscount: totals.TotalAfterDiscount,
		TaxValue:           totals.TaxValue,
		GrandTotal:         totals.GrandTotal,
	}
}

func toInvoiceResponse(inv *billing.Invoice) *InvoiceResponse {
	return &InvoiceResponse{
		ID:                 inv.ID,
		InvoiceNumber:      inv.InvoiceNumber,
		OrderID:            inv.OrderID,
		CustomerID:         inv.CustomerID,
		CustomerName:       inv.CustomerName,
		Buyer:              inv.Buyer,
		Lines:              inv.Lines,
		SubTotal:           inv.SubTotal,
		DiscountKind:       string(inv.DiscountKind),
		DiscountInput:      inv.DiscountInput,
		DiscountReason:     inv.DiscountReason,
		DiscountValue:      inv.DiscountValue,
		TotalAfterDiscount: inv.TotalAfterDiscount,
		TaxRate:            inv.TaxRate,
		TaxValue:           inv.TaxValue,
		GrandTotal:         inv.GrandTotal,
		PaidAmount:         inv.PaidAmount,
		RemainingAmount:    inv.RemainingAmount,
		Status:             inv.Status.String(),
		IssueDate:          inv.IssueDate,
		DueDate:            inv.DueDate,
		Notes:              inv.Notes,
		Payments:           inv.PaymentRecords,
		PaidAt:             inv.PaidAt,
		CancelledAt:        inv.CancelledAt,
		CancelReason:       inv.CancelReason,
		CreatedAt:          inv.CreatedAt,
		UpdatedAt:          inv.UpdatedAt,
		Version:            inv.Version,
	}
}
