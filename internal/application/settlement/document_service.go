package settlement

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/printworks/backend/internal/domain/settlement"
	"github.com/printworks/backend/internal/domain/shared"
	"github.com/printworks/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// DocumentService provides application-level operations for cash receipt and
// cash payment documents: creation, draft edits and lifecycle transitions.
type DocumentService struct {
	docRepo settlement.DocumentRepository
}

// NewDocumentService creates a new DocumentService
func NewDocumentService(docRepo settlement.DocumentRepository) *DocumentService {
	return &DocumentService{docRepo: docRepo}
}

// ===================== DTOs =====================

// CreateDocumentRequest represents a request to create a settlement document
type CreateDocumentRequest struct {
	Kind             string          `json:"kind" binding:"required"` // CASH_RECEIPT or CASH_PAYMENT
	Amount           decimal.Decimal `json:"amount" binding:"required"`
	VoucherDate      time.Time       `json:"voucher_date" binding:"required"`
	CounterpartyName string          `json:"counterparty_name" binding:"required"`
	CounterpartyID   *uuid.UUID      `json:"counterparty_id,omitempty"`
	OrderID          *uuid.UUID      `json:"order_id,omitempty"`
	InvoiceID        *uuid.UUID      `json:"invoice_id,omitempty"`
	Note             string          `json:"note"`
}

// UpdateDocumentRequest carries the draft-only editable fields
type UpdateDocumentRequest struct {
	CounterpartyID *uuid.UUID `json:"counterparty_id,omitempty"`
	OrderID        *uuid.UUID `json:"order_id,omitempty"`
	InvoiceID      *uuid.UUID `json:"invoice_id,omitempty"`
	Note           string     `json:"note"`
}

// CancelDocumentRequest carries the mandatory cancellation reason
type CancelDocumentRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// DocumentListFilter defines filtering options for document list queries
type DocumentListFilter struct {
	Search         string     `form:"search"`
	Kind           string     `form:"kind"`
	Status         string     `form:"status"`
	CounterpartyID *uuid.UUID `form:"counterparty_id"`
	FromDate       *time.Time `form:"from_date"`
	ToDate         *time.Time `form:"to_date"`
	Page           int        `form:"page"`
	PageSize       int        `form:"page_size"`
}

// DocumentResponse represents a settlement document in API responses
type DocumentResponse struct {
	ID               uuid.UUID       `json:"id"`
	Code             string          `json:"code"`
	Kind             string          `json:"kind"`
	Status           string          `json:"status"`
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
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
	Version          int             `json:"version"`
}

// ===================== Operations =====================

// CreateDocument creates a new draft settlement document with a generated
// voucher code (PT- for receipts, PC- for payments).
func (s *DocumentService) CreateDocument(ctx context.Context, req CreateDocumentRequest) (*DocumentResponse, error) {
	kind := settlement.DocumentKind(strings.ToUpper(strings.TrimSpace(req.Kind)))
	if !kind.IsValid() {
		return nil, shared.NewDomainError("INVALID_KIND", "Document kind must be CASH_RECEIPT or CASH_PAYMENT")
	}

	code, err := s.generateCode(ctx, kind, req.VoucherDate)
	if err != nil {
		return nil, err
	}

	doc, err := settlement.NewDocument(
		code,
		kind,
		valueobject.NewMoneyVND(req.Amount),
		req.VoucherDate,
		strings.TrimSpace(req.CounterpartyName),
	)
	if err != nil {
		return nil, err
	}

	if req.CounterpartyID != nil || req.OrderID != nil || req.InvoiceID != nil {
		if err := doc.SetReferences(req.CounterpartyID, req.OrderID, req.InvoiceID); err != nil {
			return nil, err
		}
	}
	if note := strings.TrimSpace(req.Note); note != "" {
		if err := doc.SetNote(note); err != nil {
			return nil, err
		}
	}

	if err := s.docRepo.Save(ctx, doc); err != nil {
		return nil, err
	}
	return toDocumentResponse(doc), nil
}

// GetDocumentByID gets a settlement document by ID
func (s *DocumentService) GetDocumentByID(ctx context.Context, id uuid.UUID) (*DocumentResponse, error) {
	doc, err := s.findDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	return toDocumentResponse(doc), nil
}

// ListDocuments lists settlement documents with filtering and pagination
func (s *DocumentService) ListDocuments(ctx context.Context, filter DocumentListFilter) ([]DocumentResponse, int64, error) {
	domainFilter := settlement.DocumentFilter{
		Search:         filter.Search,
		CounterpartyID: filter.CounterpartyID,
		FromDate:       filter.FromDate,
		ToDate:         filter.ToDate,
		Page:           filter.Page,
		PageSize:       filter.PageSize,
	}
	if filter.Kind != "" {
		kind := settlement.DocumentKind(strings.ToUpper(filter.Kind))
		if !kind.IsValid() {
			return nil, 0, shared.NewDomainError("INVALID_KIND", "Unknown document kind filter")
		}
		domainFilter.Kind = &kind
	}
	if filter.Status != "" {
		// Status filters arrive from UI dropdowns and legacy bookmarks alike
		status, ok := settlement.ParseDocumentStatus(filter.Status)
		if !ok {
			return nil, 0, shared.NewDomainError("INVALID_STATUS", "Unknown document status filter")
		}
		domainFilter.Status = &status
	}

	docs, err := s.docRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.docRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]DocumentResponse, len(docs))
	for i := range docs {
		responses[i] = *toDocumentResponse(&docs[i])
	}
	return responses, total, nil
}

// UpdateDocument updates the draft-only editable fields
func (s *DocumentService) UpdateDocument(ctx context.Context, id uuid.UUID, req UpdateDocumentRequest) (*DocumentResponse, error) {
	doc, err := s.findDocument(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := doc.SetReferences(req.CounterpartyID, req.OrderID, req.InvoiceID); err != nil {
		return nil, err
	}
	if err := doc.SetNote(strings.TrimSpace(req.Note)); err != nil {
		return nil, err
	}

	if err := s.docRepo.Update(ctx, doc); err != nil {
		return nil, err
	}
	return toDocumentResponse(doc), nil
}

// ApproveDocument transitions a draft document to APPROVED
func (s *DocumentService) ApproveDocument(ctx context.Context, id, actorID uuid.UUID) (*DocumentResponse, error) {
	doc, err := s.findDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := doc.Approve(actorID); err != nil {
		return nil, err
	}
	if err := s.docRepo.Update(ctx, doc); err != nil {
		return nil, err
	}
	return toDocumentResponse(doc), nil
}

// PostDocument transitions an approved document to POSTED
func (s *DocumentService) PostDocument(ctx context.Context, id, actorID uuid.UUID) (*DocumentResponse, error) {
	doc, err := s.findDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := doc.Post(actorID); err != nil {
		return nil, err
	}
	if err := s.docRepo.Update(ctx, doc); err != nil {
		return nil, err
	}
	return toDocumentResponse(doc), nil
}

// CancelDocument cancels a draft or approved document
func (s *DocumentService) CancelDocument(ctx context.Context, id, actorID uuid.UUID, reason string) (*DocumentResponse, error) {
	doc, err := s.findDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := doc.Cancel(actorID, strings.TrimSpace(reason)); err != nil {
		return nil, err
	}
	if err := s.docRepo.Update(ctx, doc); err != nil {
		return nil, err
	}
	return toDocumentResponse(doc), nil
}

// DeleteDocument deletes a draft document. Non-draft documents are part of
// the audit trail and can only be cancelled.
func (s *DocumentService) DeleteDocument(ctx context.Context, id uuid.UUID) error {
	doc, err := s.findDocument(ctx, id)
	if err != nil {
		return err
	}
	if !doc.Status.CanDelete() {
		return shared.NewDomainError("INVALID_TRANSITION", fmt.Sprintf("Cannot delete document in %s status", doc.Status))
	}
	return s.docRepo.Delete(ctx, id)
}

// ===================== Internals =====================

func (s *DocumentService) findDocument(ctx context.Context, id uuid.UUID) (*settlement.Document, error) {
	doc, err := s.docRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Settlement document not found")
	}
	return doc, nil
}

// generateCode produces PT-YYYYMM-NNNN for receipts and PC-YYYYMM-NNNN for
// payments from the per-month, per-kind sequence.
func (s *DocumentService) generateCode(ctx context.Context, kind settlement.DocumentKind, voucherDate time.Time) (string, error) {
	count, err := s.docRepo.CountIssuedInMonth(ctx, kind, voucherDate.Year(), voucherDate.Month())
	if err != nil {
		return "", fmt.Errorf("failed to count documents for numbering: %w", err)
	}
	prefix := "PT"
	if kind == settlement.DocumentKindPayment {
		prefix = "PC"
	}
	return fmt.Sprintf("%s-%04d%02d-%04d", prefix, voucherDate.Year(), int(voucherDate.Month()), count+1), nil
}

func toDocumentResponse(doc *settlement.Document) *DocumentResponse {
	return &DocumentResponse{
		ID:               doc.ID,
		Code:             doc.Code,
		Kind:             doc.Kind.String(),
		Status:           doc.Status.String(),
		Amount:           doc.Amount,
		VoucherDate:      doc.VoucherDate,
		PostingDate:      doc.PostingDate,
		CounterpartyName: doc.CounterpartyName,
		CounterpartyID:   doc.CounterpartyID,
		OrderID:          doc.OrderID,
		InvoiceID:        doc.InvoiceID,
		Note:             doc.Note,
		ApprovedAt:       doc.ApprovedAt,
		ApprovedBy:       doc.ApprovedBy,
		PostedAt:         doc.PostedAt,
		PostedBy:         doc.PostedBy,
		CancelledAt:      doc.CancelledAt,
		CancelledBy:      doc.CancelledBy,
		CancelReason:     doc.CancelReason,
		CreatedAt:        doc.CreatedAt,
		UpdatedAt:        doc.UpdatedAt,
		Version:          doc.Version,
	}
}
