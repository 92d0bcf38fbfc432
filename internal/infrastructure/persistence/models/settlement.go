package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/printworks/backend/internal/domain/settlement"
	"github.com/shopspring/decimal"
)

// SettlementDocumentModel is the GORM model for settlement documents
// (cash receipts and cash payments)
type SettlementDocumentModel struct {
	AggregateModel
	Code             string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	Kind             string          `gorm:"type:varchar(20);not null;index"`
	Status           string          `gorm:"type:varchar(20);not null;index"`
	Amount           decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	VoucherDate      time.Time       `gorm:"not null;index"`
	PostingDate      *time.Time
	CounterpartyName string     `gorm:"type:varchar(255);not null"`
	CounterpartyID   *uuid.UUID `gorm:"type:uuid;index"`
	OrderID          *uuid.UUID `gorm:"type:uuid;index"`
	InvoiceID        *uuid.UUID `gorm:"type:uuid;index"`
	Note             string     `gorm:"type:varchar(1000)"`
	ApprovedAt       *time.Time
	ApprovedBy       *uuid.UUID `gorm:"type:uuid"`
	PostedAt         *time.Time
	PostedBy         *uuid.UUID `gorm:"type:uuid"`
	CancelledAt      *time.Time
	CancelledBy      *uuid.UUID `gorm:"type:uuid"`
	CancelReason     string     `gorm:"type:varchar(500)"`
}

// TableName specifies the table name for SettlementDocumentModel
func (SettlementDocumentModel) TableName() string {
	return "settlement_documents"
}

// ToDomain converts SettlementDocumentModel to settlement.Document
func (m *SettlementDocumentModel) ToDomain() *settlement.Document {
	status, ok := settlement.ParseDocumentStatus(m.Status)
	if !ok {
		status = settlement.DocumentStatus(m.Status)
	}
	doc := &settlement.Document{
		Code:             m.Code,
		Kind:             settlement.DocumentKind(m.Kind),
		Status:           status,
		Amount:           m.Amount,
		VoucherDate:      m.VoucherDate,
		PostingDate:      m.PostingDate,
		CounterpartyName: m.CounterpartyName,
		CounterpartyID:   m.CounterpartyID,
		OrderID:          m.OrderID,
		InvoiceID:        m.InvoiceID,
		Note:             m.Note,
		ApprovedAt:       m.ApprovedAt,
		ApprovedBy:       m.ApprovedBy,
		PostedAt:         m.PostedAt,
		PostedBy:         m.PostedBy,
		CancelledAt:      m.CancelledAt,
		CancelledBy:      m.CancelledBy,
		CancelReason:     m.CancelReason,
	}
	doc.BaseEntity = m.BaseModel.ToDomain()
	doc.Version = m.Version
	return doc
}

// FromDomain populates SettlementDocumentModel from settlement.Document
func (m *SettlementDocumentModel) FromDomain(doc *settlement.Document) {
	m.FromDomainAggregateRoot(doc.BaseAggregateRoot)
	m.Code = doc.Code
	m.Kind = string(doc.Kind)
	m.Status = string(doc.Status)
	m.Amount = doc.Amount
	m.VoucherDate = doc.VoucherDate
	m.PostingDate = doc.PostingDate
	m.CounterpartyName = doc.CounterpartyName
	m.CounterpartyID = doc.CounterpartyID
	m.OrderID = doc.OrderID
	m.InvoiceID = doc.InvoiceID
	m.Note = doc.Note
	m.ApprovedAt = doc.ApprovedAt
	m.ApprovedBy = doc.ApprovedBy
	m.PostedAt = doc.PostedAt
	m.PostedBy = doc.PostedBy
	m.CancelledAt = doc.CancelledAt
	m.CancelledBy = doc.CancelledBy
	m.CancelReason = doc.CancelReason
}

// SettlementDocumentModelFromDomain creates a new model from a domain document
func SettlementDocumentModelFromDomain(doc *settlement.Document) *SettlementDocumentModel {
	model := &SettlementDocumentModel{}
	model.FromDomain(doc)
	return model
}
