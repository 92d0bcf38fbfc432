package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/printworks/backend/internal/domain/billing"
	"github.com/shopspring/decimal"
)

// DeliveryLineModel is the GORM model for fulfilled delivery lines.
// The rows are produced by the order-fulfillment subsystem; the billing
// flow only reads them and advances invoiced_qty when an invoice is issued.
type DeliveryLineModel struct {
	BaseModel
	OrderID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	OrderNumber  string          `gorm:"type:varchar(50);not null"`
	CustomerID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	CustomerName string          `gorm:"type:varchar(255);not null"`
	ProductName  string          `gorm:"type:varchar(255);not null"`
	Unit         string          `gorm:"type:varchar(50)"`
	UnitPrice    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	DeliveredQty int64           `gorm:"not null"`
	InvoicedQty  int64           `gorm:"not null;default:0"`
}

// TableName specifies the table name for DeliveryLineModel
func (DeliveryLineModel) TableName() string {
	return "delivery_lines"
}

// ToBillableItem converts the row to the billing read model
func (m *DeliveryLineModel) ToBillableItem() billing.BillableItem {
	return billing.BillableItem{
		DeliveryLineID:     m.ID,
		OrderID:            m.OrderID,
		OrderNumber:        m.OrderNumber,
		ProductName:        m.ProductName,
		Unit:               m.Unit,
		UnitPrice:          m.UnitPrice,
		InvoicedQty:        m.InvoicedQty,
		RemainingToInvoice: m.DeliveredQty - m.InvoicedQty,
	}
}

// InvoiceModel is the GORM model for the invoices table
type InvoiceModel struct {
	AggregateModel
	InvoiceNumber      string                 `gorm:"type:varchar(50);not null;uniqueIndex"`
	OrderID            *uuid.UUID             `gorm:"type:uuid;index"`
	CustomerID         uuid.UUID              `gorm:"type:uuid;not null;index"`
	CustomerName       string                 `gorm:"type:varchar(255);not null"`
	BuyerName          string                 `gorm:"type:varchar(255)"`
	BuyerCompanyName   string                 `gorm:"type:varchar(255)"`
	BuyerTaxCode       string                 `gorm:"type:varchar(50)"`
	BuyerAddress       string                 `gorm:"type:varchar(500)"`
	BuyerEmail         string                 `gorm:"type:varchar(255)"`
	Lines              billing.InvoiceLines   `gorm:"type:jsonb"`
	SubTotal           decimal.Decimal        `gorm:"type:decimal(18,4);not null"`
	DiscountKind       string                 `gorm:"type:varchar(20);not null;default:'NONE'"`
	DiscountInput      decimal.Decimal        `gorm:"type:decimal(18,4);not null;default:0"`
	DiscountReason     string                 `gorm:"type:varchar(500)"`
	DiscountValue      decimal.Decimal        `gorm:"type:decimal(18,4);not null;default:0"`
	TotalAfterDiscount decimal.Decimal        `gorm:"type:decimal(18,4);not null"`
	TaxRate            decimal.Decimal        `gorm:"type:decimal(8,4);not null;default:0"`
	TaxValue           decimal.Decimal        `gorm:"type:decimal(18,4);not null;default:0"`
	GrandTotal         decimal.Decimal        `gorm:"type:decimal(18,4);not null"`
	PaidAmount         decimal.Decimal        `gorm:"type:decimal(18,4);not null;default:0"`
	RemainingAmount    decimal.Decimal        `gorm:"type:decimal(18,4);not null"`
	Status             string                 `gorm:"type:varchar(20);not null;index"`
	IssueDate          time.Time              `gorm:"not null;index"`
	DueDate            *time.Time             `gorm:"index"`
	Notes              string                 `gorm:"type:text"`
	PaymentRecords     billing.PaymentRecords `gorm:"type:jsonb"`
	PaidAt             *time.Time
	CancelledAt        *time.Time
	CancelReason       string `gorm:"type:varchar(500)"`
}

// TableName specifies the table name for InvoiceModel
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts InvoiceModel to billing.Invoice domain aggregate
func (m *InvoiceModel) ToDomain() *billing.Invoice {
	inv := &billing.Invoice{
		InvoiceNumber: m.InvoiceNumber,
		OrderID:       m.OrderID,
		CustomerID:    m.CustomerID,
		CustomerName:  m.CustomerName,
		Buyer: billing.BuyerInfo{
			Name:        m.BuyerName,
			CompanyName: m.BuyerCompanyName,
			TaxCode:     m.BuyerTaxCode,
			Address:     m.BuyerAddress,
			Email:       m.BuyerEmail,
		},
		Lines:              m.Lines,
		SubTotal:           m.SubTotal,
		DiscountKind:       billing.DiscountKind(m.DiscountKind),
		DiscountInput:      m.DiscountInput,
		DiscountReason:     m.DiscountReason,
		DiscountValue:      m.DiscountValue,
		TotalAfterDiscount: m.TotalAfterDiscount,
		TaxRate:            m.TaxRate,
		TaxValue:           m.TaxValue,
		GrandTotal:         m.GrandTotal,
		PaidAmount:         m.PaidAmount,
		RemainingAmount:    m.RemainingAmount,
		Status:             billing.InvoiceStatus(m.Status),
		IssueDate:          m.IssueDate,
		DueDate:            m.DueDate,
		Notes:              m.Notes,
		PaymentRecords:     m.PaymentRecords,
		PaidAt:             m.PaidAt,
		CancelledAt:        m.CancelledAt,
		CancelReason:       m.CancelReason,
	}
	inv.BaseEntity = m.BaseModel.ToDomain()
	inv.Version = m.Version
	return inv
}

// FromDomain populates InvoiceModel from billing.Invoice domain aggregate
func (m *InvoiceModel) FromDomain(inv *billing.Invoice) {
	m.FromDomainAggregateRoot(inv.BaseAggregateRoot)
	m.InvoiceNumber = inv.InvoiceNumber
	m.OrderID = inv.OrderID
	m.CustomerID = inv.CustomerID
	m.CustomerName = inv.CustomerName
	m.BuyerName = inv.Buyer.Name
	m.BuyerCompanyName = inv.Buyer.CompanyName
	m.BuyerTaxCode = inv.Buyer.TaxCode
	m.BuyerAddress = inv.Buyer.Address
	m.BuyerEmail = inv.Buyer.Email
	m.Lines = inv.Lines
	m.SubTotal = inv.SubTotal
	m.DiscountKind = string(inv.DiscountKind)
	m.DiscountInput = inv.DiscountInput
	m.DiscountReason = inv.DiscountReason
	m.DiscountValue = inv.DiscountValue
	m.TotalAfterDiscount = inv.TotalAfterDiscount
	m.TaxRate = inv.TaxRate
	m.TaxValue = inv.TaxValue
	m.GrandTotal = inv.GrandTotal
	m.PaidAmount = inv.PaidAmount
	m.RemainingAmount = inv.RemainingAmount
	m.Status = string(inv.Status)
	m.IssueDate = inv.IssueDate
	m.DueDate = inv.DueDate
	m.Notes = inv.Notes
	m.PaymentRecords = inv.PaymentRecords
	m.PaidAt = inv.PaidAt
	m.CancelledAt = inv.CancelledAt
	m.CancelReason = inv.CancelReason
}

// InvoiceModelFromDomain creates a new InvoiceModel from a domain invoice
func InvoiceModelFromDomain(inv *billing.Invoice) *InvoiceModel {
	model := &InvoiceModel{}
	model.FromDomain(inv)
	return model
}
