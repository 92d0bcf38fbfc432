package billing

import (
	"fmt"

	"github.com/printworks/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// DiscountKind discriminates the order-level discount variants
type DiscountKind string

const (
	DiscountNone    DiscountKind = "NONE"
	DiscountPercent DiscountKind = "PERCENT"
	DiscountAmount  DiscountKind = "AMOUNT"
)

// OrderDiscount is the order-level discount as a tagged union: at most one of
// percent or fixed amount can be in effect, which makes the mutual exclusivity
// a type-level invariant instead of a pair of nullable fields.
type OrderDiscount struct {
	Kind  DiscountKind    `json:"kind"`
	Value decimal.Decimal `json:"value"`
}

// NoDiscount returns the absent order-level discount
func NoDiscount() OrderDiscount {
	return OrderDiscount{Kind: DiscountNone}
}

// PercentDiscount returns a percent order-level discount
func PercentDiscount(value decimal.Decimal) OrderDiscount {
	return OrderDiscount{Kind: DiscountPercent, Value: value}
}

// AmountDiscount returns a fixed-amount order-level discount
func AmountDiscount(value decimal.Decimal) OrderDiscount {
	return OrderDiscount{Kind: DiscountAmount, Value: value}
}

// IsZero reports whether the discount has no effect
func (d OrderDiscount) IsZero() bool {
	return d.Kind == DiscountNone || d.Value.IsZero()
}

// BuyerInfo is the optional buyer snapshot captured on the invoice.
// Fields are independent; none is required and there is no cross-validation.
type BuyerInfo struct {
	Name        string `json:"name,omitempty"`
	CompanyName string `json:"company_name,omitempty"`
	TaxCode     string `json:"tax_code,omitempty"`
	Address     string `json:"address,omitempty"`
	Email       string `json:"email,omitempty"`
}

// DefaultTaxRate is the tax rate applied to new drafts (10% VAT)
var DefaultTaxRate = decimal.NewFromFloat(0.1)

// InvoiceDraft is the aggregate a user edits before submission: the selected
// lines, the order-level discount, tax rate, notes and buyer snapshot.
type InvoiceDraft struct {
	Selection      SelectionSet
	Discount       OrderDiscount
	DiscountReason string
	TaxRate        decimal.Decimal
	Notes          string
	Buyer          BuyerInfo
}

// NewInvoiceDraft creates an empty draft with the default tax rate
func NewInvoiceDraft() InvoiceDraft {
	return InvoiceDraft{
		Selection: NewSelectionSet(),
		Discount:  NoDiscount(),
		TaxRate:   DefaultTaxRate,
	}
}

// WithPercentDiscount sets a percent order discount, clearing any amount discount
func (d InvoiceDraft) WithPercentDiscount(value decimal.Decimal) InvoiceDraft {
	d.Discount = PercentDiscount(value)
	return d
}

// WithAmountDiscount sets a fixed-amount order discount, clearing any percent discount
func (d InvoiceDraft) WithAmountDiscount(value decimal.Decimal) InvoiceDraft {
	d.Discount = AmountDiscount(value)
	return d
}

// WithoutDiscount clears the order-level discount
func (d InvoiceDraft) WithoutDiscount() InvoiceDraft {
	d.Discount = NoDiscount()
	return d
}

// percentRange bounds for line and order percent discounts
var (
	percentFloor   = decimal.Zero
	percentCeiling = decimal.NewFromInt(100)
)

// Validate checks the draft ahead of submission. The selector tolerates raw
// discount input; the range check lives here so the engine never trusts the
// setter.
func (d InvoiceDraft) Validate() error {
	if d.Selection.IsEmpty() {
		return shared.NewDomainError("NO_LINES", "At least one billable line must be selected")
	}
	for _, line := range d.Selection.Lines() {
		if line.InvoiceQty < 1 {
			return shared.NewDomainError("INVALID_QUANTITY", fmt.Sprintf("Invoice quantity for line %s must be at least 1", line.DeliveryLineID))
		}
		if line.DiscountPercent != nil {
			if line.DiscountPercent.LessThan(percentFloor) || line.DiscountPercent.GreaterThan(percentCeiling) {
				return shared.NewDomainError("INVALID_LINE_DISCOUNT", fmt.Sprintf("Line discount for %s must be between 0 and 100", line.DeliveryLineID))
			}
		}
	}
	if d.Discount.Kind == DiscountPercent {
		if d.Discount.Value.LessThan(percentFloor) || d.Discount.Value.GreaterThan(percentCeiling) {
			return shared.NewDomainError("INVALID_ORDER_DISCOUNT", "Order discount percent must be between 0 and 100")
		}
	}
	if d.Discount.Kind == DiscountAmount && d.Discount.Value.IsNegative() {
		return shared.NewDomainError("INVALID_ORDER_DISCOUNT", "Order discount amount cannot be negative")
	}
	if d.TaxRate.IsNegative() || d.TaxRate.GreaterThan(decimal.NewFromInt(1)) {
		return shared.NewDomainError("INVALID_TAX_RATE", "Tax rate must be a fraction between 0 and 1")
	}
	return nil
}
