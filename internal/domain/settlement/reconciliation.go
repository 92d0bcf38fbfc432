package settlement

import (
	"github.com/printworks/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PaymentKind distinguishes settling the full remaining balance from a
// partial payment of an explicit amount.
type PaymentKind string

const (
	PaymentKindFull    PaymentKind = "FULL"
	PaymentKindPartial PaymentKind = "PARTIAL"
)

// IsValid checks if the kind is a valid PaymentKind
func (k PaymentKind) IsValid() bool {
	return k == PaymentKindFull || k == PaymentKindPartial
}

// PaymentPlan is a requested payment against an outstanding balance. It is a
// pure value: validation and application never perform I/O, so the UI can
// check validity before invoking the payment-recording collaborator.
type PaymentPlan struct {
	Kind   PaymentKind     `json:"kind"`
	Amount decimal.Decimal `json:"amount"` // Only meaningful for partial payments
}

// NewFullPayment returns a plan that settles the entire remaining balance
func NewFullPayment() PaymentPlan {
	return PaymentPlan{Kind: PaymentKindFull}
}

// NewPartialPayment returns a plan for an explicit amount
func NewPartialPayment(amount decimal.Decimal) PaymentPlan {
	return PaymentPlan{Kind: PaymentKindPartial, Amount: amount}
}

// NewPartialPaymentFromString parses the amount from user input. A value that
// fails to parse becomes a zero amount, which Validate then rejects; parse
// failure is never an error in its own right.
func NewPartialPaymentFromString(amount string) PaymentPlan {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		d = decimal.Zero
	}
	return PaymentPlan{Kind: PaymentKindPartial, Amount: d}
}

// RemainingBalance derives the outstanding balance from an order or invoice
// snapshot. A negative result indicates corrupted upstream data, never a
// valid state.
func RemainingBalance(totalAmount, depositAmount decimal.Decimal) (decimal.Decimal, error) {
	remaining := totalAmount.Sub(depositAmount)
	if remaining.IsNegative() {
		return decimal.Zero, shared.ErrCorruptBalance
	}
	return remaining, nil
}

// EffectiveAmount resolves the amount the plan would actually apply: the full
// remaining balance, or the requested partial amount.
func (p PaymentPlan) EffectiveAmount(remaining decimal.Decimal) decimal.Decimal {
	if p.Kind == PaymentKindFull {
		return remaining
	}
	return p.Amount
}

// Validate checks the plan against the remaining balance.
// A full payment is valid iff remaining > 0; a partial payment is valid iff
// 0 < amount <= remaining. A zero remaining balance admits no valid payment.
func (p PaymentPlan) Validate(remaining decimal.Decimal) error {
	if remaining.IsNegative() {
		return shared.ErrCorruptBalance
	}
	if !p.Kind.IsValid() {
		return shared.NewDomainError("INVALID_PAYMENT_KIND", "Payment kind must be full or partial")
	}
	if remaining.IsZero() {
		return shared.ErrNothingOutstanding
	}

	if p.Kind == PaymentKindPartial {
		if p.Amount.LessThanOrEqual(decimal.Zero) {
			return shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
		}
		if p.Amount.GreaterThan(remaining) {
			return shared.NewDomainError("EXCEEDS_REMAINING", "Payment amount exceeds the remaining balance")
		}
	}
	return nil
}

// IsValid is the boolean form of Validate for guard-style callers
func (p PaymentPlan) IsValid(remaining decimal.Decimal) bool {
	return p.Validate(remaining) == nil
}

// Apply validates the plan and returns the new remaining balance after the
// payment. The inputs are untouched; the caller persists the result.
func (p PaymentPlan) Apply(remaining decimal.Decimal) (decimal.Decimal, error) {
	if err := p.Validate(remaining); err != nil {
		return remaining, err
	}
	return remaining.Sub(p.EffectiveAmount(remaining)), nil
}
