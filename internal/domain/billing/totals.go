package billing

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineTotal is the per-line breakdown produced by ComputeTotals
type LineTotal struct {
	DeliveryLineID uuid.UUID       `json:"delivery_line_id"`
	InvoiceQty     int64           `json:"invoice_qty"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	Gross          decimal.Decimal `json:"gross"`
	Discount       decimal.Decimal `json:"discount"`
	Net            decimal.Decimal `json:"net"`
}

// InvoiceTotals is the derived monetary summary of a draft. It is never
// persisted on its own; it is recomputed from the draft and the current
// item snapshot on every change.
type InvoiceTotals struct {
	Lines              []LineTotal     `json:"lines"`
	SubTotal           decimal.Decimal `json:"sub_total"`
	DiscountValue      decimal.Decimal `json:"discount_value"`
	TotalAfterDiscount decimal.Decimal `json:"total_after_discount"`
	TaxValue           decimal.Decimal `json:"tax_value"`
	GrandTotal         decimal.Decimal `json:"grand_total"`
}

var oneHundred = decimal.NewFromInt(100)

// ComputeTotals derives the invoice totals from a draft and the billable item
// snapshot. It is a pure function over its inputs: lines are processed in
// selection order, line discounts apply before the subtotal, the order-level
// discount applies before tax, and tax applies last.
//
// A selected line whose item is missing from the snapshot contributes zero
// (the row may not have loaded yet). When both discount variants somehow
// carry values, percent takes precedence; the two are never summed.
//
// TotalAfterDiscount is deliberately not clamped at zero: a discount larger
// than the subtotal yields a negative total so the data-entry error stays
// visible instead of being silently absorbed.
func ComputeTotals(draft InvoiceDraft, items ItemSnapshot) InvoiceTotals {
	totals := InvoiceTotals{
		Lines:              make([]LineTotal, 0, draft.Selection.Len()),
		SubTotal:           decimal.Zero,
		DiscountValue:      decimal.Zero,
		TotalAfterDiscount: decimal.Zero,
		TaxValue:           decimal.Zero,
		GrandTotal:         decimal.Zero,
	}

	for _, line := range draft.Selection.Lines() {
		item, ok := items[line.DeliveryLineID]
		if !ok {
			totals.Lines = append(totals.Lines, LineTotal{
				DeliveryLineID: line.DeliveryLineID,
				InvoiceQty:     line.InvoiceQty,
				UnitPrice:      decimal.Zero,
				Gross:          decimal.Zero,
				Discount:       decimal.Zero,
				Net:            decimal.Zero,
			})
			continue
		}

		gross := item.UnitPrice.Mul(decimal.NewFromInt(line.InvoiceQty))
		lineDiscount := decimal.Zero
		if line.DiscountPercent != nil {
			lineDiscount = gross.Mul(*line.DiscountPercent).Div(oneHundred)
		}
		net := gross.Sub(lineDiscount)

		totals.Lines = append(totals.Lines, LineTotal{
			DeliveryLineID: line.DeliveryLineID,
			InvoiceQty:     line.InvoiceQty,
			UnitPrice:      item.UnitPrice,
			Gross:          gross,
			Discount:       lineDiscount,
			Net:            net,
		})
		totals.SubTotal = totals.SubTotal.Add(net)
	}

	switch {
	case draft.Discount.Kind == DiscountPercent && !draft.Discount.Value.IsZero():
		totals.DiscountValue = totals.SubTotal.Mul(draft.Discount.Value).Div(oneHundred)
	case draft.Discount.Kind == DiscountAmount && !draft.Discount.Value.IsZero():
		totals.DiscountValue = draft.Discount.Value
	}

	totals.TotalAfterDiscount = totals.SubTotal.Sub(totals.DiscountValue)
	if draft.TaxRate.IsPositive() {
		totals.TaxValue = totals.TotalAfterDiscount.Mul(draft.TaxRate)
	}
	totals.GrandTotal = totals.TotalAfterDiscount.Add(totals.TaxValue)

	return totals
}
