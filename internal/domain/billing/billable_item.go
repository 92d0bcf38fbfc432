package billing

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BillableItem is a read-only snapshot of a fulfilled delivery line that is
// eligible for invoicing. It is owned by the order-fulfillment subsystem;
// the billing core never mutates it.
type BillableItem struct {
	DeliveryLineID     uuid.UUID       `json:"delivery_line_id"`
	OrderID            uuid.UUID       `json:"order_id"`
	OrderNumber        string          `json:"order_number"`
	ProductName        string          `json:"product_name"`
	Unit               string          `json:"unit"`
	UnitPrice          decimal.Decimal `json:"unit_price"`
	InvoicedQty        int64           `json:"invoiced_qty"`
	RemainingToInvoice int64           `json:"remaining_to_invoice"`
}

// HasIdentifier reports whether the item carries a usable delivery line ID.
// Partially loaded rows may arrive without one; selecting such a row is a no-op.
func (i BillableItem) HasIdentifier() bool {
	return i.DeliveryLineID != uuid.Nil
}

// DefaultInvoiceQty returns the quantity pre-filled when the item is selected:
// the full remaining quantity, or 1 when nothing sensible remains.
func (i BillableItem) DefaultInvoiceQty() int64 {
	if i.RemainingToInvoice > 0 {
		return i.RemainingToInvoice
	}
	return 1
}

// ItemSnapshot indexes billable items by delivery line ID for totals computation
type ItemSnapshot map[uuid.UUID]BillableItem

// SnapshotOf builds an ItemSnapshot from a slice of billable items.
// Items without an identifier are skipped.
func SnapshotOf(items []BillableItem) ItemSnapshot {
	snapshot := make(ItemSnapshot, len(items))
	for _, item := range items {
		if item.HasIdentifier() {
			snapshot[item.DeliveryLineID] = item
		}
	}
	return snapshot
}
