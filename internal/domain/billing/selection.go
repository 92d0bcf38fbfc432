package billing

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineSelection is one entry in a draft invoice, keyed by the delivery line ID
// of its BillableItem. It exists only while the item is selected.
type LineSelection struct {
	DeliveryLineID  uuid.UUID        `json:"delivery_line_id"`
	InvoiceQty      int64            `json:"invoice_qty"`
	DiscountPercent *decimal.Decimal `json:"discount_percent,omitempty"`
}

// SelectionSet maintains the set of delivery lines chosen for invoicing.
// It is an immutable value: every mutator returns a new set, so callers can
// compare before/after states and no aliasing is possible.
type SelectionSet struct {
	order []uuid.UUID
	lines map[uuid.UUID]LineSelection
}

// NewSelectionSet creates an empty selection set
func NewSelectionSet() SelectionSet {
	return SelectionSet{
		order: []uuid.UUID{},
		lines: map[uuid.UUID]LineSelection{},
	}
}

// clone makes a deep copy for copy-on-write mutation
func (s SelectionSet) clone() SelectionSet {
	order := make([]uuid.UUID, len(s.order))
	copy(order, s.order)
	lines := make(map[uuid.UUID]LineSelection, len(s.lines))
	for id, line := range s.lines {
		lines[id] = line
	}
	return SelectionSet{order: order, lines: lines}
}

// Toggle flips the selection state of the given item. Selecting pre-fills the
// invoice quantity with the item's full remaining quantity and no discount.
// Items without a usable identifier are ignored.
func (s SelectionSet) Toggle(item BillableItem) SelectionSet {
	if !item.HasIdentifier() {
		return s
	}

	next := s.clone()
	if _, selected := next.lines[item.DeliveryLineID]; selected {
		delete(next.lines, item.DeliveryLineID)
		for idx, id := range next.order {
			if id == item.DeliveryLineID {
				next.order = append(next.order[:idx], next.order[idx+1:]...)
				break
			}
		}
		return next
	}

	next.lines[item.DeliveryLineID] = LineSelection{
		DeliveryLineID: item.DeliveryLineID,
		InvoiceQty:     item.DefaultInvoiceQty(),
	}
	next.order = append(next.order, item.DeliveryLineID)
	return next
}

// SetQuantity stores the requested quantity clamped into
// [1, item.RemainingToInvoice], using the live remaining quantity rather than
// anything cached at selection time. No-op when the line is not selected.
func (s SelectionSet) SetQuantity(item BillableItem, requested int64) SelectionSet {
	line, selected := s.lines[item.DeliveryLineID]
	if !selected {
		return s
	}

	upper := item.RemainingToInvoice
	if upper < 1 {
		upper = 1
	}
	qty := requested
	if qty < 1 {
		qty = 1
	}
	if qty > upper {
		qty = upper
	}

	next := s.clone()
	line.InvoiceQty = qty
	next.lines[item.DeliveryLineID] = line
	return next
}

// SetDiscountPercent stores the value verbatim (nil clears it). Range checking
// happens at aggregation/submission time, not here. No-op when the line is
// not selected.
func (s SelectionSet) SetDiscountPercent(lineID uuid.UUID, value *decimal.Decimal) SelectionSet {
	line, selected := s.lines[lineID]
	if !selected {
		return s
	}

	next := s.clone()
	if value != nil {
		v := *value
		line.DiscountPercent = &v
	} else {
		line.DiscountPercent = nil
	}
	next.lines[lineID] = line
	return next
}

// IsSelected reports whether the given delivery line is currently selected
func (s SelectionSet) IsSelected(lineID uuid.UUID) bool {
	_, ok := s.lines[lineID]
	return ok
}

// Get returns the selection for a delivery line, if present
func (s SelectionSet) Get(lineID uuid.UUID) (LineSelection, bool) {
	line, ok := s.lines[lineID]
	return line, ok
}

// Lines returns the selections in the order they were added
func (s SelectionSet) Lines() []LineSelection {
	result := make([]LineSelection, 0, len(s.order))
	for _, id := range s.order {
		result = append(result, s.lines[id])
	}
	return result
}

// Len returns the number of selected lines
func (s SelectionSet) Len() int {
	return len(s.lines)
}

// IsEmpty reports whether no lines are selected
func (s SelectionSet) IsEmpty() bool {
	return len(s.lines) == 0
}
