package persistence

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/printworks/backend/internal/domain/billing"
	"github.com/printworks/backend/internal/domain/shared"
	"github.com/printworks/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormDeliveryLineRepository implements billing.BillableItemRepository on top
// of the delivery_lines table maintained by the fulfillment subsystem.
type GormDeliveryLineRepository struct {
	db *gorm.DB
}

// NewGormDeliveryLineRepository creates a new GORM-based delivery line repository
func NewGormDeliveryLineRepository(db *gorm.DB) *GormDeliveryLineRepository {
	return &GormDeliveryLineRepository{db: db}
}

// FindBillable retrieves delivery lines with remaining quantity to invoice,
// optionally scoped to one customer
func (r *GormDeliveryLineRepository) FindBillable(ctx context.Context, customerID *uuid.UUID) ([]billing.BillableItem, error) {
	query := dbFromContext(ctx, r.db).
		Model(&models.DeliveryLineModel{}).
		Where("delivered_qty > invoiced_qty")
	if customerID != nil {
		query = query.Where("customer_id = ?", *customerID)
	}

	var rows []models.DeliveryLineModel
	if err := query.Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to find billable delivery lines: %w", err)
	}

	items := make([]billing.BillableItem, 0, len(rows))
	for i := range rows {
		items = append(items, rows[i].ToBillableItem())
	}
	return items, nil
}

// FindByLineIDs retrieves delivery lines by ID regardless of remaining
// quantity. Missing IDs are simply absent from the result.
func (r *GormDeliveryLineRepository) FindByLineIDs(ctx context.Context, lineIDs []uuid.UUID) ([]billing.BillableItem, error) {
	if len(lineIDs) == 0 {
		return []billing.BillableItem{}, nil
	}

	var rows []models.DeliveryLineModel
	err := dbFromContext(ctx, r.db).
		Where("id IN ?", lineIDs).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find delivery lines by ids: %w", err)
	}

	items := make([]billing.BillableItem, 0, len(rows))
	for i := range rows {
		items = append(items, rows[i].ToBillableItem())
	}
	return items, nil
}

// ConsumeInvoicedQty atomically advances invoiced_qty on a delivery line.
// The conditional update guards against consuming past the delivered quantity
// under concurrent submissions.
func (r *GormDeliveryLineRepository) ConsumeInvoicedQty(ctx context.Context, lineID uuid.UUID, qty int64) error {
	if qty <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Consumed quantity must be positive")
	}

	result := dbFromContext(ctx, r.db).
		Model(&models.DeliveryLineModel{}).
		Where("id = ? AND delivered_qty - invoiced_qty >= ?", lineID, qty).
		Update("invoiced_qty", gorm.Expr("invoiced_qty + ?", qty))
	if result.Error != nil {
		return fmt.Errorf("failed to consume invoiced quantity: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("INSUFFICIENT_REMAINING", "Delivery line has less remaining quantity than requested")
	}
	return nil
}
