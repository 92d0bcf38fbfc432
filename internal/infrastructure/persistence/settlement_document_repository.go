package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/printworks/backend/internal/domain/settlement"
	"github.com/printworks/backend/internal/domain/shared"
	"github.com/printworks/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormDocumentRepository implements settlement.DocumentRepository using GORM
type GormDocumentRepository struct {
	db *gorm.DB
}

// NewGormDocumentRepository creates a new GORM-based settlement document repository
func NewGormDocumentRepository(db *gorm.DB) *GormDocumentRepository {
	return &GormDocumentRepository{db: db}
}

// Save persists a new settlement document
func (r *GormDocumentRepository) Save(ctx context.Context, doc *settlement.Document) error {
	model := models.SettlementDocumentModelFromDomain(doc)
	if err := dbFromContext(ctx, r.db).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save settlement document: %w", err)
	}
	return nil
}

// Update persists changes to an existing document with optimistic locking
func (r *GormDocumentRepository) Update(ctx context.Context, doc *settlement.Document) error {
	model := models.SettlementDocumentModelFromDomain(doc)
	result := dbFromContext(ctx, r.db).
		Model(&models.SettlementDocumentModel{}).
		Where("id = ? AND version = ?", model.ID, model.Version-1).
		Select("*").
		Omit("id", "created_at").
		Updates(model)
	if result.Error != nil {
		return fmt.Errorf("failed to update settlement document: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("CONCURRENT_UPDATE", "Settlement document was modified by another operation")
	}
	return nil
}

// Delete removes a document. The status guard runs in the application layer;
// the repository deletes unconditionally.
func (r *GormDocumentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := dbFromContext(ctx, r.db).Delete(&models.SettlementDocumentModel{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete settlement document: %w", result.Error)
	}
	return nil
}

// FindByID retrieves a document by ID. Returns nil if not found.
func (r *GormDocumentRepository) FindByID(ctx context.Context, id uuid.UUID) (*settlement.Document, error) {
	var model models.SettlementDocumentModel
	err := dbFromContext(ctx, r.db).Where("id = ?", id).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find settlement document by id: %w", err)
	}
	return model.ToDomain(), nil
}

// FindByCode retrieves a document by its voucher code. Returns nil if not found.
func (r *GormDocumentRepository) FindByCode(ctx context.Context, code string) (*settlement.Document, error) {
	var model models.SettlementDocumentModel
	err := dbFromContext(ctx, r.db).Where("code = ?", code).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find settlement document by code: %w", err)
	}
	return model.ToDomain(), nil
}

// FindAll retrieves documents matching the filter with pagination
func (r *GormDocumentRepository) FindAll(ctx context.Context, filter settlement.DocumentFilter) ([]settlement.Document, error) {
	query := r.applyFilter(dbFromContext(ctx, r.db).Model(&models.SettlementDocumentModel{}), filter)

	if filter.PageSize > 0 {
		query = query.Limit(filter.PageSize)
		if filter.Page > 0 {
			query = query.Offset((filter.Page - 1) * filter.PageSize)
		}
	}

	var rows []models.SettlementDocumentModel
	if err := query.Order("voucher_date DESC, code DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to find settlement documents: %w", err)
	}

	docs := make([]settlement.Document, 0, len(rows))
	for i := range rows {
		docs = append(docs, *rows[i].ToDomain())
	}
	return docs, nil
}

// Count returns the number of documents matching the filter
func (r *GormDocumentRepository) Count(ctx context.Context, filter settlement.DocumentFilter) (int64, error) {
	var count int64
	query := r.applyFilter(dbFromContext(ctx, r.db).Model(&models.SettlementDocumentModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count settlement documents: %w", err)
	}
	return count, nil
}

// CountIssuedInMonth counts documents of one kind issued in the given month,
// cancelled ones included so voucher codes are never reused
func (r *GormDocumentRepository) CountIssuedInMonth(ctx context.Context, kind settlement.DocumentKind, year int, month time.Month) (int64, error) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	var count int64
	err := dbFromContext(ctx, r.db).
		Model(&models.SettlementDocumentModel{}).
		Where("kind = ? AND voucher_date >= ? AND voucher_date < ?", string(kind), start, end).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count settlement documents in month: %w", err)
	}
	return count, nil
}

func (r *GormDocumentRepository) applyFilter(query *gorm.DB, filter settlement.DocumentFilter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("LOWER(code) LIKE LOWER(?) OR LOWER(counterparty_name) LIKE LOWER(?)", pattern, pattern)
	}
	if filter.Kind != nil {
		query = query.Where("kind = ?", string(*filter.Kind))
	}
	if filter.Status != nil {
		query = query.Where("status = ?", string(*filter.Status))
	}
	if filter.CounterpartyID != nil {
		query = query.Where("counterparty_id = ?", *filter.CounterpartyID)
	}
	if filter.FromDate != nil {
		query = query.Where("voucher_date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("voucher_date <= ?", *filter.ToDate)
	}
	return query
}
