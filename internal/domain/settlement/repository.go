package settlement

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// DocumentFilter defines filtering options for settlement document queries
type DocumentFilter struct {
	Search         string
	Kind           *DocumentKind
	Status         *DocumentStatus
	CounterpartyID *uuid.UUID
	FromDate       *time.Time
	ToDate         *time.Time
	Page           int
	PageSize       int
}

// DocumentRepository provides persistence for settlement documents
type DocumentRepository interface {
	Save(ctx context.Context, doc *Document) error
	Update(ctx context.Context, doc *Document) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*Document, error)
	FindByCode(ctx context.Context, code string) (*Document, error)
	FindAll(ctx context.Context, filter DocumentFilter) ([]Document, error)
	Count(ctx context.Context, filter DocumentFilter) (int64, error)
	CountIssuedInMonth(ctx context.Context, kind DocumentKind, year int, month time.Month) (int64, error)
}
