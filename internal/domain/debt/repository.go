package debt

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Query defines the window of outstanding records to aggregate
type Query struct {
	Search         string
	CounterpartyID *uuid.UUID
	FromDate       *time.Time
	ToDate         *time.Time
	Page           int
	PageSize       int
}

// Repository supplies pages of outstanding records for aging aggregation.
// The aggregator itself never fetches additional pages.
type Repository interface {
	FindOutstanding(ctx context.Context, query Query) ([]OutstandingRecord, int64, error)
}
