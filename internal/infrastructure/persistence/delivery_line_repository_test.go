package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/printworks/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockDeliveryLineRepository(t *testing.T) (*GormDeliveryLineRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormDeliveryLineRepository(gormDB), mock, mockDB
}

func TestGormDeliveryLineRepository_FindBillable(t *testing.T) {
	t.Run("maps rows to billable items with remaining quantity", func(t *testing.T) {
		repo, mock, mockDB := newMockDeliveryLineRepository(t)
		defer mockDB.Close()

		lineID := uuid.New()
		customerID := uuid.New()

		rows := sqlmock.NewRows([]string{
			"id", "created_at", "updated_at", "order_id", "order_number",
			"customer_id", "customer_name", "product_name", "unit",
			"unit_price", "delivered_qty", "invoiced_qty",
		}).AddRow(
			lineID, time.Now(), time.Now(), uuid.New(), "SO-2026-0101",
			customerID, "Alpha Print JSC", "Business cards 300gsm", "box",
			"250000", 10, 3,
		)

		mock.ExpectQuery(`SELECT \* FROM "delivery_lines" WHERE delivered_qty > invoiced_qty AND customer_id = \$1 ORDER BY created_at ASC`).
			WithArgs(customerID).
			WillReturnRows(rows)

		items, err := repo.FindBillable(context.Background(), &customerID)

		assert.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, lineID, items[0].DeliveryLineID)
		assert.Equal(t, "SO-2026-0101", items[0].OrderNumber)
		assert.Equal(t, int64(7), items[0].RemainingToInvoice)
		assert.True(t, items[0].UnitPrice.Equal(decimal.NewFromInt(250000)))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormDeliveryLineRepository_FindByLineIDs(t *testing.T) {
	t.Run("returns empty slice without querying for no ids", func(t *testing.T) {
		repo, mock, mockDB := newMockDeliveryLineRepository(t)
		defer mockDB.Close()

		items, err := repo.FindByLineIDs(context.Background(), nil)

		assert.NoError(t, err)
		assert.Empty(t, items)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormDeliveryLineRepository_ConsumeInvoicedQty(t *testing.T) {
	t.Run("advances invoiced quantity", func(t *testing.T) {
		repo, mock, mockDB := newMockDeliveryLineRepository(t)
		defer mockDB.Close()

		lineID := uuid.New()
		mock.ExpectExec(`UPDATE "delivery_lines" SET .*invoiced_qty.*WHERE id = \$\d+ AND delivered_qty - invoiced_qty >= \$\d+`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.ConsumeInvoicedQty(context.Background(), lineID, 5)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects consuming more than remaining", func(t *testing.T) {
		repo, mock, mockDB := newMockDeliveryLineRepository(t)
		defer mockDB.Close()

		lineID := uuid.New()
		mock.ExpectExec(`UPDATE "delivery_lines" SET .*invoiced_qty.*WHERE id = \$\d+ AND delivered_qty - invoiced_qty >= \$\d+`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.ConsumeInvoicedQty(context.Background(), lineID, 99)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INSUFFICIENT_REMAINING", domainErr.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		repo, _, mockDB := newMockDeliveryLineRepository(t)
		defer mockDB.Close()

		err := repo.ConsumeInvoicedQty(context.Background(), uuid.New(), 0)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_QUANTITY", domainErr.Code)
	})
}
