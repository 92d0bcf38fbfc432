package persistence

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockDatabase(t *testing.T) (*Database, sqlmock.Sqlmock, *sql.DB) {
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

	return &Database{DB: gormDB}, mock, mockDB
}

func TestDatabase_Transaction(t *testing.T) {
	t.Run("repository calls join the transaction", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		repo := NewGormDeliveryLineRepository(db.DB)
		lineID := uuid.New()

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "delivery_lines" SET .*invoiced_qty.*WHERE id = \$\d+ AND delivered_qty - invoiced_qty >= \$\d+`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := db.Transaction(context.Background(), func(txCtx context.Context) error {
			return repo.ConsumeInvoicedQty(txCtx, lineID, 2)
		})

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error from the callback rolls back", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		boom := errors.New("consume failed")
		mock.ExpectBegin()
		mock.ExpectRollback()

		err := db.Transaction(context.Background(), func(txCtx context.Context) error {
			return boom
		})

		assert.ErrorIs(t, err, boom)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDBFromContext(t *testing.T) {
	db, _, mockDB := newMockDatabase(t)
	defer mockDB.Close()

	t.Run("returns fallback connection without a transaction", func(t *testing.T) {
		got := dbFromContext(context.Background(), db.DB)
		assert.NotNil(t, got)
	})

	t.Run("returns the transaction handle when present", func(t *testing.T) {
		tx := db.DB.Session(&gorm.Session{})
		ctx := context.WithValue(context.Background(), txContextKey{}, tx)
		assert.Same(t, tx, dbFromContext(ctx, db.DB))
	})
}
