package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/printworks/backend/internal/domain/settlement"
	"github.com/printworks/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockDocumentRepository(t *testing.T) (*GormDocumentRepository, sqlmock.Sqlmock, *sql.DB) {
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

	return NewGormDocumentRepository(gormDB), mock, mockDB
}

func documentRow(id uuid.UUID, code, kind, status, amount string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "version", "code", "kind", "status", "amount",
		"voucher_date", "counterparty_name",
	}).AddRow(
		id, 1, code, kind, status, amount,
		time.Now(), "Alpha Print JSC",
	)
}

func TestGormDocumentRepository_FindByCode(t *testing.T) {
	t.Run("finds existing document", func(t *testing.T) {
		repo, mock, mockDB := newMockDocumentRepository(t)
		defer mockDB.Close()

		docID := uuid.New()
		mock.ExpectQuery(`SELECT \* FROM "settlement_documents" WHERE code = \$1 ORDER BY .* LIMIT .*`).
			WithArgs("PT-202608-0001", 1).
			WillReturnRows(documentRow(docID, "PT-202608-0001", "CASH_RECEIPT", "DRAFT", "5000000"))

		doc, err := repo.FindByCode(context.Background(), "PT-202608-0001")

		assert.NoError(t, err)
		require.NotNil(t, doc)
		assert.Equal(t, docID, doc.ID)
		assert.Equal(t, settlement.DocumentKindReceipt, doc.Kind)
		assert.Equal(t, settlement.DocumentStatusDraft, doc.Status)
		assert.True(t, doc.Amount.Equal(decimal.NewFromInt(5000000)))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns nil for missing document", func(t *testing.T) {
		repo, mock, mockDB := newMockDocumentRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "settlement_documents" WHERE code = \$1 ORDER BY .* LIMIT .*`).
			WithArgs("PT-209912-9999", 1).
			WillReturnError(gorm.ErrRecordNotFound)

		doc, err := repo.FindByCode(context.Background(), "PT-209912-9999")

		assert.NoError(t, err)
		assert.Nil(t, doc)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormDocumentRepository_Update(t *testing.T) {
	t.Run("matches previous version", func(t *testing.T) {
		repo, mock, mockDB := newMockDocumentRepository(t)
		defer mockDB.Close()

		doc := &settlement.Document{
			BaseAggregateRoot: shared.NewBaseAggregateRoot(),
			Code:              "PC-202608-0001",
			Kind:              settlement.DocumentKindPayment,
			Status:            settlement.DocumentStatusApproved,
			Amount:            decimal.NewFromInt(1200000),
			VoucherDate:       time.Now(),
			CounterpartyName:  "Beta Packaging",
		}
		doc.Version = 2

		mock.ExpectExec(`UPDATE "settlement_documents" SET .* WHERE id = \$\d+ AND version = \$\d+`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Update(context.Background(), doc)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("reports concurrent modification", func(t *testing.T) {
		repo, mock, mockDB := newMockDocumentRepository(t)
		defer mockDB.Close()

		doc := &settlement.Document{
			BaseAggregateRoot: shared.NewBaseAggregateRoot(),
			Code:              "PC-202608-0001",
			Kind:              settlement.DocumentKindPayment,
			Status:            settlement.DocumentStatusApproved,
			Amount:            decimal.NewFromInt(1200000),
			VoucherDate:       time.Now(),
			CounterpartyName:  "Beta Packaging",
		}
		doc.Version = 2

		mock.ExpectExec(`UPDATE "settlement_documents" SET .* WHERE id = \$\d+ AND version = \$\d+`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Update(context.Background(), doc)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "CONCURRENT_UPDATE", domainErr.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormDocumentRepository_CountIssuedInMonth(t *testing.T) {
	repo, mock, mockDB := newMockDocumentRepository(t)
	defer mockDB.Close()

	mock.ExpectQuery(`SELECT count\(\*\) FROM "settlement_documents" WHERE kind = \$1 AND voucher_date >= \$2 AND voucher_date < \$3`).
		WithArgs("CASH_RECEIPT", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(11))

	count, err := repo.CountIssuedInMonth(context.Background(), settlement.DocumentKindReceipt, 2026, time.August)

	assert.NoError(t, err)
	assert.Equal(t, int64(11), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormDocumentRepository_FindAll(t *testing.T) {
	repo, mock, mockDB := newMockDocumentRepository(t)
	defer mockDB.Close()

	kind := settlement.DocumentKindReceipt
	mock.ExpectQuery(`SELECT \* FROM "settlement_documents" WHERE kind = \$1 .*ORDER BY voucher_date DESC, code DESC LIMIT .*`).
		WillReturnRows(documentRow(uuid.New(), "PT-202608-0002", "CASH_RECEIPT", "POSTED", "750000"))

	docs, err := repo.FindAll(context.Background(), settlement.DocumentFilter{
		Kind:     &kind,
		Page:     1,
		PageSize: 20,
	})

	assert.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "PT-202608-0002", docs[0].Code)
	assert.Equal(t, settlement.DocumentStatusPosted, docs[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}
