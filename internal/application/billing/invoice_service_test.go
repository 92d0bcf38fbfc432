package billing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/printworks/backend/internal/domain/billing"
	"github.com/printworks/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Mock Repositories
// =============================================================================

type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) Save(ctx context.Context, invoice *billing.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) Update(ctx context.Context, invoice *billing.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByNumber(ctx context.Context, invoiceNumber string) (*billing.Invoice, error) {
	args := m.Called(ctx, invoiceNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindAll(ctx context.Context, filter billing.InvoiceFilter) ([]billing.Invoice, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) Count(ctx context.Context, filter billing.InvoiceFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInvoiceRepository) CountIssuedInMonth(ctx context.Context, year int, month time.Month) (int64, error) {
	args := m.Called(ctx, year, month)
	return args.Get(0).(int64), args.Error(1)
}

type MockBillableItemRepository struct {
	mock.Mock
}

func (m *MockBillableItemRepository) FindBillable(ctx context.Context, customerID *uuid.UUID) ([]billing.BillableItem, error) {
	args := m.Called(ctx, customerID)
	return args.Get(0).([]billing.BillableItem), args.Error(1)
}

func (m *MockBillableItemRepository) FindByLineIDs(ctx context.Context, lineIDs []uuid.UUID) ([]billing.BillableItem, error) {
	args := m.Called(ctx, lineIDs)
	return args.Get(0).([]billing.BillableItem), args.Error(1)
}

func (m *MockBillableItemRepository) ConsumeInvoicedQty(ctx context.Context, lineID uuid.UUID, qty int64) error {
	args := m.Called(ctx, lineID, qty)
	return args.Error(0)
}

// stubTransactor runs the callback directly and counts how often a
// transaction was opened.
type stubTransactor struct {
	calls int
}

func (s *stubTransactor) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	s.calls++
	return fn(ctx)
}

// =============================================================================
// Helpers
// =============================================================================

func newService() (*InvoiceService, *MockInvoiceRepository, *MockBillableItemRepository) {
	svc, invoiceRepo, itemRepo, _ := newServiceWithTx()
	return svc, invoiceRepo, itemRepo
}

func newServiceWithTx() (*InvoiceService, *MockInvoiceRepository, *MockBillableItemRepository, *stubTransactor) {
	invoiceRepo := new(MockInvoiceRepository)
	itemRepo := new(MockBillableItemRepository)
	tx := &stubTransactor{}
	return NewInvoiceService(invoiceRepo, itemRepo, tx), invoiceRepo, itemRepo, tx
}

func billableItem(price int64, remaining int64) billing.BillableItem {
	return billing.BillableItem{
		DeliveryLineID:     uuid.New(),
		OrderID:            uuid.New(),
		OrderNumber:        "SO-202608-0001",
		ProductName:        "Business cards 300gsm",
		Unit:               "box",
		UnitPrice:          decimal.NewFromInt(price),
		RemainingToInvoice: remaining,
	}
}

func assertDomainCode(t *testing.T, err error, code string) {
	t.Helper()
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, code, domainErr.Code)
}

// =============================================================================
// Tests
// =============================================================================

func TestListBillableItems(t *testing.T) {
	svc, _, itemRepo := newService()
	item := billableItem(100000, 10)
	itemRepo.On("FindBillable", mock.Anything, (*uuid.UUID)(nil)).
		Return([]billing.BillableItem{item}, nil)

	items, err := svc.ListBillableItems(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, item.DeliveryLineID, items[0].DeliveryLineID)
	assert.Equal(t, int64(10), items[0].RemainingToInvoice)
	itemRepo.AssertExpectations(t)
}

func TestPreviewTotals(t *testing.T) {
	svc, _, itemRepo := newService()
	item := billableItem(100000, 10)
	itemRepo.On("FindByLineIDs", mock.Anything, []uuid.UUID{item.DeliveryLineID}).
		Return([]billing.BillableItem{item}, nil)

	resp, err := svc.PreviewTotals(context.Background(), PreviewTotalsRequest{
		Lines:         []InvoiceLineRequest{{DeliveryLineID: item.DeliveryLineID, Quantity: 10}},
		DiscountKind:  "PERCENT",
		DiscountValue: decimal.NewFromInt(10),
	})
	require.NoError(t, err)

	// 10 x 100,000 = 1,000,000; -10% = 900,000; +10% VAT = 990,000
	assert.True(t, resp.SubTotal.Equal(decimal.NewFromInt(1000000)))
	assert.True(t, resp.DiscountValue.Equal(decimal.NewFromInt(100000)))
	assert.True(t, resp.TotalAfterDiscount.Equal(decimal.NewFromInt(900000)))
	assert.True(t, resp.TaxValue.Equal(decimal.NewFromInt(90000)))
	assert.True(t, resp.GrandTotal.Equal(decimal.NewFromInt(990000)))
}

func TestPreviewTotals_ClampsRequestedQuantity(t *testing.T) {
	svc, _, itemRepo := newService()
	item := billableItem(50000, 3)
	itemRepo.On("FindByLineIDs", mock.Anything, mock.Anything).
		Return([]billing.BillableItem{item}, nil)

	resp, err := svc.PreviewTotals(context.Background(), PreviewTotalsRequest{
		Lines: []InvoiceLineRequest{{DeliveryLineID: item.DeliveryLineID, Quantity: 99}},
	})
	require.NoError(t, err)

	require.Len(t, resp.Lines, 1)
	assert.Equal(t, int64(3), resp.Lines[0].InvoiceQty)
	assert.True(t, resp.Lines[0].Gross.Equal(decimal.NewFromInt(150000)))
}

func TestPreviewTotals_UnresolvedLineContributesZero(t *testing.T) {
	svc, _, itemRepo := newService()
	itemRepo.On("FindByLineIDs", mock.Anything, mock.Anything).
		Return([]billing.BillableItem{}, nil)

	resp, err := svc.PreviewTotals(context.Background(), PreviewTotalsRequest{
		Lines: []InvoiceLineRequest{{DeliveryLineID: uuid.New(), Quantity: 5}},
	})
	require.NoError(t, err)
	require.Len(t, resp.Lines, 1)
	assert.True(t, resp.SubTotal.IsZero())
	assert.True(t, resp.GrandTotal.IsZero())
}

func TestCreateInvoice(t *testing.T) {
	svc, invoiceRepo, itemRepo := newService()
	item := billableItem(100000, 10)
	customerID := uuid.New()

	itemRepo.On("FindByLineIDs", mock.Anything, mock.Anything).
		Return([]billing.BillableItem{item}, nil)
	issueDate := time.Date(2026, time.August, 15, 0, 0, 0, 0, time.UTC)
	invoiceRepo.On("CountIssuedInMonth", mock.Anything, 2026, time.August).
		Return(int64(6), nil)
	invoiceRepo.On("Save", mock.Anything, mock.AnythingOfType("*billing.Invoice")).
		Return(nil)
	itemRepo.On("ConsumeInvoicedQty", mock.Anything, item.DeliveryLineID, int64(10)).
		Return(nil)

	resp, err := svc.CreateInvoice(context.Background(), CreateInvoiceRequest{
		CustomerID:    customerID,
		CustomerName:  "Cong ty TNHH In An Phat",
		Lines:         []InvoiceLineRequest{{DeliveryLineID: item.DeliveryLineID, Quantity: 10}},
		DiscountKind:  "PERCENT",
		DiscountValue: decimal.NewFromInt(10),
		IssueDate:     &issueDate,
	})
	require.NoError(t, err)

	assert.Equal(t, "INV-202608-0007", resp.InvoiceNumber)
	assert.Equal(t, "PENDING", resp.Status)
	assert.True(t, resp.GrandTotal.Equal(decimal.NewFromInt(990000)))
	assert.True(t, resp.RemainingAmount.Equal(resp.GrandTotal))
	invoiceRepo.AssertExpectations(t)
	itemRepo.AssertExpectations(t)
}

func TestCreateInvoice_DuplicateLineRejected(t *testing.T) {
	svc, invoiceRepo, itemRepo := newService()
	lineID := uuid.New()

	_, err := svc.CreateInvoice(context.Background(), CreateInvoiceRequest{
		CustomerID:   uuid.New(),
		CustomerName: "Khach le",
		Lines: []InvoiceLineRequest{
			{DeliveryLineID: lineID, Quantity: 2},
			{DeliveryLineID: lineID, Quantity: 3},
		},
	})
	assertDomainCode(t, err, "DUPLICATE_LINE")
	itemRepo.AssertNotCalled(t, "FindByLineIDs", mock.Anything, mock.Anything)
	invoiceRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestPreviewTotals_DuplicateLineRejected(t *testing.T) {
	svc, _, _ := newService()
	lineID := uuid.New()

	_, err := svc.PreviewTotals(context.Background(), PreviewTotalsRequest{
		Lines: []InvoiceLineRequest{
			{DeliveryLineID: lineID, Quantity: 1},
			{DeliveryLineID: lineID, Quantity: 1},
		},
	})
	assertDomainCode(t, err, "DUPLICATE_LINE")
}

func TestCreateInvoice_SaveAndConsumeShareTransaction(t *testing.T) {
	svc, invoiceRepo, itemRepo, tx := newServiceWithTx()
	item := billableItem(100000, 10)

	itemRepo.On("FindByLineIDs", mock.Anything, mock.Anything).
		Return([]billing.BillableItem{item}, nil)
	invoiceRepo.On("CountIssuedInMonth", mock.Anything, mock.Anything, mock.Anything).
		Return(int64(0), nil)
	invoiceRepo.On("Save", mock.Anything, mock.Anything).Return(nil)
	itemRepo.On("ConsumeInvoicedQty", mock.Anything, item.DeliveryLineID, int64(10)).
		Return(nil)

	_, err := svc.CreateInvoice(context.Background(), CreateInvoiceRequest{
		CustomerID:   uuid.New(),
		CustomerName: "Khach le",
		Lines:        []InvoiceLineRequest{{DeliveryLineID: item.DeliveryLineID, Quantity: 10}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, tx.calls)
}

func TestCreateInvoice_ConsumeFailureAbortsCreation(t *testing.T) {
	svc, invoiceRepo, itemRepo, tx := newServiceWithTx()
	item := billableItem(100000, 10)
	consumeErr := shared.NewDomainError("INSUFFICIENT_REMAINING", "Delivery line already invoiced")

	itemRepo.On("FindByLineIDs", mock.Anything, mock.Anything).
		Return([]billing.BillableItem{item}, nil)
	invoiceRepo.On("CountIssuedInMonth", mock.Anything, mock.Anything, mock.Anything).
		Return(int64(0), nil)
	invoiceRepo.On("Save", mock.Anything, mock.Anything).Return(nil)
	itemRepo.On("ConsumeInvoicedQty", mock.Anything, item.DeliveryLineID, int64(10)).
		Return(consumeErr)

	_, err := svc.CreateInvoice(context.Background(), CreateInvoiceRequest{
		CustomerID:   uuid.New(),
		CustomerName: "Khach le",
		Lines:        []InvoiceLineRequest{{DeliveryLineID: item.DeliveryLineID, Quantity: 10}},
	})
	assertDomainCode(t, err, "INSUFFICIENT_REMAINING")
	assert.Equal(t, 1, tx.calls)
}

func TestCreateInvoice_EmptyLinesRejected(t *testing.T) {
	svc, _, itemRepo := newService()
	itemRepo.On("FindByLineIDs", mock.Anything, mock.Anything).
		Return([]billing.BillableItem{}, nil)

	_, err := svc.CreateInvoice(context.Background(), CreateInvoiceRequest{
		CustomerID:   uuid.New(),
		CustomerName: "Khach le",
		Lines:        []InvoiceLineRequest{},
	})
	assertDomainCode(t, err, "NO_LINES")
}

func TestCreateInvoice_UnknownDiscountKindRejected(t *testing.T) {
	svc, _, itemRepo := newService()
	item := billableItem(100000, 10)
	itemRepo.On("FindByLineIDs", mock.Anything, mock.Anything).
		Return([]billing.BillableItem{item}, nil)

	_, err := svc.CreateInvoice(context.Background(), CreateInvoiceRequest{
		CustomerID:   uuid.New(),
		CustomerName: "Khach le",
		Lines:        []InvoiceLineRequest{{DeliveryLineID: item.DeliveryLineID, Quantity: 1}},
		DiscountKind: "BOGOF",
	})
	assertDomainCode(t, err, "INVALID_ORDER_DISCOUNT")
}

func TestCreateInvoice_RepositoryErrorSurfaced(t *testing.T) {
	svc, invoiceRepo, itemRepo := newService()
	item := billableItem(100000, 10)
	repoErr := errors.New("connection reset")

	itemRepo.On("FindByLineIDs", mock.Anything, mock.Anything).
		Return([]billing.BillableItem{item}, nil)
	invoiceRepo.On("CountIssuedInMonth", mock.Anything, mock.Anything, mock.Anything).
		Return(int64(0), nil)
	invoiceRepo.On("Save", mock.Anything, mock.Anything).Return(repoErr)

	_, err := svc.CreateInvoice(context.Background(), CreateInvoiceRequest{
		CustomerID:   uuid.New(),
		CustomerName: "Khach le",
		Lines:        []InvoiceLineRequest{{DeliveryLineID: item.DeliveryLineID, Quantity: 1}},
	})
	assert.ErrorIs(t, err, repoErr)
}

func TestRecordPayment_Partial(t *testing.T) {
	svc, invoiceRepo, _ := newService()
	invoice := issuedInvoice(t, 990000)

	invoiceRepo.On("FindByID", mock.Anything, invoice.ID).Return(invoice, nil)
	invoiceRepo.On("Update", mock.Anything, invoice).Return(nil)

	resp, err := svc.RecordPayment(context.Background(), invoice.ID, RecordPaymentRequest{
		Kind:       "PARTIAL",
		Amount:     "490000",
		DocumentID: uuid.New(),
	})
	require.NoError(t, err)
	assert.Equal(t, "PARTIAL", resp.Status)
	assert.True(t, resp.RemainingAmount.Equal(decimal.NewFromInt(500000)))
}

func TestRecordPayment_FullSettles(t *testing.T) {
	svc, invoiceRepo, _ := newService()
	invoice := issuedInvoice(t, 990000)

	invoiceRepo.On("FindByID", mock.Anything, invoice.ID).Return(invoice, nil)
	invoiceRepo.On("Update", mock.Anything, invoice).Return(nil)

	resp, err := svc.RecordPayment(context.Background(), invoice.ID, RecordPaymentRequest{
		Kind:       "FULL",
		DocumentID: uuid.New(),
	})
	require.NoError(t, err)
	assert.Equal(t, "PAID", resp.Status)
	assert.True(t, resp.RemainingAmount.IsZero())
}

func TestRecordPayment_OverpaymentRejected(t *testing.T) {
	svc, invoiceRepo, _ := newService()
	invoice := issuedInvoice(t, 990000)
	invoiceRepo.On("FindByID", mock.Anything, invoice.ID).Return(invoice, nil)

	_, err := svc.RecordPayment(context.Background(), invoice.ID, RecordPaymentRequest{
		Kind:       "PARTIAL",
		Amount:     "1000000",
		DocumentID: uuid.New(),
	})
	assertDomainCode(t, err, "EXCEEDS_REMAINING")
	invoiceRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestRecordPayment_UnparseableAmountRejected(t *testing.T) {
	svc, invoiceRepo, _ := newService()
	invoice := issuedInvoice(t, 990000)
	invoiceRepo.On("FindByID", mock.Anything, invoice.ID).Return(invoice, nil)

	_, err := svc.RecordPayment(context.Background(), invoice.ID, RecordPaymentRequest{
		Kind:       "PARTIAL",
		Amount:     "abc",
		DocumentID: uuid.New(),
	})
	assertDomainCode(t, err, "INVALID_AMOUNT")
}

func TestRecordPayment_UnknownKindRejected(t *testing.T) {
	svc, invoiceRepo, _ := newService()
	invoice := issuedInvoice(t, 990000)
	invoiceRepo.On("FindByID", mock.Anything, invoice.ID).Return(invoice, nil)

	_, err := svc.RecordPayment(context.Background(), invoice.ID, RecordPaymentRequest{
		Kind:       "INSTALLMENT",
		DocumentID: uuid.New(),
	})
	assertDomainCode(t, err, "INVALID_PAYMENT_KIND")
}

func TestRecordPayment_InvoiceNotFound(t *testing.T) {
	svc, invoiceRepo, _ := newService()
	id := uuid.New()
	invoiceRepo.On("FindByID", mock.Anything, id).Return(nil, nil)

	_, err := svc.RecordPayment(context.Background(), id, RecordPaymentRequest{
		Kind:       "FULL",
		DocumentID: uuid.New(),
	})
	assertDomainCode(t, err, "NOT_FOUND")
}

func TestCancelInvoice(t *testing.T) {
	svc, invoiceRepo, _ := newService()
	invoice := issuedInvoice(t, 990000)

	invoiceRepo.On("FindByID", mock.Anything, invoice.ID).Return(invoice, nil)
	invoiceRepo.On("Update", mock.Anything, invoice).Return(nil)

	resp, err := svc.CancelInvoice(context.Background(), invoice.ID, "duplicate entry")
	require.NoError(t, err)
	assert.Equal(t, "CANCELLED", resp.Status)
	assert.True(t, resp.RemainingAmount.IsZero())
}

func TestListInvoices_InvalidStatusFilter(t *testing.T) {
	svc, _, _ := newService()
	_, _, err := svc.ListInvoices(context.Background(), InvoiceListFilter{Status: "SHIPPED"})
	assertDomainCode(t, err, "INVALID_STATUS")
}

// issuedInvoice builds a pending invoice with the given grand total
// (price x 1 at 10% VAT, price chosen so the total lands on the target).
func issuedInvoice(t *testing.T, grandTotal int64) *billing.Invoice {
	t.Helper()
	item := billableItem(grandTotal*10/11, 1)
	draft := billing.NewInvoiceDraft()
	draft.Selection = draft.Selection.Toggle(item)

	invoice, err := billing.NewInvoice(
		"INV-202608-0001",
		uuid.New(),
		"Cong ty TNHH In An Phat",
		nil,
		draft,
		billing.SnapshotOf([]billing.BillableItem{item}),
		time.Now(),
		nil,
	)
	require.NoError(t, err)
	require.True(t, invoice.GrandTotal.Equal(decimal.NewFromInt(grandTotal)))
	return invoice
}
