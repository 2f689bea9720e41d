package payment

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/minimart/backend/internal/domain/inventory"
	"github.com/minimart/backend/internal/domain/order"
	"github.com/minimart/backend/internal/domain/payment"
	"github.com/minimart/backend/internal/domain/shared"
	"github.com/minimart/backend/internal/domain/shared/valueobject"
)

type verificationFixture struct {
	orderRepo   *MockOrderRepository
	paymentRepo *MockPaymentRepository
	stockRepo   *MockStockRepository
	extractor   *MockTextExtractor
	storage     *MockScreenshotStorage
	service     *VerificationService
}

func newVerificationFixture() *verificationFixture {
	f := &verificationFixture{
		orderRepo:   new(MockOrderRepository),
		paymentRepo: new(MockPaymentRepository),
		stockRepo:   new(MockStockRepository),
		extractor:   new(MockTextExtractor),
		storage:     new(MockScreenshotStorage),
	}
	scope := NewNoOpTransactionScope(f.orderRepo, f.paymentRepo, f.stockRepo)
	f.service = NewVerificationService(
		f.orderRepo, f.paymentRepo, scope, f.extractor, f.storage, zap.NewNop())
	return f
}

func usd(t *testing.T, s string) valueobject.Money {
	m, err := valueobject.NewMoneyUSDFromString(s)
	require.NoError(t, err)
	return m
}

// twoLineOrder builds a pending 12.50 order: 2 x 5.00 + 1 x 2.50
func twoLineOrder(t *testing.T, userID uuid.UUID) *order.Order {
	o, err := order.NewOrder(userID, nil, []order.LineInput{
		{ProductID: uuid.New(), Quantity: 2, UnitPrice: usd(t, "5.00")},
		{ProductID: uuid.New(), Quantity: 1, UnitPrice: usd(t, "2.50")},
	})
	require.NoError(t, err)
	return o
}

func uploadReq(o *order.Order, userID uuid.UUID) UploadScreenshotRequest {
	return UploadScreenshotRequest{
		OrderID:     o.ID,
		UserID:      userID,
		Filename:    "receipt.jpg",
		ContentType: "image/jpeg",
		Image:       []byte("fake-image"),
	}
}

func TestUploadScreenshotSuccess(t *testing.T) {
	f := newVerificationFixture()
	userID := uuid.New()
	o := twoLineOrder(t, userID)

	f.orderRepo.On("FindByID", mock.Anything, o.ID).Return(o, nil)
	f.paymentRepo.On("FindByOrder", mock.Anything, o.ID).Return(nil, shared.ErrNotFound)
	f.paymentRepo.On("Save", mock.Anything, mock.Anything).Return(nil)
	f.storage.On("Put", mock.Anything, mock.Anything, "image/jpeg", mock.Anything).
		Return("payments/abc.jpg", nil)
	f.extractor.On("ExtractText", mock.Anything, mock.Anything).
		Return("You received $12.50\nTrx. ID: 43117156234\nOct 19, 2025 | 4:01PM", nil)
	f.paymentRepo.On("ExistsByTransactionID", mock.Anything, "43117156234").Return(false, nil)
	f.orderRepo.On("SaveWithLock", mock.Anything, o).Return(nil)

	stocks := make(map[uuid.UUID]*inventory.Stock)
	for _, line := range o.Lines {
		s, err := inventory.NewStock(line.ProductID, 10)
		require.NoError(t, err)
		stocks[line.ProductID] = s
		f.stockRepo.On("FindByProduct", mock.Anything, line.ProductID).Return(s, nil)
	}
	f.stockRepo.On("SaveWithLock", mock.Anything, mock.Anything).Return(nil)

	resp, err := f.service.UploadScreenshot(t.Context(), uploadReq(o, userID))

	require.NoError(t, err)
	assert.Equal(t, "paid", resp.Status)
	assert.Equal(t, "43117156234", resp.TransactionID)
	require.NotNil(t, resp.TransactionDate)

	assert.Equal(t, order.StatusPaid, o.Status)
	assert.Equal(t, 8, stocks[o.Lines[0].ProductID].Quantity)
	assert.Equal(t, 9, stocks[o.Lines[1].ProductID].Quantity)

	// verified upload keeps its screenshot
	f.storage.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestUploadScreenshotMissingTransactionID(t *testing.T) {
	f := newVerificationFixture()
	userID := uuid.New()
	o := twoLineOrder(t, userID)
	p, err := payment.NewPayment(o.ID, userID, o.Amount)
	require.NoError(t, err)

	f.orderRepo.On("FindByID", mock.Anything, o.ID).Return(o, nil)
	f.paymentRepo.On("FindByOrder", mock.Anything, o.ID).Return(p, nil)
	f.storage.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("payments/abc.jpg", nil)
	f.extractor.On("ExtractText", mock.Anything, mock.Anything).
		Return("thank you for shopping", nil)
	f.storage.On("Delete", mock.Anything, "payments/abc.jpg").Return(nil)

	_, err = f.service.UploadScreenshot(t.Context(), uploadReq(o, userID))

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "MISSING_TRANSACTION_ID", domainErr.Code)

	assert.Equal(t, order.StatusPending, o.Status)
	f.storage.AssertCalled(t, "Delete", mock.Anything, "payments/abc.jpg")
}

func TestUploadScreenshotDuplicateTransaction(t *testing.T) {
	f := newVerificationFixture()
	userID := uuid.New()
	o := twoLineOrder(t, userID)
	p, err := payment.NewPayment(o.ID, userID, o.Amount)
	require.NoError(t, err)

	f.orderRepo.On("FindByID", mock.Anything, o.ID).Return(o, nil)
	f.paymentRepo.On("FindByOrder", mock.Anything, o.ID).Return(p, nil)
	f.storage.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("payments/dup.jpg", nil)
	f.extractor.On("ExtractText", mock.Anything, mock.Anything).
		Return("$12.50 Trx. ID: 43117156234", nil)
	f.paymentRepo.On("ExistsByTransactionID", mock.Anything, "43117156234").Return(true, nil)
	f.storage.On("Delete", mock.Anything, "payments/dup.jpg").Return(nil)

	_, err = f.service.UploadScreenshot(t.Context(), uploadReq(o, userID))

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "DUPLICATE_TRANSACTION", domainErr.Code)
	assert.Contains(t, domainErr.Message, "43117156234")

	assert.Equal(t, order.StatusPending, o.Status)
	f.storage.AssertCalled(t, "Delete", mock.Anything, "payments/dup.jpg")
}

func TestUploadScreenshotAmountMismatch(t *testing.T) {
	f := newVerificationFixture()
	userID := uuid.New()
	o := twoLineOrder(t, userID)
	p, err := payment.NewPayment(o.ID, userID, o.Amount)
	require.NoError(t, err)

	f.orderRepo.On("FindByID", mock.Anything, o.ID).Return(o, nil)
	f.paymentRepo.On("FindByOrder", mock.Anything, o.ID).Return(p, nil)
	f.storage.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("payments/bad.jpg", nil)
	f.extractor.On("ExtractText", mock.Anything, mock.Anything).
		Return("$12.49 Trx. ID: 43117156234", nil)
	f.paymentRepo.On("ExistsByTransactionID", mock.Anything, "43117156234").Return(false, nil)
	f.storage.On("Delete", mock.Anything, "payments/bad.jpg").Return(nil)

	_, err = f.service.UploadScreenshot(t.Context(), uploadReq(o, userID))

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "AMOUNT_MISMATCH", domainErr.Code)
	assert.Contains(t, domainErr.Message, "12.50")

	assert.Equal(t, order.StatusPending, o.Status)
	f.storage.AssertCalled(t, "Delete", mock.Anything, "payments/bad.jpg")
	f.stockRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
}

func TestUploadScreenshotNoTextDetected(t *testing.T) {
	f := newVerificationFixture()
	userID := uuid.New()
	o := twoLineOrder(t, userID)
	p, err := payment.NewPayment(o.ID, userID, o.Amount)
	require.NoError(t, err)

	f.orderRepo.On("FindByID", mock.Anything, o.ID).Return(o, nil)
	f.paymentRepo.On("FindByOrder", mock.Anything, o.ID).Return(p, nil)
	f.storage.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("payments/blank.jpg", nil)
	f.extractor.On("ExtractText", mock.Anything, mock.Anything).Return("", ErrNoTextDetected)
	f.storage.On("Delete", mock.Anything, "payments/blank.jpg").Return(nil)

	_, err = f.service.UploadScreenshot(t.Context(), uploadReq(o, userID))

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "EXTRACTION_FAILED", domainErr.Code)
	f.storage.AssertCalled(t, "Delete", mock.Anything, "payments/blank.jpg")
}

func TestUploadScreenshotOwnershipAndState(t *testing.T) {
	t.Run("foreign order rejected", func(t *testing.T) {
		f := newVerificationFixture()
		o := twoLineOrder(t, uuid.New())
		f.orderRepo.On("FindByID", mock.Anything, o.ID).Return(o, nil)

		_, err := f.service.UploadScreenshot(t.Context(), uploadReq(o, uuid.New()))

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "FORBIDDEN", domainErr.Code)
		f.storage.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("paid order rejected", func(t *testing.T) {
		f := newVerificationFixture()
		userID := uuid.New()
		o := twoLineOrder(t, userID)
		require.NoError(t, o.MarkPaid())
		f.orderRepo.On("FindByID", mock.Anything, o.ID).Return(o, nil)

		_, err := f.service.UploadScreenshot(t.Context(), uploadReq(o, userID))

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_STATE", domainErr.Code)
	})

	t.Run("unknown order", func(t *testing.T) {
		f := newVerificationFixture()
		orderID := uuid.New()
		f.orderRepo.On("FindByID", mock.Anything, orderID).Return(nil, shared.ErrNotFound)

		_, err := f.service.UploadScreenshot(t.Context(), UploadScreenshotRequest{
			OrderID: orderID, UserID: uuid.New(), Image: []byte("x"),
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "NOT_FOUND", domainErr.Code)
	})
}

func TestUploadScreenshotInsufficientStockAtCommit(t *testing.T) {
	f := newVerificationFixture()
	userID := uuid.New()
	o := twoLineOrder(t, userID)
	p, err := payment.NewPayment(o.ID, userID, o.Amount)
	require.NoError(t, err)

	f.orderRepo.On("FindByID", mock.Anything, o.ID).Return(o, nil)
	f.paymentRepo.On("FindByOrder", mock.Anything, o.ID).Return(p, nil)
	f.paymentRepo.On("Save", mock.Anything, p).Return(nil)
	f.storage.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("payments/late.jpg", nil)
	f.extractor.On("ExtractText", mock.Anything, mock.Anything).
		Return("$12.50 Trx. ID: 43117156234", nil)
	f.paymentRepo.On("ExistsByTransactionID", mock.Anything, "43117156234").Return(false, nil)
	f.orderRepo.On("SaveWithLock", mock.Anything, o).Return(nil)

	// first line needs 2 units but only 1 is left
	short, err := inventory.NewStock(o.Lines[0].ProductID, 1)
	require.NoError(t, err)
	f.stockRepo.On("FindByProduct", mock.Anything, o.Lines[0].ProductID).Return(short, nil)
	f.storage.On("Delete", mock.Anything, "payments/late.jpg").Return(nil)

	_, err = f.service.UploadScreenshot(t.Context(), uploadReq(o, userID))

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INSUFFICIENT_STOCK", domainErr.Code)
	f.storage.AssertCalled(t, "Delete", mock.Anything, "payments/late.jpg")
}

// TestUploadScreenshotLosesStockRace plays the losing side of two
// uploads racing over the last unit: the stock write conflicts, the
// retry re-reads the depleted row and reports insufficient stock.
func TestUploadScreenshotLosesStockRace(t *testing.T) {
	f := newVerificationFixture()
	userID := uuid.New()
	productID := uuid.New()
	o, err := order.NewOrder(userID, nil, []order.LineInput{
		{ProductID: productID, Quantity: 1, UnitPrice: usd(t, "12.50")},
	})
	require.NoError(t, err)
	p, err := payment.NewPayment(o.ID, userID, o.Amount)
	require.NoError(t, err)

	// the retry re-reads the order; hand it a still-pending copy, the
	// winner only touched stock
	reread := *o

	f.orderRepo.On("FindByID", mock.Anything, o.ID).Return(o, nil).Twice()
	f.orderRepo.On("FindByID", mock.Anything, o.ID).Return(&reread, nil).Once()
	f.paymentRepo.On("FindByOrder", mock.Anything, o.ID).Return(p, nil)
	f.paymentRepo.On("Save", mock.Anything, p).Return(nil)
	f.storage.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("payments/race.jpg", nil)
	f.extractor.On("ExtractText", mock.Anything, mock.Anything).
		Return("$12.50 Trx. ID: 43117156234", nil)
	f.paymentRepo.On("ExistsByTransactionID", mock.Anything, "43117156234").Return(false, nil)
	f.orderRepo.On("SaveWithLock", mock.Anything, mock.Anything).Return(nil)

	lastUnit, err := inventory.NewStock(productID, 1)
	require.NoError(t, err)
	depleted, err := inventory.NewStock(productID, 0)
	require.NoError(t, err)
	f.stockRepo.On("FindByProduct", mock.Anything, productID).Return(lastUnit, nil).Once()
	f.stockRepo.On("FindByProduct", mock.Anything, productID).Return(depleted, nil).Once()
	f.stockRepo.On("SaveWithLock", mock.Anything, lastUnit).Return(shared.ErrConcurrencyConflict).Once()
	f.storage.On("Delete", mock.Anything, "payments/race.jpg").Return(nil)

	_, err = f.service.UploadScreenshot(t.Context(), uploadReq(o, userID))

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INSUFFICIENT_STOCK", domainErr.Code)
	f.storage.AssertCalled(t, "Delete", mock.Anything, "payments/race.jpg")
}

// A conflict on the second attempt too is surfaced as-is.
func TestUploadScreenshotConflictAfterRetry(t *testing.T) {
	f := newVerificationFixture()
	userID := uuid.New()
	o := twoLineOrder(t, userID)
	p, err := payment.NewPayment(o.ID, userID, o.Amount)
	require.NoError(t, err)

	reread := *o

	f.orderRepo.On("FindByID", mock.Anything, o.ID).Return(o, nil).Twice()
	f.orderRepo.On("FindByID", mock.Anything, o.ID).Return(&reread, nil).Once()
	f.paymentRepo.On("FindByOrder", mock.Anything, o.ID).Return(p, nil)
	f.paymentRepo.On("Save", mock.Anything, p).Return(nil)
	f.storage.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("payments/race.jpg", nil)
	f.extractor.On("ExtractText", mock.Anything, mock.Anything).
		Return("$12.50 Trx. ID: 43117156234", nil)
	f.paymentRepo.On("ExistsByTransactionID", mock.Anything, "43117156234").Return(false, nil)
	f.orderRepo.On("SaveWithLock", mock.Anything, mock.Anything).Return(shared.ErrConcurrencyConflict)
	f.storage.On("Delete", mock.Anything, "payments/race.jpg").Return(nil)

	_, err = f.service.UploadScreenshot(t.Context(), uploadReq(o, userID))

	assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	f.storage.AssertCalled(t, "Delete", mock.Anything, "payments/race.jpg")
}

// TestUploadScreenshotExtractorTimeout treats a slow OCR backend like
// an unreadable screenshot, not a server error.
func TestUploadScreenshotExtractorTimeout(t *testing.T) {
	f := newVerificationFixture()
	userID := uuid.New()
	o := twoLineOrder(t, userID)
	p, err := payment.NewPayment(o.ID, userID, o.Amount)
	require.NoError(t, err)

	f.orderRepo.On("FindByID", mock.Anything, o.ID).Return(o, nil)
	f.paymentRepo.On("FindByOrder", mock.Anything, o.ID).Return(p, nil)
	f.storage.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("payments/slow.jpg", nil)
	f.extractor.On("ExtractText", mock.Anything, mock.Anything).
		Return("", fmt.Errorf("recognize text: %w", context.DeadlineExceeded))
	f.storage.On("Delete", mock.Anything, "payments/slow.jpg").Return(nil)

	_, err = f.service.UploadScreenshot(t.Context(), uploadReq(o, userID))

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "EXTRACTION_FAILED", domainErr.Code)
	f.storage.AssertCalled(t, "Delete", mock.Anything, "payments/slow.jpg")
}

func TestConfirmPayment(t *testing.T) {
	t.Run("confirms and decrements stock", func(t *testing.T) {
		f := newVerificationFixture()
		userID := uuid.New()
		o := twoLineOrder(t, userID)
		p, err := payment.NewPayment(o.ID, userID, o.Amount)
		require.NoError(t, err)

		f.paymentRepo.On("FindByOrder", mock.Anything, o.ID).Return(p, nil)
		f.paymentRepo.On("Save", mock.Anything, p).Return(nil)
		f.orderRepo.On("FindByID", mock.Anything, o.ID).Return(o, nil)
		f.orderRepo.On("SaveWithLock", mock.Anything, o).Return(nil)
		for _, line := range o.Lines {
			s, err := inventory.NewStock(line.ProductID, 5)
			require.NoError(t, err)
			f.stockRepo.On("FindByProduct", mock.Anything, line.ProductID).Return(s, nil)
		}
		f.stockRepo.On("SaveWithLock", mock.Anything, mock.Anything).Return(nil)

		resp, err := f.service.ConfirmPayment(t.Context(), o.ID)

		require.NoError(t, err)
		assert.Equal(t, "paid", resp.Status)
		assert.Equal(t, order.StatusPaid, o.Status)
		assert.Equal(t, payment.StatusPaid, p.Status)
	})

	t.Run("no payment record", func(t *testing.T) {
		f := newVerificationFixture()
		orderID := uuid.New()
		f.paymentRepo.On("FindByOrder", mock.Anything, orderID).Return(nil, shared.ErrNotFound)

		_, err := f.service.ConfirmPayment(t.Context(), orderID)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "NOT_FOUND", domainErr.Code)
	})

	t.Run("already paid order", func(t *testing.T) {
		f := newVerificationFixture()
		userID := uuid.New()
		o := twoLineOrder(t, userID)
		p, err := payment.NewPayment(o.ID, userID, o.Amount)
		require.NoError(t, err)
		require.NoError(t, p.MarkPaid())

		f.paymentRepo.On("FindByOrder", mock.Anything, o.ID).Return(p, nil)
		f.orderRepo.On("FindByID", mock.Anything, o.ID).Return(o, nil)

		_, err = f.service.ConfirmPayment(t.Context(), o.ID)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_STATE", domainErr.Code)
	})
}

func TestRejectPayment(t *testing.T) {
	t.Run("rejects without touching stock", func(t *testing.T) {
		f := newVerificationFixture()
		userID := uuid.New()
		o := twoLineOrder(t, userID)
		p, err := payment.NewPayment(o.ID, userID, o.Amount)
		require.NoError(t, err)

		f.paymentRepo.On("FindByOrder", mock.Anything, o.ID).Return(p, nil)
		f.paymentRepo.On("Save", mock.Anything, p).Return(nil)
		f.orderRepo.On("FindByID", mock.Anything, o.ID).Return(o, nil)
		f.orderRepo.On("SaveWithLock", mock.Anything, o).Return(nil)

		resp, err := f.service.RejectPayment(t.Context(), o.ID, "Wrong account")

		require.NoError(t, err)
		assert.Equal(t, "failed", resp.Status)
		assert.Equal(t, order.StatusFailed, o.Status)
		assert.Equal(t, "Wrong account", o.FailedReason)
		assert.Equal(t, payment.StatusFailed, p.Status)
		f.stockRepo.AssertNotCalled(t, "FindByProduct", mock.Anything, mock.Anything)
	})

	t.Run("default reason", func(t *testing.T) {
		f := newVerificationFixture()
		userID := uuid.New()
		o := twoLineOrder(t, userID)
		p, err := payment.NewPayment(o.ID, userID, o.Amount)
		require.NoError(t, err)

		f.paymentRepo.On("FindByOrder", mock.Anything, o.ID).Return(p, nil)
		f.paymentRepo.On("Save", mock.Anything, p).Return(nil)
		f.orderRepo.On("FindByID", mock.Anything, o.ID).Return(o, nil)
		f.orderRepo.On("SaveWithLock", mock.Anything, o).Return(nil)

		resp, err := f.service.RejectPayment(t.Context(), o.ID, "")

		require.NoError(t, err)
		assert.Contains(t, resp.Message, "Invalid payment")
	})
}
