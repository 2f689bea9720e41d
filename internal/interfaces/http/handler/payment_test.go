package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apppayment "github.com/minimart/backend/internal/application/payment"
	"github.com/minimart/backend/internal/domain/inventory"
	"github.com/minimart/backend/internal/domain/order"
	"github.com/minimart/backend/internal/domain/payment"
	"github.com/minimart/backend/internal/domain/shared"
	"github.com/minimart/backend/internal/infrastructure/auth"
	"github.com/minimart/backend/internal/interfaces/http/middleware"
)

// fakeExtractor returns a canned OCR result
type fakeExtractor struct {
	text string
	err  error
}

func (f *fakeExtractor) ExtractText(ctx context.Context, image []byte) (string, error) {
	return f.text, f.err
}

// fakeStorage keeps screenshots in memory so tests can assert whether a
// rejected upload was cleaned up
type fakeStorage struct {
	mu    sync.Mutex
	files map[string][]byte
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{files: make(map[string][]byte)}
}

func (f *fakeStorage) Put(ctx context.Context, name, contentType string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files[name] = data
	return name, nil
}

func (f *fakeStorage) Delete(ctx context.Context, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.files, path)
	return nil
}

func (f *fakeStorage) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.files)
}

type paymentHandlerFixture struct {
	router      *gin.Engine
	handler     *PaymentHandler
	orderRepo   *MockOrderRepository
	paymentRepo *MockPaymentRepository
	stockRepo   *MockStockRepository
	extractor   *fakeExtractor
	storage     *fakeStorage
}

func setupPaymentHandler(userID uuid.UUID, admin bool, ocrText string) *paymentHandlerFixture {
	gin.SetMode(gin.TestMode)

	orderRepo := new(MockOrderRepository)
	paymentRepo := new(MockPaymentRepository)
	stockRepo := new(MockStockRepository)
	extractor := &fakeExtractor{text: ocrText}
	storage := newFakeStorage()

	txScope := apppayment.NewNoOpTransactionScope(orderRepo, paymentRepo, stockRepo)
	service := apppayment.NewVerificationService(
		orderRepo, paymentRepo, txScope, extractor, storage, zap.NewNop())
	handler := NewPaymentHandler(service, false)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		role := auth.RoleCustomer
		if admin {
			role = auth.RoleAdmin
		}
		c.Set(middleware.JWTClaimsKey, &auth.Claims{UserID: userID.String(), Role: role})
		c.Set(middleware.JWTUserIDKey, userID.String())
		c.Next()
	})

	return &paymentHandlerFixture{
		router:      router,
		handler:     handler,
		orderRepo:   orderRepo,
		paymentRepo: paymentRepo,
		stockRepo:   stockRepo,
		extractor:   extractor,
		storage:     storage,
	}
}

func screenshotRequest(t *testing.T, url string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	header := make(map[string][]string)
	header["Content-Disposition"] = []string{`form-data; name="screenshot"; filename="proof.jpg"`}
	header["Content-Type"] = []string{"image/jpeg"}
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write([]byte("fake image bytes"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req, err := http.NewRequest(http.MethodPost, url, &body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func newPendingOrderForUser(t *testing.T, userID uuid.UUID, quantity int) *order.Order {
	t.Helper()
	o, err := order.NewOrder(userID, nil, []order.LineInput{
		{ProductID: uuid.New(), Quantity: quantity, UnitPrice: mustMoney(t, "6.25")},
	})
	require.NoError(t, err)
	return o
}

func TestPaymentHandler_UploadScreenshot(t *testing.T) {
	t.Run("verifies matching screenshot and marks order paid", func(t *testing.T) {
		userID := uuid.New()
		text := "You received $12.50\nTrx ID: 100012345678\nOct 19, 2025 | 4:01PM"
		f := setupPaymentHandler(userID, false, text)
		f.router.POST("/orders/:id/payment-screenshot", f.handler.UploadScreenshot)

		o := newPendingOrderForUser(t, userID, 2)
		stock, err := inventory.NewStock(o.Lines[0].ProductID, 10)
		require.NoError(t, err)

		f.orderRepo.On("FindByID", mock.Anything, o.ID).Return(o, nil)
		f.paymentRepo.On("FindByOrder", mock.Anything, o.ID).Return(nil, shared.ErrNotFound)
		f.paymentRepo.On("Save", mock.Anything, mock.Anything).Return(nil)
		f.paymentRepo.On("ExistsByTransactionID", mock.Anything, "100012345678").Return(false, nil)
		f.orderRepo.On("SaveWithLock", mock.Anything, mock.Anything).Return(nil)
		f.stockRepo.On("FindByProduct", mock.Anything, o.Lines[0].ProductID).Return(stock, nil)
		f.stockRepo.On("SaveWithLock", mock.Anything, mock.Anything).Return(nil)

		w := httptest.NewRecorder()
		f.router.ServeHTTP(w, screenshotRequest(t, "/orders/"+o.ID.String()+"/payment-screenshot"))

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.True(t, response["success"].(bool))
		data := response["data"].(map[string]interface{})
		assert.Equal(t, "paid", data["status"])
		assert.Equal(t, "100012345678", data["transaction_id"])

		assert.Equal(t, 8, stock.Quantity)
		assert.Equal(t, 1, f.storage.count(), "verified screenshot should be kept")
		f.paymentRepo.AssertExpectations(t)
	})

	t.Run("rejects reused transaction ID with 409 and deletes screenshot", func(t *testing.T) {
		userID := uuid.New()
		text := "You received $12.50\nTrx ID: 100012345678"
		f := setupPaymentHandler(userID, false, text)
		f.router.POST("/orders/:id/payment-screenshot", f.handler.UploadScreenshot)

		o := newPendingOrderForUser(t, userID, 2)
		f.orderRepo.On("FindByID", mock.Anything, o.ID).Return(o, nil)
		f.paymentRepo.On("FindByOrder", mock.Anything, o.ID).Return(nil, shared.ErrNotFound)
		f.paymentRepo.On("Save", mock.Anything, mock.Anything).Return(nil)
		f.paymentRepo.On("ExistsByTransactionID", mock.Anything, "100012345678").Return(true, nil)

		w := httptest.NewRecorder()
		f.router.ServeHTTP(w, screenshotRequest(t, "/orders/"+o.ID.String()+"/payment-screenshot"))

		assert.Equal(t, http.StatusConflict, w.Code)

		var response map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		errInfo := response["error"].(map[string]interface{})
		assert.Equal(t, "ERR_DUPLICATE_TRANSACTION", errInfo["code"])

		assert.Equal(t, 0, f.storage.count(), "rejected screenshot should be deleted")
	})

	t.Run("rejects amount mismatch with 422", func(t *testing.T) {
		userID := uuid.New()
		text := "You received $99.00\nTrx ID: 100012345678"
		f := setupPaymentHandler(userID, false, text)
		f.router.POST("/orders/:id/payment-screenshot", f.handler.UploadScreenshot)

		o := newPendingOrderForUser(t, userID, 2)
		f.orderRepo.On("FindByID", mock.Anything, o.ID).Return(o, nil)
		f.paymentRepo.On("FindByOrder", mock.Anything, o.ID).Return(nil, shared.ErrNotFound)
		f.paymentRepo.On("Save", mock.Anything, mock.Anything).Return(nil)
		f.paymentRepo.On("ExistsByTransactionID", mock.Anything, "100012345678").Return(false, nil)

		w := httptest.NewRecorder()
		f.router.ServeHTTP(w, screenshotRequest(t, "/orders/"+o.ID.String()+"/payment-screenshot"))

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

		var response map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		errInfo := response["error"].(map[string]interface{})
		assert.Equal(t, "ERR_AMOUNT_MISMATCH", errInfo["code"])
		assert.Equal(t, 0, f.storage.count())
	})

	t.Run("rejects screenshot with no transaction ID with 422", func(t *testing.T) {
		userID := uuid.New()
		f := setupPaymentHandler(userID, false, "You received $12.50 thank you")
		f.router.POST("/orders/:id/payment-screenshot", f.handler.UploadScreenshot)

		o := newPendingOrderForUser(t, userID, 2)
		f.orderRepo.On("FindByID", mock.Anything, o.ID).Return(o, nil)
		f.paymentRepo.On("FindByOrder", mock.Anything, o.ID).Return(nil, shared.ErrNotFound)
		f.paymentRepo.On("Save", mock.Anything, mock.Anything).Return(nil)

		w := httptest.NewRecorder()
		f.router.ServeHTTP(w, screenshotRequest(t, "/orders/"+o.ID.String()+"/payment-screenshot"))

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

		var response map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		errInfo := response["error"].(map[string]interface{})
		assert.Equal(t, "ERR_MISSING_TRANSACTION_ID", errInfo["code"])
	})

	t.Run("requires the screenshot form file", func(t *testing.T) {
		f := setupPaymentHandler(uuid.New(), false, "")
		f.router.POST("/orders/:id/payment-screenshot", f.handler.UploadScreenshot)

		req, _ := http.NewRequest(http.MethodPost, "/orders/"+uuid.NewString()+"/payment-screenshot", nil)
		w := httptest.NewRecorder()
		f.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestPaymentHandler_Reject(t *testing.T) {
	t.Run("marks order and payment failed", func(t *testing.T) {
		adminID := uuid.New()
		f := setupPaymentHandler(adminID, true, "")
		f.router.POST("/admin/orders/:id/reject-payment", f.handler.Reject)

		buyerID := uuid.New()
		o := newPendingOrderForUser(t, buyerID, 1)
		p, err := payment.NewPayment(o.ID, o.UserID, o.Amount)
		require.NoError(t, err)

		f.paymentRepo.On("FindByOrder", mock.Anything, o.ID).Return(p, nil)
		f.orderRepo.On("FindByID", mock.Anything, o.ID).Return(o, nil)
		f.paymentRepo.On("Save", mock.Anything, p).Return(nil)
		f.orderRepo.On("SaveWithLock", mock.Anything, o).Return(nil)

		body := bytes.NewBufferString(`{"reason":"Blurry screenshot"}`)
		req, _ := http.NewRequest(http.MethodPost, "/admin/orders/"+o.ID.String()+"/reject-payment", body)
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		f.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		data := response["data"].(map[string]interface{})
		assert.Equal(t, "failed", data["status"])
		assert.Equal(t, order.StatusFailed, o.Status)
	})

	t.Run("returns 404 when no payment exists", func(t *testing.T) {
		f := setupPaymentHandler(uuid.New(), true, "")
		f.router.POST("/admin/orders/:id/reject-payment", f.handler.Reject)

		orderID := uuid.New()
		f.paymentRepo.On("FindByOrder", mock.Anything, orderID).Return(nil, shared.ErrNotFound)

		req, _ := http.NewRequest(http.MethodPost, "/admin/orders/"+orderID.String()+"/reject-payment", nil)
		w := httptest.NewRecorder()
		f.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
