package payment

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPendingPayment(t *testing.T) *Payment {
	p, err := NewPayment(uuid.New(), uuid.New(), decimal.RequireFromString("12.50"))
	require.NoError(t, err)
	return p
}

func TestNewPayment(t *testing.T) {
	t.Run("creates pending payment", func(t *testing.T) {
		p := newPendingPayment(t)

		assert.Equal(t, StatusPending, p.Status)
		assert.Equal(t, MethodKHQR, p.Method)
		assert.Equal(t, "USD", p.Currency)
		assert.Empty(t, p.TransactionID)
	})

	t.Run("rejects zero amount", func(t *testing.T) {
		_, err := NewPayment(uuid.New(), uuid.New(), decimal.Zero)
		assert.Error(t, err)
	})

	t.Run("rejects empty order", func(t *testing.T) {
		_, err := NewPayment(uuid.Nil, uuid.New(), decimal.RequireFromString("1.00"))
		assert.Error(t, err)
	})
}

func TestAttachProof(t *testing.T) {
	when := time.Date(2025, time.October, 19, 16, 1, 0, 0, time.UTC)

	t.Run("records proof", func(t *testing.T) {
		p := newPendingPayment(t)

		require.NoError(t, p.AttachProof("payments/abc.jpg", "43117156234", &when))

		assert.Equal(t, "payments/abc.jpg", p.ScreenshotPath)
		assert.Equal(t, "43117156234", p.TransactionID)
		assert.Equal(t, &when, p.TransactionDate)
		assert.Equal(t, 2, p.GetVersion())
	})

	t.Run("replaces previous proof while pending", func(t *testing.T) {
		p := newPendingPayment(t)
		require.NoError(t, p.AttachProof("payments/first.jpg", "1111111111", nil))

		require.NoError(t, p.AttachProof("payments/second.jpg", "2222222222", &when))

		assert.Equal(t, "payments/second.jpg", p.ScreenshotPath)
		assert.Equal(t, "2222222222", p.TransactionID)
	})

	t.Run("rejects empty transaction id", func(t *testing.T) {
		p := newPendingPayment(t)
		assert.Error(t, p.AttachProof("payments/abc.jpg", "", nil))
	})

	t.Run("rejected after paid", func(t *testing.T) {
		p := newPendingPayment(t)
		require.NoError(t, p.AttachProof("payments/abc.jpg", "43117156234", nil))
		require.NoError(t, p.MarkPaid())

		assert.Error(t, p.AttachProof("payments/late.jpg", "9999999999", nil))
	})
}

func TestPaymentTransitions(t *testing.T) {
	t.Run("mark paid", func(t *testing.T) {
		p := newPendingPayment(t)

		require.NoError(t, p.MarkPaid())

		assert.Equal(t, StatusPaid, p.Status)
		assert.NotNil(t, p.PayDate)
	})

	t.Run("mark failed", func(t *testing.T) {
		p := newPendingPayment(t)

		require.NoError(t, p.MarkFailed("Amount mismatch"))

		assert.Equal(t, StatusFailed, p.Status)
		assert.Equal(t, "Amount mismatch", p.FailedReason)
	})

	t.Run("paid is terminal", func(t *testing.T) {
		p := newPendingPayment(t)
		require.NoError(t, p.MarkPaid())

		assert.Error(t, p.MarkPaid())
		assert.Error(t, p.MarkFailed("late"))
	})

	t.Run("failed is terminal", func(t *testing.T) {
		p := newPendingPayment(t)
		require.NoError(t, p.MarkFailed("reason"))

		assert.Error(t, p.MarkPaid())
	})
}
