package payment

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/minimart/backend/internal/domain/shared"
)

// Status represents the status of a payment record
type Status string

const (
	StatusPending Status = "pending"
	StatusPaid    Status = "paid"
	StatusFailed  Status = "failed"
)

// IsValid checks if the status is a valid payment Status
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusFailed:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// Method identifies how the buyer paid
type Method string

const (
	MethodKHQR Method = "KHQR"
)

// Payment records one payment attempt against an order. It is created
// on the order's first screenshot upload, not at order creation, and
// its lifecycle mirrors the order's: pending until verification,
// then paid or failed.
type Payment struct {
	shared.BaseAggregateRoot
	OrderID         uuid.UUID
	UserID          uuid.UUID
	Method          Method
	Amount          decimal.Decimal
	Currency        string
	Status          Status
	ScreenshotPath  string
	TransactionID   string
	TransactionDate *time.Time
	PayDate         *time.Time
	FailedReason    string
}

// NewPayment creates a pending payment for the order
func NewPayment(orderID, userID uuid.UUID, amount decimal.Decimal) (*Payment, error) {
	if orderID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORDER", "Order ID cannot be empty")
	}
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}

	return &Payment{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderID:           orderID,
		UserID:            userID,
		Method:            MethodKHQR,
		Amount:            amount,
		Currency:          "USD",
		Status:            StatusPending,
	}, nil
}

// AttachProof records the screenshot location and the facts parsed out
// of it. Allowed only while the payment is still pending; each new
// upload replaces the previous proof.
func (p *Payment) AttachProof(screenshotPath, transactionID string, transactionDate *time.Time) error {
	if p.Status != StatusPending {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Payment is not pending. Current status: %s", p.Status))
	}
	if screenshotPath == "" {
		return shared.NewDomainError("INVALID_SCREENSHOT", "Screenshot path cannot be empty")
	}
	if transactionID == "" {
		return shared.NewDomainError("MISSING_TRANSACTION_ID", "Transaction ID cannot be empty")
	}

	p.ScreenshotPath = screenshotPath
	p.TransactionID = transactionID
	p.TransactionDate = transactionDate
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// MarkPaid marks the payment as verified
func (p *Payment) MarkPaid() error {
	if p.Status != StatusPending {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Payment is not pending. Current status: %s", p.Status))
	}

	now := time.Now()
	p.Status = StatusPaid
	p.PayDate = &now
	p.UpdatedAt = now
	p.IncrementVersion()

	return nil
}

// MarkFailed marks the payment as rejected with a buyer-facing reason
func (p *Payment) MarkFailed(reason string) error {
	if p.Status != StatusPending {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Payment is not pending. Current status: %s", p.Status))
	}

	now := time.Now()
	p.Status = StatusFailed
	p.FailedReason = reason
	p.UpdatedAt = now
	p.IncrementVersion()

	return nil
}

// IsPending returns true if the payment has not been verified yet
func (p *Payment) IsPending() bool {
	return p.Status == StatusPending
}
