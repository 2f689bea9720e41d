package payment

import (
	"time"

	"github.com/google/uuid"

	"github.com/minimart/backend/internal/domain/payment"
)

// UploadScreenshotRequest carries one screenshot upload
type UploadScreenshotRequest struct {
	OrderID     uuid.UUID
	UserID      uuid.UUID
	Filename    string
	ContentType string
	Image       []byte
}

// UploadScreenshotResponse is returned when verification succeeds
type UploadScreenshotResponse struct {
	OrderID         uuid.UUID  `json:"order_id"`
	Status          string     `json:"status"`
	Message         string     `json:"message"`
	TransactionID   string     `json:"transaction_id"`
	TransactionDate *time.Time `json:"transaction_date,omitempty"`
}

// PaymentResponse is the read model for a payment record
type PaymentResponse struct {
	ID              uuid.UUID  `json:"id"`
	OrderID         uuid.UUID  `json:"order_id"`
	Method          string     `json:"method"`
	Amount          string     `json:"amount"`
	Currency        string     `json:"currency"`
	Status          string     `json:"status"`
	ScreenshotPath  string     `json:"screenshot_path,omitempty"`
	TransactionID   string     `json:"transaction_id,omitempty"`
	TransactionDate *time.Time `json:"transaction_date,omitempty"`
	PayDate         *time.Time `json:"pay_date,omitempty"`
	FailedReason    string     `json:"failed_reason,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// AdminDecisionResponse is returned by the admin confirm/reject overrides
type AdminDecisionResponse struct {
	OrderID uuid.UUID `json:"order_id"`
	Status  string    `json:"status"`
	Message string    `json:"message"`
}

// ToPaymentResponse converts a payment aggregate to its read model
func ToPaymentResponse(p *payment.Payment) *PaymentResponse {
	return &PaymentResponse{
		ID:              p.ID,
		OrderID:         p.OrderID,
		Method:          string(p.Method),
		Amount:          p.Amount.StringFixed(2),
		Currency:        p.Currency,
		Status:          p.Status.String(),
		ScreenshotPath:  p.ScreenshotPath,
		TransactionID:   p.TransactionID,
		TransactionDate: p.TransactionDate,
		PayDate:         p.PayDate,
		FailedReason:    p.FailedReason,
		CreatedAt:       p.CreatedAt,
	}
}
