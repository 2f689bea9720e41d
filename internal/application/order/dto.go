package order

import (
	"time"

	"github.com/google/uuid"

	paymentapp "github.com/minimart/backend/internal/application/payment"
	"github.com/minimart/backend/internal/domain/order"
)

// OrderItemRequest is one requested line at order creation. The unit
// price comes from the catalog, never from the client.
type OrderItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,gt=0"`
}

// CreateOrderRequest is the payload for creating an order
type CreateOrderRequest struct {
	AddressID *uuid.UUID         `json:"address_id"`
	Items     []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
}

// CreateOrderResponse is returned after an order is created
type CreateOrderResponse struct {
	OrderID   uuid.UUID  `json:"order_id"`
	Status    string     `json:"status"`
	Amount    string     `json:"amount"`
	AddressID *uuid.UUID `json:"address_id,omitempty"`
	Message   string     `json:"message"`
}

// OrderLineResponse is the read model for one order line
type OrderLineResponse struct {
	ID          uuid.UUID `json:"id"`
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	ImagePath   string    `json:"image_path,omitempty"`
	Quantity    int       `json:"quantity"`
	UnitPrice   string    `json:"unit_price"`
	LineTotal   string    `json:"line_total"`
}

// OrderResponse is the full read model for a single order view
type OrderResponse struct {
	ID        uuid.UUID                   `json:"id"`
	UserID    uuid.UUID                   `json:"user_id"`
	AddressID *uuid.UUID                  `json:"address_id,omitempty"`
	Amount    string                      `json:"amount"`
	Status    string                      `json:"status"`
	Items     []OrderLineResponse         `json:"items"`
	Payment   *paymentapp.PaymentResponse `json:"payment,omitempty"`
	CreatedAt time.Time                   `json:"created_at"`
	UpdatedAt time.Time                   `json:"updated_at"`
}

// OrderSummaryResponse is the lightweight read model for list views
type OrderSummaryResponse struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"user_id"`
	Status    string     `json:"status"`
	Amount    string     `json:"amount"`
	ItemCount int        `json:"item_count"`
	AddressID *uuid.UUID `json:"address_id,omitempty"`
	PayDate   *time.Time `json:"pay_date,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// PaymentStatusResponse is the polling read model used by the app
// while it waits for a screenshot to verify
type PaymentStatusResponse struct {
	OrderID       uuid.UUID `json:"order_id"`
	OrderStatus   string    `json:"order_status"`
	PaymentStatus string    `json:"payment_status"`
	Amount        string    `json:"amount"`
	Method        string    `json:"method"`
	CreatedAt     time.Time `json:"created_at"`
}

// CancelOrderResponse is returned after a buyer cancels an order
type CancelOrderResponse struct {
	OrderID uuid.UUID `json:"order_id"`
	Status  string    `json:"status"`
	Message string    `json:"message"`
}

func toSummary(o *order.Order, payDate *time.Time) OrderSummaryResponse {
	return OrderSummaryResponse{
		ID:        o.ID,
		UserID:    o.UserID,
		Status:    o.Status.String(),
		Amount:    o.Amount.StringFixed(2),
		ItemCount: o.ItemCount(),
		AddressID: o.AddressID,
		PayDate:   payDate,
		CreatedAt: o.CreatedAt,
	}
}
