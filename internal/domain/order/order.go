package order

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/minimart/backend/internal/domain/shared"
	"github.com/minimart/backend/internal/domain/shared/valueobject"
)

// Status represents the status of an order
type Status string

const (
	StatusPending Status = "pending"
	StatusPaid    Status = "paid"
	StatusFailed  Status = "failed"
)

// IsValid checks if the status is a valid order Status
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

// CanTransitionTo checks if the status can transition to the target status.
// Only pending orders move; paid and failed are terminal.
func (s Status) CanTransitionTo(target Status) bool {
	switch s {
	case StatusPending:
		return target == StatusPaid || target == StatusFailed
	case StatusPaid, StatusFailed:
		return false
	}
	return false
}

// IsTerminal returns true if no further transition is permitted
func (s Status) IsTerminal() bool {
	return s == StatusPaid || s == StatusFailed
}

// Line is a line item in an order. Lines are fixed at creation: the
// unit price is the price shown to the buyer when the order was placed
// and is never re-read from the live product.
type Line struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	ProductID uuid.UUID
	Quantity  int
	UnitPrice decimal.Decimal
	CreatedAt time.Time
}

// NewLine creates a new order line
func NewLine(orderID, productID uuid.UUID, quantity int, unitPrice valueobject.Money) (*Line, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitPrice.Amount().IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}

	return &Line{
		ID:        uuid.New(),
		OrderID:   orderID,
		ProductID: productID,
		Quantity:  quantity,
		UnitPrice: unitPrice.Amount(),
		CreatedAt: time.Now(),
	}, nil
}

// Amount returns quantity * unit price for this line
func (l *Line) Amount() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Order is the aggregate root for a buyer's order. The amount is the
// sum of its lines as computed at creation and is never recomputed.
type Order struct {
	shared.BaseAggregateRoot
	UserID       uuid.UUID
	AddressID    *uuid.UUID
	Amount       decimal.Decimal
	Status       Status
	Lines        []Line
	FailedReason string
	PaidAt       *time.Time
	FailedAt     *time.Time
}

// LineInput describes one requested line at order creation
type LineInput struct {
	ProductID uuid.UUID
	Quantity  int
	UnitPrice valueobject.Money
}

// NewOrder creates a pending order from the requested lines. The order
// amount is derived from the lines, not accepted from the caller, so
// the amount invariant holds by construction.
func NewOrder(userID uuid.UUID, addressID *uuid.UUID, lines []LineInput) (*Order, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	if len(lines) == 0 {
		return nil, shared.NewDomainError("NO_ITEMS", "Order must contain at least one item")
	}

	o := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		UserID:            userID,
		AddressID:         addressID,
		Amount:            decimal.Zero,
		Status:            StatusPending,
		Lines:             make([]Line, 0, len(lines)),
	}

	seen := make(map[uuid.UUID]struct{}, len(lines))
	for _, in := range lines {
		if _, dup := seen[in.ProductID]; dup {
			return nil, shared.NewDomainError("DUPLICATE_PRODUCT", "Product appears more than once in order")
		}
		seen[in.ProductID] = struct{}{}

		line, err := NewLine(o.ID, in.ProductID, in.Quantity, in.UnitPrice)
		if err != nil {
			return nil, err
		}
		o.Lines = append(o.Lines, *line)
		o.Amount = o.Amount.Add(line.Amount())
	}

	if o.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Order amount must be positive")
	}

	return o, nil
}

// MarkPaid transitions the order from pending to paid. The caller is
// responsible for running the stock decrement in the same transaction.
func (o *Order) MarkPaid() error {
	if !o.Status.CanTransitionTo(StatusPaid) {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Order is not pending. Current status: %s", o.Status))
	}

	now := time.Now()
	o.Status = StatusPaid
	o.PaidAt = &now
	o.UpdatedAt = now
	o.IncrementVersion()

	return nil
}

// MarkFailed transitions the order from pending to failed. Failed is
// terminal and has no stock effect.
func (o *Order) MarkFailed(reason string) error {
	if !o.Status.CanTransitionTo(StatusFailed) {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Order is not pending. Current status: %s", o.Status))
	}

	now := time.Now()
	o.Status = StatusFailed
	o.FailedReason = reason
	o.FailedAt = &now
	o.UpdatedAt = now
	o.IncrementVersion()

	return nil
}

// Cancel is the buyer-initiated equivalent of MarkFailed
func (o *Order) Cancel() error {
	return o.MarkFailed("Cancelled by user")
}

// BelongsTo returns true if the order is owned by the given user
func (o *Order) BelongsTo(userID uuid.UUID) bool {
	return o.UserID == userID
}

// IsPending returns true if the order is awaiting payment
func (o *Order) IsPending() bool {
	return o.Status == StatusPending
}

// ItemCount returns the number of lines in the order
func (o *Order) ItemCount() int {
	return len(o.Lines)
}

// AmountMoney returns the order amount as Money
func (o *Order) AmountMoney() valueobject.Money {
	return valueobject.NewMoneyUSD(o.Amount)
}
