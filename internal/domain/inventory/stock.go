package inventory

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/minimart/backend/internal/domain/shared"
)

// Stock tracks the on-hand quantity for one product. One row per
// product; writes go through SaveWithLock so concurrent paid
// transitions cannot both consume the same units.
type Stock struct {
	shared.BaseAggregateRoot
	ProductID uuid.UUID
	Quantity  int
}

// NewStock creates a stock record for a product
func NewStock(productID uuid.UUID, quantity int) (*Stock, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if quantity < 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Stock quantity cannot be negative")
	}

	return &Stock{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ProductID:         productID,
		Quantity:          quantity,
	}, nil
}

// HasAvailable reports whether the requested quantity is on hand
func (s *Stock) HasAvailable(quantity int) bool {
	return quantity > 0 && s.Quantity >= quantity
}

// Decrement consumes units. Fails with ErrInsufficientStock rather
// than going negative.
func (s *Stock) Decrement(quantity int) error {
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if s.Quantity < quantity {
		return shared.NewDomainError("INSUFFICIENT_STOCK",
			fmt.Sprintf("Insufficient stock for product %s: have %d, need %d",
				s.ProductID, s.Quantity, quantity))
	}

	s.Quantity -= quantity
	s.UpdatedAt = time.Now()
	s.IncrementVersion()

	return nil
}

// Increment adds units, used for replenishment
func (s *Stock) Increment(quantity int) error {
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}

	s.Quantity += quantity
	s.UpdatedAt = time.Now()
	s.IncrementVersion()

	return nil
}
