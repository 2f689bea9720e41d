package inventory

import (
	"time"

	"github.com/google/uuid"

	"github.com/minimart/backend/internal/domain/inventory"
)

// InitializeStockRequest creates the stock row for a product
type InitializeStockRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"gte=0"`
}

// ReplenishStockRequest adds units to an existing stock row
type ReplenishStockRequest struct {
	Quantity int `json:"quantity" binding:"required,gt=0"`
}

// StockResponse is the read model for a stock row
type StockResponse struct {
	ID        uuid.UUID `json:"id"`
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
	LowStock  bool      `json:"low_stock,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toStockResponse(s *inventory.Stock) *StockResponse {
	return &StockResponse{
		ID:        s.ID,
		ProductID: s.ProductID,
		Quantity:  s.Quantity,
		UpdatedAt: s.UpdatedAt,
	}
}
