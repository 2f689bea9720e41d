package inventory

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/minimart/backend/internal/domain/inventory"
	"github.com/minimart/backend/internal/domain/shared"
)

// StockService handles stock administration: initial stock for new
// products, replenishment, and availability reads. Decrements never
// happen here; they belong to the paid transition.
type StockService struct {
	stockRepo inventory.Repository
}

// NewStockService creates a new StockService
func NewStockService(stockRepo inventory.Repository) *StockService {
	return &StockService{stockRepo: stockRepo}
}

// GetByProduct returns the stock level for a product
func (s *StockService) GetByProduct(ctx context.Context, productID uuid.UUID) (*StockResponse, error) {
	stock, err := s.stockRepo.FindByProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Stock not found")
		}
		return nil, err
	}
	return toStockResponse(stock), nil
}

// List returns all stock rows, lowest quantity first. Rows at or below
// belowQuantity are flagged as low stock; belowQuantity <= 0 disables
// the flagging.
func (s *StockService) List(ctx context.Context, belowQuantity int) ([]StockResponse, error) {
	stocks, err := s.stockRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]StockResponse, 0, len(stocks))
	for _, stock := range stocks {
		resp := *toStockResponse(stock)
		resp.LowStock = belowQuantity > 0 && stock.Quantity <= belowQuantity
		responses = append(responses, resp)
	}
	return responses, nil
}

// Initialize creates the stock row for a product. Each product has
// exactly one.
func (s *StockService) Initialize(ctx context.Context, productID uuid.UUID, quantity int) (*StockResponse, error) {
	_, err := s.stockRepo.FindByProduct(ctx, productID)
	if err == nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Stock already exists for this product")
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	stock, err := inventory.NewStock(productID, quantity)
	if err != nil {
		return nil, err
	}
	if err := s.stockRepo.Save(ctx, stock); err != nil {
		return nil, err
	}
	return toStockResponse(stock), nil
}

// Replenish adds units to a product's stock. Retried on version
// conflict by the caller if needed; a single attempt is made here.
func (s *StockService) Replenish(ctx context.Context, productID uuid.UUID, quantity int) (*StockResponse, error) {
	stock, err := s.stockRepo.FindByProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Stock not found")
		}
		return nil, err
	}

	if err := stock.Increment(quantity); err != nil {
		return nil, err
	}
	if err := s.stockRepo.SaveWithLock(ctx, stock); err != nil {
		return nil, err
	}
	return toStockResponse(stock), nil
}
