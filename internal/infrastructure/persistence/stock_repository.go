package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/minimart/backend/internal/domain/inventory"
	"github.com/minimart/backend/internal/domain/shared"
	"github.com/minimart/backend/internal/infrastructure/persistence/models"
)

// GormStockRepository implements inventory.Repository using GORM
type GormStockRepository struct {
	db *gorm.DB
}

// NewGormStockRepository creates a new GormStockRepository
func NewGormStockRepository(db *gorm.DB) *GormStockRepository {
	return &GormStockRepository{db: db}
}

// FindByProduct finds the stock record for a product
func (r *GormStockRepository) FindByProduct(ctx context.Context, productID uuid.UUID) (*inventory.Stock, error) {
	var model models.StockModel
	if err := r.db.WithContext(ctx).First(&model, "product_id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByProducts loads stock records for multiple products in one query
func (r *GormStockRepository) FindByProducts(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID]*inventory.Stock, error) {
	if len(productIDs) == 0 {
		return map[uuid.UUID]*inventory.Stock{}, nil
	}

	var found []models.StockModel
	if err := r.db.WithContext(ctx).
		Where("product_id IN ?", productIDs).
		Find(&found).Error; err != nil {
		return nil, err
	}

	stocks := make(map[uuid.UUID]*inventory.Stock, len(found))
	for i := range found {
		stock := found[i].ToDomain()
		stocks[stock.ProductID] = stock
	}
	return stocks, nil
}

// FindAll returns every stock record, lowest quantity first
func (r *GormStockRepository) FindAll(ctx context.Context) ([]*inventory.Stock, error) {
	var found []models.StockModel
	if err := r.db.WithContext(ctx).
		Order("quantity ASC").
		Find(&found).Error; err != nil {
		return nil, err
	}

	stocks := make([]*inventory.Stock, 0, len(found))
	for i := range found {
		stocks = append(stocks, found[i].ToDomain())
	}
	return stocks, nil
}

// Save creates or updates a stock record
func (r *GormStockRepository) Save(ctx context.Context, s *inventory.Stock) error {
	var model models.StockModel
	model.FromDomain(s)
	return r.db.WithContext(ctx).Save(&model).Error
}

// SaveWithLock saves with optimistic locking (checks version)
func (r *GormStockRepository) SaveWithLock(ctx context.Context, s *inventory.Stock) error {
	var model models.StockModel
	model.FromDomain(s)

	result := r.db.WithContext(ctx).
		Model(&models.StockModel{}).
		Where("id = ? AND version = ?", model.ID, model.Version-1).
		Updates(map[string]interface{}{
			"quantity":   model.Quantity,
			"version":    model.Version,
			"updated_at": model.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}
