package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/minimart/backend/internal/domain/shared"
)

// Product represents a sellable item in the storefront catalog.
// The live price is informational at order time: order lines capture
// the unit price presented to the buyer and never re-read it.
type Product struct {
	shared.BaseAggregateRoot
	CategoryID  uuid.UUID
	Name        string
	Description string
	Price       decimal.Decimal
	ImagePath   string
	Enabled     bool
}

// NewProduct creates a new product
func NewProduct(categoryID uuid.UUID, name, description string, price decimal.Decimal) (*Product, error) {
	if categoryID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CATEGORY", "Category ID cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name cannot be empty")
	}
	if price.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Product price cannot be negative")
	}

	return &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CategoryID:        categoryID,
		Name:              name,
		Description:       description,
		Price:             price,
		Enabled:           true,
	}, nil
}

// UpdatePrice changes the catalog price
func (p *Product) UpdatePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Product price cannot be negative")
	}
	p.Price = price
	p.UpdatedAt = time.Now()
	return nil
}

// SetImage sets the product image path
func (p *Product) SetImage(path string) {
	p.ImagePath = path
	p.UpdatedAt = time.Now()
}

// Disable removes the product from sale without deleting history
func (p *Product) Disable() {
	p.Enabled = false
	p.UpdatedAt = time.Now()
}

// Category groups products for browsing
type Category struct {
	shared.BaseEntity
	Name      string
	ImagePath string
}

// NewCategory creates a new category
func NewCategory(name string) (*Category, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_CATEGORY_NAME", "Category name cannot be empty")
	}
	return &Category{
		BaseEntity: shared.NewBaseEntity(),
		Name:       name,
	}, nil
}
