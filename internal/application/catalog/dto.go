package catalog

import (
	"time"

	"github.com/google/uuid"

	"github.com/minimart/backend/internal/domain/catalog"
)

// CreateProductRequest is the payload for creating a product
type CreateProductRequest struct {
	CategoryID  uuid.UUID `json:"category_id" binding:"required"`
	Name        string    `json:"name" binding:"required"`
	Description string    `json:"description"`
	Price       string    `json:"price" binding:"required"`
	// InitialStock seeds the product's stock row at creation
	InitialStock int `json:"initial_stock" binding:"gte=0"`
}

// UpdateProductPriceRequest changes the catalog price
type UpdateProductPriceRequest struct {
	Price string `json:"price" binding:"required"`
}

// ProductResponse is the read model for a product
type ProductResponse struct {
	ID          uuid.UUID `json:"id"`
	CategoryID  uuid.UUID `json:"category_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Price       string    `json:"price"`
	ImagePath   string    `json:"image_path,omitempty"`
	Enabled     bool      `json:"enabled"`
	CreatedAt   time.Time `json:"created_at"`
}

// CreateCategoryRequest is the payload for creating a category
type CreateCategoryRequest struct {
	Name string `json:"name" binding:"required"`
}

// CategoryResponse is the read model for a category
type CategoryResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	ImagePath string    `json:"image_path,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func toProductResponse(p *catalog.Product) *ProductResponse {
	return &ProductResponse{
		ID:          p.ID,
		CategoryID:  p.CategoryID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price.StringFixed(2),
		ImagePath:   p.ImagePath,
		Enabled:     p.Enabled,
		CreatedAt:   p.CreatedAt,
	}
}

func toCategoryResponse(c *catalog.Category) *CategoryResponse {
	return &CategoryResponse{
		ID:        c.ID,
		Name:      c.Name,
		ImagePath: c.ImagePath,
		CreatedAt: c.CreatedAt,
	}
}
