package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	appinventory "github.com/minimart/backend/internal/application/inventory"
	"github.com/minimart/backend/internal/domain/catalog"
	"github.com/minimart/backend/internal/domain/shared"
)

// CatalogService handles product and category administration and the
// storefront reads backing the shop screens.
type CatalogService struct {
	productRepo  catalog.ProductRepository
	categoryRepo catalog.CategoryRepository
	stockService *appinventory.StockService
}

// NewCatalogService creates a new CatalogService
func NewCatalogService(
	productRepo catalog.ProductRepository,
	categoryRepo catalog.CategoryRepository,
	stockService *appinventory.StockService,
) *CatalogService {
	return &CatalogService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		stockService: stockService,
	}
}

// CreateProduct creates a product and seeds its stock row
func (s *CatalogService) CreateProduct(ctx context.Context, req CreateProductRequest) (*ProductResponse, error) {
	if _, err := s.categoryRepo.FindByID(ctx, req.CategoryID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("INVALID_CATEGORY", "Category not found")
		}
		return nil, err
	}

	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_PRICE", "Price must be a decimal number")
	}

	product, err := catalog.NewProduct(req.CategoryID, req.Name, req.Description, price)
	if err != nil {
		return nil, err
	}
	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}

	if _, err := s.stockService.Initialize(ctx, product.ID, req.InitialStock); err != nil {
		return nil, err
	}

	return toProductResponse(product), nil
}

// UpdateProductPrice changes the catalog price. Existing order lines
// keep the price they were created with.
func (s *CatalogService) UpdateProductPrice(ctx context.Context, productID uuid.UUID, req UpdateProductPriceRequest) (*ProductResponse, error) {
	product, err := s.findProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_PRICE", "Price must be a decimal number")
	}
	if err := product.UpdatePrice(price); err != nil {
		return nil, err
	}
	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// DisableProduct removes a product from sale without deleting it
func (s *CatalogService) DisableProduct(ctx context.Context, productID uuid.UUID) (*ProductResponse, error) {
	product, err := s.findProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	product.Disable()
	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// GetProduct returns one product
func (s *CatalogService) GetProduct(ctx context.Context, productID uuid.UUID) (*ProductResponse, error) {
	product, err := s.findProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// ListProducts returns all products, optionally filtered by category
func (s *CatalogService) ListProducts(ctx context.Context, categoryID *uuid.UUID) ([]ProductResponse, error) {
	var (
		products []catalog.Product
		err      error
	)
	if categoryID != nil {
		products, err = s.productRepo.FindByCategory(ctx, *categoryID)
	} else {
		products, err = s.productRepo.FindAll(ctx)
	}
	if err != nil {
		return nil, err
	}

	responses := make([]ProductResponse, 0, len(products))
	for i := range products {
		responses = append(responses, *toProductResponse(&products[i]))
	}
	return responses, nil
}

// CreateCategory creates a category
func (s *CatalogService) CreateCategory(ctx context.Context, req CreateCategoryRequest) (*CategoryResponse, error) {
	category, err := catalog.NewCategory(req.Name)
	if err != nil {
		return nil, err
	}
	if err := s.categoryRepo.Save(ctx, category); err != nil {
		return nil, err
	}
	return toCategoryResponse(category), nil
}

// ListCategories returns all categories
func (s *CatalogService) ListCategories(ctx context.Context) ([]CategoryResponse, error) {
	categories, err := s.categoryRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]CategoryResponse, 0, len(categories))
	for i := range categories {
		responses = append(responses, *toCategoryResponse(&categories[i]))
	}
	return responses, nil
}

func (s *CatalogService) findProduct(ctx context.Context, productID uuid.UUID) (*catalog.Product, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Product not found")
		}
		return nil, err
	}
	return product, nil
}
