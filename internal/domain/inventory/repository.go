package inventory

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the persistence contract for stock records
type Repository interface {
	// FindByProduct loads the stock row for a product
	FindByProduct(ctx context.Context, productID uuid.UUID) (*Stock, error)

	// FindByProducts loads stock rows for several products at once,
	// keyed by product ID. Missing products are simply absent.
	FindByProducts(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID]*Stock, error)

	// FindAll returns every stock row, lowest quantity first
	FindAll(ctx context.Context) ([]*Stock, error)

	// Save persists the stock record
	Save(ctx context.Context, s *Stock) error

	// SaveWithLock persists using optimistic locking on the version
	// column. Returns shared.ErrConcurrencyConflict when another
	// writer got there first.
	SaveWithLock(ctx context.Context, s *Stock) error
}
