package order

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the persistence contract for orders
type Repository interface {
	// FindByID loads an order with its lines
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindByUser returns the user's orders, newest first
	FindByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Order, error)

	// FindByStatus returns orders in the given status, oldest first
	FindByStatus(ctx context.Context, status Status, limit, offset int) ([]*Order, error)

	// CountByUser returns the number of orders the user has placed
	CountByUser(ctx context.Context, userID uuid.UUID) (int64, error)

	// Save persists the order and its lines
	Save(ctx context.Context, o *Order) error

	// SaveWithLock persists the order using optimistic locking on the
	// version column. Returns shared.ErrConcurrencyConflict if the
	// stored version does not match.
	SaveWithLock(ctx context.Context, o *Order) error
}
