package payment

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the persistence contract for payments
type Repository interface {
	// FindByID loads a payment
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)

	// FindByOrder returns the payment attached to the order, or
	// shared.ErrNotFound if no screenshot has been uploaded yet
	FindByOrder(ctx context.Context, orderID uuid.UUID) (*Payment, error)

	// ExistsByTransactionID reports whether any payment already
	// carries the transaction ID. Used for the duplicate-screenshot
	// check; the unique index on the column is the hard backstop.
	ExistsByTransactionID(ctx context.Context, transactionID string) (bool, error)

	// Save persists the payment
	Save(ctx context.Context, p *Payment) error
}
