package payment

import (
	"context"

	"github.com/minimart/backend/internal/domain/inventory"
	"github.com/minimart/backend/internal/domain/order"
	"github.com/minimart/backend/internal/domain/payment"
)

// TransactionScope provides transactional access to the repositories
// touched by a paid transition. When a function is executed within a
// scope, all repository operations are part of the same database
// transaction and commit or roll back atomically.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the order, payment and
// stock repositories within one transaction. The paid transition
// writes all three: the payment flips to paid, the order flips to
// paid, and every line's stock is decremented, or none of it happens.
type TransactionalRepositories interface {
	// OrderRepo returns the order repository scoped to the current transaction
	OrderRepo() order.Repository
	// PaymentRepo returns the payment repository scoped to the current transaction
	PaymentRepo() payment.Repository
	// StockRepo returns the stock repository scoped to the current transaction
	StockRepo() inventory.Repository
}

// NoOpTransactionScope runs the function without a real transaction.
// Useful for tests with in-memory repositories.
type NoOpTransactionScope struct {
	orderRepo   order.Repository
	paymentRepo payment.Repository
	stockRepo   inventory.Repository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	orderRepo order.Repository,
	paymentRepo payment.Repository,
	stockRepo inventory.Repository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		orderRepo:   orderRepo,
		paymentRepo: paymentRepo,
		stockRepo:   stockRepo,
	}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// OrderRepo returns the order repository.
func (s *NoOpTransactionScope) OrderRepo() order.Repository {
	return s.orderRepo
}

// PaymentRepo returns the payment repository.
func (s *NoOpTransactionScope) PaymentRepo() payment.Repository {
	return s.paymentRepo
}

// StockRepo returns the stock repository.
func (s *NoOpTransactionScope) StockRepo() inventory.Repository {
	return s.stockRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
