package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	paymentapp "github.com/minimart/backend/internal/application/payment"
	"github.com/minimart/backend/internal/domain/catalog"
	"github.com/minimart/backend/internal/domain/inventory"
	"github.com/minimart/backend/internal/domain/order"
	"github.com/minimart/backend/internal/domain/payment"
	"github.com/minimart/backend/internal/domain/shared"
	"github.com/minimart/backend/internal/domain/shared/valueobject"
)

// OrderService handles order lifecycle operations other than payment
// verification: creation with an advisory stock check, reads, and
// buyer cancellation.
type OrderService struct {
	orderRepo   order.Repository
	paymentRepo payment.Repository
	productRepo catalog.ProductRepository
	stockRepo   inventory.Repository
	txScope     paymentapp.TransactionScope
}

// NewOrderService creates a new OrderService
func NewOrderService(
	orderRepo order.Repository,
	paymentRepo payment.Repository,
	productRepo catalog.ProductRepository,
	stockRepo inventory.Repository,
	txScope paymentapp.TransactionScope,
) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		paymentRepo: paymentRepo,
		productRepo: productRepo,
		stockRepo:   stockRepo,
		txScope:     txScope,
	}
}

// Create places a pending order. The stock check here is advisory: it
// rejects orders that obviously cannot be fulfilled, but stock is only
// consumed when the order transitions to paid, so availability can
// still change in between.
func (s *OrderService) Create(ctx context.Context, userID uuid.UUID, req CreateOrderRequest) (*CreateOrderResponse, error) {
	ids := make([]uuid.UUID, 0, len(req.Items))
	for _, item := range req.Items {
		ids = append(ids, item.ProductID)
	}

	products, err := s.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*catalog.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	stocks, err := s.stockRepo.FindByProducts(ctx, ids)
	if err != nil {
		return nil, err
	}

	lines := make([]order.LineInput, 0, len(req.Items))
	for _, item := range req.Items {
		product, ok := byID[item.ProductID]
		if !ok {
			return nil, shared.NewDomainError("NOT_FOUND",
				fmt.Sprintf("Product not found: %s", item.ProductID))
		}
		if !product.Enabled {
			return nil, shared.NewDomainError("INVALID_PRODUCT",
				fmt.Sprintf("Product is not for sale: %s", product.Name))
		}

		stock, ok := stocks[item.ProductID]
		if !ok {
			return nil, shared.NewDomainError("NOT_FOUND",
				fmt.Sprintf("Stock not found for product: %s", product.Name))
		}
		if !stock.HasAvailable(item.Quantity) {
			return nil, shared.NewDomainError("INSUFFICIENT_STOCK",
				fmt.Sprintf("Insufficient stock for product: %s. Available: %d, Requested: %d",
					product.Name, stock.Quantity, item.Quantity))
		}

		lines = append(lines, order.LineInput{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: valueobject.NewMoneyUSD(product.Price),
		})
	}

	o, err := order.NewOrder(userID, req.AddressID, lines)
	if err != nil {
		return nil, err
	}

	if err := s.orderRepo.Save(ctx, o); err != nil {
		return nil, err
	}

	return &CreateOrderResponse{
		OrderID:   o.ID,
		Status:    o.Status.String(),
		Amount:    o.Amount.StringFixed(2),
		AddressID: o.AddressID,
		Message:   "Order created successfully. Please upload payment screenshot.",
	}, nil
}

// GetByID returns the full order view including lines and, when a
// screenshot has been uploaded, the payment record.
func (s *OrderService) GetByID(ctx context.Context, userID, orderID uuid.UUID, isAdmin bool) (*OrderResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Order not found")
		}
		return nil, err
	}
	if !isAdmin && !o.BelongsTo(userID) {
		return nil, shared.NewDomainError("FORBIDDEN", "Access denied. This order doesn't belong to you.")
	}

	ids := make([]uuid.UUID, 0, len(o.Lines))
	for _, line := range o.Lines {
		ids = append(ids, line.ProductID)
	}
	products, err := s.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*catalog.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	resp := &OrderResponse{
		ID:        o.ID,
		UserID:    o.UserID,
		AddressID: o.AddressID,
		Amount:    o.Amount.StringFixed(2),
		Status:    o.Status.String(),
		Items:     make([]OrderLineResponse, 0, len(o.Lines)),
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
	for _, line := range o.Lines {
		item := OrderLineResponse{
			ID:          line.ID,
			ProductID:   line.ProductID,
			ProductName: "Unknown Product",
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice.StringFixed(2),
			LineTotal:   line.Amount().StringFixed(2),
		}
		if product, ok := byID[line.ProductID]; ok {
			item.ProductName = product.Name
			item.ImagePath = product.ImagePath
		}
		resp.Items = append(resp.Items, item)
	}

	p, err := s.paymentRepo.FindByOrder(ctx, orderID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if p != nil {
		resp.Payment = paymentapp.ToPaymentResponse(p)
	}

	return resp, nil
}

// ListByUser returns the user's orders, newest first
func (s *OrderService) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]OrderSummaryResponse, error) {
	orders, err := s.orderRepo.FindByUser(ctx, userID, normalizeLimit(limit), offset)
	if err != nil {
		return nil, err
	}
	return s.toSummaries(ctx, orders)
}

// ListPending returns all pending orders for the admin dashboard,
// oldest first so the longest-waiting buyers surface on top.
func (s *OrderService) ListPending(ctx context.Context, limit, offset int) ([]OrderSummaryResponse, error) {
	orders, err := s.orderRepo.FindByStatus(ctx, order.StatusPending, normalizeLimit(limit), offset)
	if err != nil {
		return nil, err
	}
	return s.toSummaries(ctx, orders)
}

func (s *OrderService) toSummaries(ctx context.Context, orders []*order.Order) ([]OrderSummaryResponse, error) {
	summaries := make([]OrderSummaryResponse, 0, len(orders))
	for _, o := range orders {
		p, err := s.paymentRepo.FindByOrder(ctx, o.ID)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
		var payDate *time.Time
		if p != nil {
			payDate = p.PayDate
		}
		summaries = append(summaries, toSummary(o, payDate))
	}
	return summaries, nil
}

// Cancel marks a pending order failed on the buyer's request. The
// payment record, if a screenshot was ever uploaded, fails with it.
func (s *OrderService) Cancel(ctx context.Context, userID, orderID uuid.UUID) (*CancelOrderResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Order not found")
		}
		return nil, err
	}
	if !o.BelongsTo(userID) {
		return nil, shared.NewDomainError("FORBIDDEN", "Access denied. This order doesn't belong to you.")
	}

	err = s.txScope.Execute(ctx, func(repos paymentapp.TransactionalRepositories) error {
		o, err := repos.OrderRepo().FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		if err := o.Cancel(); err != nil {
			return err
		}
		if err := repos.OrderRepo().SaveWithLock(ctx, o); err != nil {
			return err
		}

		p, err := repos.PaymentRepo().FindByOrder(ctx, orderID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil
			}
			return err
		}
		if err := p.MarkFailed("Cancelled by user"); err != nil {
			return err
		}
		return repos.PaymentRepo().Save(ctx, p)
	})
	if err != nil {
		return nil, err
	}

	return &CancelOrderResponse{
		OrderID: orderID,
		Status:  order.StatusFailed.String(),
		Message: "Order cancelled successfully",
	}, nil
}

// PaymentStatus is the polling endpoint backing: order status plus
// payment status for one order.
func (s *OrderService) PaymentStatus(ctx context.Context, userID, orderID uuid.UUID, isAdmin bool) (*PaymentStatusResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Order not found")
		}
		return nil, err
	}
	if !isAdmin && !o.BelongsTo(userID) {
		return nil, shared.NewDomainError("FORBIDDEN", "Access denied. This order doesn't belong to you.")
	}

	resp := &PaymentStatusResponse{
		OrderID:       o.ID,
		OrderStatus:   o.Status.String(),
		PaymentStatus: "none",
		Amount:        o.Amount.StringFixed(2),
		CreatedAt:     o.CreatedAt,
	}

	p, err := s.paymentRepo.FindByOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return resp, nil
		}
		return nil, err
	}
	resp.PaymentStatus = p.Status.String()
	resp.Method = string(p.Method)

	return resp, nil
}

func normalizeLimit(limit int) int {
	if limit <= 0 || limit > 100 {
		return 100
	}
	return limit
}
