package payment

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/minimart/backend/internal/domain/order"
	"github.com/minimart/backend/internal/domain/payment"
	"github.com/minimart/backend/internal/domain/shared"
)

// VerificationService runs the screenshot verification pipeline: store
// the image, extract text, parse facts, check them against the order,
// and on success commit the paid transition together with the stock
// decrement in one transaction.
type VerificationService struct {
	orderRepo   order.Repository
	paymentRepo payment.Repository
	txScope     TransactionScope
	extractor   TextExtractor
	storage     ScreenshotStorage
	logger      *zap.Logger
}

// NewVerificationService creates a new VerificationService
func NewVerificationService(
	orderRepo order.Repository,
	paymentRepo payment.Repository,
	txScope TransactionScope,
	extractor TextExtractor,
	storage ScreenshotStorage,
	logger *zap.Logger,
) *VerificationService {
	return &VerificationService{
		orderRepo:   orderRepo,
		paymentRepo: paymentRepo,
		txScope:     txScope,
		extractor:   extractor,
		storage:     storage,
		logger:      logger,
	}
}

// UploadScreenshot verifies a payment screenshot against its order.
// Rejected uploads leave the order pending so the buyer can retry, and
// the stored screenshot is removed on every failure path: only a
// verified payment keeps its proof on disk.
func (s *VerificationService) UploadScreenshot(ctx context.Context, req UploadScreenshotRequest) (*UploadScreenshotResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, req.OrderID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Order not found")
		}
		return nil, err
	}

	if !o.BelongsTo(req.UserID) {
		return nil, shared.NewDomainError("FORBIDDEN", "Access denied. This order doesn't belong to you.")
	}
	if !o.IsPending() {
		return nil, shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Order is not pending. Current status: %s", o.Status))
	}

	// The payment record is created on the first upload, not at order
	// creation. A pending order without a payment has simply never
	// been paid against.
	p, err := s.paymentRepo.FindByOrder(ctx, req.OrderID)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
		p, err = payment.NewPayment(o.ID, o.UserID, o.Amount)
		if err != nil {
			return nil, err
		}
		if err := s.paymentRepo.Save(ctx, p); err != nil {
			return nil, err
		}
	}

	name := fmt.Sprintf("%s/%s%s", o.ID, uuid.New(), extension(req.Filename))
	path, err := s.storage.Put(ctx, name, req.ContentType, bytes.NewReader(req.Image))
	if err != nil {
		return nil, fmt.Errorf("store screenshot: %w", err)
	}

	// Every failure from here on deletes the stored screenshot so
	// rejected proofs never accumulate.
	verified := false
	defer func() {
		if verified {
			return
		}
		if delErr := s.storage.Delete(context.WithoutCancel(ctx), path); delErr != nil {
			s.logger.Warn("failed to delete rejected screenshot",
				zap.String("path", path), zap.Error(delErr))
		}
	}()

	text, err := s.extractor.ExtractText(ctx, req.Image)
	if err != nil {
		if errors.Is(err, ErrNoTextDetected) || isExtractionTimeout(err) {
			return nil, shared.NewDomainError("EXTRACTION_FAILED",
				"Could not read the screenshot. Please upload a clear payment screenshot.")
		}
		return nil, fmt.Errorf("extract text: %w", err)
	}

	facts := payment.ExtractFacts(text)

	if facts.TransactionID == "" {
		return nil, shared.NewDomainError("MISSING_TRANSACTION_ID",
			"Could not find Transaction ID in screenshot. Please upload a clear payment screenshot.")
	}

	used, err := s.paymentRepo.ExistsByTransactionID(ctx, facts.TransactionID)
	if err != nil {
		return nil, err
	}
	if used {
		s.logger.Info("duplicate transaction rejected",
			zap.String("order_id", o.ID.String()),
			zap.String("transaction_id", facts.TransactionID))
		return nil, shared.NewDomainError("DUPLICATE_TRANSACTION",
			"This payment screenshot has already been used. Transaction ID: "+facts.TransactionID)
	}

	if facts.Amount == nil || !facts.Amount.Equal(o.Amount) {
		return nil, shared.NewDomainError("AMOUNT_MISMATCH",
			fmt.Sprintf("Amount in screenshot doesn't match order amount. Expected: $%s. Please upload correct payment screenshot.",
				o.Amount.StringFixed(2)))
	}

	if err := p.AttachProof(path, facts.TransactionID, facts.TransactionDate); err != nil {
		return nil, err
	}

	if err := s.commitPaid(ctx, o.ID, p); err != nil {
		return nil, err
	}
	verified = true

	s.logger.Info("payment verified",
		zap.String("order_id", o.ID.String()),
		zap.String("transaction_id", facts.TransactionID),
		zap.String("amount", o.Amount.StringFixed(2)))

	return &UploadScreenshotResponse{
		OrderID:         o.ID,
		Status:          order.StatusPaid.String(),
		Message:         "Payment verified and confirmed automatically!",
		TransactionID:   facts.TransactionID,
		TransactionDate: facts.TransactionDate,
	}, nil
}

// commitPaid flips payment and order to paid and decrements stock for
// every line, all in one transaction. A version conflict means another
// writer committed between our reads and writes; one retry re-reads
// every row, so a stock row depleted by the winner reports insufficient
// stock instead of the bare conflict.
func (s *VerificationService) commitPaid(ctx context.Context, orderID uuid.UUID, p *payment.Payment) error {
	err := s.paidTransition(ctx, orderID, p)
	if errors.Is(err, shared.ErrConcurrencyConflict) {
		err = s.paidTransition(ctx, orderID, p)
	}
	return err
}

// paidTransition is a single attempt at the paid commit. The order is
// re-read inside the scope so the status check and the write see the
// same row.
func (s *VerificationService) paidTransition(ctx context.Context, orderID uuid.UUID, p *payment.Payment) error {
	return s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		o, err := repos.OrderRepo().FindByID(ctx, orderID)
		if err != nil {
			return err
		}

		// Already paid in memory when this is the retry after a
		// rolled-back attempt.
		if p.Status != payment.StatusPaid {
			if err := p.MarkPaid(); err != nil {
				return err
			}
		}
		if err := repos.PaymentRepo().Save(ctx, p); err != nil {
			return err
		}

		if err := o.MarkPaid(); err != nil {
			return err
		}
		if err := repos.OrderRepo().SaveWithLock(ctx, o); err != nil {
			return err
		}

		for _, line := range o.Lines {
			stock, err := repos.StockRepo().FindByProduct(ctx, line.ProductID)
			if err != nil {
				if errors.Is(err, shared.ErrNotFound) {
					return shared.NewDomainError("NOT_FOUND",
						fmt.Sprintf("Stock not found for product: %s", line.ProductID))
				}
				return err
			}
			if err := stock.Decrement(line.Quantity); err != nil {
				return err
			}
			if err := repos.StockRepo().SaveWithLock(ctx, stock); err != nil {
				return err
			}
		}

		return nil
	})
}

// ConfirmPayment is the admin override: mark a pending order paid when
// the transfer was verified by hand against the bank account. Runs the
// same atomic paid transition as automatic verification.
func (s *VerificationService) ConfirmPayment(ctx context.Context, orderID uuid.UUID) (*AdminDecisionResponse, error) {
	p, err := s.paymentRepo.FindByOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Payment not found")
		}
		return nil, err
	}

	if err := s.commitPaid(ctx, orderID, p); err != nil {
		return nil, err
	}

	s.logger.Info("payment confirmed by admin", zap.String("order_id", orderID.String()))

	return &AdminDecisionResponse{
		OrderID: orderID,
		Status:  order.StatusPaid.String(),
		Message: "Payment confirmed and stock deducted successfully",
	}, nil
}

// RejectPayment is the admin override: mark a pending order failed.
// Stock is not touched.
func (s *VerificationService) RejectPayment(ctx context.Context, orderID uuid.UUID, reason string) (*AdminDecisionResponse, error) {
	if reason == "" {
		reason = "Invalid payment"
	}

	p, err := s.paymentRepo.FindByOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Payment not found")
		}
		return nil, err
	}

	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		o, err := repos.OrderRepo().FindByID(ctx, orderID)
		if err != nil {
			return err
		}

		if err := p.MarkFailed(reason); err != nil {
			return err
		}
		if err := repos.PaymentRepo().Save(ctx, p); err != nil {
			return err
		}

		if err := o.MarkFailed(reason); err != nil {
			return err
		}
		return repos.OrderRepo().SaveWithLock(ctx, o)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("payment rejected by admin",
		zap.String("order_id", orderID.String()), zap.String("reason", reason))

	return &AdminDecisionResponse{
		OrderID: orderID,
		Status:  order.StatusFailed.String(),
		Message: "Payment rejected: " + reason,
	}, nil
}

// GetByOrder returns the payment attached to an order, enforcing
// ownership for non-admin callers.
func (s *VerificationService) GetByOrder(ctx context.Context, userID, orderID uuid.UUID, isAdmin bool) (*PaymentResponse, error) {
	p, err := s.paymentRepo.FindByOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Payment not found")
		}
		return nil, err
	}

	if !isAdmin && p.UserID != userID {
		return nil, shared.NewDomainError("FORBIDDEN", "Access denied. This order doesn't belong to you.")
	}

	return ToPaymentResponse(p), nil
}

// isExtractionTimeout reports whether the extractor gave up waiting on
// its backend. To the buyer that is an unreadable screenshot, not a
// server fault.
func isExtractionTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func extension(filename string) string {
	for i := len(filename) - 1; i >= 0 && filename[i] != '/'; i-- {
		if filename[i] == '.' {
			return filename[i:]
		}
	}
	return ""
}
