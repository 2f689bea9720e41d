package persistence

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/minimart/backend/internal/domain/payment"
	"github.com/minimart/backend/internal/domain/shared"
)

func newMockPaymentRepository(t *testing.T) (*GormPaymentRepository, sqlmock.Sqlmock, *sql.DB) {
	gormDB, mock, mockDB := newMockDB(t)
	return NewGormPaymentRepository(gormDB), mock, mockDB
}

func TestGormPaymentRepository_FindByOrder(t *testing.T) {
	t.Run("finds payment for order", func(t *testing.T) {
		repo, mock, mockDB := newMockPaymentRepository(t)
		defer mockDB.Close()

		paymentID := uuid.New()
		orderID := uuid.New()
		userID := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "version", "order_id", "user_id", "method", "amount", "currency", "status", "transaction_id"}).
			AddRow(paymentID, 1, orderID, userID, "KHQR", decimal.RequireFromString("12.50"), "USD", "paid", "100012345678")

		mock.ExpectQuery(`SELECT \* FROM "payments" WHERE order_id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(orderID, 1).
			WillReturnRows(rows)

		found, err := repo.FindByOrder(context.Background(), orderID)

		assert.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, paymentID, found.ID)
		assert.Equal(t, payment.StatusPaid, found.Status)
		assert.Equal(t, "100012345678", found.TransactionID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns error when order has no payment", func(t *testing.T) {
		repo, mock, mockDB := newMockPaymentRepository(t)
		defer mockDB.Close()

		orderID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "payments" WHERE order_id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(orderID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		found, err := repo.FindByOrder(context.Background(), orderID)

		assert.Error(t, err)
		assert.Nil(t, found)
		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormPaymentRepository_Save(t *testing.T) {
	t.Run("maps unique violation to duplicate transaction", func(t *testing.T) {
		repo, mock, mockDB := newMockPaymentRepository(t)
		defer mockDB.Close()

		p, err := payment.NewPayment(uuid.New(), uuid.New(), decimal.RequireFromString("12.50"))
		require.NoError(t, err)
		require.NoError(t, p.AttachProof("screenshots/proof.jpg", "100012345678", nil))

		mock.ExpectExec(`UPDATE "payments" SET`).
			WillReturnError(&pgconn.PgError{
				Code:           "23505",
				ConstraintName: "idx_payments_transaction_id",
			})

		err = repo.Save(context.Background(), p)

		assert.ErrorIs(t, err, shared.ErrDuplicateTransaction)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("passes other database errors through", func(t *testing.T) {
		repo, mock, mockDB := newMockPaymentRepository(t)
		defer mockDB.Close()

		p, err := payment.NewPayment(uuid.New(), uuid.New(), decimal.RequireFromString("12.50"))
		require.NoError(t, err)

		mock.ExpectExec(`UPDATE "payments" SET`).
			WillReturnError(&pgconn.PgError{Code: "53300"})

		err = repo.Save(context.Background(), p)

		assert.Error(t, err)
		assert.NotErrorIs(t, err, shared.ErrDuplicateTransaction)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormPaymentRepository_ExistsByTransactionID(t *testing.T) {
	t.Run("reports true for recorded transaction", func(t *testing.T) {
		repo, mock, mockDB := newMockPaymentRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT count\(\*\) FROM "payments" WHERE transaction_id = \$1`).
			WithArgs("100012345678").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		exists, err := repo.ExistsByTransactionID(context.Background(), "100012345678")

		assert.NoError(t, err)
		assert.True(t, exists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("reports false for unknown transaction", func(t *testing.T) {
		repo, mock, mockDB := newMockPaymentRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT count\(\*\) FROM "payments" WHERE transaction_id = \$1`).
			WithArgs("999900001111").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		exists, err := repo.ExistsByTransactionID(context.Background(), "999900001111")

		assert.NoError(t, err)
		assert.False(t, exists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
