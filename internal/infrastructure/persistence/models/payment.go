package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/minimart/backend/internal/domain/payment"
)

// PaymentModel is the persistence model for payment.Payment. The
// unique index on TransactionID is the hard duplicate-screenshot
// defense; the application check only produces the friendlier error.
type PaymentModel struct {
	AggregateModel
	OrderID         uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	UserID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	Method          string          `gorm:"type:varchar(32);not null"`
	Amount          decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Currency        string          `gorm:"type:varchar(3);not null"`
	Status          string          `gorm:"type:varchar(16);not null;index"`
	ScreenshotPath  string          `gorm:"type:varchar(512)"`
	TransactionID   *string         `gorm:"type:varchar(64);uniqueIndex"`
	TransactionDate *time.Time      `gorm:""`
	PayDate         *time.Time      `gorm:""`
	FailedReason    string          `gorm:"type:varchar(512)"`
}

// TableName specifies the table name
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the model to a domain Payment
func (m *PaymentModel) ToDomain() *payment.Payment {
	p := &payment.Payment{
		BaseAggregateRoot: m.ToDomainAggregate(),
		OrderID:           m.OrderID,
		UserID:            m.UserID,
		Method:            payment.Method(m.Method),
		Amount:            m.Amount,
		Currency:          m.Currency,
		Status:            payment.Status(m.Status),
		ScreenshotPath:    m.ScreenshotPath,
		TransactionDate:   m.TransactionDate,
		PayDate:           m.PayDate,
		FailedReason:      m.FailedReason,
	}
	if m.TransactionID != nil {
		p.TransactionID = *m.TransactionID
	}
	return p
}

// FromDomain populates the model from a domain Payment
func (m *PaymentModel) FromDomain(p *payment.Payment) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.OrderID = p.OrderID
	m.UserID = p.UserID
	m.Method = string(p.Method)
	m.Amount = p.Amount
	m.Currency = p.Currency
	m.Status = p.Status.String()
	m.ScreenshotPath = p.ScreenshotPath
	// NULL, not empty string: the unique index must ignore payments
	// that have no transaction yet.
	if p.TransactionID != "" {
		id := p.TransactionID
		m.TransactionID = &id
	} else {
		m.TransactionID = nil
	}
	m.TransactionDate = p.TransactionDate
	m.PayDate = p.PayDate
	m.FailedReason = p.FailedReason
}
