package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/minimart/backend/internal/domain/order"
)

// OrderModel is the persistence model for order.Order
type OrderModel struct {
	AggregateModel
	UserID       uuid.UUID        `gorm:"type:uuid;not null;index"`
	AddressID    *uuid.UUID       `gorm:"type:uuid"`
	Amount       decimal.Decimal  `gorm:"type:decimal(12,2);not null"`
	Status       string           `gorm:"type:varchar(16);not null;index"`
	FailedReason string           `gorm:"type:varchar(512)"`
	PaidAt       *time.Time       `gorm:""`
	FailedAt     *time.Time       `gorm:""`
	Lines        []OrderLineModel `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name
func (OrderModel) TableName() string {
	return "orders"
}

// OrderLineModel is the persistence model for order.Line
type OrderLineModel struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key"`
	OrderID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity  int             `gorm:"not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CreatedAt time.Time       `gorm:"not null"`
}

// TableName specifies the table name
func (OrderLineModel) TableName() string {
	return "order_lines"
}

// ToDomain converts the model to a domain Order
func (m *OrderModel) ToDomain() *order.Order {
	o := &order.Order{
		BaseAggregateRoot: m.ToDomainAggregate(),
		UserID:            m.UserID,
		AddressID:         m.AddressID,
		Amount:            m.Amount,
		Status:            order.Status(m.Status),
		FailedReason:      m.FailedReason,
		PaidAt:            m.PaidAt,
		FailedAt:          m.FailedAt,
		Lines:             make([]order.Line, 0, len(m.Lines)),
	}
	for _, line := range m.Lines {
		o.Lines = append(o.Lines, order.Line{
			ID:        line.ID,
			OrderID:   line.OrderID,
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			CreatedAt: line.CreatedAt,
		})
	}
	return o
}

// FromDomain populates the model from a domain Order
func (m *OrderModel) FromDomain(o *order.Order) {
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)
	m.UserID = o.UserID
	m.AddressID = o.AddressID
	m.Amount = o.Amount
	m.Status = o.Status.String()
	m.FailedReason = o.FailedReason
	m.PaidAt = o.PaidAt
	m.FailedAt = o.FailedAt
	m.Lines = make([]OrderLineModel, 0, len(o.Lines))
	for _, line := range o.Lines {
		m.Lines = append(m.Lines, OrderLineModel{
			ID:        line.ID,
			OrderID:   line.OrderID,
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			CreatedAt: line.CreatedAt,
		})
	}
}
