package models

import (
	"github.com/google/uuid"

	"github.com/minimart/backend/internal/domain/inventory"
)

// StockModel is the persistence model for inventory.Stock. One row
// per product, written under optimistic locking.
type StockModel struct {
	AggregateModel
	ProductID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	Quantity  int       `gorm:"not null"`
}

// TableName specifies the table name
func (StockModel) TableName() string {
	return "stocks"
}

// ToDomain converts the model to a domain Stock
func (m *StockModel) ToDomain() *inventory.Stock {
	return &inventory.Stock{
		BaseAggregateRoot: m.ToDomainAggregate(),
		ProductID:         m.ProductID,
		Quantity:          m.Quantity,
	}
}

// FromDomain populates the model from a domain Stock
func (m *StockModel) FromDomain(s *inventory.Stock) {
	m.FromDomainAggregateRoot(s.BaseAggregateRoot)
	m.ProductID = s.ProductID
	m.Quantity = s.Quantity
}
