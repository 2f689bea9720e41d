package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/minimart/backend/internal/domain/catalog"
)

// ProductModel is the persistence model for catalog.Product
type ProductModel struct {
	AggregateModel
	CategoryID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	Name        string          `gorm:"type:varchar(255);not null"`
	Description string          `gorm:"type:text"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	ImagePath   string          `gorm:"type:varchar(512)"`
	Enabled     bool            `gorm:"not null;default:true;index"`
}

// TableName specifies the table name
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the model to a domain Product
func (m *ProductModel) ToDomain() *catalog.Product {
	return &catalog.Product{
		BaseAggregateRoot: m.ToDomainAggregate(),
		CategoryID:        m.CategoryID,
		Name:              m.Name,
		Description:       m.Description,
		Price:             m.Price,
		ImagePath:         m.ImagePath,
		Enabled:           m.Enabled,
	}
}

// FromDomain populates the model from a domain Product
func (m *ProductModel) FromDomain(p *catalog.Product) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.CategoryID = p.CategoryID
	m.Name = p.Name
	m.Description = p.Description
	m.Price = p.Price
	m.ImagePath = p.ImagePath
	m.Enabled = p.Enabled
}

// CategoryModel is the persistence model for catalog.Category
type CategoryModel struct {
	BaseModel
	Name      string `gorm:"type:varchar(255);not null;uniqueIndex"`
	ImagePath string `gorm:"type:varchar(512)"`
}

// TableName specifies the table name
func (CategoryModel) TableName() string {
	return "categories"
}

// ToDomain converts the model to a domain Category
func (m *CategoryModel) ToDomain() *catalog.Category {
	return &catalog.Category{
		BaseEntity: m.BaseModel.ToDomain(),
		Name:       m.Name,
		ImagePath:  m.ImagePath,
	}
}

// FromDomain populates the model from a domain Category
func (m *CategoryModel) FromDomain(c *catalog.Category) {
	m.FromDomainBaseEntity(c.BaseEntity)
	m.Name = c.Name
	m.ImagePath = c.ImagePath
}
