package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopbill/backend/internal/domain/inventory"
	"github.com/shopspring/decimal"
)

// ProductModel is the persistence model for the Product aggregate root.
type ProductModel struct {
	AggregateModel
	TenantID          uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_products_tenant_sku,priority:1;index:idx_products_tenant_name,priority:1"`
	SKU               string          `gorm:"column:sku;type:varchar(64);not null;uniqueIndex:idx_products_tenant_sku,priority:2"`
	Name              string          `gorm:"type:varchar(200);not null;index:idx_products_tenant_name,priority:2"`
	Description       string          `gorm:"type:text"`
	Unit              string          `gorm:"type:varchar(20);not null"`
	CategoryID        *uuid.UUID      `gorm:"type:uuid;index"`
	Price             decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	TaxRate           decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	StockQuantity     int64           `gorm:"not null;default:0"`
	LowStockThreshold int64           `gorm:"not null"`
	IsActive          bool            `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product entity.
func (m *ProductModel) ToDomain() *inventory.Product {
	return &inventory.Product{
		TenantAggregateRoot: m.TenantAggregateRoot(m.TenantID),
		Name:                m.Name,
		SKU:                 m.SKU,
		Description:         m.Description,
		Unit:                m.Unit,
		CategoryID:          m.CategoryID,
		Price:               m.Price,
		TaxRate:             m.TaxRate,
		StockQuantity:       m.StockQuantity,
		LowStockThreshold:   m.LowStockThreshold,
		IsActive:            m.IsActive,
	}
}

// FromDomain populates the persistence model from a domain Product entity.
func (m *ProductModel) FromDomain(p *inventory.Product) {
	m.TenantID = m.FromDomainTenantAggregateRoot(p.TenantAggregateRoot)
	m.Name = p.Name
	m.SKU = p.SKU
	m.Description = p.Description
	m.Unit = p.Unit
	m.CategoryID = p.CategoryID
	m.Price = p.Price
	m.TaxRate = p.TaxRate
	m.StockQuantity = p.StockQuantity
	m.LowStockThreshold = p.LowStockThreshold
	m.IsActive = p.IsActive
}

// ProductModelFromDomain creates a new persistence model from a domain Product entity.
func ProductModelFromDomain(p *inventory.Product) *ProductModel {
	m := &ProductModel{}
	m.FromDomain(p)
	return m
}

// CategoryModel is the persistence model for the Category aggregate root.
type CategoryModel struct {
	AggregateModel
	TenantID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_categories_tenant_name,priority:1"`
	Name        string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_categories_tenant_name,priority:2"`
	Description string    `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (CategoryModel) TableName() string {
	return "categories"
}

// ToDomain converts the persistence model to a domain Category entity.
func (m *CategoryModel) ToDomain() *inventory.Category {
	return &inventory.Category{
		TenantAggregateRoot: m.TenantAggregateRoot(m.TenantID),
		Name:                m.Name,
		Description:         m.Description,
	}
}

// CategoryModelFromDomain creates a new persistence model from a domain Category entity.
func CategoryModelFromDomain(c *inventory.Category) *CategoryModel {
	m := &CategoryModel{}
	m.TenantID = m.FromDomainTenantAggregateRoot(c.TenantAggregateRoot)
	m.Name = c.Name
	m.Description = c.Description
	return m
}

// StockMovementModel is the persistence model for the append-only stock
// audit trail. It has no updated_at and no version.
type StockMovementModel struct {
	ID            uuid.UUID              `gorm:"type:uuid;primaryKey"`
	TenantID      uuid.UUID              `gorm:"type:uuid;not null;index:idx_stock_movements_product,priority:1"`
	ProductID     uuid.UUID              `gorm:"type:uuid;not null;index:idx_stock_movements_product,priority:2"`
	Type          inventory.MovementType `gorm:"column:movement_type;type:varchar(20);not null"`
	Quantity      int64                  `gorm:"not null"`
	BalanceBefore int64                  `gorm:"not null"`
	BalanceAfter  int64                  `gorm:"not null"`
	SourceType    inventory.SourceType   `gorm:"type:varchar(30);not null;default:'manual';index:idx_stock_movements_source,priority:1"`
	SourceID      *uuid.UUID             `gorm:"type:uuid;index:idx_stock_movements_source,priority:2"`
	Reference     string                 `gorm:"type:varchar(100)"`
	Notes         string                 `gorm:"type:text"`
	CreatedBy     *uuid.UUID             `gorm:"type:uuid"`
	CreatedAt     time.Time              `gorm:"not null;index:idx_stock_movements_product,priority:3"`
}

// TableName returns the table name for GORM
func (StockMovementModel) TableName() string {
	return "stock_movements"
}

// ToDomain converts the persistence model to a domain StockMovement.
func (m *StockMovementModel) ToDomain() *inventory.StockMovement {
	return &inventory.StockMovement{
		ID:            m.ID,
		TenantID:      m.TenantID,
		ProductID:     m.ProductID,
		Type:          m.Type,
		Quantity:      m.Quantity,
		BalanceBefore: m.BalanceBefore,
		BalanceAfter:  m.BalanceAfter,
		SourceType:    m.SourceType,
		SourceID:      m.SourceID,
		Reference:     m.Reference,
		Notes:         m.Notes,
		CreatedBy:     m.CreatedBy,
		CreatedAt:     m.CreatedAt,
	}
}

// StockMovementModelFromDomain creates a new persistence model from a domain StockMovement.
func StockMovementModelFromDomain(s *inventory.StockMovement) *StockMovementModel {
	return &StockMovementModel{
		ID:            s.ID,
		TenantID:      s.TenantID,
		ProductID:     s.ProductID,
		Type:          s.Type,
		Quantity:      s.Quantity,
		BalanceBefore: s.BalanceBefore,
		BalanceAfter:  s.BalanceAfter,
		SourceType:    s.SourceType,
		SourceID:      s.SourceID,
		Reference:     s.Reference,
		Notes:         s.Notes,
		CreatedBy:     s.CreatedBy,
		CreatedAt:     s.CreatedAt,
	}
}
