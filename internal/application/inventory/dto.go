package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopbill/backend/internal/domain/inventory"
	"github.com/shopspring/decimal"
)

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID                uuid.UUID       `json:"id"`
	TenantID          uuid.UUID       `json:"tenant_id"`
	Name              string          `json:"name"`
	SKU               string          `json:"sku"`
	Description       string          `json:"description"`
	Unit              string          `json:"unit"`
	CategoryID        *uuid.UUID      `json:"category_id,omitempty"`
	Price             decimal.Decimal `json:"price"`
	TaxRate           decimal.Decimal `json:"tax_rate"`
	StockQuantity     int64           `json:"stock_quantity"`
	LowStockThreshold int64           `json:"low_stock_threshold"`
	IsLowStock        bool            `json:"is_low_stock"`
	IsActive          bool            `json:"is_active"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
	Version           int             `json:"version"`
}

// ProductListFilter represents filter options for product list
type ProductListFilter struct {
	Search     string     `form:"search"`
	CategoryID *uuid.UUID `form:"-"`
	IsActive   *bool      `form:"is_active"`
	LowStock   *bool      `form:"low_stock"`
	Page       int        `form:"page" binding:"omitempty,min=1"`
	PageSize   int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy    string     `form:"order_by" binding:"omitempty,oneof=name sku price stock_quantity created_at updated_at"`
	OrderDir   string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// CreateProductRequest represents a request to create a product.
// Stock always starts at zero; use a stock adjustment to receive goods.
type CreateProductRequest struct {
	Name              string           `json:"name" binding:"required,min=1,max=200"`
	SKU               string           `json:"sku" binding:"omitempty,max=50"`
	Description       string           `json:"description"`
	Unit              string           `json:"unit" binding:"omitempty,max=20"`
	CategoryID        *uuid.UUID       `json:"category_id"`
	Price             decimal.Decimal  `json:"price" binding:"decimal_gte0"`
	TaxRate           *decimal.Decimal `json:"tax_rate" binding:"omitempty,decimal_gte0"`
	LowStockThreshold *int64           `json:"low_stock_threshold" binding:"omitempty,min=0"`
}

// UpdateProductRequest represents a request to update a product
type UpdateProductRequest struct {
	Name              *string          `json:"name" binding:"omitempty,min=1,max=200"`
	SKU               *string          `json:"sku" binding:"omitempty,max=50"`
	Description       *string          `json:"description"`
	Unit              *string          `json:"unit" binding:"omitempty,max=20"`
	CategoryID        *uuid.UUID       `json:"category_id"`
	ClearCategory     bool             `json:"clear_category"`
	Price             *decimal.Decimal `json:"price" binding:"omitempty,decimal_gte0"`
	TaxRate           *decimal.Decimal `json:"tax_rate" binding:"omitempty,decimal_gte0"`
	LowStockThreshold *int64           `json:"low_stock_threshold" binding:"omitempty,min=0"`
	IsActive          *bool            `json:"is_active"`
}

// AdjustStockMode selects how an adjustment quantity is interpreted
type AdjustStockMode string

const (
	AdjustModeIncrease AdjustStockMode = "increase"
	AdjustModeDecrease AdjustStockMode = "decrease"
	AdjustModeSet      AdjustStockMode = "set"
)

// AdjustStockRequest represents a manual stock adjustment
type AdjustStockRequest struct {
	Mode      AdjustStockMode `json:"mode" binding:"required,oneof=increase decrease set"`
	Quantity  int64           `json:"quantity" binding:"min=0"`
	Reference string          `json:"reference" binding:"omitempty,max=100"`
	Notes     string          `json:"notes" binding:"omitempty,max=500"`
}

// StockAdjustmentResponse is the result of a stock adjustment
type StockAdjustmentResponse struct {
	Product  ProductResponse       `json:"product"`
	Movement StockMovementResponse `json:"movement"`
}

// StockMovementResponse represents a stock movement in API responses
type StockMovementResponse struct {
	ID            uuid.UUID  `json:"id"`
	ProductID     uuid.UUID  `json:"product_id"`
	Type          string     `json:"type"`
	Quantity      int64      `json:"quantity"`
	BalanceBefore int64      `json:"balance_before"`
	BalanceAfter  int64      `json:"balance_after"`
	SourceType    string     `json:"source_type"`
	SourceID      *uuid.UUID `json:"source_id,omitempty"`
	Reference     string     `json:"reference,omitempty"`
	Notes         string     `json:"notes,omitempty"`
	CreatedBy     *uuid.UUID `json:"created_by,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// MovementListFilter represents paging options for movement history
type MovementListFilter struct {
	SourceType string `form:"source_type" binding:"omitempty,oneof=manual invoice invoice_cancel"`
	Page       int    `form:"page" binding:"omitempty,min=1"`
	PageSize   int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// CategoryResponse represents a category in API responses
type CategoryResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CategoryListFilter represents filter options for category list
type CategoryListFilter struct {
	Search   string `form:"search"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// CreateCategoryRequest represents a request to create a category
type CreateCategoryRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Description string `json:"description"`
}

// UpdateCategoryRequest represents a request to update a category
type UpdateCategoryRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=100"`
	Description *string `json:"description"`
}

// ToProductResponse converts a domain Product to ProductResponse
func ToProductResponse(p *inventory.Product) ProductResponse {
	return ProductResponse{
		ID:                p.ID,
		TenantID:          p.TenantID,
		Name:              p.Name,
		SKU:               p.SKU,
		Description:       p.Description,
		Unit:              p.Unit,
		CategoryID:        p.CategoryID,
		Price:             p.Price,
		TaxRate:           p.TaxRate,
		StockQuantity:     p.StockQuantity,
		LowStockThreshold: p.LowStockThreshold,
		IsLowStock:        p.IsLowStock(),
		IsActive:          p.IsActive,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
		Version:           p.Version,
	}
}

// ToProductResponses converts a slice of products
func ToProductResponses(products []inventory.Product) []ProductResponse {
	responses := make([]ProductResponse, len(products))
	for i := range products {
		responses[i] = ToProductResponse(&products[i])
	}
	return responses
}

// ToStockMovementResponse converts a domain StockMovement to StockMovementResponse
func ToStockMovementResponse(m *inventory.StockMovement) StockMovementResponse {
	return StockMovementResponse{
		ID:            m.ID,
		ProductID:     m.ProductID,
		Type:          string(m.Type),
		Quantity:      m.Quantity,
		BalanceBefore: m.BalanceBefore,
		BalanceAfter:  m.BalanceAfter,
		SourceType:    string(m.SourceType),
		SourceID:      m.SourceID,
		Reference:     m.Reference,
		Notes:         m.Notes,
		CreatedBy:     m.CreatedBy,
		CreatedAt:     m.CreatedAt,
	}
}

// ToCategoryResponse converts a domain Category to CategoryResponse
func ToCategoryResponse(c *inventory.Category) CategoryResponse {
	return CategoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}
