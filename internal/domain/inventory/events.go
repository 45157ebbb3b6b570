package inventory

import (
	"github.com/google/uuid"
	"github.com/shopbill/backend/internal/domain/shared"
)

// AggregateTypeProduct is the aggregate type of product events
const AggregateTypeProduct = "Product"

// Event type constants
const (
	EventTypeProductCreated      = "ProductCreated"
	EventTypeStockChanged        = "StockChanged"
	EventTypeStockBelowThreshold = "StockBelowThreshold"
)

// ProductCreatedEvent is raised when a product is added to the catalog
type ProductCreatedEvent struct {
	shared.BaseDomainEvent
	ProductID uuid.UUID `json:"product_id"`
	SKU       string    `json:"sku"`
	Name      string    `json:"name"`
}

// NewProductCreatedEvent creates a new ProductCreatedEvent
func NewProductCreatedEvent(p *Product) *ProductCreatedEvent {
	return &ProductCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductCreated, AggregateTypeProduct, p.ID, p.TenantID),
		ProductID:       p.ID,
		SKU:             p.SKU,
		Name:            p.Name,
	}
}

// StockChangedEvent is raised for every stock movement
type StockChangedEvent struct {
	shared.BaseDomainEvent
	ProductID     uuid.UUID    `json:"product_id"`
	MovementType  MovementType `json:"movement_type"`
	Quantity      int64        `json:"quantity"`
	BalanceBefore int64        `json:"balance_before"`
	BalanceAfter  int64        `json:"balance_after"`
	SourceType    SourceType   `json:"source_type"`
	Reference     string       `json:"reference,omitempty"`
}

// NewStockChangedEvent creates a new StockChangedEvent
func NewStockChangedEvent(p *Product, m *StockMovement) *StockChangedEvent {
	return &StockChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockChanged, AggregateTypeProduct, p.ID, p.TenantID),
		ProductID:       p.ID,
		MovementType:    m.Type,
		Quantity:        m.Quantity,
		BalanceBefore:   m.BalanceBefore,
		BalanceAfter:    m.BalanceAfter,
		SourceType:      m.SourceType,
		Reference:       m.Reference,
	}
}

// StockBelowThresholdEvent is raised when stock drops to or below the low-stock threshold
type StockBelowThresholdEvent struct {
	shared.BaseDomainEvent
	ProductID     uuid.UUID `json:"product_id"`
	SKU           string    `json:"sku"`
	Name          string    `json:"name"`
	StockQuantity int64     `json:"stock_quantity"`
	Threshold     int64     `json:"threshold"`
}

// NewStockBelowThresholdEvent creates a new StockBelowThresholdEvent
func NewStockBelowThresholdEvent(p *Product) *StockBelowThresholdEvent {
	return &StockBelowThresholdEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockBelowThreshold, AggregateTypeProduct, p.ID, p.TenantID),
		ProductID:       p.ID,
		SKU:             p.SKU,
		Name:            p.Name,
		StockQuantity:   p.StockQuantity,
		Threshold:       p.LowStockThreshold,
	}
}
