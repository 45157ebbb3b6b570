package inventory

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopbill/backend/internal/domain/shared"
	"github.com/shopbill/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// DefaultLowStockThreshold is used when a product is created without one
const DefaultLowStockThreshold int64 = 10

// Product is a sellable item of a shop and the owner of its stock quantity.
// StockQuantity only changes through the stock ledger methods below.
type Product struct {
	shared.TenantAggregateRoot
	Name              string
	SKU               string
	Description       string
	Unit              string
	CategoryID        *uuid.UUID
	Price             decimal.Decimal
	TaxRate           decimal.Decimal
	StockQuantity     int64
	LowStockThreshold int64
	IsActive          bool
}

// ProductInput carries the editable attributes of a product
type ProductInput struct {
	Name              string
	SKU               string
	Description       string
	Unit              string
	CategoryID        *uuid.UUID
	Price             decimal.Decimal
	TaxRate           *decimal.Decimal
	LowStockThreshold *int64
}

// NewProduct creates a product with zero stock.
// An empty SKU is allowed here; the application assigns one before saving.
func NewProduct(actor shared.Actor, in ProductInput) (*Product, error) {
	p := &Product{
		TenantAggregateRoot: shared.NewTenantAggregateRootFor(actor),
		TaxRate:             valueobject.DefaultTaxRate,
		LowStockThreshold:   DefaultLowStockThreshold,
		Unit:                "pcs",
		IsActive:            true,
	}
	if err := p.apply(in); err != nil {
		return nil, err
	}

	p.AddDomainEvent(NewProductCreatedEvent(p))
	return p, nil
}

// Update changes the catalog attributes. Stock is never touched here.
func (p *Product) Update(in ProductInput) error {
	if err := p.apply(in); err != nil {
		return err
	}
	p.Touch()
	p.IncrementVersion()
	return nil
}

func (p *Product) apply(in ProductInput) error {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return shared.NewValidationError("product name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewValidationError("product name cannot exceed 200 characters")
	}
	if err := valueobject.ValidatePrice(in.Price); err != nil {
		return shared.NewValidationError("%s", err.Error())
	}
	if in.TaxRate != nil {
		if _, err := valueobject.NewTaxRate(*in.TaxRate); err != nil {
			return shared.NewValidationError("%s", err.Error())
		}
		p.TaxRate = *in.TaxRate
	}
	if in.LowStockThreshold != nil {
		if *in.LowStockThreshold < 0 {
			return shared.NewValidationError("low stock threshold cannot be negative")
		}
		p.LowStockThreshold = *in.LowStockThreshold
	}
	if sku := strings.TrimSpace(in.SKU); sku != "" {
		p.SKU = strings.ToUpper(sku)
	}
	if unit := strings.TrimSpace(in.Unit); unit != "" {
		p.Unit = unit
	}

	p.Name = name
	p.Description = in.Description
	p.CategoryID = in.CategoryID
	p.Price = valueobject.RoundMoney(in.Price)
	return nil
}

// AssignSKU sets a generated SKU on a product that has none
func (p *Product) AssignSKU(sku string) {
	if p.SKU == "" {
		p.SKU = strings.ToUpper(sku)
	}
}

// Deactivate hides the product from new invoices without deleting it
func (p *Product) Deactivate() {
	p.IsActive = false
	p.Touch()
	p.IncrementVersion()
}

// Activate makes the product sellable again
func (p *Product) Activate() {
	p.IsActive = true
	p.Touch()
	p.IncrementVersion()
}

// IsLowStock reports stock at or below the threshold
func (p *Product) IsLowStock() bool {
	return p.StockQuantity <= p.LowStockThreshold
}

// IsOutOfStock reports an empty stock
func (p *Product) IsOutOfStock() bool {
	return p.StockQuantity == 0
}

// HasSufficientStock reports whether quantity can be taken out
func (p *Product) HasSufficientStock(quantity int64) bool {
	return p.StockQuantity >= quantity
}

// TaxRateValue returns the product tax rate as a value object
func (p *Product) TaxRateValue() valueobject.TaxRate {
	return valueobject.MustTaxRate(p.TaxRate)
}

// IncreaseStock adds quantity and returns the movement to record
func (p *Product) IncreaseStock(quantity int64, ref MovementRef) (*StockMovement, error) {
	if err := valueobject.ValidateMovementQuantity(quantity); err != nil {
		return nil, shared.NewValidationError("%s", err.Error())
	}
	return p.move(MovementTypeIn, quantity, p.StockQuantity+quantity, ref), nil
}

// DecreaseStock removes quantity, failing with INSUFFICIENT_STOCK when the
// result would be negative. Nothing is changed on failure.
func (p *Product) DecreaseStock(quantity int64, ref MovementRef) (*StockMovement, error) {
	if err := valueobject.ValidateMovementQuantity(quantity); err != nil {
		return nil, shared.NewValidationError("%s", err.Error())
	}
	if !p.HasSufficientStock(quantity) {
		return nil, p.insufficient(quantity)
	}
	return p.move(MovementTypeOut, quantity, p.StockQuantity-quantity, ref), nil
}

// SetStock overwrites the stock with an absolute level
func (p *Product) SetStock(level int64, ref MovementRef) (*StockMovement, error) {
	if err := valueobject.ValidateStockLevel(level); err != nil {
		return nil, shared.NewValidationError("%s", err.Error())
	}
	return p.move(MovementTypeAdjustment, level-p.StockQuantity, level, ref), nil
}

func (p *Product) move(movementType MovementType, quantity, newLevel int64, ref MovementRef) *StockMovement {
	before := p.StockQuantity
	wasLow := p.IsLowStock()

	p.StockQuantity = newLevel
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	movement := newStockMovement(p, movementType, quantity, before, newLevel, ref)
	p.AddDomainEvent(NewStockChangedEvent(p, movement))
	if !wasLow && p.IsLowStock() {
		p.AddDomainEvent(NewStockBelowThresholdEvent(p))
	}
	return movement
}

func (p *Product) insufficient(requested int64) *shared.DomainError {
	return shared.NewDomainError(shared.CodeInsufficientStock,
		fmt.Sprintf("insufficient stock for %s: requested %d, available %d", p.Name, requested, p.StockQuantity))
}
