package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopbill/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// InvoiceItem is one line of an invoice. Price and tax rate are a snapshot
// taken when the line was added; later product edits do not affect it.
type InvoiceItem struct {
	ID          uuid.UUID
	InvoiceID   uuid.UUID
	ProductID   *uuid.UUID
	Description string
	Quantity    int64
	UnitPrice   decimal.Decimal
	TaxRate     decimal.Decimal
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ItemInput describes a line to add. Nil price or tax rate means "take it
// from the product".
type ItemInput struct {
	ProductID   *uuid.UUID
	Description string
	Quantity    int64
	UnitPrice   *decimal.Decimal
	TaxRate     *decimal.Decimal
}

// ItemUpdate describes changes to an existing line. Nil fields are left as is.
type ItemUpdate struct {
	Description *string
	Quantity    *int64
	UnitPrice   *decimal.Decimal
	TaxRate     *decimal.Decimal
}

// ProductSnapshot is the product data an invoice line copies at add time
type ProductSnapshot struct {
	ID       uuid.UUID
	Name     string
	Price    decimal.Decimal
	TaxRate  decimal.Decimal
	IsActive bool
}

// HasProduct reports whether the line is tied to a stocked product
func (it *InvoiceItem) HasProduct() bool {
	return it.ProductID != nil
}

// LineTotal returns quantity × unit price
func (it *InvoiceItem) LineTotal() decimal.Decimal {
	return valueobject.LineAmount(it.Quantity, it.UnitPrice)
}

// Tax returns line total × tax rate / 100 unrounded. Invoice totals sum
// these and round once.
func (it *InvoiceItem) Tax() decimal.Decimal {
	return valueobject.MustTaxRate(it.TaxRate).Exact(it.LineTotal())
}

// TaxAmount returns the line tax rounded half up to 2 places, for display
func (it *InvoiceItem) TaxAmount() decimal.Decimal {
	return valueobject.RoundMoney(it.Tax())
}

// TotalWithTax returns line total plus tax
func (it *InvoiceItem) TotalWithTax() decimal.Decimal {
	return it.LineTotal().Add(it.TaxAmount())
}
