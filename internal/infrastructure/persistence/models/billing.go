package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopbill/backend/internal/domain/billing"
	"github.com/shopbill/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// InvoiceModel is the persistence model for the Invoice aggregate root.
type InvoiceModel struct {
	AggregateModel
	TenantID       uuid.UUID             `gorm:"type:uuid;not null;uniqueIndex:idx_invoices_tenant_number,priority:1;index:idx_invoices_tenant_status,priority:1"`
	InvoiceNumber  string                `gorm:"type:varchar(50);not null;uniqueIndex:idx_invoices_tenant_number,priority:2"`
	CustomerID     uuid.UUID             `gorm:"type:uuid;not null;index"`
	Status         billing.InvoiceStatus `gorm:"type:varchar(20);not null;default:'draft';index:idx_invoices_tenant_status,priority:2"`
	InvoiceDate    time.Time             `gorm:"type:date;not null"`
	DueDate        time.Time             `gorm:"type:date;not null;index"`
	PaidDate       *time.Time            `gorm:"type:date"`
	Subtotal       decimal.Decimal       `gorm:"type:decimal(18,2);not null;default:0"`
	TaxAmount      decimal.Decimal       `gorm:"type:decimal(18,2);not null;default:0"`
	DiscountAmount decimal.Decimal       `gorm:"type:decimal(18,2);not null;default:0"`
	TotalAmount    decimal.Decimal       `gorm:"type:decimal(18,2);not null;default:0"`
	PaidAmount     decimal.Decimal       `gorm:"type:decimal(18,2);not null;default:0"`
	StockApplied   bool                  `gorm:"not null;default:false"`
	Notes          string                `gorm:"type:text"`
	Terms          string                `gorm:"type:text"`
	Items          []InvoiceItemModel    `gorm:"foreignKey:InvoiceID;references:ID"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts the persistence model to a domain Invoice. Items are
// included when they were preloaded.
func (m *InvoiceModel) ToDomain() *billing.Invoice {
	inv := &billing.Invoice{
		TenantAggregateRoot: m.TenantAggregateRoot(m.TenantID),
		InvoiceNumber:       m.InvoiceNumber,
		CustomerID:          m.CustomerID,
		Status:              m.Status,
		InvoiceDate:         shared.Today(m.InvoiceDate),
		DueDate:             shared.Today(m.DueDate),
		Subtotal:            m.Subtotal,
		TaxAmount:           m.TaxAmount,
		DiscountAmount:      m.DiscountAmount,
		TotalAmount:         m.TotalAmount,
		PaidAmount:          m.PaidAmount,
		StockApplied:        m.StockApplied,
		Notes:               m.Notes,
		Terms:               m.Terms,
		Items:               make([]billing.InvoiceItem, len(m.Items)),
	}
	if m.PaidDate != nil {
		paid := shared.Today(*m.PaidDate)
		inv.PaidDate = &paid
	}
	for i := range m.Items {
		inv.Items[i] = m.Items[i].ToDomain()
	}
	return inv
}

// FromDomain populates the persistence model from a domain Invoice.
func (m *InvoiceModel) FromDomain(inv *billing.Invoice) {
	m.TenantID = m.FromDomainTenantAggregateRoot(inv.TenantAggregateRoot)
	m.InvoiceNumber = inv.InvoiceNumber
	m.CustomerID = inv.CustomerID
	m.Status = inv.Status
	m.InvoiceDate = inv.InvoiceDate
	m.DueDate = inv.DueDate
	m.PaidDate = inv.PaidDate
	m.Subtotal = inv.Subtotal
	m.TaxAmount = inv.TaxAmount
	m.DiscountAmount = inv.DiscountAmount
	m.TotalAmount = inv.TotalAmount
	m.PaidAmount = inv.PaidAmount
	m.StockApplied = inv.StockApplied
	m.Notes = inv.Notes
	m.Terms = inv.Terms
	m.Items = make([]InvoiceItemModel, len(inv.Items))
	for i := range inv.Items {
		m.Items[i] = InvoiceItemModelFromDomain(inv.TenantID, inv.ID, &inv.Items[i])
	}
}

// InvoiceModelFromDomain creates a new persistence model from a domain Invoice.
func InvoiceModelFromDomain(inv *billing.Invoice) *InvoiceModel {
	m := &InvoiceModel{}
	m.FromDomain(inv)
	return m
}

// InvoiceItemModel is the persistence model for an invoice line.
type InvoiceItemModel struct {
	BaseModel
	TenantID    uuid.UUID       `gorm:"type:uuid;not null"`
	InvoiceID   uuid.UUID       `gorm:"type:uuid;not null;index;uniqueIndex:uq_invoice_items_invoice_product,priority:1,where:product_id IS NOT NULL"`
	ProductID   *uuid.UUID      `gorm:"type:uuid;index;uniqueIndex:uq_invoice_items_invoice_product,priority:2"`
	Description string          `gorm:"type:varchar(500);not null"`
	Quantity    int64           `gorm:"not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	TaxRate     decimal.Decimal `gorm:"type:decimal(5,2);not null"`
}

// TableName returns the table name for GORM
func (InvoiceItemModel) TableName() string {
	return "invoice_items"
}

// ToDomain converts the persistence model to a domain InvoiceItem.
func (m *InvoiceItemModel) ToDomain() billing.InvoiceItem {
	return billing.InvoiceItem{
		ID:          m.ID,
		InvoiceID:   m.InvoiceID,
		ProductID:   m.ProductID,
		Description: m.Description,
		Quantity:    m.Quantity,
		UnitPrice:   m.UnitPrice,
		TaxRate:     m.TaxRate,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// InvoiceItemModelFromDomain creates a persistence model for one line.
func InvoiceItemModelFromDomain(tenantID, invoiceID uuid.UUID, it *billing.InvoiceItem) InvoiceItemModel {
	return InvoiceItemModel{
		BaseModel: BaseModel{
			ID:        it.ID,
			CreatedAt: it.CreatedAt,
			UpdatedAt: it.UpdatedAt,
		},
		TenantID:    tenantID,
		InvoiceID:   invoiceID,
		ProductID:   it.ProductID,
		Description: it.Description,
		Quantity:    it.Quantity,
		UnitPrice:   it.UnitPrice,
		TaxRate:     it.TaxRate,
	}
}

// PaymentModel is the persistence model for a payment. Payments are never
// updated, so there is no updated_at.
type PaymentModel struct {
	ID        uuid.UUID             `gorm:"type:uuid;primaryKey"`
	TenantID  uuid.UUID             `gorm:"type:uuid;not null;index:idx_payments_invoice,priority:1"`
	InvoiceID uuid.UUID             `gorm:"type:uuid;not null;index:idx_payments_invoice,priority:2"`
	Amount    decimal.Decimal       `gorm:"type:decimal(18,2);not null"`
	Method    billing.PaymentMethod `gorm:"type:varchar(30);not null;default:'cash'"`
	Reference string                `gorm:"type:varchar(100)"`
	Notes     string                `gorm:"type:text"`
	PaidAt    time.Time             `gorm:"not null"`
	CreatedBy *uuid.UUID            `gorm:"type:uuid"`
	CreatedAt time.Time             `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the persistence model to a domain Payment.
func (m *PaymentModel) ToDomain() billing.Payment {
	return billing.Payment{
		ID:        m.ID,
		TenantID:  m.TenantID,
		InvoiceID: m.InvoiceID,
		Amount:    m.Amount,
		Method:    m.Method,
		Reference: m.Reference,
		Notes:     m.Notes,
		CreatedBy: m.CreatedBy,
		PaidAt:    m.PaidAt,
		CreatedAt: m.CreatedAt,
	}
}

// PaymentModelFromDomain creates a new persistence model from a domain Payment.
func PaymentModelFromDomain(p *billing.Payment) *PaymentModel {
	return &PaymentModel{
		ID:        p.ID,
		TenantID:  p.TenantID,
		InvoiceID: p.InvoiceID,
		Amount:    p.Amount,
		Method:    p.Method,
		Reference: p.Reference,
		Notes:     p.Notes,
		PaidAt:    p.PaidAt,
		CreatedBy: p.CreatedBy,
		CreatedAt: p.CreatedAt,
	}
}

// InvoiceSequenceModel is the per-shop, per-year invoice number counter.
// Its row lock serializes number allocation.
type InvoiceSequenceModel struct {
	TenantID  uuid.UUID `gorm:"type:uuid;primaryKey"`
	Year      int       `gorm:"primaryKey;autoIncrement:false"`
	LastValue int64     `gorm:"not null;default:0"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (InvoiceSequenceModel) TableName() string {
	return "invoice_sequences"
}
