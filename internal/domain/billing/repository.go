package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopbill/backend/internal/domain/shared"
)

// InvoiceFilter narrows invoice listings
type InvoiceFilter struct {
	shared.Filter
	Statuses   []InvoiceStatus
	CustomerID *uuid.UUID
	DateFrom   *time.Time
	DateTo     *time.Time
	// DueBefore keeps invoices whose due date is strictly earlier
	DueBefore *time.Time
}

// InvoiceRepository defines the interface for invoice persistence.
// Invoices are always loaded and saved together with their items.
type InvoiceRepository interface {
	// FindByIDForTenant finds an invoice with its items
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Invoice, error)

	// FindByIDForUpdate loads an invoice with its items and locks the invoice
	// row until the transaction ends
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*Invoice, error)

	// FindAllForTenant lists invoices (items are not loaded)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter InvoiceFilter) ([]Invoice, int64, error)

	// MaxSequenceForYear scans issued numbers INV-<year>-NNNN and returns the
	// largest numeric suffix, or 0 when none exist
	MaxSequenceForYear(ctx context.Context, tenantID uuid.UUID, year int) (int64, error)

	// CountByCustomer counts invoices of a customer
	CountByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) (int64, error)

	// IsProductReferenced reports whether any invoice line references a product
	IsProductReferenced(ctx context.Context, tenantID, productID uuid.UUID) (bool, error)

	// Save creates or updates the invoice and synchronizes its items
	Save(ctx context.Context, invoice *Invoice) error

	// DeleteForTenant deletes an invoice with its items and payments
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error
}

// PaymentRepository persists payments. Payments are append-only.
type PaymentRepository interface {
	Create(ctx context.Context, payment *Payment) error
	FindByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]Payment, error)
}

// InvoiceSequenceRepository serializes number allocation per shop and year
type InvoiceSequenceRepository interface {
	// Reserve locks the (tenant, year) counter, advances it past floor and
	// returns the new value. Must run inside a transaction.
	Reserve(ctx context.Context, tenantID uuid.UUID, year int, floor int64) (int64, error)
}
