package partner

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopbill/backend/internal/domain/shared"
)

// CustomerRepository defines the interface for customer persistence
type CustomerRepository interface {
	// FindByIDForTenant finds a customer by ID within a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Customer, error)

	// FindAllForTenant lists customers, searching name, email, phone and tax ID
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Customer, int64, error)

	// ExistsByName checks if a name is taken, ignoring excludeID
	ExistsByName(ctx context.Context, tenantID uuid.UUID, name string, excludeID *uuid.UUID) (bool, error)

	// Save creates or updates a customer
	Save(ctx context.Context, customer *Customer) error

	// DeleteForTenant deletes a customer within a tenant
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error
}

// InvoiceCounter reports how many invoices reference a customer
type InvoiceCounter interface {
	CountByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) (int64, error)
}
