package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopbill/backend/internal/domain/shared"
)

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	// FindByIDForTenant finds a product by ID within a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Product, error)

	// FindByIDForUpdate loads a product and holds a row lock until the transaction ends
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*Product, error)

	// FindByIDsForUpdate locks several products in ascending ID order
	FindByIDsForUpdate(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]*Product, error)

	// FindAllForTenant lists products
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Product, int64, error)

	// FindLowStock lists products at or below their low-stock threshold
	FindLowStock(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Product, int64, error)

	// ExistsBySKU checks if a SKU is taken, ignoring excludeID
	ExistsBySKU(ctx context.Context, tenantID uuid.UUID, sku string, excludeID *uuid.UUID) (bool, error)

	// NextSKU returns the next free generated SKU of the tenant
	NextSKU(ctx context.Context, tenantID uuid.UUID) (string, error)

	// CountByCategory counts products in a category
	CountByCategory(ctx context.Context, tenantID, categoryID uuid.UUID) (int64, error)

	// Save creates or updates a product
	Save(ctx context.Context, product *Product) error

	// SaveAll updates several products
	SaveAll(ctx context.Context, products []*Product) error

	// DeleteForTenant deletes a product within a tenant
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error
}

// CategoryRepository defines the interface for category persistence
type CategoryRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Category, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Category, int64, error)
	ExistsByName(ctx context.Context, tenantID uuid.UUID, name string, excludeID *uuid.UUID) (bool, error)
	Save(ctx context.Context, category *Category) error
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error
}

// StockMovementRepository persists the stock audit trail. Movements are
// append-only: there is no update or delete.
type StockMovementRepository interface {
	Create(ctx context.Context, movement *StockMovement) error
	CreateBatch(ctx context.Context, movements []*StockMovement) error
	FindByProduct(ctx context.Context, tenantID, productID uuid.UUID, filter shared.Filter) ([]StockMovement, int64, error)
	FindBySource(ctx context.Context, tenantID uuid.UUID, sourceType SourceType, sourceID uuid.UUID) ([]StockMovement, error)
}

// ProductUsageChecker reports whether invoice lines still reference a product
type ProductUsageChecker interface {
	IsProductReferenced(ctx context.Context, tenantID, productID uuid.UUID) (bool, error)
}
