package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopbill/backend/internal/domain/inventory"
)

// DeductForInvoice takes the required quantities out of stock inside the
// caller's transaction. Products are locked in ascending ID order with a
// single query, every requirement is validated before any product is
// changed, and one OUT movement per product is written.
//
// The returned products carry their stock domain events; publish them only
// after the transaction commits.
func DeductForInvoice(ctx context.Context, repos LedgerRepositories, tenantID uuid.UUID, required map[uuid.UUID]int64, ref inventory.MovementRef) ([]*inventory.Product, error) {
	products, err := lockProducts(ctx, repos, tenantID, required)
	if err != nil || len(products) == 0 {
		return nil, err
	}

	movements, err := inventory.DeductAll(products, required, ref)
	if err != nil {
		return nil, err
	}
	if err := persistLedger(ctx, repos, products, movements); err != nil {
		return nil, err
	}
	return products, nil
}

// RestoreForInvoice puts quantities back into stock with the same locking
// protocol as DeductForInvoice and writes IN movements.
func RestoreForInvoice(ctx context.Context, repos LedgerRepositories, tenantID uuid.UUID, quantities map[uuid.UUID]int64, ref inventory.MovementRef) ([]*inventory.Product, error) {
	products, err := lockProducts(ctx, repos, tenantID, quantities)
	if err != nil || len(products) == 0 {
		return nil, err
	}

	movements, err := inventory.RestoreAll(products, quantities, ref)
	if err != nil {
		return nil, err
	}
	if err := persistLedger(ctx, repos, products, movements); err != nil {
		return nil, err
	}
	return products, nil
}

func lockProducts(ctx context.Context, repos LedgerRepositories, tenantID uuid.UUID, quantities map[uuid.UUID]int64) ([]*inventory.Product, error) {
	if len(quantities) == 0 {
		return nil, nil
	}
	products, err := repos.ProductRepo().FindByIDsForUpdate(ctx, tenantID, inventory.LockOrder(quantities))
	if err != nil {
		return nil, fmt.Errorf("lock products: %w", err)
	}
	return products, nil
}

func persistLedger(ctx context.Context, repos LedgerRepositories, products []*inventory.Product, movements []*inventory.StockMovement) error {
	if err := repos.ProductRepo().SaveAll(ctx, products); err != nil {
		return fmt.Errorf("save products: %w", err)
	}
	if err := repos.MovementRepo().CreateBatch(ctx, movements); err != nil {
		return fmt.Errorf("record stock movements: %w", err)
	}
	return nil
}
