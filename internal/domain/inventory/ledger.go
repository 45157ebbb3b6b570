package inventory

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/shopbill/backend/internal/domain/shared"
)

// LockOrder returns the product IDs of a requirement map in ascending order.
// Every multi-product lock is taken in this order so that two concurrent
// invoices sharing products can never wait on each other in a cycle.
func LockOrder(quantities map[uuid.UUID]int64) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(quantities))
	for id := range quantities {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return ids[i].String() < ids[j].String()
	})
	return ids
}

// DeductAll takes the required quantity out of every product, or out of none.
// products must already be locked by the caller. All requirements are
// checked before the first product is touched; every shortfall is reported
// in a single INSUFFICIENT_STOCK error.
func DeductAll(products []*Product, required map[uuid.UUID]int64, ref MovementRef) ([]*StockMovement, error) {
	byID, err := indexRequired(products, required)
	if err != nil {
		return nil, err
	}

	var shortfalls []string
	for _, id := range LockOrder(required) {
		p := byID[id]
		if !p.HasSufficientStock(required[id]) {
			shortfalls = append(shortfalls,
				fmt.Sprintf("%s (requested %d, available %d)", p.Name, required[id], p.StockQuantity))
		}
	}
	if len(shortfalls) > 0 {
		return nil, shared.NewDomainError(shared.CodeInsufficientStock,
			"insufficient stock for "+strings.Join(shortfalls, ", "))
	}

	movements := make([]*StockMovement, 0, len(required))
	for _, id := range LockOrder(required) {
		m, err := byID[id].DecreaseStock(required[id], ref)
		if err != nil {
			return nil, err
		}
		movements = append(movements, m)
	}
	return movements, nil
}

// RestoreAll puts the given quantities back into stock
func RestoreAll(products []*Product, quantities map[uuid.UUID]int64, ref MovementRef) ([]*StockMovement, error) {
	byID, err := indexRequired(products, quantities)
	if err != nil {
		return nil, err
	}

	movements := make([]*StockMovement, 0, len(quantities))
	for _, id := range LockOrder(quantities) {
		m, err := byID[id].IncreaseStock(quantities[id], ref)
		if err != nil {
			return nil, err
		}
		movements = append(movements, m)
	}
	return movements, nil
}

func indexRequired(products []*Product, quantities map[uuid.UUID]int64) (map[uuid.UUID]*Product, error) {
	byID := make(map[uuid.UUID]*Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	for id, qty := range quantities {
		if _, ok := byID[id]; !ok {
			return nil, shared.NewDomainError(shared.CodeNotFound, fmt.Sprintf("product %s not found", id))
		}
		if qty <= 0 {
			return nil, shared.NewValidationError("quantity for product %s must be positive", id)
		}
	}
	return byID, nil
}
