package valueobject

import "fmt"

// ValidateLineQuantity checks an invoice line quantity (at least one unit)
func ValidateLineQuantity(quantity int64) error {
	if quantity < 1 {
		return fmt.Errorf("quantity must be at least 1, got %d", quantity)
	}
	return nil
}

// ValidateMovementQuantity checks the magnitude of a stock increase or decrease
func ValidateMovementQuantity(quantity int64) error {
	if quantity <= 0 {
		return fmt.Errorf("quantity must be positive, got %d", quantity)
	}
	return nil
}

// ValidateStockLevel checks an absolute stock level
func ValidateStockLevel(level int64) error {
	if level < 0 {
		return fmt.Errorf("stock level cannot be negative, got %d", level)
	}
	return nil
}
