package valueobject

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// MoneyScale is the number of fractional digits every stored amount carries
const MoneyScale int32 = 2

var hundred = decimal.NewFromInt(100)

// RoundMoney rounds an amount to two places, halves away from zero.
// For the non-negative amounts the core handles this is round-half-up.
func RoundMoney(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(MoneyScale)
}

// ParseAmount parses a decimal amount and rounds it to money scale
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return RoundMoney(d), nil
}

// ValidatePrice checks that a unit price is present and not negative
func ValidatePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return errors.New("price cannot be negative")
	}
	return nil
}

// LineAmount returns quantity × unit price, rounded to money scale
func LineAmount(quantity int64, unitPrice decimal.Decimal) decimal.Decimal {
	return RoundMoney(unitPrice.Mul(decimal.NewFromInt(quantity)))
}

// SumMoney adds amounts together
func SumMoney(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// MinMoney returns the smaller of two amounts
func MinMoney(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}

// FormatMoney renders an amount with exactly two fractional digits
func FormatMoney(amount decimal.Decimal) string {
	return amount.StringFixed(MoneyScale)
}
