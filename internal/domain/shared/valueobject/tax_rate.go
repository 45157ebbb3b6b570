package valueobject

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// DefaultTaxRate is applied to products created without an explicit rate
var DefaultTaxRate = decimal.NewFromInt(18)

// TaxRate is a percentage between 0 and 100
type TaxRate struct {
	percent decimal.Decimal
}

// TaxRateScale is the number of fractional digits a stored rate keeps
const TaxRateScale int32 = 2

// NewTaxRate validates and wraps a percentage. Rates finer than two decimal
// places are rejected since they could not be stored as given.
func NewTaxRate(percent decimal.Decimal) (TaxRate, error) {
	if percent.IsNegative() || percent.GreaterThan(hundred) {
		return TaxRate{}, fmt.Errorf("tax rate must be between 0 and 100, got %s", percent.String())
	}
	if !percent.Equal(percent.Round(TaxRateScale)) {
		return TaxRate{}, fmt.Errorf("tax rate allows at most %d decimal places, got %s", TaxRateScale, percent.String())
	}
	return TaxRate{percent: percent}, nil
}

// MustTaxRate wraps a percentage and panics when it is out of range
func MustTaxRate(percent decimal.Decimal) TaxRate {
	r, err := NewTaxRate(percent)
	if err != nil {
		panic(err)
	}
	return r
}

// Percent returns the rate as a percentage
func (r TaxRate) Percent() decimal.Decimal {
	return r.percent
}

// Of returns amount × rate / 100, rounded to money scale
func (r TaxRate) Of(amount decimal.Decimal) decimal.Decimal {
	return RoundMoney(r.Exact(amount))
}

// Exact returns amount × rate / 100 unrounded, for summing before rounding
func (r TaxRate) Exact(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(r.percent).Div(hundred)
}

// String returns the percentage without trailing zeros
func (r TaxRate) String() string {
	return r.percent.String() + "%"
}
