package validation

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// NormalizeCurrency trims and upper-cases a currency code.
func NormalizeCurrency(currency string) string {
	return strings.ToUpper(strings.TrimSpace(currency))
}

// Currency checks that the normalized value is a 3-letter code.
func (v *Validator) Currency(field, currency string) {
	if currency == "" {
		v.AddError(field, "must not be empty")
		return
	}
	ok := len(currency) == 3
	for _, r := range currency {
		if r < 'A' || r > 'Z' {
			ok = false
		}
	}
	v.Check(ok, field, "must be a 3-letter currency code")
}

// PositiveAmount checks amount > 0 with at most AmountScale fractional digits.
func (v *Validator) PositiveAmount(field string, amount decimal.Decimal) {
	if !amount.IsPositive() {
		v.AddError(field, "must be greater than zero")
		return
	}
	v.Scale(field, amount)
}

// NonNegativeAmount checks amount >= 0 with at most AmountScale fractional digits.
func (v *Validator) NonNegativeAmount(field string, amount decimal.Decimal) {
	if amount.IsNegative() {
		v.AddError(field, "must not be negative")
		return
	}
	v.Scale(field, amount)
}

func (v *Validator) Scale(field string, amount decimal.Decimal) {
	v.Check(amount.Equal(amount.Truncate(AmountScale)), field,
		fmt.Sprintf("must have at most %d decimal places", AmountScale))
}
