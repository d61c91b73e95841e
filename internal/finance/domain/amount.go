package domain

import "github.com/shopspring/decimal"

const (
	// MaxAmountScale is the number of decimal places an amount may carry.
	MaxAmountScale = 4
	// MaxAmountIntegerDigits bounds amounts below 10^12.
	MaxAmountIntegerDigits = 12
)

var maxAmount = decimal.New(1, MaxAmountIntegerDigits)

// AmountWithinBounds reports whether |d| is below 10^12 and d has at most
// MaxAmountScale decimal places. The exponent is checked before any
// arithmetic, so values like 1e20000000 are rejected without expanding them.
func AmountWithinBounds(d decimal.Decimal) bool {
	exp := d.Exponent()
	if exp > MaxAmountIntegerDigits || exp < -(MaxAmountIntegerDigits+MaxAmountScale) {
		return false
	}
	// keeps the comparisons below to small rescales
	if d.Coefficient().BitLen() > 128 {
		return false
	}
	if !d.Abs().LessThan(maxAmount) {
		return false
	}
	return d.Equal(d.Truncate(MaxAmountScale))
}

// ValidAmount reports whether d is a positive amount within bounds.
func ValidAmount(d decimal.Decimal) bool {
	return d.IsPositive() && AmountWithinBounds(d)
}
