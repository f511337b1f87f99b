package entry

import (
	"math"

	"github.com/shopspring/decimal"
)

// MaxAmount is the largest amount whose cents fit in an int64
var MaxAmount = decimal.New(math.MaxInt64, -2)

// WithinRange reports whether a cent-rounded amount can be stored without overflow
func WithinRange(d decimal.Decimal) bool {
	return !Round2(d).GreaterThan(MaxAmount)
}

// Round2 rounds half away from zero to cents
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// ToCents converts a cent-precision amount to integer minor units for storage
func ToCents(d decimal.Decimal) int64 {
	return Round2(d).Shift(2).IntPart()
}

// FromCents converts integer minor units back to a decimal amount
func FromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}
