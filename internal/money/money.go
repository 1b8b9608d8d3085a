package money

import "github.com/shopspring/decimal"

// DirectSaleTolerance absorbs float drift from POS clients on direct checkout.
// Order payments are compared exactly.
var DirectSaleTolerance = decimal.RequireFromString("0.05")

// Round rounds to cents, half away from zero (half-up for positive amounts).
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// LineTotal is price × quantity, unrounded.
func LineTotal(price decimal.Decimal, quantity int) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(quantity)))
}

func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// Covers reports whether paid is enough for due, allowing tolerance below it.
func Covers(paid, due, tolerance decimal.Decimal) bool {
	return paid.GreaterThanOrEqual(due.Sub(tolerance))
}
