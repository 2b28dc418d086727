// Package money provides the rounding rules shared by all monetary
// outputs of the settlement core.
package money

import "github.com/shopspring/decimal"

// Round2 rounds to two fractional digits, half away from zero:
// 0.125 becomes 0.13 and -0.125 becomes -0.13. Every monetary figure
// exposed by the core passes through Round2 exactly once, at the point
// where it is computed; callers must not round again downstream.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Sum adds the given amounts without rounding.
func Sum(amounts []decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}
