// Package money keeps every pledge amount in integer cents. Dollar amounts enter
// the system only through FromDollars.
package money

import (
	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// FromDollars converts a dollar amount to cents, rounding half away from zero.
// 12.345 always becomes 1235 and -0.005 becomes -1.
func FromDollars(dollars decimal.Decimal) int64 {
	return dollars.Shift(2).Round(0).IntPart()
}

// ToDollars is exact: cents always fit in two decimal places.
func ToDollars(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// WholeDollars rounds cents to whole dollars, half away from zero.
func WholeDollars(cents int64) int64 {
	if cents < 0 {
		return -((-cents + 50) / 100)
	}
	return (cents + 50) / 100
}

// Format renders cents as whole US dollars with thousands separators, e.g. "$1,000,000".
func Format(cents int64) string {
	dollars := WholeDollars(cents)
	if dollars < 0 {
		return "-$" + humanize.Comma(-dollars)
	}
	return "$" + humanize.Comma(dollars)
}

// GoalPercentage returns progress towards goalCents clamped to [0, 100].
func GoalPercentage(totalCents, goalCents int64) float64 {
	if goalCents <= 0 || totalCents <= 0 {
		return 0
	}
	if totalCents >= goalCents {
		return 100
	}
	return float64(totalCents) / float64(goalCents) * 100
}
