// Package indicator computes price indicators over polled quotes.
package indicator

import (
	"github.com/shopspring/decimal"
)

// Scale is the number of decimal places stored for averages, matching the numeric(20,4) columns.
const Scale int32 = 4

// Precision is the number of decimal places kept while comparing averages.
// Distinct means of integer prices over periods a and b differ by at least
// 1/(a*b), far above 10^-16 for any usable period.
const Precision int32 = 16

// SMA returns the mean of the last window prices at Precision. The result is
// invalid when window is not positive or fewer than window prices exist; it is
// never zero for lack of data.
func SMA(prices []int64, window int) decimal.NullDecimal {
	if window <= 0 || len(prices) < window {
		return decimal.NullDecimal{}
	}
	var sum int64
	for _, p := range prices[len(prices)-window:] {
		sum += p
	}
	return decimal.NewNullDecimal(decimal.NewFromInt(sum).DivRound(decimal.NewFromInt(int64(window)), Precision))
}

// Rounded returns avg at Scale for storage and display. Compare unrounded values.
func Rounded(avg decimal.NullDecimal) decimal.NullDecimal {
	if !avg.Valid {
		return avg
	}
	return decimal.NewNullDecimal(avg.Decimal.Round(Scale))
}
