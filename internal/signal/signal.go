// Package signal detects moving average crossovers.
//
// A BUY fires when the short average was strictly below the long one and is
// now at or above it. A SELL fires when the short average was at or above the
// long one and is now strictly below it. Both directions therefore treat
// equality as "short is not below long", so a touch followed by a drop is a
// SELL and a rise to equality is a BUY.
package signal

import (
	"github.com/shopspring/decimal"
)

// Type is the outcome of one evaluation.
type Type string

const (
	Buy  Type = "BUY"
	Sell Type = "SELL"
	Hold Type = "HOLD"
	// None means there was not enough data to evaluate.
	None Type = "NONE"
)

// IsTrade reports whether the signal asks for an order.
func (t Type) IsTrade() bool {
	return t == Buy || t == Sell
}

// Pair is a short/long moving average sample.
type Pair struct {
	Short decimal.NullDecimal
	Long  decimal.NullDecimal
}

// Complete reports whether both averages are available.
func (p Pair) Complete() bool {
	return p.Short.Valid && p.Long.Valid
}

// Detect compares the previous and current pair.
func Detect(prev, curr Pair) Type {
	if !prev.Complete() || !curr.Complete() {
		return None
	}

	prevBelow := prev.Short.Decimal.LessThan(prev.Long.Decimal)
	currBelow := curr.Short.Decimal.LessThan(curr.Long.Decimal)

	switch {
	case prevBelow && !currBelow:
		return Buy
	case !prevBelow && currBelow:
		return Sell
	default:
		return Hold
	}
}

// DetectSeries evaluates the last two entries of aligned short and long series.
func DetectSeries(shorts, longs []decimal.NullDecimal) Type {
	n := len(shorts)
	if n != len(longs) || n < 2 {
		return None
	}
	return Detect(
		Pair{Short: shorts[n-2], Long: longs[n-2]},
		Pair{Short: shorts[n-1], Long: longs[n-1]},
	)
}
