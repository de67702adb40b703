package backtest

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang-stock-autotrader/internal/signal"
)

func TestLoadPrices(t *testing.T) {
	prices, err := LoadPrices(strings.NewReader(`[{"stck_prpr":"9150","prdy_vrss":"10"},{"stck_prpr":9200}]`))
	require.NoError(t, err)
	assert.Equal(t, []int64{9150, 9200}, prices)

	_, err = LoadPrices(strings.NewReader(`[{"stck_prpr":"abc"}]`))
	assert.Error(t, err)

	_, err = LoadPrices(strings.NewReader(`{`))
	assert.Error(t, err)
}

func TestRun(t *testing.T) {
	result, err := Run([]int64{30, 20, 10, 40, 40, 5}, Config{InitialBalance: 1000, ShortPeriod: 2, LongPeriod: 3})
	require.NoError(t, err)
	require.Len(t, result.Steps, 6)

	signals := make([]signal.Type, 0, len(result.Steps))
	for _, s := range result.Steps {
		signals = append(signals, s.Signal)
	}
	assert.Equal(t, []signal.Type{signal.None, signal.None, signal.None, signal.Buy, signal.Hold, signal.Sell}, signals)

	buy := result.Steps[3]
	assert.Equal(t, int64(25), buy.Quantity)
	assert.Equal(t, int64(0), buy.Balance)
	assert.True(t, buy.ROI.IsZero())

	sell := result.Steps[5]
	assert.Equal(t, int64(0), sell.Quantity)
	assert.Equal(t, int64(125), sell.Balance)

	require.Len(t, result.Trades, 2)
	assert.Equal(t, 1, result.Orders["BUY"])
	assert.Equal(t, 1, result.Orders["SELL"])
	assert.True(t, result.FinalROI.Equal(decimal.RequireFromString("-87.5")), "got %s", result.FinalROI)
}

func TestRunNoSignalBeforeLongWindow(t *testing.T) {
	prices := make([]int64, 0, 20)
	for i := 0; i < 19; i++ {
		prices = append(prices, 100)
	}
	prices = append(prices, 200)

	result, err := Run(prices, Config{})
	require.NoError(t, err)
	assert.Empty(t, result.Trades)
	last := result.Steps[len(result.Steps)-1]
	assert.True(t, last.Short.Valid)
	assert.False(t, last.Long.Valid)
	assert.True(t, result.FinalROI.IsZero())
}

func TestRunRejectsBadInput(t *testing.T) {
	_, err := Run(nil, Config{})
	assert.ErrorIs(t, err, ErrNoPrices)

	_, err = Run([]int64{1}, Config{ShortPeriod: 60, LongPeriod: 20})
	assert.Error(t, err)
}
