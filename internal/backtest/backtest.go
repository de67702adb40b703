// Package backtest replays recorded quotes through the crossover detector.
package backtest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/shopspring/decimal"

	"golang-stock-autotrader/internal/entity"
	"golang-stock-autotrader/internal/indicator"
	"golang-stock-autotrader/internal/signal"
)

const DefaultInitialBalance int64 = 10_000_000

var ErrNoPrices = errors.New("no prices to replay")

// quote is one element of a saved inquire-price response list.
type quote struct {
	CurrentPrice json.Number `json:"stck_prpr"`
}

// LoadPrices reads a JSON array of {"stck_prpr": ...} items, oldest first.
func LoadPrices(r io.Reader) ([]int64, error) {
	var quotes []quote
	if err := json.NewDecoder(r).Decode(&quotes); err != nil {
		return nil, fmt.Errorf("decode prices: %w", err)
	}
	prices := make([]int64, 0, len(quotes))
	for i, q := range quotes {
		p, err := q.CurrentPrice.Int64()
		if err != nil {
			return nil, fmt.Errorf("item %d: invalid stck_prpr %q: %w", i, q.CurrentPrice, err)
		}
		prices = append(prices, p)
	}
	return prices, nil
}

// Config parameterises a replay.
type Config struct {
	InitialBalance int64
	ShortPeriod    int
	LongPeriod     int
}

// Step is the portfolio state after one price.
type Step struct {
	Index    int                 `json:"index"`
	Price    int64               `json:"price"`
	Short    decimal.NullDecimal `json:"ma_short"`
	Long     decimal.NullDecimal `json:"ma_long"`
	Signal   signal.Type         `json:"signal"`
	Quantity int64               `json:"quantity"`
	Balance  int64               `json:"balance"`
	ROI      decimal.Decimal     `json:"roi"`
}

// Result is the full replay.
type Result struct {
	Steps    []Step          `json:"steps"`
	Trades   []Step          `json:"trades"`
	FinalROI decimal.Decimal `json:"final_roi"`
	Orders   map[string]int  `json:"orders"`
}

// Run buys with the whole balance on BUY and liquidates on SELL. ROI is the
// percent change of cash plus holdings valued at the current price.
func Run(prices []int64, cfg Config) (*Result, error) {
	if len(prices) == 0 {
		return nil, ErrNoPrices
	}
	if cfg.InitialBalance <= 0 {
		cfg.InitialBalance = DefaultInitialBalance
	}
	if cfg.ShortPeriod <= 0 {
		cfg.ShortPeriod = entity.DefaultMAShortPeriod
	}
	if cfg.LongPeriod <= 0 {
		cfg.LongPeriod = entity.DefaultMALongPeriod
	}
	if cfg.ShortPeriod >= cfg.LongPeriod {
		return nil, fmt.Errorf("short period %d must be below long period %d", cfg.ShortPeriod, cfg.LongPeriod)
	}

	window := indicator.NewWindow(cfg.LongPeriod)
	initial := decimal.NewFromInt(cfg.InitialBalance)
	balance, quantity := cfg.InitialBalance, int64(0)
	result := &Result{
		Steps:  make([]Step, 0, len(prices)),
		Orders: map[string]int{string(signal.Buy): 0, string(signal.Sell): 0},
	}

	var prev signal.Pair
	for i, price := range prices {
		window.Add(price)
		curr := signal.Pair{Short: window.SMA(cfg.ShortPeriod), Long: window.SMA(cfg.LongPeriod)}
		sig := signal.Detect(prev, curr)
		prev = curr

		switch sig {
		case signal.Buy:
			if price > 0 {
				amount := balance / price
				quantity += amount
				balance -= amount * price
			}
			result.Orders[string(sig)]++
		case signal.Sell:
			balance += quantity * price
			quantity = 0
			result.Orders[string(sig)]++
		}

		equity := decimal.NewFromInt(balance + price*quantity)
		roi := equity.Div(initial).Sub(decimal.NewFromInt(1)).Mul(decimal.NewFromInt(100)).Round(2)

		step := Step{
			Index:    i,
			Price:    price,
			Short:    indicator.Rounded(curr.Short),
			Long:     indicator.Rounded(curr.Long),
			Signal:   sig,
			Quantity: quantity,
			Balance:  balance,
			ROI:      roi,
		}
		result.Steps = append(result.Steps, step)
		if sig.IsTrade() {
			result.Trades = append(result.Trades, step)
		}
		result.FinalROI = roi
	}
	return result, nil
}
