package indicator

import "github.com/shopspring/decimal"

// DefaultWindowSize bounds the in-memory price history of the trading loop.
const DefaultWindowSize = 100

// Window is a fixed-capacity ring of the most recent prices.
type Window struct {
	values []int64
	size   int
	index  int
	filled bool
}

// NewWindow creates a window holding at most size prices.
func NewWindow(size int) *Window {
	if size <= 0 {
		size = DefaultWindowSize
	}
	return &Window{
		values: make([]int64, size),
		size:   size,
	}
}

// Add appends a price, evicting the oldest one when full.
func (w *Window) Add(price int64) {
	w.values[w.index] = price
	w.index = (w.index + 1) % w.size
	if w.index == 0 {
		w.filled = true
	}
}

func (w *Window) Len() int {
	if w.filled {
		return w.size
	}
	return w.index
}

func (w *Window) Cap() int {
	return w.size
}

// Values returns the prices oldest first.
func (w *Window) Values() []int64 {
	length := w.Len()
	result := make([]int64, 0, length)
	if length == 0 {
		return result
	}
	if w.filled {
		result = append(result, w.values[w.index:]...)
	}
	result = append(result, w.values[:w.index]...)
	return result
}

// SMA computes the simple moving average over the last period prices.
func (w *Window) SMA(period int) decimal.NullDecimal {
	return SMA(w.Values(), period)
}

// Grow raises the capacity to size, keeping the stored prices. Smaller sizes are ignored.
func (w *Window) Grow(size int) {
	if size <= w.size {
		return
	}
	values := w.Values()
	w.values = make([]int64, size)
	copy(w.values, values)
	w.size = size
	w.index = len(values)
	w.filled = false
}
