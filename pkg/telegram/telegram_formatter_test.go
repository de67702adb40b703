package telegram

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"golang-stock-autotrader/internal/dto"
	"golang-stock-autotrader/internal/entity"
)

func TestFormatOrderResultForTelegram(t *testing.T) {
	order := &entity.Order{
		StockCode:    "122640",
		OrderType:    entity.OrderTypeSell,
		Quantity:     7,
		Price:        10450,
		Status:       entity.OrderStatusFailed,
		ErrorMessage: "insufficient holdings",
		UpdatedAt:    time.Now(),
	}

	msg := FormatOrderResultForTelegram(order)
	assert.Contains(t, msg, "SELL 122640")
	assert.Contains(t, msg, "Quantity: 7")
	assert.Contains(t, msg, "Error: insufficient holdings")
	assert.Contains(t, msg, "❌")
}

func TestFormatDailyReportForTelegram(t *testing.T) {
	stats := dto.Statistics{TotalOrders: 4, SuccessfulOrders: 3, BuyCount: 2, SellCount: 2, TotalAmount: 42000}
	msg := FormatDailyReportForTelegram("122640", stats, &entity.AccountStatus{HoldingQuantity: 5, TotalEvaluation: 990000}, time.Now())

	assert.Contains(t, msg, "Orders: 4 (success 3, 75.0%)")
	assert.Contains(t, msg, "Buy / Sell: 2 / 2")
	assert.Contains(t, msg, "Holding: 5")

	noAccount := FormatDailyReportForTelegram("122640", dto.Statistics{}, nil, time.Now())
	assert.NotContains(t, noAccount, "Holding")
}

func TestNewNotifierWithoutTokenIsNop(t *testing.T) {
	n, err := NewNotifier("", 0)
	assert.NoError(t, err)
	assert.IsType(t, NopNotifier{}, n)
	assert.NoError(t, n.SendMessage("ignored"))
}

func TestFormatJobFailureForTelegram(t *testing.T) {
	msg := FormatJobFailureForTelegram(time.Now(), "daily_report", "telegram unavailable", "122640")

	assert.Contains(t, msg, "[JOB FAILED]")
	assert.Contains(t, msg, "daily_report")
	assert.Contains(t, msg, "telegram unavailable")
	assert.Contains(t, msg, "Stock: 122640")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))

	got := Truncate("가나다라마바사", 4)
	assert.Equal(t, "가나다…", got)
}
