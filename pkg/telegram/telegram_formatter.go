package telegram

import (
	"fmt"
	"strings"
	"time"

	"golang-stock-autotrader/internal/dto"
	"golang-stock-autotrader/internal/entity"
	"golang-stock-autotrader/pkg/utils"
)

// FormatOrderResultForTelegram formats the terminal state of an order.
func FormatOrderResultForTelegram(order *entity.Order) string {
	var sb strings.Builder

	sideEmoji := "🟢"
	if order.OrderType == entity.OrderTypeSell {
		sideEmoji = "🔴"
	}
	statusEmoji := "✅"
	if order.Status != entity.OrderStatusSuccess {
		statusEmoji = "❌"
	}

	sb.WriteString(fmt.Sprintf("%s %s %s %s\n", sideEmoji, order.OrderType, order.StockCode, statusEmoji))
	sb.WriteString(fmt.Sprintf("• Quantity: %d\n", order.Quantity))
	sb.WriteString(fmt.Sprintf("• Price: %d\n", order.Price))
	sb.WriteString(fmt.Sprintf("• Status: %s\n", order.Status))
	if order.ErrorMessage != "" {
		sb.WriteString(fmt.Sprintf("• Error: %s\n", order.ErrorMessage))
	}
	sb.WriteString(fmt.Sprintf("📅 %s\n", utils.PrettyDate(order.UpdatedAt)))
	return sb.String()
}

// FormatDailyReportForTelegram formats the daily statistics report of a stock.
func FormatDailyReportForTelegram(stockCode string, stats dto.Statistics, account *entity.AccountStatus, at time.Time) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("📊 Daily Trading Report: %s\n\n", stockCode))
	sb.WriteString(fmt.Sprintf("• Orders: %d (success %d, %.1f%%)\n", stats.TotalOrders, stats.SuccessfulOrders, stats.SuccessRate()))
	sb.WriteString(fmt.Sprintf("• Buy / Sell: %d / %d\n", stats.BuyCount, stats.SellCount))
	sb.WriteString(fmt.Sprintf("• Traded Amount: %d\n", stats.TotalAmount))
	if account != nil {
		sb.WriteString(fmt.Sprintf("• Holding: %d\n", account.HoldingQuantity))
		sb.WriteString(fmt.Sprintf("• Total Evaluation: %d\n", account.TotalEvaluation))
	}
	sb.WriteString(fmt.Sprintf("\n📅 %s\n", utils.PrettyDate(at)))
	return sb.String()
}

// FormatHealthAlertForTelegram formats a failed health check.
func FormatHealthAlertForTelegram(at time.Time, target string, errMsg string) string {
	return fmt.Sprintf(`🚨 [HEALTH ALERT]
%s
🌐 %s
⚠️ %s
`, utils.PrettyDate(at), target, errMsg)
}

// FormatJobFailureForTelegram formats a failed scheduled job.
func FormatJobFailureForTelegram(at time.Time, job string, errMsg string, stockCode string) string {
	return fmt.Sprintf(`📛 [JOB FAILED]
%s
🔧 %s
⚠️ %s

📄 Stock: %s
`, utils.PrettyDate(at), job, errMsg, stockCode)
}
