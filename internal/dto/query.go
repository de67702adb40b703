package dto

import (
	"encoding/json"
	"time"

	"golang-stock-autotrader/internal/entity"
)

// Statistics aggregates orders over a time range.
// TotalAmount is the sum of quantity*price over successful orders.
type Statistics struct {
	TotalOrders      int64 `json:"total_orders"`
	SuccessfulOrders int64 `json:"successful_orders"`
	BuyCount         int64 `json:"buy_count"`
	SellCount        int64 `json:"sell_count"`
	TotalAmount      int64 `json:"total_amount"`
}

// SuccessRate returns the share of successful orders in percent.
func (s Statistics) SuccessRate() float64 {
	if s.TotalOrders == 0 {
		return 0
	}
	return float64(s.SuccessfulOrders) / float64(s.TotalOrders) * 100
}

// TradingSettingRequest updates the settings row of a stock. Nil fields keep their stored value.
type TradingSettingRequest struct {
	StockCode          string          `json:"stock_code"`
	IsActive           *bool           `json:"is_active"`
	MAShortPeriod      *int            `json:"ma_short_period"`
	MALongPeriod       *int            `json:"ma_long_period"`
	MaxBuyAmount       *int64          `json:"max_buy_amount"`
	AdditionalSettings json.RawMessage `json:"additional_settings" swaggertype:"object"`
}

// CleanupRequest is the body of POST /cleanup.
type CleanupRequest struct {
	DaysToKeep int `json:"days_to_keep"`
}

// CleanupResponse reports deleted rows per table.
type CleanupResponse struct {
	DaysToKeep int              `json:"days_to_keep"`
	Deleted    map[string]int64 `json:"deleted"`
}

// BackupResponse is the body of POST /backup.
type BackupResponse struct {
	Message string `json:"message"`
	Path    string `json:"path"`
}

// DashboardResponse bundles what an operator needs at a glance.
type DashboardResponse struct {
	StockCode      string                 `json:"stock_code"`
	LatestPrice    *entity.PriceData      `json:"latest_price"`
	MovingAverages []entity.MovingAverage `json:"moving_averages"`
	RecentOrders   []entity.Order         `json:"recent_orders"`
	Statistics     Statistics             `json:"statistics"`
	Settings       *entity.TradingSetting `json:"settings"`
	AccountStatus  *entity.AccountStatus  `json:"account_status"`
	RecentLogs     []entity.TradingLog    `json:"recent_logs"`
	GeneratedAt    time.Time              `json:"generated_at"`
}

// StatusResponse reports database health and row counts.
type StatusResponse struct {
	Status    string           `json:"status"`
	Database  string           `json:"database"`
	Tables    map[string]int64 `json:"tables"`
	Timestamp time.Time        `json:"timestamp"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status    string    `json:"status"`
	Database  string    `json:"database"`
	Timestamp time.Time `json:"timestamp"`
}

// ExportBundle is the JSON document written by export and read by import.
type ExportBundle struct {
	ExportedAt     time.Time              `json:"exported_at"`
	StockCode      string                 `json:"stock_code"`
	PriceHistory   []entity.PriceData     `json:"price_history"`
	MovingAverages []entity.MovingAverage `json:"moving_averages"`
	Orders         []entity.Order         `json:"orders"`
	Statistics     Statistics             `json:"statistics"`
	Settings       *entity.TradingSetting `json:"settings"`
}
