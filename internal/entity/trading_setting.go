package entity

import (
	"time"

	"gorm.io/datatypes"
)

const (
	DefaultMAShortPeriod = 20
	DefaultMALongPeriod  = 60
	DefaultMaxBuyAmount  = 1000000
)

// TradingSetting is the single mutable settings row per stock.
type TradingSetting struct {
	ID                 uint           `gorm:"primaryKey" json:"id"`
	StockCode          string         `gorm:"type:varchar(20);not null;uniqueIndex" json:"stock_code"`
	IsActive           bool           `gorm:"not null" json:"is_active"`
	MAShortPeriod      int            `gorm:"column:ma_short_period;not null" json:"ma_short_period"`
	MALongPeriod       int            `gorm:"column:ma_long_period;not null" json:"ma_long_period"`
	MaxBuyAmount       int64          `gorm:"not null" json:"max_buy_amount"`
	AdditionalSettings datatypes.JSON `json:"additional_settings" swaggertype:"object"`
	CreatedAt          time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

func (TradingSetting) TableName() string {
	return "trading_settings"
}

// DefaultTradingSetting returns the settings used when none are stored yet.
func DefaultTradingSetting(stockCode string) *TradingSetting {
	return &TradingSetting{
		StockCode:          stockCode,
		IsActive:           true,
		MAShortPeriod:      DefaultMAShortPeriod,
		MALongPeriod:       DefaultMALongPeriod,
		MaxBuyAmount:       DefaultMaxBuyAmount,
		AdditionalSettings: datatypes.JSON([]byte("{}")),
	}
}
