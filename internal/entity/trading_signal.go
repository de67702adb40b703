package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// TradingSignal is the audit row written for every evaluated crossover.
type TradingSignal struct {
	ID        uint                `gorm:"primaryKey" json:"id"`
	StockCode string              `gorm:"type:varchar(20);not null;index" json:"stock_code"`
	Signal    string              `gorm:"type:varchar(10);not null" json:"signal"`
	Price     int64               `gorm:"not null" json:"price"`
	MAShort   decimal.NullDecimal `gorm:"column:ma_short;type:numeric(20,4)" json:"ma_short"`
	MALong    decimal.NullDecimal `gorm:"column:ma_long;type:numeric(20,4)" json:"ma_long"`
	CreatedAt time.Time           `gorm:"autoCreateTime" json:"timestamp"`
}

func (TradingSignal) TableName() string {
	return "trading_signals"
}
