package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovingAverage is the short/long SMA pair computed for one polled price.
// MAShort and MALong are invalid until enough prices exist for their window.
type MovingAverage struct {
	ID        uint                `gorm:"primaryKey" json:"id"`
	StockCode string              `gorm:"type:varchar(20);not null;index:idx_moving_averages_code_created,priority:1" json:"stock_code"`
	Price     int64               `gorm:"not null" json:"price"`
	MAShort   decimal.NullDecimal `gorm:"column:ma_short;type:numeric(20,4)" json:"ma_short"`
	MALong    decimal.NullDecimal `gorm:"column:ma_long;type:numeric(20,4)" json:"ma_long"`
	CreatedAt time.Time           `gorm:"autoCreateTime;index:idx_moving_averages_code_created,priority:2" json:"timestamp"`
}

func (MovingAverage) TableName() string {
	return "moving_averages"
}
