package entity

import "time"

// PriceData is one polled quote for a stock. Rows are append-only.
type PriceData struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	StockCode string    `gorm:"type:varchar(20);not null;index:idx_price_data_code_created,priority:1" json:"stock_code"`
	Price     int64     `gorm:"not null" json:"price"`
	CreatedAt time.Time `gorm:"autoCreateTime;index:idx_price_data_code_created,priority:2" json:"timestamp"`
}

// TableName specifies the table name for the PriceData model.
func (PriceData) TableName() string {
	return "price_data"
}
