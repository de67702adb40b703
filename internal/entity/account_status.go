package entity

import "time"

// AccountStatus is a point-in-time snapshot of the brokerage account.
type AccountStatus struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Account         string    `gorm:"type:varchar(20);not null" json:"account"`
	StockCode       string    `gorm:"type:varchar(20);not null;index" json:"stock_code"`
	HoldingQuantity int64     `gorm:"not null" json:"holding_quantity"`
	TotalEvaluation int64     `gorm:"not null" json:"total_evaluation"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"timestamp"`
}

func (AccountStatus) TableName() string {
	return "account_status"
}
