package entity

import (
	"fmt"
	"strings"
	"time"
)

// OrderType is the side of an order.
type OrderType string

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderTypeBuy  OrderType = "BUY"
	OrderTypeSell OrderType = "SELL"

	OrderStatusPending OrderStatus = "PENDING"
	OrderStatusSuccess OrderStatus = "SUCCESS"
	OrderStatusFailed  OrderStatus = "FAILED"
)

// ParseOrderType accepts "buy"/"sell" in any case.
func ParseOrderType(s string) (OrderType, error) {
	switch OrderType(strings.ToUpper(strings.TrimSpace(s))) {
	case OrderTypeBuy:
		return OrderTypeBuy, nil
	case OrderTypeSell:
		return OrderTypeSell, nil
	}
	return "", fmt.Errorf("invalid order type %q", s)
}

// IsTerminal reports whether no further transition is allowed.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusSuccess || s == OrderStatusFailed
}

// Order is a locally tracked brokerage order. Only Status, ErrorMessage and
// UpdatedAt change after creation.
type Order struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	StockCode    string      `gorm:"type:varchar(20);not null;index" json:"stock_code"`
	OrderType    OrderType   `gorm:"type:varchar(10);not null" json:"order_type"`
	Quantity     int64       `gorm:"not null" json:"quantity"`
	Price        int64       `gorm:"not null" json:"price"`
	Status       OrderStatus `gorm:"type:varchar(10);not null;index" json:"status"`
	ErrorMessage string      `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt    time.Time   `gorm:"autoCreateTime;index" json:"timestamp"`
	UpdatedAt    time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Order) TableName() string {
	return "orders"
}
