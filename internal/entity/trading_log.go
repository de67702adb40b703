package entity

import "time"

// LogLevel is the severity stored with a trading log row.
type LogLevel string

const (
	LogLevelInfo    LogLevel = "INFO"
	LogLevelWarning LogLevel = "WARNING"
	LogLevelError   LogLevel = "ERROR"
)

// TradingLog is an operator-facing activity record.
type TradingLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	LogLevel  LogLevel  `gorm:"type:varchar(10);not null;index" json:"log_level"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"timestamp"`
}

func (TradingLog) TableName() string {
	return "trading_logs"
}
