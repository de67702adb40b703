package repository

import (
	"context"

	"golang-stock-autotrader/internal/entity"

	"gorm.io/gorm"
)

type TradingLogRepository interface {
	Create(ctx context.Context, log *entity.TradingLog) error
	FindRecent(ctx context.Context, level entity.LogLevel, limit int) ([]entity.TradingLog, error)
}

type tradingLogRepository struct {
	db *gorm.DB
}

func NewTradingLogRepository(db *gorm.DB) TradingLogRepository {
	return &tradingLogRepository{db: db}
}

func (r *tradingLogRepository) Create(ctx context.Context, log *entity.TradingLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

// FindRecent returns the newest logs, optionally filtered by level.
func (r *tradingLogRepository) FindRecent(ctx context.Context, level entity.LogLevel, limit int) ([]entity.TradingLog, error) {
	var logs []entity.TradingLog
	q := r.db.WithContext(ctx)
	if level != "" {
		q = q.Where("log_level = ?", level)
	}
	if err := q.Order("id desc").Limit(limit).Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}
