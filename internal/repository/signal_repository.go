package repository

import (
	"context"

	"golang-stock-autotrader/internal/entity"

	"gorm.io/gorm"
)

type SignalRepository interface {
	Create(ctx context.Context, signal *entity.TradingSignal) error
	FindRecent(ctx context.Context, stockCode string, limit int) ([]entity.TradingSignal, error)
}

type signalRepository struct {
	db *gorm.DB
}

func NewSignalRepository(db *gorm.DB) SignalRepository {
	return &signalRepository{db: db}
}

func (r *signalRepository) Create(ctx context.Context, signal *entity.TradingSignal) error {
	return r.db.WithContext(ctx).Create(signal).Error
}

func (r *signalRepository) FindRecent(ctx context.Context, stockCode string, limit int) ([]entity.TradingSignal, error) {
	var signals []entity.TradingSignal
	if err := r.db.WithContext(ctx).
		Where("stock_code = ?", stockCode).
		Order("id desc").
		Limit(limit).
		Find(&signals).Error; err != nil {
		return nil, err
	}
	return signals, nil
}
