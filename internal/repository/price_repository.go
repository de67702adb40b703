package repository

import (
	"context"

	"golang-stock-autotrader/internal/entity"

	"gorm.io/gorm"
)

// PriceRepository stores polled quotes.
type PriceRepository interface {
	Create(ctx context.Context, price *entity.PriceData) error
	FindRecent(ctx context.Context, stockCode string, limit int) ([]entity.PriceData, error)
	RecentPrices(ctx context.Context, stockCode string, n int) ([]int64, error)
	Latest(ctx context.Context, stockCode string) (*entity.PriceData, error)
}

type priceRepository struct {
	db *gorm.DB
}

func NewPriceRepository(db *gorm.DB) PriceRepository {
	return &priceRepository{db: db}
}

func (r *priceRepository) Create(ctx context.Context, price *entity.PriceData) error {
	return r.db.WithContext(ctx).Create(price).Error
}

// FindRecent returns up to limit prices, newest first.
func (r *priceRepository) FindRecent(ctx context.Context, stockCode string, limit int) ([]entity.PriceData, error) {
	var prices []entity.PriceData
	if err := r.db.WithContext(ctx).
		Where("stock_code = ?", stockCode).
		Order("id desc").
		Limit(limit).
		Find(&prices).Error; err != nil {
		return nil, err
	}
	return prices, nil
}

// RecentPrices returns the last n price values in chronological order.
func (r *priceRepository) RecentPrices(ctx context.Context, stockCode string, n int) ([]int64, error) {
	rows, err := r.FindRecent(ctx, stockCode, n)
	if err != nil {
		return nil, err
	}
	prices := make([]int64, len(rows))
	for i, row := range rows {
		prices[len(rows)-1-i] = row.Price
	}
	return prices, nil
}

func (r *priceRepository) Latest(ctx context.Context, stockCode string) (*entity.PriceData, error) {
	var price entity.PriceData
	if err := r.db.WithContext(ctx).Where("stock_code = ?", stockCode).Order("id desc").First(&price).Error; err != nil {
		return nil, translateError(err)
	}
	return &price, nil
}
