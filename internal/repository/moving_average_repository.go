package repository

import (
	"context"

	"golang-stock-autotrader/internal/entity"

	"gorm.io/gorm"
)

// MovingAverageRepository stores computed moving average samples.
type MovingAverageRepository interface {
	Create(ctx context.Context, ma *entity.MovingAverage) error
	Latest(ctx context.Context, stockCode string) (*entity.MovingAverage, error)
	FindRecent(ctx context.Context, stockCode string, limit int) ([]entity.MovingAverage, error)
}

type movingAverageRepository struct {
	db *gorm.DB
}

func NewMovingAverageRepository(db *gorm.DB) MovingAverageRepository {
	return &movingAverageRepository{db: db}
}

func (r *movingAverageRepository) Create(ctx context.Context, ma *entity.MovingAverage) error {
	return r.db.WithContext(ctx).Create(ma).Error
}

// Latest returns the most recent sample or ErrNotFound.
func (r *movingAverageRepository) Latest(ctx context.Context, stockCode string) (*entity.MovingAverage, error) {
	var ma entity.MovingAverage
	if err := r.db.WithContext(ctx).Where("stock_code = ?", stockCode).Order("id desc").First(&ma).Error; err != nil {
		return nil, translateError(err)
	}
	return &ma, nil
}

func (r *movingAverageRepository) FindRecent(ctx context.Context, stockCode string, limit int) ([]entity.MovingAverage, error) {
	var mas []entity.MovingAverage
	if err := r.db.WithContext(ctx).
		Where("stock_code = ?", stockCode).
		Order("id desc").
		Limit(limit).
		Find(&mas).Error; err != nil {
		return nil, err
	}
	return mas, nil
}
