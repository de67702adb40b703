package repository

import (
	"context"

	"golang-stock-autotrader/internal/entity"

	"gorm.io/gorm"
)

type AccountStatusRepository interface {
	Create(ctx context.Context, status *entity.AccountStatus) error
	Latest(ctx context.Context, stockCode string) (*entity.AccountStatus, error)
}

type accountStatusRepository struct {
	db *gorm.DB
}

func NewAccountStatusRepository(db *gorm.DB) AccountStatusRepository {
	return &accountStatusRepository{db: db}
}

func (r *accountStatusRepository) Create(ctx context.Context, status *entity.AccountStatus) error {
	return r.db.WithContext(ctx).Create(status).Error
}

func (r *accountStatusRepository) Latest(ctx context.Context, stockCode string) (*entity.AccountStatus, error) {
	var status entity.AccountStatus
	if err := r.db.WithContext(ctx).Where("stock_code = ?", stockCode).Order("id desc").First(&status).Error; err != nil {
		return nil, translateError(err)
	}
	return &status, nil
}
