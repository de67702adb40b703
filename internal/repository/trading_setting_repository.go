package repository

import (
	"context"
	"time"

	"golang-stock-autotrader/internal/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TradingSettingRepository manages the single settings row per stock.
type TradingSettingRepository interface {
	FindByStockCode(ctx context.Context, stockCode string) (*entity.TradingSetting, error)
	Upsert(ctx context.Context, setting *entity.TradingSetting) error
}

type tradingSettingRepository struct {
	db *gorm.DB
}

func NewTradingSettingRepository(db *gorm.DB) TradingSettingRepository {
	return &tradingSettingRepository{db: db}
}

func (r *tradingSettingRepository) FindByStockCode(ctx context.Context, stockCode string) (*entity.TradingSetting, error) {
	var setting entity.TradingSetting
	if err := r.db.WithContext(ctx).Where("stock_code = ?", stockCode).First(&setting).Error; err != nil {
		return nil, translateError(err)
	}
	return &setting, nil
}

// Upsert inserts the row or updates the mutable columns of the existing row for the stock.
func (r *tradingSettingRepository) Upsert(ctx context.Context, setting *entity.TradingSetting) error {
	row := *setting
	row.ID = 0
	row.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "stock_code"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"is_active",
			"ma_short_period",
			"ma_long_period",
			"max_buy_amount",
			"additional_settings",
			"updated_at",
		}),
	}).Create(&row).Error
}
