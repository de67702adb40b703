package repository

import (
	"context"
	"time"

	"golang-stock-autotrader/internal/dto"
	"golang-stock-autotrader/internal/entity"

	"gorm.io/gorm"
)

// OrderRepository tracks orders and their single PENDING to terminal transition.
type OrderRepository interface {
	Create(ctx context.Context, order *entity.Order) error
	UpdateStatus(ctx context.Context, id uint, status entity.OrderStatus, errorMessage string) error
	FindByID(ctx context.Context, id uint) (*entity.Order, error)
	FindRecent(ctx context.Context, stockCode string, limit int) ([]entity.Order, error)
	Statistics(ctx context.Context, stockCode string, since time.Time) (dto.Statistics, error)
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, order *entity.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

// UpdateStatus moves a PENDING order to status. The update is conditional on the
// stored status so a second transition fails with ErrOrderAlreadyFinal.
func (r *orderRepository) UpdateStatus(ctx context.Context, id uint, status entity.OrderStatus, errorMessage string) error {
	res := r.db.WithContext(ctx).
		Model(&entity.Order{}).
		Where("id = ? AND status = ?", id, entity.OrderStatusPending).
		Updates(map[string]interface{}{
			"status":        status,
			"error_message": errorMessage,
			"updated_at":    time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 1 {
		return nil
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(&entity.Order{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}
	return ErrOrderAlreadyFinal
}

func (r *orderRepository) FindByID(ctx context.Context, id uint) (*entity.Order, error) {
	var order entity.Order
	if err := r.db.WithContext(ctx).First(&order, id).Error; err != nil {
		return nil, translateError(err)
	}
	return &order, nil
}

// FindRecent returns the newest orders. An empty stockCode matches every stock.
func (r *orderRepository) FindRecent(ctx context.Context, stockCode string, limit int) ([]entity.Order, error) {
	var orders []entity.Order
	q := r.db.WithContext(ctx)
	if stockCode != "" {
		q = q.Where("stock_code = ?", stockCode)
	}
	if err := q.Order("id desc").Limit(limit).Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// Statistics aggregates orders created since the given time.
func (r *orderRepository) Statistics(ctx context.Context, stockCode string, since time.Time) (dto.Statistics, error) {
	var stats dto.Statistics

	query := `SELECT
		COUNT(*) AS total_orders,
		COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS successful_orders,
		COALESCE(SUM(CASE WHEN order_type = ? THEN 1 ELSE 0 END), 0) AS buy_count,
		COALESCE(SUM(CASE WHEN order_type = ? THEN 1 ELSE 0 END), 0) AS sell_count,
		COALESCE(SUM(CASE WHEN status = ? THEN quantity * price ELSE 0 END), 0) AS total_amount
	FROM orders
	WHERE created_at >= ?`
	args := []interface{}{
		entity.OrderStatusSuccess,
		entity.OrderTypeBuy,
		entity.OrderTypeSell,
		entity.OrderStatusSuccess,
		dbTime(since),
	}
	if stockCode != "" {
		query += " AND stock_code = ?"
		args = append(args, stockCode)
	}

	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&stats).Error; err != nil {
		return dto.Statistics{}, err
	}
	return stats, nil
}
