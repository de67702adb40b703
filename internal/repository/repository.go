package repository

import (
	"errors"
	"time"

	"golang-stock-autotrader/internal/entity"

	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("record not found")
	// ErrOrderAlreadyFinal is returned when an order already left PENDING.
	ErrOrderAlreadyFinal = errors.New("order already in a terminal state")
	// ErrDuplicate is returned when a unique constraint is violated.
	ErrDuplicate = errors.New("duplicate record")
)

// Models lists every table owned by the trader, in creation order.
func Models() []interface{} {
	return []interface{}{
		&entity.PriceData{},
		&entity.MovingAverage{},
		&entity.TradingSignal{},
		&entity.Order{},
		&entity.AccountStatus{},
		&entity.TradingSetting{},
		&entity.TradingLog{},
		&entity.User{},
	}
}

// AutoMigrate creates or updates all tables. Used for sqlite, postgres uses SQL migrations.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}

func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	}
	return err
}

// dbTime converts t to the location gorm uses for autoCreateTime so that
// comparisons also hold on sqlite, where timestamps are stored as text.
func dbTime(t time.Time) time.Time {
	return t.Local()
}
