package repository

import (
	"context"
	"errors"
	"time"

	"golang-stock-autotrader/internal/entity"

	"gorm.io/gorm"
)

// ErrBackupUnsupported is returned when the active driver has no in-process backup.
var ErrBackupUnsupported = errors.New("backup is only supported for sqlite")

// MaintenanceRepository groups whole-database housekeeping.
type MaintenanceRepository interface {
	Ping(ctx context.Context) error
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (map[string]int64, error)
	TableCounts(ctx context.Context) (map[string]int64, error)
	MissingTables() []string
	Backup(ctx context.Context, path string) error
	Import(ctx context.Context, data ImportData) (map[string]int, error)
}

// ImportData is a set of rows restored from an export. Row IDs are reassigned.
type ImportData struct {
	Prices         []entity.PriceData
	MovingAverages []entity.MovingAverage
	Orders         []entity.Order
	Setting        *entity.TradingSetting
}

type maintenanceRepository struct {
	db *gorm.DB
}

func NewMaintenanceRepository(db *gorm.DB) MaintenanceRepository {
	return &maintenanceRepository{db: db}
}

type tabler interface {
	TableName() string
}

// retained lists the tables pruned by retention. Orders, settings and users are kept.
var retained = []tabler{
	entity.PriceData{},
	entity.MovingAverage{},
	entity.TradingSignal{},
	entity.TradingLog{},
	entity.AccountStatus{},
}

func (r *maintenanceRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (r *maintenanceRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (map[string]int64, error) {
	deleted := make(map[string]int64, len(retained))
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, m := range retained {
			res := tx.Exec("DELETE FROM "+m.TableName()+" WHERE created_at < ?", dbTime(cutoff))
			if res.Error != nil {
				return res.Error
			}
			deleted[m.TableName()] = res.RowsAffected
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

func (r *maintenanceRepository) TableCounts(ctx context.Context) (map[string]int64, error) {
	counts := make(map[string]int64)
	for _, m := range Models() {
		t, ok := m.(tabler)
		if !ok {
			continue
		}
		var n int64
		if err := r.db.WithContext(ctx).Model(m).Count(&n).Error; err != nil {
			return nil, err
		}
		counts[t.TableName()] = n
	}
	return counts, nil
}

func (r *maintenanceRepository) MissingTables() []string {
	var missing []string
	for _, m := range Models() {
		if !r.db.Migrator().HasTable(m) {
			if t, ok := m.(tabler); ok {
				missing = append(missing, t.TableName())
			}
		}
	}
	return missing
}

// Backup writes a consistent copy of a sqlite database to path.
func (r *maintenanceRepository) Backup(ctx context.Context, path string) error {
	if r.db.Dialector.Name() != "sqlite" {
		return ErrBackupUnsupported
	}
	return r.db.WithContext(ctx).Exec("VACUUM INTO ?", path).Error
}

// Import inserts all rows in one transaction.
func (r *maintenanceRepository) Import(ctx context.Context, data ImportData) (map[string]int, error) {
	imported := map[string]int{}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range data.Prices {
			data.Prices[i].ID = 0
		}
		for i := range data.MovingAverages {
			data.MovingAverages[i].ID = 0
		}
		for i := range data.Orders {
			data.Orders[i].ID = 0
		}
		if len(data.Prices) > 0 {
			if err := tx.CreateInBatches(data.Prices, 200).Error; err != nil {
				return err
			}
		}
		if len(data.MovingAverages) > 0 {
			if err := tx.CreateInBatches(data.MovingAverages, 200).Error; err != nil {
				return err
			}
		}
		if len(data.Orders) > 0 {
			if err := tx.CreateInBatches(data.Orders, 200).Error; err != nil {
				return err
			}
		}
		imported[entity.PriceData{}.TableName()] = len(data.Prices)
		imported[entity.MovingAverage{}.TableName()] = len(data.MovingAverages)
		imported[entity.Order{}.TableName()] = len(data.Orders)

		if data.Setting != nil {
			if err := NewTradingSettingRepository(tx).Upsert(ctx, data.Setting); err != nil {
				return err
			}
			imported[entity.TradingSetting{}.TableName()] = 1
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return imported, nil
}
