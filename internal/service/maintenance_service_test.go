package service

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang-stock-autotrader/internal/entity"
	"golang-stock-autotrader/internal/repository"
)

func (f *fixture) maintenanceService(cfg MaintenanceConfig) MaintenanceService {
	return NewMaintenanceService(cfg, repository.NewMaintenanceRepository(f.db), f.queryService(), f.activity, f.log)
}

func TestBackupPath(t *testing.T) {
	at := time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC)
	assert.Equal(t, "data/trading.db.backup_20240305_140709", BackupPath("data/trading.db", "", at))
	assert.Equal(t, filepath.Join("backups", "trading.db.backup_20240305_140709"), BackupPath("data/trading.db", "backups", at))
}

func TestMaintenanceService_BackupWithoutPathIsUnsupported(t *testing.T) {
	f := newFixture(t)
	svc := f.maintenanceService(MaintenanceConfig{})

	_, err := svc.Backup(context.Background())
	assert.ErrorIs(t, err, repository.ErrBackupUnsupported)
}

func TestMaintenanceService_HealthAndIntegrity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := f.maintenanceService(MaintenanceConfig{})

	health := svc.Health(ctx)
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, "connected", health.Database)

	require.NoError(t, f.prices.Create(ctx, &entity.PriceData{StockCode: testStockCode, Price: 100}))
	report, err := svc.CheckIntegrity(ctx)
	require.NoError(t, err)
	assert.True(t, report.OK)
	assert.Empty(t, report.MissingTables)
	assert.Equal(t, int64(1), report.Tables["price_data"])

	status, err := svc.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), status.Tables["price_data"])
}

func TestMaintenanceService_CleanupKeepsRecentRows(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := f.maintenanceService(MaintenanceConfig{})

	old := time.Now().AddDate(0, 0, -120)
	require.NoError(t, f.prices.Create(ctx, &entity.PriceData{StockCode: testStockCode, Price: 90, CreatedAt: old}))
	require.NoError(t, f.prices.Create(ctx, &entity.PriceData{StockCode: testStockCode, Price: 100}))

	deleted, err := svc.Cleanup(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted["price_data"])

	remaining, err := f.prices.FindRecent(ctx, testStockCode, 10)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, int64(100), remaining[0].Price)
}

func TestMaintenanceService_ExportImport(t *testing.T) {
	src := newFixture(t)
	ctx := context.Background()

	for _, p := range []int64{100, 110, 120} {
		require.NoError(t, src.prices.Create(ctx, &entity.PriceData{StockCode: testStockCode, Price: p}))
	}
	require.NoError(t, src.averages.Create(ctx, &entity.MovingAverage{
		StockCode: testStockCode,
		Price:     120,
		MAShort:   decimal.NewNullDecimal(decimal.NewFromInt(115)),
	}))
	order := &entity.Order{StockCode: testStockCode, OrderType: entity.OrderTypeBuy, Quantity: 1, Price: 120, Status: entity.OrderStatusPending}
	require.NoError(t, src.orders.Create(ctx, order))
	require.NoError(t, src.orders.UpdateStatus(ctx, order.ID, entity.OrderStatusSuccess, ""))
	setting := entity.DefaultTradingSetting(testStockCode)
	setting.MAShortPeriod = 10
	require.NoError(t, src.settings.Upsert(ctx, setting))

	var buf bytes.Buffer
	require.NoError(t, src.maintenanceService(MaintenanceConfig{}).Export(ctx, testStockCode, &buf))
	assert.Contains(t, buf.String(), `"price_history"`)

	dst := newFixture(t)
	imported, err := dst.maintenanceService(MaintenanceConfig{}).Import(ctx, &buf)
	require.NoError(t, err)
	assert.Equal(t, 3, imported["price_data"])
	assert.Equal(t, 1, imported["moving_averages"])
	assert.Equal(t, 1, imported["orders"])

	prices, err := dst.prices.RecentPrices(ctx, testStockCode, 10)
	require.NoError(t, err)
	assert.Equal(t, []int64{100, 110, 120}, prices)

	latest, err := dst.averages.Latest(ctx, testStockCode)
	require.NoError(t, err)
	assert.True(t, latest.MAShort.Valid)
	assert.False(t, latest.MALong.Valid)

	stored, err := dst.settings.FindByStockCode(ctx, testStockCode)
	require.NoError(t, err)
	assert.Equal(t, 10, stored.MAShortPeriod)

	orders, err := dst.orders.FindRecent(ctx, testStockCode, 10)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, entity.OrderStatusSuccess, orders[0].Status)
}
