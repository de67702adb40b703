package repository_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"golang-stock-autotrader/internal/entity"
	"golang-stock-autotrader/internal/repository"
	"golang-stock-autotrader/internal/testutil"
)

const code = "122640"

func TestOrderRepositoryUpdateStatusOnlyOnce(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewOrderRepository(testutil.NewSQLiteDB(t))

	order := &entity.Order{StockCode: code, OrderType: entity.OrderTypeBuy, Quantity: 3, Price: 10000, Status: entity.OrderStatusPending}
	require.NoError(t, repo.Create(ctx, order))
	require.NotZero(t, order.ID)

	require.NoError(t, repo.UpdateStatus(ctx, order.ID, entity.OrderStatusSuccess, ""))

	err := repo.UpdateStatus(ctx, order.ID, entity.OrderStatusFailed, "late failure")
	assert.ErrorIs(t, err, repository.ErrOrderAlreadyFinal)

	stored, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusSuccess, stored.Status)
	assert.Empty(t, stored.ErrorMessage)

	assert.ErrorIs(t, repo.UpdateStatus(ctx, 9999, entity.OrderStatusSuccess, ""), repository.ErrNotFound)
	_, err = repo.FindByID(ctx, 9999)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestOrderRepositoryStatistics(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewOrderRepository(testutil.NewSQLiteDB(t))

	orders := []entity.Order{
		{StockCode: code, OrderType: entity.OrderTypeBuy, Quantity: 10, Price: 1000, Status: entity.OrderStatusSuccess},
		{StockCode: code, OrderType: entity.OrderTypeSell, Quantity: 10, Price: 1100, Status: entity.OrderStatusSuccess},
		{StockCode: code, OrderType: entity.OrderTypeBuy, Quantity: 5, Price: 900, Status: entity.OrderStatusFailed},
		{StockCode: "005930", OrderType: entity.OrderTypeBuy, Quantity: 1, Price: 70000, Status: entity.OrderStatusSuccess},
		{StockCode: code, OrderType: entity.OrderTypeBuy, Quantity: 1, Price: 1, Status: entity.OrderStatusSuccess, CreatedAt: time.Now().AddDate(0, 0, -10)},
	}
	for i := range orders {
		require.NoError(t, repo.Create(ctx, &orders[i]))
	}

	stats, err := repo.Statistics(ctx, code, time.Now().AddDate(0, 0, -1))
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalOrders)
	assert.Equal(t, int64(2), stats.SuccessfulOrders)
	assert.Equal(t, int64(2), stats.BuyCount)
	assert.Equal(t, int64(1), stats.SellCount)
	assert.Equal(t, int64(10*1000+10*1100), stats.TotalAmount)

	all, err := repo.Statistics(ctx, "", time.Now().AddDate(0, 0, -30))
	require.NoError(t, err)
	assert.Equal(t, int64(5), all.TotalOrders)
}

func TestPriceRepositoryRecentPricesChronological(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewPriceRepository(testutil.NewSQLiteDB(t))

	for _, p := range []int64{100, 101, 102, 103} {
		require.NoError(t, repo.Create(ctx, &entity.PriceData{StockCode: code, Price: p}))
	}

	prices, err := repo.RecentPrices(ctx, code, 3)
	require.NoError(t, err)
	assert.Equal(t, []int64{101, 102, 103}, prices)

	latest, err := repo.Latest(ctx, code)
	require.NoError(t, err)
	assert.Equal(t, int64(103), latest.Price)

	_, err = repo.Latest(ctx, "000000")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestMovingAverageRepositoryKeepsNullAverages(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMovingAverageRepository(testutil.NewSQLiteDB(t))

	require.NoError(t, repo.Create(ctx, &entity.MovingAverage{
		StockCode: code,
		Price:     200,
		MAShort:   decimal.NewNullDecimal(decimal.NewFromInt(105)),
	}))

	latest, err := repo.Latest(ctx, code)
	require.NoError(t, err)
	assert.True(t, latest.MAShort.Valid)
	assert.True(t, latest.MAShort.Decimal.Equal(decimal.NewFromInt(105)))
	assert.False(t, latest.MALong.Valid)
}

func TestTradingSettingRepositoryUpsert(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewTradingSettingRepository(testutil.NewSQLiteDB(t))

	_, err := repo.FindByStockCode(ctx, code)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, repo.Upsert(ctx, entity.DefaultTradingSetting(code)))

	updated := entity.DefaultTradingSetting(code)
	updated.IsActive = false
	updated.MAShortPeriod = 5
	updated.AdditionalSettings = datatypes.JSON(`{"note":"paused"}`)
	require.NoError(t, repo.Upsert(ctx, updated))

	stored, err := repo.FindByStockCode(ctx, code)
	require.NoError(t, err)
	assert.False(t, stored.IsActive)
	assert.Equal(t, 5, stored.MAShortPeriod)
	assert.Equal(t, entity.DefaultMALongPeriod, stored.MALongPeriod)
	assert.JSONEq(t, `{"note":"paused"}`, string(stored.AdditionalSettings))
}

func TestUserRepositoryDuplicateUsername(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewUserRepository(testutil.NewSQLiteDB(t))

	require.NoError(t, repo.Create(ctx, &entity.User{Username: "admin", PasswordHash: "x", APIKey: "k1"}))
	err := repo.Create(ctx, &entity.User{Username: "admin", PasswordHash: "y", APIKey: "k2"})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	user, err := repo.FindByAPIKey(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, "admin", user.Username)
}

func TestMaintenanceRepository(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewSQLiteDB(t)
	prices := repository.NewPriceRepository(db)
	logs := repository.NewTradingLogRepository(db)
	maint := repository.NewMaintenanceRepository(db)

	old := time.Now().AddDate(0, 0, -100)
	require.NoError(t, prices.Create(ctx, &entity.PriceData{StockCode: code, Price: 1, CreatedAt: old}))
	require.NoError(t, prices.Create(ctx, &entity.PriceData{StockCode: code, Price: 2}))
	require.NoError(t, logs.Create(ctx, &entity.TradingLog{LogLevel: entity.LogLevelInfo, Message: "old", CreatedAt: old}))

	deleted, err := maint.DeleteOlderThan(ctx, time.Now().AddDate(0, 0, -90))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted["price_data"])
	assert.Equal(t, int64(1), deleted["trading_logs"])
	assert.Equal(t, int64(0), deleted["moving_averages"])

	counts, err := maint.TableCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts["price_data"])
	assert.Len(t, counts, len(repository.Models()))
	assert.Empty(t, maint.MissingTables())
	assert.NoError(t, maint.Ping(ctx))

	backup := filepath.Join(t.TempDir(), "trading.db.backup")
	require.NoError(t, maint.Backup(ctx, backup))
	assert.FileExists(t, backup)
}
