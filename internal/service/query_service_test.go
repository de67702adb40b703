package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang-stock-autotrader/internal/dto"
	"golang-stock-autotrader/internal/entity"
	"golang-stock-autotrader/pkg/utils"
)

func TestClampLimit(t *testing.T) {
	assert.Equal(t, DefaultQueryLimit, ClampLimit(0))
	assert.Equal(t, DefaultQueryLimit, ClampLimit(-5))
	assert.Equal(t, 25, ClampLimit(25))
	assert.Equal(t, MaxQueryLimit, ClampLimit(MaxQueryLimit+1))
}

func TestQueryService_TradingSettingsDefaultsWhenMissing(t *testing.T) {
	f := newFixture(t)
	query := f.queryService()

	setting, err := query.TradingSettings(context.Background(), testStockCode)
	require.NoError(t, err)
	assert.Zero(t, setting.ID)
	assert.True(t, setting.IsActive)
	assert.Equal(t, entity.DefaultMAShortPeriod, setting.MAShortPeriod)
	assert.Equal(t, entity.DefaultMALongPeriod, setting.MALongPeriod)
}

func TestQueryService_UpdateTradingSettings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	query := f.queryService()

	updated, err := query.UpdateTradingSettings(ctx, dto.TradingSettingRequest{
		StockCode:          testStockCode,
		IsActive:           utils.ToPointer(false),
		MAShortPeriod:      utils.ToPointer(5),
		AdditionalSettings: json.RawMessage(`{"note":"paused"}`),
	})
	require.NoError(t, err)
	assert.NotZero(t, updated.ID)
	assert.False(t, updated.IsActive)
	assert.Equal(t, 5, updated.MAShortPeriod)
	assert.Equal(t, entity.DefaultMALongPeriod, updated.MALongPeriod)
	assert.JSONEq(t, `{"note":"paused"}`, string(updated.AdditionalSettings))

	// Partial updates keep the stored values.
	updated, err = query.UpdateTradingSettings(ctx, dto.TradingSettingRequest{
		StockCode:    testStockCode,
		MaxBuyAmount: utils.ToPointer(int64(50000)),
	})
	require.NoError(t, err)
	assert.Equal(t, 5, updated.MAShortPeriod)
	assert.False(t, updated.IsActive)
	assert.Equal(t, int64(50000), updated.MaxBuyAmount)

	logs, err := f.logs.FindRecent(ctx, entity.LogLevelInfo, 10)
	require.NoError(t, err)
	assert.Len(t, logs, 2)
}

func TestQueryService_UpdateTradingSettingsValidation(t *testing.T) {
	f := newFixture(t)
	query := f.queryService()

	tests := []struct {
		name string
		req  dto.TradingSettingRequest
	}{
		{name: "missing stock code", req: dto.TradingSettingRequest{}},
		{name: "short not below long", req: dto.TradingSettingRequest{StockCode: testStockCode, MAShortPeriod: utils.ToPointer(60)}},
		{name: "non-positive period", req: dto.TradingSettingRequest{StockCode: testStockCode, MALongPeriod: utils.ToPointer(0)}},
		{name: "negative max buy", req: dto.TradingSettingRequest{StockCode: testStockCode, MaxBuyAmount: utils.ToPointer(int64(-1))}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := query.UpdateTradingSettings(context.Background(), tt.req)
			assert.ErrorIs(t, err, ErrInvalidSettings)
		})
	}
}

func TestQueryService_Dashboard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	query := f.queryService()

	require.NoError(t, f.prices.Create(ctx, &entity.PriceData{StockCode: testStockCode, Price: 9000}))
	require.NoError(t, f.prices.Create(ctx, &entity.PriceData{StockCode: testStockCode, Price: 9100}))
	order := &entity.Order{StockCode: testStockCode, OrderType: entity.OrderTypeSell, Quantity: 2, Price: 9100, Status: entity.OrderStatusPending}
	require.NoError(t, f.orders.Create(ctx, order))
	require.NoError(t, f.orders.UpdateStatus(ctx, order.ID, entity.OrderStatusSuccess, ""))

	dashboard, err := query.Dashboard(ctx, testStockCode)
	require.NoError(t, err)
	require.NotNil(t, dashboard.LatestPrice)
	assert.Equal(t, int64(9100), dashboard.LatestPrice.Price)
	assert.Len(t, dashboard.RecentOrders, 1)
	assert.Equal(t, int64(1), dashboard.Statistics.SellCount)
	assert.Equal(t, int64(18200), dashboard.Statistics.TotalAmount)
	assert.Nil(t, dashboard.AccountStatus)
	require.NotNil(t, dashboard.Settings)
	assert.Equal(t, testStockCode, dashboard.Settings.StockCode)
}
