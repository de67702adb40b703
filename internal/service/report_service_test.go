package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"golang-stock-autotrader/internal/entity"
)

func TestReportService_SendDailyReport(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	order := &entity.Order{StockCode: testStockCode, OrderType: entity.OrderTypeBuy, Quantity: 2, Price: 500, Status: entity.OrderStatusPending}
	require.NoError(t, f.orders.Create(ctx, order))
	require.NoError(t, f.orders.UpdateStatus(ctx, order.ID, entity.OrderStatusSuccess, ""))
	require.NoError(t, f.statuses.Create(ctx, &entity.AccountStatus{Account: testAccount, StockCode: testStockCode, HoldingQuantity: 2, TotalEvaluation: 1000}))

	notifier := new(MockNotifier)
	notifier.On("SendMessage", mock.MatchedBy(func(text string) bool {
		return strings.Contains(text, testStockCode) && strings.Contains(text, "Traded Amount: 1000")
	})).Return(nil).Once()

	report := NewReportService(f.queryService(), notifier, f.log)
	require.NoError(t, report.SendDailyReport(ctx, testStockCode))
	notifier.AssertExpectations(t)
}

func TestReportService_SendFailure(t *testing.T) {
	f := newFixture(t)

	notifier := new(MockNotifier)
	notifier.On("SendMessage", mock.AnythingOfType("string")).Return(errors.New("bot blocked")).Once()

	report := NewReportService(f.queryService(), notifier, f.log)
	err := report.SendDailyReport(context.Background(), testStockCode)
	assert.ErrorContains(t, err, "bot blocked")
}
