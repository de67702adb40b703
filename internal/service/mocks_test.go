package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"golang-stock-autotrader/internal/broker"
	"golang-stock-autotrader/internal/entity"
)

type MockBroker struct {
	mock.Mock
}

func (m *MockBroker) Quote(ctx context.Context, cred broker.Credential, code string) (int64, error) {
	args := m.Called(ctx, cred, code)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBroker) UnfilledOrders(ctx context.Context, cred broker.Credential, account, code string, date time.Time) ([]broker.UnfilledOrder, error) {
	args := m.Called(ctx, cred, account, code, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]broker.UnfilledOrder), args.Error(1)
}

func (m *MockBroker) CancelOrder(ctx context.Context, cred broker.Credential, account, orderNo string) error {
	args := m.Called(ctx, cred, account, orderNo)
	return args.Error(0)
}

func (m *MockBroker) PlaceOrder(ctx context.Context, cred broker.Credential, side entity.OrderType, account, code string, quantity, price int64) error {
	args := m.Called(ctx, cred, side, account, code, quantity, price)
	return args.Error(0)
}

func (m *MockBroker) BuyingPower(ctx context.Context, cred broker.Credential, account, code string, price int64) (int64, error) {
	args := m.Called(ctx, cred, account, code, price)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBroker) HoldingQuantity(ctx context.Context, cred broker.Credential, account, code string) (int64, error) {
	args := m.Called(ctx, cred, account, code)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBroker) TotalEvaluation(ctx context.Context, cred broker.Credential, account string) (int64, error) {
	args := m.Called(ctx, cred, account)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBroker) IssueToken(ctx context.Context, appKey, appSecret string) (*broker.Token, error) {
	args := m.Called(ctx, appKey, appSecret)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*broker.Token), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) SendMessage(text string) error {
	args := m.Called(text)
	return args.Error(0)
}

type MockMarketCache struct {
	mock.Mock
}

func (m *MockMarketCache) SetLastPrice(ctx context.Context, stockCode string, price int64, at time.Time, ttl time.Duration) error {
	args := m.Called(ctx, stockCode, price, at, ttl)
	return args.Error(0)
}

func (m *MockMarketCache) GetLastPrice(ctx context.Context, stockCode string) (int64, time.Time, error) {
	args := m.Called(ctx, stockCode)
	return args.Get(0).(int64), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockMarketCache) AcquireLock(ctx context.Context, account, stockCode, owner string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, account, stockCode, owner, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockMarketCache) ReleaseLock(ctx context.Context, account, stockCode, owner string) error {
	args := m.Called(ctx, account, stockCode, owner)
	return args.Error(0)
}
