package service

import (
	"testing"

	"gorm.io/gorm"

	"golang-stock-autotrader/internal/repository"
	"golang-stock-autotrader/internal/testutil"
	"golang-stock-autotrader/pkg/config"
	"golang-stock-autotrader/pkg/logger"
	"golang-stock-autotrader/pkg/telegram"
)

const (
	testAccount   = "1234567801"
	testStockCode = "122640"
)

type fixture struct {
	db       *gorm.DB
	broker   *MockBroker
	log      *logger.Logger
	activity ActivityLogger

	prices   repository.PriceRepository
	averages repository.MovingAverageRepository
	signals  repository.SignalRepository
	settings repository.TradingSettingRepository
	orders   repository.OrderRepository
	statuses repository.AccountStatusRepository
	logs     repository.TradingLogRepository
	users    repository.UserRepository
	cache    repository.MarketCacheRepository

	credentials CredentialProvider
	tracker     OrderTracker
	reconciler  Reconciler
	account     AccountService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testutil.NewSQLiteDB(t)
	log := logger.NewNop()
	mb := new(MockBroker)
	logs := repository.NewTradingLogRepository(db)
	activity := NewActivityLogger(log, logs)

	f := &fixture{
		db:       db,
		broker:   mb,
		log:      log,
		activity: activity,
		prices:   repository.NewPriceRepository(db),
		averages: repository.NewMovingAverageRepository(db),
		signals:  repository.NewSignalRepository(db),
		settings: repository.NewTradingSettingRepository(db),
		orders:   repository.NewOrderRepository(db),
		statuses: repository.NewAccountStatusRepository(db),
		logs:     logs,
		users:    repository.NewUserRepository(db),
	}
	f.credentials = NewCredentialProvider(config.Broker{AccessToken: "token", AppKey: "key", AppSecret: "secret"}, mb)
	f.tracker = NewOrderTracker(mb, f.orders, activity, telegram.NopNotifier{}, log)
	f.reconciler = NewReconciler(mb, activity)
	f.account = NewAccountService(mb, f.statuses, log)
	return f
}

func (f *fixture) tradingService(cfg TradingConfig) *TradingService {
	if cfg.Account == "" {
		cfg.Account = testAccount
	}
	if cfg.StockCode == "" {
		cfg.StockCode = testStockCode
	}
	return NewTradingService(cfg, TradingDependencies{
		Broker:         f.broker,
		Credentials:    f.credentials,
		Prices:         f.prices,
		MovingAverages: f.averages,
		Signals:        f.signals,
		Settings:       f.settings,
		Orders:         f.orders,
		Cache:          f.cache,
		Tracker:        f.tracker,
		Reconciler:     f.reconciler,
		Account:        f.account,
		Activity:       f.activity,
		Logger:         f.log,
	})
}

func (f *fixture) queryService() QueryService {
	return NewQueryService(f.prices, f.averages, f.signals, f.orders, f.logs, f.statuses, f.settings, f.activity, f.log)
}
