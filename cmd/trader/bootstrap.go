package main

import (
	"fmt"
	"log"

	"golang-stock-autotrader/internal/broker"
	"golang-stock-autotrader/internal/repository"
	"golang-stock-autotrader/internal/service"
	"golang-stock-autotrader/internal/trader/config"
	"golang-stock-autotrader/pkg/database"
	"golang-stock-autotrader/pkg/logger"
	"golang-stock-autotrader/pkg/redis"
	"golang-stock-autotrader/pkg/telegram"
)

// app holds the wired dependencies shared by the trader subcommands.
type app struct {
	cfg    *config.Config
	logger *logger.Logger
	db     *database.DB
	redis  *redis.Client

	broker      broker.Client
	notifier    telegram.Notifier
	credentials service.CredentialProvider
	activity    service.ActivityLogger
	cache       repository.MarketCacheRepository

	prices   repository.PriceRepository
	averages repository.MovingAverageRepository
	signals  repository.SignalRepository
	orders   repository.OrderRepository
	statuses repository.AccountStatusRepository
	settings repository.TradingSettingRepository
	logs     repository.TradingLogRepository

	query       service.QueryService
	maintenance service.MaintenanceService
}

func newApp() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	db, err := database.NewDB(database.FromConfig(cfg.Database))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	// Postgres schemas are managed by cmd/migrate.
	if db.Driver == database.DriverSQLite {
		if err := repository.AutoMigrate(db.DB); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	a := &app{
		cfg:      cfg,
		logger:   appLogger,
		db:       db,
		prices:   repository.NewPriceRepository(db.DB),
		averages: repository.NewMovingAverageRepository(db.DB),
		signals:  repository.NewSignalRepository(db.DB),
		orders:   repository.NewOrderRepository(db.DB),
		statuses: repository.NewAccountStatusRepository(db.DB),
		settings: repository.NewTradingSettingRepository(db.DB),
		logs:     repository.NewTradingLogRepository(db.DB),
	}

	if cfg.Redis.Enabled {
		redisClient, err := redis.NewClient(redis.Config{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err != nil {
			a.close()
			return nil, fmt.Errorf("failed to initialize redis: %w", err)
		}
		a.redis = redisClient
		a.cache = repository.NewMarketCacheRepository(redisClient.Client)
	} else {
		a.cache = repository.NewMarketCacheRepository(nil)
	}

	notifier, err := telegram.NewNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
	if err != nil {
		appLogger.Warn("Telegram disabled", logger.ErrorField(err))
		notifier = telegram.NopNotifier{}
	}
	a.notifier = notifier

	a.broker = broker.NewClient(cfg.Broker, appLogger)
	a.credentials = service.NewCredentialProvider(cfg.Broker, a.broker)
	a.activity = service.NewActivityLogger(appLogger, a.logs)
	a.query = service.NewQueryService(a.prices, a.averages, a.signals, a.orders, a.logs, a.statuses, a.settings, a.activity, appLogger)

	dbPath := ""
	if db.Driver == database.DriverSQLite {
		dbPath = cfg.Database.Path
	}
	a.maintenance = service.NewMaintenanceService(service.MaintenanceConfig{DatabasePath: dbPath},
		repository.NewMaintenanceRepository(db.DB), a.query, a.activity, appLogger)
	return a, nil
}

func (a *app) close() {
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if err := a.db.Close(); err != nil {
		log.Printf("Failed to close database: %v", err)
	}
	_ = a.logger.Sync()
}

// withApp wires the application for a subcommand and tears it down afterwards.
func withApp(fn func(a *app) error) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()
	return fn(a)
}
