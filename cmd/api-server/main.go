package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"golang-stock-autotrader/internal/api/config"
	delivery "golang-stock-autotrader/internal/api/delivery/http"
	_ "golang-stock-autotrader/internal/api/docs"
	"golang-stock-autotrader/internal/broker"
	"golang-stock-autotrader/internal/repository"
	"golang-stock-autotrader/internal/service"
	"golang-stock-autotrader/pkg/database"
	"golang-stock-autotrader/pkg/logger"
	"golang-stock-autotrader/pkg/redis"
	"golang-stock-autotrader/pkg/telegram"
)

var configPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the trading API server",
	Run:   runServe,
}

func runServe(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	appLogger.Info("Starting API server", logger.Field("name", cfg.App.Name), logger.Field("auth_enabled", cfg.API.Auth.Enabled))

	db, err := database.NewDB(database.FromConfig(cfg.Database))
	if err != nil {
		appLogger.Fatal("Failed to initialize database", logger.ErrorField(err))
	}
	defer db.Close()
	if db.Driver == database.DriverSQLite {
		if err := repository.AutoMigrate(db.DB); err != nil {
			appLogger.Fatal("Failed to migrate database", logger.ErrorField(err))
		}
	}

	cache := repository.NewMarketCacheRepository(nil)
	if cfg.Redis.Enabled {
		redisClient, err := redis.NewClient(redis.Config{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err != nil {
			appLogger.Fatal("Failed to initialize Redis", logger.ErrorField(err))
		}
		defer redisClient.Close()
		cache = repository.NewMarketCacheRepository(redisClient.Client)
	}

	notifier, err := telegram.NewNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
	if err != nil {
		appLogger.Warn("Telegram disabled", logger.ErrorField(err))
		notifier = telegram.NopNotifier{}
	}

	// Initialize repositories
	prices := repository.NewPriceRepository(db.DB)
	averages := repository.NewMovingAverageRepository(db.DB)
	signals := repository.NewSignalRepository(db.DB)
	orders := repository.NewOrderRepository(db.DB)
	statuses := repository.NewAccountStatusRepository(db.DB)
	settings := repository.NewTradingSettingRepository(db.DB)
	logs := repository.NewTradingLogRepository(db.DB)
	users := repository.NewUserRepository(db.DB)

	// Initialize services
	brokerClient := broker.NewClient(cfg.Broker, appLogger)
	credentials := service.NewCredentialProvider(cfg.Broker, brokerClient)
	activity := service.NewActivityLogger(appLogger, logs)
	tracker := service.NewOrderTracker(brokerClient, orders, activity, notifier, appLogger)
	reconciler := service.NewReconciler(brokerClient, activity)
	brokerage := service.NewBrokerageService(brokerClient, prices, statuses, cache, tracker, reconciler, activity, appLogger)
	query := service.NewQueryService(prices, averages, signals, orders, logs, statuses, settings, activity, appLogger)

	dbPath := ""
	if db.Driver == database.DriverSQLite {
		dbPath = cfg.Database.Path
	}
	maintenance := service.NewMaintenanceService(service.MaintenanceConfig{DatabasePath: dbPath, BackupDir: cfg.API.BackupDir},
		repository.NewMaintenanceRepository(db.DB), query, activity, appLogger)

	auth := service.NewAuthService(service.AuthConfig{
		SessionTimeout:   cfg.API.Auth.SessionTimeout,
		RateLimitPerHour: cfg.API.Auth.RateLimitPerHour,
	}, users, activity, appLogger)
	if cfg.API.Auth.Enabled {
		if err := auth.EnsureAdmin(ctx, cfg.API.Auth.AdminUsername, cfg.API.Auth.AdminPassword); err != nil {
			appLogger.Fatal("Failed to create admin user", logger.ErrorField(err))
		}
	}

	e := delivery.NewRouter(delivery.RouterConfig{AuthEnabled: cfg.API.Auth.Enabled}, delivery.Handlers{
		Trading: delivery.NewTradingHandler(brokerage, credentials, appLogger),
		Query:   delivery.NewQueryHandler(query, cfg.API.StockCode, appLogger),
		Admin:   delivery.NewAdminHandler(maintenance, appLogger),
		Auth:    delivery.NewAuthHandler(auth, appLogger),
	}, auth, appLogger)
	e.Server.ReadTimeout = cfg.API.Timeout
	e.Server.WriteTimeout = cfg.API.Timeout

	go func() {
		addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
		appLogger.Info("HTTP server starting", logger.Field("address", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("HTTP server failed to start", logger.ErrorField(err))
			stop()
		}
	}()

	<-ctx.Done()

	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", logger.ErrorField(err))
	}

	appLogger.Info("Server exiting")
}

// @title Stock Autotrader API
// @version 1.0
// @description Brokerage passthrough, trading history and maintenance endpoints of the moving average trader.
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
func main() {
	rootCmd := &cobra.Command{Use: "api-server"}

	serveCmd.Flags().StringVarP(&configPath, "config", "c", "configs/config-api.yaml", "Path to the configuration file")

	rootCmd.AddCommand(serveCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing api-server CLI: %s\n", err)
		os.Exit(1)
	}
}
