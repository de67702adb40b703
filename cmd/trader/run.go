package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"golang-stock-autotrader/internal/scheduler"
	"golang-stock-autotrader/internal/service"
	"golang-stock-autotrader/pkg/logger"
	"golang-stock-autotrader/pkg/telegram"
	"golang-stock-autotrader/pkg/utils"
)

const shutdownTimeout = 30 * time.Second

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the trading loop",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(runTrader)
	},
}

func runTrader(a *app) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var orderNotifier telegram.Notifier = telegram.NopNotifier{}
	if a.cfg.Trader.NotifyOrders {
		orderNotifier = a.notifier
	}

	tracker := service.NewOrderTracker(a.broker, a.orders, a.activity, orderNotifier, a.logger)
	reconciler := service.NewReconciler(a.broker, a.activity)
	account := service.NewAccountService(a.broker, a.statuses, a.logger)

	trader := service.NewTradingService(service.TradingConfig{
		Account:      a.cfg.Broker.Account,
		StockCode:    a.cfg.Trader.StockCode,
		PollInterval: a.cfg.Trader.PollInterval,
		CycleTimeout: a.cfg.Trader.CycleTimeout,
		WindowSize:   a.cfg.Trader.WindowSize,
		LockEnabled:  a.cfg.Trader.LockEnabled && a.redis != nil,
	}, service.TradingDependencies{
		Broker:         a.broker,
		Credentials:    a.credentials,
		Prices:         a.prices,
		MovingAverages: a.averages,
		Signals:        a.signals,
		Settings:       a.settings,
		Orders:         a.orders,
		Cache:          a.cache,
		Tracker:        tracker,
		Reconciler:     reconciler,
		Account:        account,
		Activity:       a.activity,
		Logger:         a.logger,
	})

	jobs, err := newJobScheduler(a)
	if err != nil {
		return err
	}
	utils.GoSafe(func() { jobs.Start(ctx) }, func(r interface{}, stack []byte) {
		a.logger.Error("Scheduler panicked", logger.Field("panic", r), logger.StringField("stack", string(stack)))
	})

	a.logger.Info("Starting trader",
		logger.StringField("stock_code", a.cfg.Trader.StockCode),
		logger.Field("poll_interval", a.cfg.Trader.PollInterval.String()))

	if err := trader.Run(ctx); err != nil {
		return fmt.Errorf("trading loop: %w", err)
	}

	stats, err := trader.Shutdown(shutdownTimeout)
	if err != nil {
		return fmt.Errorf("failed to load final statistics: %w", err)
	}
	fmt.Printf("Orders today: %d (successful %d, buy %d, sell %d), amount %d KRW\n",
		stats.TotalOrders, stats.SuccessfulOrders, stats.BuyCount, stats.SellCount, stats.TotalAmount)
	return nil
}

// newJobScheduler registers the retention cleanup and the daily report.
func newJobScheduler(a *app) (*scheduler.Scheduler, error) {
	report := service.NewReportService(a.query, a.notifier, a.logger)
	jobs := scheduler.NewScheduler(a.logger, time.Minute)

	if err := jobs.Register(scheduler.Job{
		Name:           "retention_cleanup",
		CronExpression: a.cfg.Trader.RetentionCron,
		Run: alertOnFailure(a, "retention_cleanup", func(ctx context.Context) error {
			_, err := a.maintenance.Cleanup(ctx, a.cfg.Trader.RetentionDays)
			return err
		}),
	}); err != nil {
		return nil, err
	}
	if err := jobs.Register(scheduler.Job{
		Name:           "daily_report",
		CronExpression: a.cfg.Trader.ReportCron,
		Run: alertOnFailure(a, "daily_report", func(ctx context.Context) error {
			return report.SendDailyReport(ctx, a.cfg.Trader.StockCode)
		}),
	}); err != nil {
		return nil, err
	}
	return jobs, nil
}

func alertOnFailure(a *app, name string, run func(ctx context.Context) error) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		err := run(ctx)
		if err != nil {
			msg := telegram.FormatJobFailureForTelegram(utils.TimeNowKST(), name, err.Error(), a.cfg.Trader.StockCode)
			if sendErr := a.notifier.SendMessage(msg); sendErr != nil {
				a.logger.Warn("Failed to send job failure alert", logger.ErrorField(sendErr))
			}
		}
		return err
	}
}
