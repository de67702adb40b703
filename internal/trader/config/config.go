package config

import (
	"os"
	"time"

	"golang-stock-autotrader/internal/indicator"
	"golang-stock-autotrader/pkg/common"
	"golang-stock-autotrader/pkg/config"
)

// Trader holds trading loop configuration.
type Trader struct {
	StockCode    string        `mapstructure:"stock_code"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
	CycleTimeout time.Duration `mapstructure:"cycle_timeout"`
	WindowSize   int           `mapstructure:"window_size"`
	// LockEnabled guards the account with a Redis lock so that only one trader acts on it.
	LockEnabled   bool   `mapstructure:"lock_enabled"`
	RetentionCron string `mapstructure:"retention_cron"`
	RetentionDays int    `mapstructure:"retention_days"`
	ReportCron    string `mapstructure:"report_cron"`
	NotifyOrders  bool   `mapstructure:"notify_orders"`
}

// Monitor holds configuration for the remote health monitor.
type Monitor struct {
	URL      string        `mapstructure:"url"`
	APIKey   string        `mapstructure:"api_key"`
	Interval time.Duration `mapstructure:"interval"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// Config holds the full configuration for the trader.
type Config struct {
	App      config.App      `mapstructure:"app"`
	Logger   config.Logger   `mapstructure:"logger"`
	Database config.Database `mapstructure:"database"`
	Redis    config.Redis    `mapstructure:"redis"`
	Broker   config.Broker   `mapstructure:"broker"`
	Telegram config.Telegram `mapstructure:"telegram"`
	Trader   Trader          `mapstructure:"trader"`
	Monitor  Monitor         `mapstructure:"monitor"`
}

// Load loads the trader configuration from the given path.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := config.Load(path, &cfg); err != nil {
		return nil, err
	}
	config.ApplyBrokerEnv(&cfg.Broker, os.Getenv)
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Trader.StockCode == "" {
		c.Trader.StockCode = common.DefaultStockCode
	}
	if c.Trader.PollInterval <= 0 {
		c.Trader.PollInterval = time.Minute
	}
	if c.Trader.CycleTimeout <= 0 {
		c.Trader.CycleTimeout = 45 * time.Second
	}
	if c.Trader.WindowSize <= 0 {
		c.Trader.WindowSize = indicator.DefaultWindowSize
	}
	if c.Trader.RetentionDays <= 0 {
		c.Trader.RetentionDays = 90
	}
	if c.Trader.RetentionCron == "" {
		c.Trader.RetentionCron = "0 3 * * *"
	}
	if c.Trader.ReportCron == "" {
		c.Trader.ReportCron = "40 15 * * 1-5"
	}
	if c.Monitor.Interval <= 0 {
		c.Monitor.Interval = 5 * time.Minute
	}
	if c.Monitor.Timeout <= 0 {
		c.Monitor.Timeout = 10 * time.Second
	}
}
