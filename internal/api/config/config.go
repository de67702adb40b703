package config

import (
	"os"
	"time"

	"golang-stock-autotrader/pkg/common"
	"golang-stock-autotrader/pkg/config"
)

// Auth holds configuration for the authenticated server mode.
type Auth struct {
	Enabled          bool          `mapstructure:"enabled"`
	AdminUsername    string        `mapstructure:"admin_username"`
	AdminPassword    string        `mapstructure:"admin_password"`
	SessionTimeout   time.Duration `mapstructure:"session_timeout"`
	RateLimitPerHour int           `mapstructure:"rate_limit_per_hour"`
}

// API holds the HTTP server configuration.
type API struct {
	config.API `mapstructure:",squash"`
	Auth       Auth          `mapstructure:"auth"`
	StockCode  string        `mapstructure:"stock_code"`
	BackupDir  string        `mapstructure:"backup_dir"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// Config holds the full configuration for the API server.
type Config struct {
	App      config.App      `mapstructure:"app"`
	Logger   config.Logger   `mapstructure:"logger"`
	Database config.Database `mapstructure:"database"`
	Redis    config.Redis    `mapstructure:"redis"`
	Broker   config.Broker   `mapstructure:"broker"`
	Telegram config.Telegram `mapstructure:"telegram"`
	API      API             `mapstructure:"api"`
}

// Load loads the API server configuration from the given path.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := config.Load(path, &cfg); err != nil {
		return nil, err
	}
	config.ApplyBrokerEnv(&cfg.Broker, os.Getenv)
	cfg.applyDefaults(os.Getenv)
	return &cfg, nil
}

func (c *Config) applyDefaults(getenv func(string) string) {
	if c.API.Port == 0 {
		c.API.Port = 5000
	}
	if c.API.StockCode == "" {
		c.API.StockCode = common.DefaultStockCode
	}
	if c.API.Timeout <= 0 {
		c.API.Timeout = 30 * time.Second
	}
	if c.API.Auth.AdminUsername == "" {
		c.API.Auth.AdminUsername = "admin"
	}
	if c.API.Auth.AdminPassword == "" {
		c.API.Auth.AdminPassword = getenv("ADMIN_PASSWORD")
	}
	if c.API.Auth.AdminPassword == "" {
		c.API.Auth.AdminPassword = "admin123!"
	}
	if c.API.Auth.SessionTimeout <= 0 {
		c.API.Auth.SessionTimeout = time.Hour
	}
	if c.API.Auth.RateLimitPerHour <= 0 {
		c.API.Auth.RateLimitPerHour = 100
	}
}
