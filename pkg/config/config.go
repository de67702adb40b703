package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// App holds application configuration.
type App struct {
	Name    string `mapstructure:"name"`
	Env     string `mapstructure:"env"`
	Version string `mapstructure:"version"`
}

// Logger holds logger configuration.
type Logger struct {
	Level    string `mapstructure:"level"`
	Encoding string `mapstructure:"encoding"`
}

// Database holds database configuration.
// Driver is either "postgres" or "sqlite"; Path is only used by sqlite.
type Database struct {
	Driver          string `mapstructure:"driver"`
	Path            string `mapstructure:"path"`
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"name"`
	SSLMode         string `mapstructure:"ssl_mode"`
	TimeZone        string `mapstructure:"time_zone"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime string `mapstructure:"conn_max_lifetime"`
	LogLevel        string `mapstructure:"log_level"`
}

// Redis holds Redis configuration.
type Redis struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

// API holds API server configuration.
type API struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// Broker holds the brokerage open API configuration.
type Broker struct {
	BaseURL             string        `mapstructure:"base_url"`
	AppKey              string        `mapstructure:"app_key"`
	AppSecret           string        `mapstructure:"app_secret"`
	AccessToken         string        `mapstructure:"access_token"`
	Account             string        `mapstructure:"account"`
	Timeout             time.Duration `mapstructure:"timeout"`
	MaxRequestPerSecond int           `mapstructure:"max_request_per_second"`
	TokenRefreshMargin  time.Duration `mapstructure:"token_refresh_margin"`
	CustomerType        string        `mapstructure:"customer_type"`
}

// Telegram holds configuration for the Telegram notifier.
type Telegram struct {
	BotToken string `mapstructure:"bot_token"`
	ChatID   int64  `mapstructure:"chat_id"`
}

// Load loads configuration from a file into the given config struct.
// A .env file in the working directory is loaded first when present.
func Load(path string, config interface{}) error {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using process environment")
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		log.Println("Failed to read config file, trying to read from environment variables")
	}

	return v.Unmarshal(config)
}

// ApplyBrokerEnv fills empty broker credentials from the legacy ACCOUNT, APPKEY,
// APPSECRET and ACCESS_TOKEN environment variables.
func ApplyBrokerEnv(b *Broker, getenv func(string) string) {
	if b.Account == "" {
		b.Account = getenv("ACCOUNT")
	}
	if b.AppKey == "" {
		b.AppKey = getenv("APPKEY")
	}
	if b.AppSecret == "" {
		b.AppSecret = getenv("APPSECRET")
	}
	if b.AccessToken == "" {
		b.AccessToken = getenv("ACCESS_TOKEN")
	}
	if b.BaseURL == "" {
		b.BaseURL = "https://openapi.koreainvestment.com:9443"
	}
	if b.Timeout <= 0 {
		b.Timeout = 10 * time.Second
	}
	if b.MaxRequestPerSecond <= 0 {
		b.MaxRequestPerSecond = 15
	}
	if b.TokenRefreshMargin <= 0 {
		b.TokenRefreshMargin = 10 * time.Minute
	}
	if b.CustomerType == "" {
		b.CustomerType = "P"
	}
}
