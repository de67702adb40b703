package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trader.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
app:
  name: trader
database:
  driver: sqlite
  path: data/trading.db
broker:
  account: "1234567801"
trader:
  poll_interval: 30s
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "122640", cfg.Trader.StockCode)
	assert.Equal(t, 30*time.Second, cfg.Trader.PollInterval)
	assert.Equal(t, 100, cfg.Trader.WindowSize)
	assert.Equal(t, 90, cfg.Trader.RetentionDays)
	assert.Equal(t, "0 3 * * *", cfg.Trader.RetentionCron)
	assert.Equal(t, "40 15 * * 1-5", cfg.Trader.ReportCron)
	assert.False(t, cfg.Trader.LockEnabled)
	assert.Equal(t, "1234567801", cfg.Broker.Account)
	assert.Equal(t, "https://openapi.koreainvestment.com:9443", cfg.Broker.BaseURL)
	assert.Equal(t, 5*time.Minute, cfg.Monitor.Interval)
}
