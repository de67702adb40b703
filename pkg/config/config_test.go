package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	App      App      `mapstructure:"app"`
	Database Database `mapstructure:"database"`
	Broker   Broker   `mapstructure:"broker"`
}

func TestLoadReadsYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
app:
  name: autotrader
database:
  driver: sqlite
  path: trading_data.db
broker:
  timeout: 5s
  account: "1234567801"
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	var cfg testConfig
	require.NoError(t, Load(path, &cfg))

	assert.Equal(t, "autotrader", cfg.App.Name)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 5*time.Second, cfg.Broker.Timeout)
	assert.Equal(t, "1234567801", cfg.Broker.Account)
}

func TestApplyBrokerEnvFillsOnlyEmptyValues(t *testing.T) {
	env := map[string]string{
		"ACCOUNT":      "9999999901",
		"APPKEY":       "key",
		"APPSECRET":    "secret",
		"ACCESS_TOKEN": "token",
	}
	b := Broker{Account: "1234567801"}
	ApplyBrokerEnv(&b, func(k string) string { return env[k] })

	assert.Equal(t, "1234567801", b.Account)
	assert.Equal(t, "key", b.AppKey)
	assert.Equal(t, "secret", b.AppSecret)
	assert.Equal(t, "token", b.AccessToken)
	assert.Equal(t, 10*time.Second, b.Timeout)
	assert.NotEmpty(t, b.BaseURL)
}
