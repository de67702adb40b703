package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang-stock-autotrader/internal/dto"
	"golang-stock-autotrader/pkg/common"
	"golang-stock-autotrader/pkg/logger"
	"golang-stock-autotrader/pkg/telegram"
	"golang-stock-autotrader/pkg/utils"
)

// MonitorConfig configures the remote health monitor.
type MonitorConfig struct {
	URL      string
	APIKey   string
	Interval time.Duration
	Timeout  time.Duration
}

// HealthMonitor polls a deployed API server and alerts on failures.
type HealthMonitor struct {
	cfg      MonitorConfig
	http     *http.Client
	notifier telegram.Notifier
	log      *logger.Logger
}

func NewHealthMonitor(cfg MonitorConfig, notifier telegram.Notifier, log *logger.Logger) *HealthMonitor {
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Minute
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if notifier == nil {
		notifier = telegram.NopNotifier{}
	}
	cfg.URL = strings.TrimRight(cfg.URL, "/")
	return &HealthMonitor{
		cfg:      cfg,
		http:     &http.Client{Timeout: cfg.Timeout},
		notifier: notifier,
		log:      log,
	}
}

// Check runs one health and statistics probe. Any failure is alerted and returned.
func (m *HealthMonitor) Check(ctx context.Context) error {
	err := m.check(ctx)
	if err != nil {
		m.log.ErrorContext(ctx, "Health check failed", logger.ErrorField(err), logger.StringField("url", m.cfg.URL))
		if sendErr := m.notifier.SendMessage(telegram.FormatHealthAlertForTelegram(utils.TimeNowKST(), m.cfg.URL, err.Error())); sendErr != nil {
			m.log.WarnContext(ctx, "Failed to send health alert", logger.ErrorField(sendErr))
		}
		return err
	}
	m.log.InfoContext(ctx, "Health check passed", logger.StringField("url", m.cfg.URL))
	return nil
}

func (m *HealthMonitor) check(ctx context.Context) error {
	var health dto.HealthResponse
	if err := m.getJSON(ctx, "/health", &health); err != nil {
		return fmt.Errorf("health: %w", err)
	}
	if health.Status != "healthy" {
		return fmt.Errorf("health: status %q, database %q", health.Status, health.Database)
	}

	var stats dto.Statistics
	if err := m.getJSON(ctx, "/api/statistics?days=1", &stats); err != nil {
		return fmt.Errorf("statistics: %w", err)
	}
	return nil
}

func (m *HealthMonitor) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.cfg.URL+path, nil)
	if err != nil {
		return err
	}
	if m.cfg.APIKey != "" {
		req.Header.Set(common.HeaderAPIKey, m.cfg.APIKey)
	}

	resp, err := m.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return json.Unmarshal(body, out)
}

// Run checks immediately and then every interval until ctx is done.
func (m *HealthMonitor) Run(ctx context.Context) {
	_ = m.Check(ctx)

	ticker := time.NewTicker(m.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_ = m.Check(ctx)
		case <-ctx.Done():
			m.log.Info("Health monitor stopping")
			return
		}
	}
}
