package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"golang-stock-autotrader/internal/service"
)

var (
	monitorOnce   bool
	monitorURL    string
	monitorAPIKey string
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Poll a deployed API server and alert on Telegram when it is unhealthy",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			if monitorURL != "" {
				a.cfg.Monitor.URL = monitorURL
			}
			if monitorAPIKey != "" {
				a.cfg.Monitor.APIKey = monitorAPIKey
			}
			if a.cfg.Monitor.URL == "" {
				return errors.New("monitor.url is not configured")
			}
			monitor := service.NewHealthMonitor(service.MonitorConfig{
				URL:      a.cfg.Monitor.URL,
				APIKey:   a.cfg.Monitor.APIKey,
				Interval: a.cfg.Monitor.Interval,
				Timeout:  a.cfg.Monitor.Timeout,
			}, a.notifier, a.logger)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if monitorOnce {
				return monitor.Check(ctx)
			}
			monitor.Run(ctx)
			return nil
		})
	},
}

func init() {
	monitorCmd.Flags().BoolVar(&monitorOnce, "once", false, "Run a single check and exit")
	monitorCmd.Flags().StringVar(&monitorURL, "url", "", "Base URL of the API server (overrides monitor.url)")
	monitorCmd.Flags().StringVar(&monitorAPIKey, "api-key", "", "API key sent as X-API-Key (overrides monitor.api_key)")
}
