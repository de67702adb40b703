package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"golang-stock-autotrader/pkg/common"
	"golang-stock-autotrader/pkg/logger"
)

func TestHealthMonitor_Check(t *testing.T) {
	tests := []struct {
		name        string
		health      string
		statsStatus int
		wantErr     string
	}{
		{name: "healthy", health: `{"status":"healthy","database":"connected"}`, statsStatus: http.StatusOK},
		{name: "database down", health: `{"status":"unhealthy","database":"disconnected"}`, statsStatus: http.StatusOK, wantErr: "unhealthy"},
		{name: "statistics unauthorized", health: `{"status":"healthy","database":"connected"}`, statsStatus: http.StatusUnauthorized, wantErr: "statistics"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				switch r.URL.Path {
				case "/health":
					_, _ = w.Write([]byte(tt.health))
				case "/api/statistics":
					assert.Equal(t, "key-1", r.Header.Get(common.HeaderAPIKey))
					assert.Equal(t, "1", r.URL.Query().Get("days"))
					w.WriteHeader(tt.statsStatus)
					_, _ = w.Write([]byte(`{"total_orders":0}`))
				default:
					w.WriteHeader(http.StatusNotFound)
				}
			}))
			defer server.Close()

			notifier := new(MockNotifier)
			if tt.wantErr != "" {
				notifier.On("SendMessage", mock.AnythingOfType("string")).Return(nil).Once()
			}

			monitor := NewHealthMonitor(MonitorConfig{URL: server.URL + "/", APIKey: "key-1"}, notifier, logger.NewNop())
			err := monitor.Check(context.Background())
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.wantErr)
			}
			notifier.AssertExpectations(t)
		})
	}
}

func TestHealthMonitor_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	notifier := new(MockNotifier)
	notifier.On("SendMessage", mock.AnythingOfType("string")).Return(nil).Once()

	monitor := NewHealthMonitor(MonitorConfig{URL: url}, notifier, logger.NewNop())
	assert.Error(t, monitor.Check(context.Background()))
	notifier.AssertExpectations(t)
}
