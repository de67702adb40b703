package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang-stock-autotrader/pkg/logger"
	"golang-stock-autotrader/pkg/utils"
)

func newTestScheduler(now time.Time) *Scheduler {
	s := NewScheduler(logger.NewNop(), time.Minute)
	s.now = func() time.Time { return now }
	return s
}

func TestScheduler_RegisterRejectsInvalidCron(t *testing.T) {
	s := newTestScheduler(time.Now())
	err := s.Register(Job{Name: "bad", CronExpression: "every day", Run: func(context.Context) error { return nil }})
	assert.Error(t, err)
}

func TestScheduler_ProcessJobs(t *testing.T) {
	start := time.Date(2024, 5, 10, 2, 30, 0, 0, utils.KST())
	s := newTestScheduler(start)

	var cleanups, reports int
	require.NoError(t, s.Register(Job{Name: "cleanup", CronExpression: "0 3 * * *", Run: func(context.Context) error {
		cleanups++
		return nil
	}}))
	require.NoError(t, s.Register(Job{Name: "report", CronExpression: "30 15 * * 1-5", Run: func(context.Context) error {
		reports++
		return errors.New("telegram unavailable")
	}}))

	next, ok := s.NextExecution("cleanup")
	require.True(t, ok)
	assert.True(t, time.Date(2024, 5, 10, 3, 0, 0, 0, utils.KST()).Equal(next), "next cleanup %s", next)

	ctx := context.Background()
	assert.Empty(t, s.ProcessJobs(ctx, start.Add(10*time.Minute)))

	assert.Equal(t, []string{"cleanup"}, s.ProcessJobs(ctx, start.Add(30*time.Minute)))
	assert.Equal(t, 1, cleanups)
	// Already rescheduled for tomorrow.
	assert.Empty(t, s.ProcessJobs(ctx, start.Add(31*time.Minute)))

	// A failing job still moves to its next slot.
	assert.Equal(t, []string{"report"}, s.ProcessJobs(ctx, time.Date(2024, 5, 10, 15, 30, 0, 0, utils.KST())))
	assert.Equal(t, 1, reports)
	next, _ = s.NextExecution("report")
	assert.True(t, time.Date(2024, 5, 13, 15, 30, 0, 0, utils.KST()).Equal(next), "next report %s", next)
}

func TestScheduler_RecoversPanickingJob(t *testing.T) {
	start := time.Date(2024, 5, 10, 2, 59, 0, 0, utils.KST())
	s := newTestScheduler(start)
	require.NoError(t, s.Register(Job{Name: "panics", CronExpression: "@hourly", Run: func(context.Context) error {
		panic("boom")
	}}))

	assert.NotPanics(t, func() {
		s.ProcessJobs(context.Background(), start.Add(time.Minute))
	})
}

func TestScheduler_StartStopsOnCancel(t *testing.T) {
	s := newTestScheduler(time.Now())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Start(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}
