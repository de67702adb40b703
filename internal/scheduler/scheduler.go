// Package scheduler runs the trader's periodic maintenance jobs on cron expressions.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"golang-stock-autotrader/pkg/logger"
	"golang-stock-autotrader/pkg/utils"
)

// Job is a named task run whenever its cron expression is due.
type Job struct {
	Name           string
	CronExpression string
	Run            func(ctx context.Context) error
}

type scheduledJob struct {
	Job
	schedule      cron.Schedule
	lastExecution time.Time
	nextExecution time.Time
}

// Scheduler polls its jobs and runs the due ones sequentially.
type Scheduler struct {
	logger          *logger.Logger
	pollingInterval time.Duration
	cronParser      cron.Parser
	now             func() time.Time

	mu   sync.Mutex
	jobs []*scheduledJob
}

func NewScheduler(log *logger.Logger, pollingInterval time.Duration) *Scheduler {
	if pollingInterval <= 0 {
		pollingInterval = time.Minute
	}
	return &Scheduler{
		logger:          log,
		pollingInterval: pollingInterval,
		cronParser:      cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor),
		now:             utils.TimeNowKST,
	}
}

// Register validates the cron expression and schedules the first run.
func (s *Scheduler) Register(job Job) error {
	schedule, err := s.cronParser.Parse(job.CronExpression)
	if err != nil {
		return fmt.Errorf("invalid cron expression %q for job %s: %w", job.CronExpression, job.Name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = append(s.jobs, &scheduledJob{
		Job:           job,
		schedule:      schedule,
		nextExecution: schedule.Next(s.now()),
	})
	s.logger.Info("Job scheduled", logger.StringField("job", job.Name), logger.StringField("cron", job.CronExpression))
	return nil
}

// Start begins the periodic job processing loop.
func (s *Scheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(s.pollingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Scheduler stopping")
			return
		case <-ticker.C:
			s.ProcessJobs(ctx, s.now())
		}
	}
}

// ProcessJobs runs every job due at now and returns the names of the jobs run.
// A failing or panicking job is logged and rescheduled like a successful one.
func (s *Scheduler) ProcessJobs(ctx context.Context, now time.Time) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ran []string
	for _, job := range s.jobs {
		if now.Before(job.nextExecution) {
			continue
		}
		s.execute(ctx, job)
		ran = append(ran, job.Name)

		job.lastExecution = now
		job.nextExecution = job.schedule.Next(now)
	}
	return ran
}

func (s *Scheduler) execute(ctx context.Context, job *scheduledJob) {
	started := time.Now()
	err := utils.Recover(func() error { return job.Run(ctx) })
	if err != nil {
		s.logger.ErrorContext(ctx, "Job failed", logger.ErrorField(err), logger.StringField("job", job.Name))
		return
	}
	s.logger.InfoContext(ctx, "Job completed",
		logger.StringField("job", job.Name),
		logger.Field("duration", time.Since(started).String()))
}

// NextExecution returns when the named job runs next.
func (s *Scheduler) NextExecution(name string) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, job := range s.jobs {
		if job.Name == name {
			return job.nextExecution, true
		}
	}
	return time.Time{}, false
}
