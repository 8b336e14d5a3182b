// Package scheduler wraps gocron for the registry's periodic background
// work (summary rotation, dump publishing).
package scheduler

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"

	"git.home.luguber.info/inful/metricshub/internal/logfields"
)

// Scheduler runs periodic tasks on a single background worker. Shutdown
// waits up to the configured stop timeout for in-flight runs to finish, then
// cancels them.
type Scheduler struct {
	scheduler gocron.Scheduler
}

// New creates a scheduler whose Stop is bounded by stopTimeout.
func New(stopTimeout time.Duration) (*Scheduler, error) {
	s, err := gocron.NewScheduler(
		gocron.WithStopTimeout(stopTimeout),
		gocron.WithLimitConcurrentJobs(1, gocron.LimitModeReschedule),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	return &Scheduler{scheduler: s}, nil
}

// Start begins executing scheduled jobs.
func (s *Scheduler) Start() {
	slog.Info("Starting scheduler")
	s.scheduler.Start()
}

// Stop shuts the scheduler down, waiting at most the configured stop timeout
// for running jobs before force-cancelling them. It never hangs the caller
// indefinitely.
func (s *Scheduler) Stop() error {
	slog.Info("Stopping scheduler")
	return s.scheduler.Shutdown()
}

// ScheduleEvery registers a periodic task. The first run happens one
// interval after Start, not immediately. Returns the job handle for later
// interval updates.
func (s *Scheduler) ScheduleEvery(name string, interval time.Duration, task func()) (uuid.UUID, error) {
	if interval <= 0 {
		return uuid.Nil, fmt.Errorf("interval must be positive, got %s", interval)
	}
	job, err := s.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(guarded(name, task)),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create periodic job %s: %w", name, err)
	}
	return job.ID(), nil
}

// UpdateInterval reschedules an existing job with a new period, keeping the
// same task. Used by config hot reload.
func (s *Scheduler) UpdateInterval(id uuid.UUID, name string, interval time.Duration, task func()) (uuid.UUID, error) {
	if interval <= 0 {
		return uuid.Nil, fmt.Errorf("interval must be positive, got %s", interval)
	}
	job, err := s.scheduler.Update(
		id,
		gocron.DurationJob(interval),
		gocron.NewTask(guarded(name, task)),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to update periodic job %s: %w", name, err)
	}
	slog.Info("Rescheduled periodic job",
		logfields.ScheduleName(name), slog.Duration("interval", interval))
	return job.ID(), nil
}

// guarded isolates task panics so one bad run never cancels future ticks.
func guarded(name string, task func()) func() {
	return func() {
		defer func() {
			if r := recover(); r != nil {
				slog.Error("Scheduled task panicked",
					logfields.ScheduleName(name), slog.Any("panic", r))
			}
		}()
		task()
	}
}
