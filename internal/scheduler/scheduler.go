package scheduler

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"carshare/internal/config"
	"carshare/internal/jobs"
	"carshare/internal/logger"
)

// Scheduler manages cron job scheduling.
type Scheduler struct {
	cron *cron.Cron
	jobs *jobs.JobRunner
	log  *logrus.Entry
}

// NewScheduler creates a scheduler and registers every job from cfg.
func NewScheduler(cfg config.SchedulerConfig, jobRunner *jobs.JobRunner) (*Scheduler, error) {
	// UTC timezone and seconds precision.
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithSeconds(),
	)

	s := &Scheduler{
		cron: c,
		jobs: jobRunner,
		log:  logger.WithService("scheduler"),
	}

	if err := s.registerJobs(cfg); err != nil {
		return nil, err
	}
	return s, nil
}

// registerJobs registers all scheduled jobs with the cron scheduler.
func (s *Scheduler) registerJobs(cfg config.SchedulerConfig) error {
	if _, err := s.cron.AddFunc(cfg.OverdueRentals, s.jobs.SendOverdueRentalsReport); err != nil {
		return fmt.Errorf("register SendOverdueRentalsReport job: %w", err)
	}

	s.log.WithField("jobs", len(s.cron.Entries())).Info("cron jobs registered")
	return nil
}

// Start begins the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("cron scheduler started")
}

// Stop gracefully stops the cron scheduler, waiting for running jobs.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info("cron scheduler stopped")
}

// Entries returns the number of registered jobs.
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}
