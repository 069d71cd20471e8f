package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"carshare/internal/domain"
	"carshare/internal/logger"
	"carshare/internal/metrics"
)

// OverdueLister finds open rentals past their planned return date.
type OverdueLister interface {
	ListOverdue(ctx context.Context) ([]*domain.Rental, error)
}

// OverdueNotifier delivers the overdue report.
type OverdueNotifier interface {
	NotifyOverdueRentals(ctx context.Context, rentals []*domain.Rental) error
}

// JobRunner coordinates all scheduled jobs.
type JobRunner struct {
	rentals  OverdueLister
	notifier OverdueNotifier
	timeout  time.Duration
	log      *logrus.Entry
}

// NewJobRunner creates a new job runner.
func NewJobRunner(rentals OverdueLister, notifier OverdueNotifier, timeout time.Duration) *JobRunner {
	if timeout <= 0 {
		timeout = time.Minute
	}
	return &JobRunner{
		rentals:  rentals,
		notifier: notifier,
		timeout:  timeout,
		log:      logger.WithService("jobs"),
	}
}

// runWithRecovery wraps job execution with panic recovery.
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func(ctx context.Context) error) (err error) {
	ctx, cancel := context.WithTimeout(context.Background(), jr.timeout)
	defer cancel()

	log := jr.log.WithField("job", jobName)
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job %s panicked: %v", jobName, r)
		}
		if err != nil {
			log.WithError(err).Error("job failed")
		} else {
			log.Info("job completed")
		}
		metrics.IncJobRun(jobName, metrics.Result(err))
	}()

	log.Info("starting job")
	return jobFunc(ctx)
}

// SendOverdueRentalsReport posts the list of overdue rentals, or a note that
// there are none, to the operator channel.
func (jr *JobRunner) SendOverdueRentalsReport() {
	_ = jr.runWithRecovery("SendOverdueRentalsReport", func(ctx context.Context) error {
		overdue, err := jr.rentals.ListOverdue(ctx)
		if err != nil {
			return fmt.Errorf("list overdue rentals: %w", err)
		}
		jr.log.WithField("count", len(overdue)).Info("overdue rentals found")
		return jr.notifier.NotifyOverdueRentals(ctx, overdue)
	})
}
