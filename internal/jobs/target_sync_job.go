package jobs

import (
	"context"
	"time"

	"github.com/pipemetric/insight-api/internal/domain"
	"go.uber.org/zap"
)

// TargetSyncJobName is the name of the monthly-target refresh job
const TargetSyncJobName = "target_sync"

// TargetSource fetches the published monthly revenue targets. The warehouse
// client satisfies this; the interface keeps the job free of the driver
// import.
type TargetSource interface {
	FetchMonthlyTargets(ctx context.Context) ([]domain.Target, error)
}

// TargetStore replaces the locally served target set
type TargetStore interface {
	ReplaceAll(ctx context.Context, targets []domain.Target) error
}

// TargetSyncJob refreshes the target table from the finance warehouse so the
// engine serves the latest published numbers without a restart
type TargetSyncJob struct {
	source  TargetSource
	store   TargetStore
	logger  *zap.Logger
	timeout time.Duration
}

// NewTargetSyncJob creates a target refresh job. The timeout bounds one
// complete fetch-and-replace cycle.
func NewTargetSyncJob(source TargetSource, store TargetStore, logger *zap.Logger, timeout time.Duration) *TargetSyncJob {
	return &TargetSyncJob{
		source:  source,
		store:   store,
		logger:  logger,
		timeout: timeout,
	}
}

// Run executes one refresh cycle. Called by the scheduler according to the
// configured cron expression. An empty warehouse result is treated as "no
// data published yet" and leaves the current targets untouched.
func (j *TargetSyncJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()

	targets, err := j.source.FetchMonthlyTargets(ctx)
	if err != nil {
		j.logger.Error("target refresh fetch failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
		return
	}
	if len(targets) == 0 {
		j.logger.Warn("warehouse returned no monthly targets, keeping current set")
		return
	}

	if err := j.store.ReplaceAll(ctx, targets); err != nil {
		j.logger.Error("target refresh store failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
		return
	}

	j.logger.Info("monthly targets refreshed",
		zap.Int("targets", len(targets)),
		zap.Duration("duration", time.Since(start)))
}

// RegisterTargetSyncJob registers the refresh job with the scheduler and,
// when runOnStart is true, runs one refresh immediately in the background so
// startup does not block on the warehouse.
func RegisterTargetSyncJob(scheduler *Scheduler, source TargetSource, store TargetStore, logger *zap.Logger, cronExpr string, timeout time.Duration, runOnStart bool) error {
	job := NewTargetSyncJob(source, store, logger, timeout)

	if runOnStart {
		go job.Run()
	}

	return scheduler.AddJob(TargetSyncJobName, cronExpr, job.Run)
}
