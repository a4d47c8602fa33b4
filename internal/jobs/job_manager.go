package jobs

import (
	"fmt"
	"log/slog"
	"time"
)

// JobManager starts and stops the maintenance jobs together.
type JobManager struct {
	purgeJob *IdempotencyPurgeJob
	sweepJob *AbuseSweepJob
}

func NewJobManager(
	store ExpiredRecordPurger,
	guard Sweeper,
	now func() time.Time,
	logger *slog.Logger,
) *JobManager {
	return &JobManager{
		purgeJob: NewIdempotencyPurgeJob(store, now, logger),
		sweepJob: NewAbuseSweepJob(guard, logger),
	}
}

// StartAll starts all scheduled jobs.
// Returns an error if any job fails to start.
func (jm *JobManager) StartAll() error {
	if err := jm.purgeJob.Start(); err != nil {
		return fmt.Errorf("failed to start idempotency purge job: %w", err)
	}

	if err := jm.sweepJob.Start(); err != nil {
		// Stop already started jobs if this one fails
		jm.purgeJob.Stop()
		return fmt.Errorf("failed to start abuse sweep job: %w", err)
	}

	return nil
}

func (jm *JobManager) StopAll() {
	jm.sweepJob.Stop()
	jm.purgeJob.Stop()
}
