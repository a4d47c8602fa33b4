package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

const everyMinute = "0 * * * * *"

// ExpiredRecordPurger deletes idempotency records that are past their TTL.
type ExpiredRecordPurger interface {
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}

// IdempotencyPurgeJob drops expired idempotency records once a minute.
type IdempotencyPurgeJob struct {
	store  ExpiredRecordPurger
	now    func() time.Time
	cron   *cron.Cron
	logger *slog.Logger
}

func NewIdempotencyPurgeJob(store ExpiredRecordPurger, now func() time.Time, logger *slog.Logger) *IdempotencyPurgeJob {
	return &IdempotencyPurgeJob{
		store:  store,
		now:    now,
		cron:   cron.New(cron.WithSeconds()),
		logger: logger.With("component", "idempotency_purge_job"),
	}
}

func (j *IdempotencyPurgeJob) Start() error {
	if _, err := j.cron.AddFunc(everyMinute, func() { j.run(context.Background()) }); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Idempotency purge job started (running every minute)")
	return nil
}

func (j *IdempotencyPurgeJob) run(ctx context.Context) {
	purged, err := j.store.PurgeExpired(ctx, j.now())
	if err != nil {
		j.logger.ErrorContext(ctx, "Idempotency purge job failed", "error", err)
		return
	}
	if purged > 0 {
		j.logger.DebugContext(ctx, "Purged expired idempotency records", "count", purged)
	}
}

// Stop waits for a running purge to finish.
func (j *IdempotencyPurgeJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Idempotency purge job stopped")
}
