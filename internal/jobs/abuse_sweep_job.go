package jobs

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Sweeper forgets abuse counters and blocks that have lapsed.
type Sweeper interface {
	Sweep() int
}

// AbuseSweepJob keeps the in-memory abuse guard from growing with every
// source that was ever rejected.
type AbuseSweepJob struct {
	guard  Sweeper
	cron   *cron.Cron
	logger *slog.Logger
}

func NewAbuseSweepJob(guard Sweeper, logger *slog.Logger) *AbuseSweepJob {
	return &AbuseSweepJob{
		guard:  guard,
		cron:   cron.New(cron.WithSeconds()),
		logger: logger.With("component", "abuse_sweep_job"),
	}
}

func (j *AbuseSweepJob) Start() error {
	if _, err := j.cron.AddFunc(everyMinute, j.run); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Abuse sweep job started (running every minute)")
	return nil
}

func (j *AbuseSweepJob) run() {
	if removed := j.guard.Sweep(); removed > 0 {
		j.logger.DebugContext(context.Background(), "Swept lapsed abuse entries", "count", removed)
	}
}

func (j *AbuseSweepJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Abuse sweep job stopped")
}
