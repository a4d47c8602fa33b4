// Package jobs runs the periodic maintenance of the order service on
// github.com/robfig/cron/v3 schedules.
//
// # Available Jobs
//
// 1. IdempotencyPurgeJob - deletes idempotency records past their TTL, every minute
// 2. AbuseSweepJob - drops lapsed rejection counters and expired blocks, every minute
//
// # Usage
//
//	jobManager := jobs.NewJobManager(idempotencyStore, abuseGuard, time.Now, logger)
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//	defer jobManager.StopAll()
//
// Failures are logged and retried on the next tick; a job never stops the
// service. A failed start stops the jobs already running.
package jobs
