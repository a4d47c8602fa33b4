package ports

import (
	"context"
	"time"

	"orderflow/internal/core/domain/model/idempotency"
)

// IdempotencyStore keeps request outcomes by key across processes.
type IdempotencyStore interface {
	// Claim inserts a pending record for key expiring after ttl. When a
	// live record already exists it is returned with claimed=false and
	// nothing is written. Expired records are replaced.
	Claim(ctx context.Context, key idempotency.Key, ttl time.Duration) (rec idempotency.Record, claimed bool, err error)

	// Complete stores the response on a pending record owned by the caller.
	Complete(ctx context.Context, key idempotency.Key, statusCode int, contentType string, body []byte) error

	// Release drops a pending record so the token can be retried.
	Release(ctx context.Context, key idempotency.Key) error

	// Find returns the live record for key.
	// Returns errs.ObjectNotFoundError when there is none.
	Find(ctx context.Context, key idempotency.Key) (idempotency.Record, error)

	// PurgeExpired deletes records that expired before now.
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}
