package ports

import (
	"context"

	"orderflow/internal/core/domain/model/eta"
)

// ETARepository stores the single EMA row of the unit of work's tenant.
type ETARepository interface {
	// Get returns the current estimate, or a fresh (0, 0) stat when the
	// tenant has not served anything yet.
	Get(ctx context.Context) (eta.Stat, error)

	// GetForUpdate creates the row if needed and locks it until the
	// transaction ends, so read-modify-write updates of one tenant serialize.
	GetForUpdate(ctx context.Context) (eta.Stat, error)

	// Save overwrites the row with stat.
	Save(ctx context.Context, stat eta.Stat) error
}
