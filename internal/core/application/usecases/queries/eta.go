package queries

import (
	"context"
	"database/sql"
	"errors"

	"orderflow/internal/core/domain/model/eta"
	"orderflow/internal/core/domain/model/kernel"

	"gorm.io/gorm"
)

// loadStat reads the tenant estimate without locking; no row means no
// history yet.
func loadStat(ctx context.Context, db *gorm.DB, tenant kernel.TenantID) (eta.Stat, error) {
	var row struct {
		WindowN    int64
		EMASeconds float64
	}
	err := db.WithContext(ctx).Raw(`
		SELECT window_n, ema_seconds
		FROM eta_stats
		WHERE tenant_id = ?
	`, tenant.String()).Row().Scan(&row.WindowN, &row.EMASeconds)
	if errors.Is(err, sql.ErrNoRows) {
		return eta.NewStat(tenant, 0, 0)
	}
	if err != nil {
		return eta.Stat{}, err
	}
	return eta.NewStat(tenant, row.WindowN, row.EMASeconds)
}
