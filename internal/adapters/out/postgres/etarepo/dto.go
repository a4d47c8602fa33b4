// Package etarepo persists the per-tenant preparation-time estimate.
package etarepo

import (
	"time"

	"orderflow/internal/core/domain/model/eta"
	"orderflow/internal/core/domain/model/kernel"
)

// StatDTO is the single EMA row of a tenant.
type StatDTO struct {
	TenantID   string    `gorm:"type:varchar(64);primaryKey"`
	WindowN    int64     `gorm:"type:bigint;not null;default:0"`
	EMASeconds float64   `gorm:"column:ema_seconds;type:double precision;not null;default:0"`
	UpdatedAt  time.Time `gorm:"type:timestamptz"`
}

// TableName overrides GORM's default naming convention to use "eta_stats".
func (StatDTO) TableName() string {
	return "eta_stats"
}

func toDomain(dto StatDTO) (eta.Stat, error) {
	tenant, err := kernel.NewTenantID(dto.TenantID)
	if err != nil {
		return eta.Stat{}, err
	}
	return eta.NewStat(tenant, dto.WindowN, dto.EMASeconds)
}
