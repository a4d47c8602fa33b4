package etarepo

import (
	"context"
	"errors"
	"fmt"

	"orderflow/internal/core/domain/model/eta"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormETARepository implements ports.ETARepository for one tenant.
type GormETARepository struct {
	db     *gorm.DB
	tenant kernel.TenantID
}

func NewGormETARepository(db *gorm.DB, tenant kernel.TenantID) *GormETARepository {
	return &GormETARepository{db: db, tenant: tenant}
}

// Get reads the row without locking. A missing row is a fresh estimate.
func (r *GormETARepository) Get(ctx context.Context) (eta.Stat, error) {
	var dto StatDTO
	err := r.db.WithContext(ctx).First(&dto, "tenant_id = ?", r.tenant.String()).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return eta.NewStat(r.tenant, 0, 0)
	}
	if err != nil {
		return eta.Stat{}, err
	}
	return toDomain(dto)
}

// GetForUpdate makes sure the row exists, then locks it.
func (r *GormETARepository) GetForUpdate(ctx context.Context) (eta.Stat, error) {
	seed := StatDTO{TenantID: r.tenant.String()}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&seed).Error; err != nil {
		return eta.Stat{}, err
	}

	var dto StatDTO
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
		First(&dto, "tenant_id = ?", r.tenant.String()).Error; err != nil {
		return eta.Stat{}, err
	}
	return toDomain(dto)
}

// Save overwrites the tenant row.
func (r *GormETARepository) Save(ctx context.Context, stat eta.Stat) error {
	if !stat.Tenant().IsEqual(r.tenant) {
		return errs.NewValueIsInvalidErrorWithCause("tenant",
			fmt.Errorf("stat belongs to %s, repository is scoped to %s", stat.Tenant(), r.tenant))
	}

	dto := StatDTO{
		TenantID:   r.tenant.String(),
		WindowN:    stat.WindowN(),
		EMASeconds: stat.EMASeconds(),
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tenant_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"window_n", "ema_seconds", "updated_at"}),
		}).
		Create(&dto).Error
}
