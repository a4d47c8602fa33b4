package catalogrepo

import (
	"context"
	"errors"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/menu"
	"orderflow/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormResourceLookup implements ports.ResourceLookup for one tenant.
type GormResourceLookup struct {
	db     *gorm.DB
	tenant kernel.TenantID
}

func NewGormResourceLookup(db *gorm.DB, tenant kernel.TenantID) *GormResourceLookup {
	return &GormResourceLookup{db: db, tenant: tenant}
}

// unscoped includes soft-deleted rows so retired entries come back inactive.
func (l *GormResourceLookup) unscoped(ctx context.Context) *gorm.DB {
	return l.db.WithContext(ctx).Unscoped().Where("tenant_id = ?", l.tenant.String())
}

func (l *GormResourceLookup) ResourceByToken(ctx context.Context, token string) (menu.Resource, error) {
	var dto ResourceDTO
	if err := l.unscoped(ctx).First(&dto, "token = ?", token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return menu.Resource{}, errs.NewObjectNotFoundError("resource", token)
		}
		return menu.Resource{}, err
	}
	return resourceToDomain(dto)
}

func (l *GormResourceLookup) ResourceByID(ctx context.Context, id kernel.UUID) (menu.Resource, error) {
	if err := id.Validate(); err != nil {
		return menu.Resource{}, err
	}
	var dto ResourceDTO
	if err := l.unscoped(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return menu.Resource{}, errs.NewObjectNotFoundError("resource", id.String())
		}
		return menu.Resource{}, err
	}
	return resourceToDomain(dto)
}

func (l *GormResourceLookup) MenuItems(ctx context.Context, ids []kernel.UUID) (map[kernel.UUID]menu.Item, error) {
	result := make(map[kernel.UUID]menu.Item, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	raw := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		raw = append(raw, id.Bytes())
	}

	var dtos []MenuItemDTO
	err := l.unscoped(ctx).
		Preload("Modifiers", func(db *gorm.DB) *gorm.DB { return db.Unscoped().Order("name") }).
		Where("id IN ?", raw).
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	for _, dto := range dtos {
		item, convErr := itemToDomain(dto)
		if convErr != nil {
			return nil, convErr
		}
		result[item.ID] = item
	}
	return result, nil
}
