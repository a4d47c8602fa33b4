// Package catalogrepo reads the resource and menu tables owned by the
// catalog subsystem. Rows are soft-deleted through gorm.DeletedAt; the
// lookup reads them unscoped and turns deleted_at into an Active flag.
package catalogrepo

import (
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/menu"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ResourceDTO is a table, counter or room guests order from.
type ResourceDTO struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey"`
	TenantID  string         `gorm:"type:varchar(64);not null;uniqueIndex:idx_resources_tenant_token,priority:1"`
	Token     string         `gorm:"type:varchar(128);not null;uniqueIndex:idx_resources_tenant_token,priority:2"`
	Label     string         `gorm:"type:varchar(255);not null"`
	Kind      string         `gorm:"type:varchar(16);not null"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// TableName overrides GORM's default naming convention to use "resources".
func (ResourceDTO) TableName() string {
	return "resources"
}

// MenuItemDTO is a published menu entry.
type MenuItemDTO struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	TenantID  string          `gorm:"type:varchar(64);not null;index"`
	Name      string          `gorm:"type:varchar(255);not null"`
	BasePrice decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Modifiers []ModifierDTO   `gorm:"foreignKey:MenuItemID;constraint:OnDelete:CASCADE"`
	DeletedAt gorm.DeletedAt  `gorm:"index"`
}

// TableName overrides GORM's default naming convention to use "menu_items".
func (MenuItemDTO) TableName() string {
	return "menu_items"
}

// ModifierDTO is an add-on of a menu item priced as a delta.
type ModifierDTO struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey"`
	TenantID   string          `gorm:"type:varchar(64);not null"`
	MenuItemID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Name       string          `gorm:"type:varchar(255);not null"`
	PriceDelta decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	DeletedAt  gorm.DeletedAt  `gorm:"index"`
}

// TableName overrides GORM's default naming convention to use "modifiers".
func (ModifierDTO) TableName() string {
	return "modifiers"
}

func resourceToDomain(dto ResourceDTO) (menu.Resource, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return menu.Resource{}, err
	}
	tenant, err := kernel.NewTenantID(dto.TenantID)
	if err != nil {
		return menu.Resource{}, err
	}
	return menu.Resource{
		ID:     id,
		Tenant: tenant,
		Token:  dto.Token,
		Label:  dto.Label,
		Kind:   menu.ResourceKind(dto.Kind),
		Active: !dto.DeletedAt.Valid,
	}, nil
}

func itemToDomain(dto MenuItemDTO) (menu.Item, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return menu.Item{}, err
	}

	mods := make([]menu.Modifier, 0, len(dto.Modifiers))
	for _, m := range dto.Modifiers {
		modID, modErr := kernel.UUIDFromBytes(m.ID[:])
		if modErr != nil {
			return menu.Item{}, modErr
		}
		mods = append(mods, menu.Modifier{
			ID:     modID,
			Name:   m.Name,
			Delta:  kernel.NewMoney(m.PriceDelta),
			Active: !m.DeletedAt.Valid,
		})
	}

	return menu.Item{
		ID:        id,
		Name:      dto.Name,
		BasePrice: kernel.NewMoney(dto.BasePrice),
		Active:    !dto.DeletedAt.Valid,
		Modifiers: mods,
	}, nil
}
