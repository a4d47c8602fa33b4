// Package orderrepo provides data transfer objects and mapping functions for order persistence.
// Orders and their items live in two tables; every row carries the tenant id and
// every query is filtered by it.
package orderrepo

import (
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderDTO represents the database structure for persisting order aggregates.
type OrderDTO struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey"`
	TenantID   string          `gorm:"type:varchar(64);not null;index:idx_orders_tenant_status,priority:1"`
	ResourceID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Source     string          `gorm:"type:varchar(128);not null"`
	Status     int             `gorm:"type:smallint;not null;index:idx_orders_tenant_status,priority:2"`
	Total      decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Timeline   TimelineDTO     `gorm:"embedded"`
	Items      []OrderItemDTO  `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// TableName overrides GORM's default naming convention to use "orders".
func (OrderDTO) TableName() string {
	return "orders"
}

// TimelineDTO holds the per-status timestamps shared by orders and items.
type TimelineDTO struct {
	PlacedAt   *time.Time `gorm:"type:timestamptz"`
	AcceptedAt *time.Time `gorm:"type:timestamptz"`
	StartedAt  *time.Time `gorm:"type:timestamptz"`
	ReadyAt    *time.Time `gorm:"type:timestamptz"`
	ServedAt   *time.Time `gorm:"type:timestamptz"`
	ClosedAt   *time.Time `gorm:"type:timestamptz"`
}

// OrderItemDTO is one order line with its frozen price snapshot.
type OrderItemDTO struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	TenantID   string          `gorm:"type:varchar(64);not null"`
	Position   int             `gorm:"type:smallint;not null"`
	MenuItemID uuid.UUID       `gorm:"type:uuid;not null"`
	Name       string          `gorm:"type:varchar(255);not null"`
	BasePrice  decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	UnitPrice  decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Quantity   int             `gorm:"type:smallint;not null"`
	Modifiers  []ModifierDTO   `gorm:"type:jsonb;serializer:json"`
	Status     int             `gorm:"type:smallint;not null"`
	Timeline   TimelineDTO     `gorm:"embedded"`
}

// TableName overrides GORM's default naming convention to use "order_items".
func (OrderItemDTO) TableName() string {
	return "order_items"
}

// ModifierDTO is the JSON shape of a modifier snapshot.
type ModifierDTO struct {
	ID    uuid.UUID       `json:"id"`
	Name  string          `json:"name"`
	Delta decimal.Decimal `json:"delta"`
}

func timelineFromDomain(t order.Timeline) TimelineDTO {
	return TimelineDTO{
		PlacedAt:   t.PlacedAt,
		AcceptedAt: t.AcceptedAt,
		StartedAt:  t.StartedAt,
		ReadyAt:    t.ReadyAt,
		ServedAt:   t.ServedAt,
		ClosedAt:   t.ClosedAt,
	}
}

func (t TimelineDTO) toDomain() order.Timeline {
	return order.Timeline{
		PlacedAt:   utc(t.PlacedAt),
		AcceptedAt: utc(t.AcceptedAt),
		StartedAt:  utc(t.StartedAt),
		ReadyAt:    utc(t.ReadyAt),
		ServedAt:   utc(t.ServedAt),
		ClosedAt:   utc(t.ClosedAt),
	}
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}

// fromDomain converts an order aggregate and its items to database rows.
func fromDomain(aggregate *order.Order) OrderDTO {
	orderID := aggregate.ID().Bytes()
	tenant := aggregate.Tenant().String()

	items := make([]OrderItemDTO, 0, len(aggregate.Items()))
	for i, item := range aggregate.Items() {
		dto := itemFromDomain(item)
		dto.OrderID = orderID
		dto.TenantID = tenant
		dto.Position = i
		items = append(items, dto)
	}

	return OrderDTO{
		ID:         orderID,
		TenantID:   tenant,
		ResourceID: aggregate.ResourceID().Bytes(),
		Source:     aggregate.Source().String(),
		Status:     int(aggregate.Status()),
		Total:      aggregate.Total().Decimal(),
		Timeline:   timelineFromDomain(aggregate.Timeline()),
		Items:      items,
	}
}

func itemFromDomain(item *order.Item) OrderItemDTO {
	snap := item.Snapshot()
	mods := make([]ModifierDTO, 0, len(snap.Modifiers()))
	for _, m := range snap.Modifiers() {
		mods = append(mods, ModifierDTO{ID: m.ModifierID.Bytes(), Name: m.Name, Delta: m.Delta.Decimal()})
	}

	return OrderItemDTO{
		ID:         item.ID().Bytes(),
		OrderID:    item.OrderID().Bytes(),
		MenuItemID: snap.MenuItemID().Bytes(),
		Name:       snap.Name(),
		BasePrice:  snap.BasePrice().Decimal(),
		UnitPrice:  snap.UnitPrice().Decimal(),
		Quantity:   item.Quantity(),
		Modifiers:  mods,
		Status:     int(item.Status()),
		Timeline:   timelineFromDomain(item.Timeline()),
	}
}

// toDomain rebuilds the aggregate. Items must be sorted by Position.
func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	tenant, err := kernel.NewTenantID(dto.TenantID)
	if err != nil {
		return nil, err
	}
	resourceID, err := kernel.UUIDFromBytes(dto.ResourceID[:])
	if err != nil {
		return nil, err
	}
	source, err := kernel.NewSource(dto.Source)
	if err != nil {
		return nil, err
	}

	items := make([]*order.Item, 0, len(dto.Items))
	for _, itemDTO := range dto.Items {
		item, itemErr := itemToDomain(itemDTO)
		if itemErr != nil {
			return nil, itemErr
		}
		items = append(items, item)
	}

	return order.RestoreOrder(id, tenant, resourceID, source, order.Status(dto.Status), dto.Timeline.toDomain(), items)
}

func itemToDomain(dto OrderItemDTO) (*order.Item, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	orderID, err := kernel.UUIDFromBytes(dto.OrderID[:])
	if err != nil {
		return nil, err
	}
	menuItemID, err := kernel.UUIDFromBytes(dto.MenuItemID[:])
	if err != nil {
		return nil, err
	}

	mods := make([]order.ModifierSnapshot, 0, len(dto.Modifiers))
	for _, m := range dto.Modifiers {
		modID, modErr := kernel.UUIDFromBytes(m.ID[:])
		if modErr != nil {
			return nil, modErr
		}
		mods = append(mods, order.ModifierSnapshot{ModifierID: modID, Name: m.Name, Delta: kernel.NewMoney(m.Delta)})
	}

	snap, err := order.NewLineSnapshot(menuItemID, dto.Name, kernel.NewMoney(dto.BasePrice), mods)
	if err != nil {
		return nil, err
	}

	return order.RestoreItem(id, orderID, snap, dto.Quantity, order.Status(dto.Status), dto.Timeline.toDomain())
}
