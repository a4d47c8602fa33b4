package orderrepo

import (
	"context"
	"errors"
	"fmt"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOrderRepository implements ports.OrderRepository using GORM. It only
// ever sees rows of its tenant.
type GormOrderRepository struct {
	db      *gorm.DB
	tenant  kernel.TenantID
	tracker aggregateTracker
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormOrderRepository creates a new tenant-scoped GORM order repository.
func NewGormOrderRepository(db *gorm.DB, tenant kernel.TenantID, tracker aggregateTracker) *GormOrderRepository {
	return &GormOrderRepository{
		db:      db,
		tenant:  tenant,
		tracker: tracker,
	}
}

func (r *GormOrderRepository) scoped(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Where("tenant_id = ?", r.tenant.String())
}

func (r *GormOrderRepository) checkTenant(aggregate *order.Order) error {
	if !aggregate.Tenant().IsEqual(r.tenant) {
		return errs.NewValueIsInvalidErrorWithCause("tenant",
			fmt.Errorf("order belongs to %s, repository is scoped to %s", aggregate.Tenant(), r.tenant))
	}
	return nil
}

// Add saves a new order and its items to the database.
func (r *GormOrderRepository) Add(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	if err := r.checkTenant(aggregate); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Get retrieves an order with its items.
func (r *GormOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	return r.get(ctx, id, false)
}

// GetForUpdate retrieves an order and locks its row with SELECT ... FOR UPDATE.
func (r *GormOrderRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	return r.get(ctx, id, true)
}

func (r *GormOrderRepository) get(ctx context.Context, id kernel.UUID, lock bool) (*order.Order, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	q := r.scoped(ctx).Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("position")
	})
	if lock {
		q = q.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate})
	}

	var dto OrderDTO
	if err := q.First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("order", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// UpdateStatus writes status and timeline if the stored status still equals expected.
func (r *GormOrderRepository) UpdateStatus(ctx context.Context, aggregate *order.Order, expected order.Status) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	if err := r.checkTenant(aggregate); err != nil {
		return err
	}

	t := timelineFromDomain(aggregate.Timeline())
	result := r.scoped(ctx).
		Model(&OrderDTO{}).
		Where("id = ? AND status = ?", aggregate.ID().Bytes(), int(expected)).
		Updates(map[string]any{
			"status":      int(aggregate.Status()),
			"placed_at":   t.PlacedAt,
			"accepted_at": t.AcceptedAt,
			"started_at":  t.StartedAt,
			"ready_at":    t.ReadyAt,
			"served_at":   t.ServedAt,
			"closed_at":   t.ClosedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return r.missOrConflict(ctx, aggregate.ID())
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// UpdateItemStatus writes one item's status and timeline if its stored
// status still equals expected.
func (r *GormOrderRepository) UpdateItemStatus(ctx context.Context, item *order.Item, expected order.Status) error {
	if err := item.Validate(); err != nil {
		return err
	}

	t := timelineFromDomain(item.Timeline())
	result := r.scoped(ctx).
		Model(&OrderItemDTO{}).
		Where("id = ? AND order_id = ? AND status = ?", item.ID().Bytes(), item.OrderID().Bytes(), int(expected)).
		Updates(map[string]any{
			"status":     int(item.Status()),
			"placed_at":  t.PlacedAt,
			"started_at": t.StartedAt,
			"ready_at":   t.ReadyAt,
			"served_at":  t.ServedAt,
			"closed_at":  t.ClosedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := r.scoped(ctx).Model(&OrderItemDTO{}).Where("id = ?", item.ID().Bytes()).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return errs.NewObjectNotFoundError("order item", item.ID().String())
		}
		return errs.NewConflictError("order item " + item.ID().String())
	}

	r.tracker.TrackAggregate(item.OrderID(), item)
	return nil
}

func (r *GormOrderRepository) missOrConflict(ctx context.Context, id kernel.UUID) error {
	var count int64
	if err := r.scoped(ctx).Model(&OrderDTO{}).Where("id = ?", id.Bytes()).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return errs.NewObjectNotFoundError("order", id.String())
	}
	return errs.NewConflictError("order " + id.String())
}

// ListActive retrieves every non-terminal order of the tenant, oldest first.
func (r *GormOrderRepository) ListActive(ctx context.Context) ([]*order.Order, error) {
	var dtos []OrderDTO
	err := r.scoped(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Where("status NOT IN ?", terminalStatuses()).
		Order("placed_at, id").
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	orders := make([]*order.Order, 0, len(dtos))
	for _, dto := range dtos {
		o, convErr := toDomain(dto)
		if convErr != nil {
			return nil, convErr
		}
		orders = append(orders, o)
	}

	return orders, nil
}

func terminalStatuses() []int {
	return []int{int(order.Served), int(order.Rejected), int(order.Cancelled)}
}
