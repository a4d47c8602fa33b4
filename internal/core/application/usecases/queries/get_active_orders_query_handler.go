package queries

import (
	"context"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GetActiveOrdersQueryHandler reads the queue straight from the tables. The
// ETA of each row is derived from the tenant estimate at read time.
type GetActiveOrdersQueryHandler struct {
	db  *gorm.DB
	now func() time.Time
}

func NewGetActiveOrdersQueryHandler(db *gorm.DB, now func() time.Time) GetActiveOrdersQueryHandler {
	if now == nil {
		now = time.Now
	}
	return GetActiveOrdersQueryHandler{db: db, now: now}
}

func (h GetActiveOrdersQueryHandler) Handle(
	ctx context.Context,
	query GetActiveOrdersQuery,
) ([]ActiveOrderView, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	stat, err := loadStat(ctx, h.db, query.Tenant())
	if err != nil {
		return nil, err
	}
	now := h.now()

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			o.id,
			o.resource_id,
			COALESCE(r.label, ''),
			o.status,
			o.total,
			o.placed_at,
			o.accepted_at,
			(SELECT COUNT(*) FROM order_items i WHERE i.order_id = o.id)
		FROM orders o
		LEFT JOIN resources r ON r.id = o.resource_id AND r.tenant_id = o.tenant_id
		WHERE o.tenant_id = ? AND o.status NOT IN ?
		ORDER BY o.placed_at, o.id
	`, query.Tenant().String(), terminalStatuses()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	views := make([]ActiveOrderView, 0)
	for rows.Next() {
		var (
			id, resourceID uuid.UUID
			view           ActiveOrderView
			status         int
			total          decimal.Decimal
			placedAt       time.Time
			acceptedAt     *time.Time
		)
		if err = rows.Scan(&id, &resourceID, &view.ResourceLabel, &status, &total,
			&placedAt, &acceptedAt, &view.ItemCount); err != nil {
			return nil, err
		}

		if view.ID, err = kernel.UUIDFromBytes(id[:]); err != nil {
			return nil, err
		}
		if view.ResourceID, err = kernel.UUIDFromBytes(resourceID[:]); err != nil {
			return nil, err
		}
		view.Status = order.Status(status)
		view.Total = kernel.NewMoney(total)
		view.PlacedAt = placedAt.UTC()
		if acceptedAt != nil {
			v := acceptedAt.UTC()
			view.AcceptedAt = &v
		}
		view.ETA = stat.Remaining(view.Status, view.AcceptedAt, now)

		views = append(views, view)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return views, nil
}

func terminalStatuses() []int {
	return []int{int(order.Served), int(order.Rejected), int(order.Cancelled)}
}
