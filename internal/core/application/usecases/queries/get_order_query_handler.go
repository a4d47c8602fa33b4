package queries

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type GetOrderQueryHandler struct {
	db  *gorm.DB
	now func() time.Time
}

func NewGetOrderQueryHandler(db *gorm.DB, now func() time.Time) GetOrderQueryHandler {
	if now == nil {
		now = time.Now
	}
	return GetOrderQueryHandler{db: db, now: now}
}

// Handle returns NotFound for an id that does not exist in the tenant.
func (h GetOrderQueryHandler) Handle(ctx context.Context, query GetOrderQuery) (OrderView, error) {
	if err := query.Validate(); err != nil {
		return OrderView{}, err
	}

	var (
		view       OrderView
		resourceID uuid.UUID
		status     int
		total      decimal.Decimal
		timeline   order.Timeline
	)
	err := h.db.WithContext(ctx).Raw(`
		SELECT
			o.resource_id,
			COALESCE(r.label, ''),
			o.status,
			o.total,
			o.placed_at, o.accepted_at, o.started_at, o.ready_at, o.served_at, o.closed_at
		FROM orders o
		LEFT JOIN resources r ON r.id = o.resource_id AND r.tenant_id = o.tenant_id
		WHERE o.tenant_id = ? AND o.id = ?
	`, query.Tenant().String(), query.OrderID().Bytes()).Row().Scan(
		&resourceID, &view.ResourceLabel, &status, &total,
		&timeline.PlacedAt, &timeline.AcceptedAt, &timeline.StartedAt,
		&timeline.ReadyAt, &timeline.ServedAt, &timeline.ClosedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return OrderView{}, errs.NewObjectNotFoundError("order", query.OrderID().String())
	}
	if err != nil {
		return OrderView{}, err
	}

	view.ID = query.OrderID()
	if view.ResourceID, err = kernel.UUIDFromBytes(resourceID[:]); err != nil {
		return OrderView{}, err
	}
	view.Status = order.Status(status)
	view.Total = kernel.NewMoney(total)
	view.Timeline = utcTimeline(timeline)

	if view.Items, err = h.items(ctx, query); err != nil {
		return OrderView{}, err
	}

	stat, err := loadStat(ctx, h.db, query.Tenant())
	if err != nil {
		return OrderView{}, err
	}
	view.ETA = stat.Remaining(view.Status, view.Timeline.AcceptedAt, h.now())

	return view, nil
}

func (h GetOrderQueryHandler) items(ctx context.Context, query GetOrderQuery) ([]ItemView, error) {
	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT id, menu_item_id, name, unit_price, quantity, modifiers, status
		FROM order_items
		WHERE tenant_id = ? AND order_id = ?
		ORDER BY position
	`, query.Tenant().String(), query.OrderID().Bytes()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]ItemView, 0)
	for rows.Next() {
		var (
			item           ItemView
			id, menuItemID uuid.UUID
			unitPrice      decimal.Decimal
			rawModifiers   []byte
			status         int
		)
		if err = rows.Scan(&id, &menuItemID, &item.Name, &unitPrice, &item.Quantity, &rawModifiers, &status); err != nil {
			return nil, err
		}

		if item.ID, err = kernel.UUIDFromBytes(id[:]); err != nil {
			return nil, err
		}
		if item.MenuItemID, err = kernel.UUIDFromBytes(menuItemID[:]); err != nil {
			return nil, err
		}
		if item.Modifiers, err = modifierNames(rawModifiers); err != nil {
			return nil, err
		}
		item.UnitPrice = kernel.NewMoney(unitPrice)
		item.LineTotal = item.UnitPrice.Mul(item.Quantity)
		item.Status = order.Status(status)

		items = append(items, item)
	}

	return items, rows.Err()
}

func modifierNames(raw []byte) ([]string, error) {
	names := make([]string, 0)
	if len(raw) == 0 {
		return names, nil
	}
	var mods []struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(raw, &mods); err != nil {
		return nil, err
	}
	for _, m := range mods {
		names = append(names, m.Name)
	}
	return names, nil
}

func utcTimeline(t order.Timeline) order.Timeline {
	for _, field := range []**time.Time{
		&t.PlacedAt, &t.AcceptedAt, &t.StartedAt, &t.ReadyAt, &t.ServedAt, &t.ClosedAt,
	} {
		if *field != nil {
			v := (*field).UTC()
			*field = &v
		}
	}
	return t
}
