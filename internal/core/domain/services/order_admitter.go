package services

import (
	"errors"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/menu"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/errs"
)

// MaxLinesPerOrder caps how many lines one guest order may carry.
const MaxLinesPerOrder = 50

// LineRequest is one requested order line before pricing.
type LineRequest struct {
	MenuItemID  kernel.UUID
	Quantity    int
	ModifierIDs []kernel.UUID
}

// OrderAdmitter turns a guest request into a PLACED order.
//
// Admission checks the live catalog: the resource and every referenced item
// and modifier must still be active. Prices and names are copied into the
// lines so later menu edits never reach historical orders. Nothing is
// persisted here.
type OrderAdmitter struct {
	newID func() kernel.UUID
}

// NewOrderAdmitter creates an admitter that assigns fresh random ids to the
// order and each of its items.
func NewOrderAdmitter() OrderAdmitter {
	return OrderAdmitter{newID: kernel.NewUUID}
}

// Admit validates lines against resource and catalog and builds the order.
// catalog must contain every item the lines reference that the lookup could
// find; a missing entry is treated as gone.
//
// Parameters:
//   - resource: the table or counter the order is placed at (must be active)
//   - catalog: menu items keyed by id, loaded for the referenced lines
//   - lines: 1..MaxLinesPerOrder requested lines
//   - source: client address the request came from
//   - now: placement time, stamped on the order and every item
//
// Returns:
//   - *order.Order: a PLACED order with priced snapshot lines
//   - error: ResourceGoneError for retired resources or items, validation
//     errors for empty, oversized or malformed lines
//
// Example:
//
//	o, err := NewOrderAdmitter().Admit(resource, catalog, []LineRequest{
//	    {MenuItemID: burgerID, Quantity: 2},
//	}, source, time.Now())
func (a OrderAdmitter) Admit(
	resource menu.Resource,
	catalog map[kernel.UUID]menu.Item,
	lines []LineRequest,
	source kernel.Source,
	now time.Time,
) (*order.Order, error) {
	if err := resource.ID.Validate(); err != nil {
		return nil, err
	}
	if !resource.Active {
		return nil, errs.NewResourceGoneError("resource", resource.Token)
	}
	if len(lines) == 0 {
		return nil, errs.NewValueIsRequiredError("items")
	}
	if len(lines) > MaxLinesPerOrder {
		return nil, errs.NewValueIsOutOfRangeError("items", len(lines), 1, MaxLinesPerOrder)
	}

	newID := a.newID
	if newID == nil {
		newID = kernel.NewUUID
	}

	orderID := newID()
	items := make([]*order.Item, 0, len(lines))
	for _, line := range lines {
		snapshot, err := snapshotLine(catalog, line)
		if err != nil {
			return nil, err
		}
		item, err := order.NewItem(newID(), orderID, snapshot, line.Quantity, now)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return order.NewOrder(orderID, resource.Tenant, resource.ID, source, items, now)
}

func snapshotLine(catalog map[kernel.UUID]menu.Item, line LineRequest) (order.LineSnapshot, error) {
	if err := line.MenuItemID.Validate(); err != nil {
		return order.LineSnapshot{}, err
	}
	item, ok := catalog[line.MenuItemID]
	if !ok || !item.Active {
		return order.LineSnapshot{}, errs.NewResourceGoneError("menu item", line.MenuItemID.String())
	}

	seen := make(map[kernel.UUID]struct{}, len(line.ModifierIDs))
	mods := make([]order.ModifierSnapshot, 0, len(line.ModifierIDs))
	for _, id := range line.ModifierIDs {
		if _, dup := seen[id]; dup {
			return order.LineSnapshot{}, errs.NewValueIsInvalidErrorWithCause("modifier_ids",
				errors.New("modifier "+id.String()+" selected twice"))
		}
		seen[id] = struct{}{}

		m, found := item.Modifier(id)
		if !found {
			return order.LineSnapshot{}, errs.NewValueIsInvalidErrorWithCause("modifier_ids",
				errors.New("modifier "+id.String()+" does not belong to "+item.Name))
		}
		if !m.Active {
			return order.LineSnapshot{}, errs.NewResourceGoneError("modifier", id.String())
		}
		mods = append(mods, order.ModifierSnapshot{ModifierID: m.ID, Name: m.Name, Delta: m.Delta})
	}

	return order.NewLineSnapshot(item.ID, item.Name, item.BasePrice, mods)
}
