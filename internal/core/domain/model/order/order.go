package order

import (
	"errors"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"
)

var ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder constructor")

// Order is the aggregate root of one guest order placed from a resource
// (table, counter or room) of a tenant.
//
// Invariants:
//   - created in PLACED with at least one item
//   - status only changes through OrderMachine
//   - each timeline field is stamped once and never overwritten
type Order struct {
	id         kernel.UUID
	tenant     kernel.TenantID
	resourceID kernel.UUID
	source     kernel.Source
	status     Status
	timeline   Timeline
	items      []*Item

	isConstructed bool
}

// NewOrder builds a PLACED order from already-snapshotted items. This is the
// only way to create a valid Order outside persistence.
//
// Parameters:
//   - id: unique identifier for the order (must be valid UUID)
//   - tenant: owning tenant
//   - resourceID: table, counter or room the order was placed at
//   - source: client address of the guest (must be non-empty)
//   - items: at least one line, each built by NewItem for this order id
//   - placedAt: stamped as the PLACED time of the timeline
//
// Returns:
//   - *Order: the order in PLACED status
//   - error: validation error if any parameter is invalid
//
// Example:
//
//	orderID := kernel.NewUUID()
//	item, _ := NewItem(kernel.NewUUID(), orderID, snapshot, 2, now)
//	o, err := NewOrder(orderID, tenant, resourceID, source, []*Item{item}, now)
//	if err != nil {
//	    // Handle validation error
//	}
func NewOrder(
	id kernel.UUID,
	tenant kernel.TenantID,
	resourceID kernel.UUID,
	source kernel.Source,
	items []*Item,
	placedAt time.Time,
) (*Order, error) {
	if err := errors.Join(id.Validate(), tenant.Validate(), resourceID.Validate()); err != nil {
		return nil, err
	}
	if source.IsZero() {
		return nil, errs.NewValueIsRequiredError("source")
	}
	if len(items) == 0 {
		return nil, errs.NewValueIsRequiredError("items")
	}
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return nil, err
		}
		if !item.OrderID().IsEqual(id) {
			return nil, errs.NewValueIsInvalidError("item order id")
		}
	}

	o := &Order{
		id:            id,
		tenant:        tenant,
		resourceID:    resourceID,
		source:        source,
		status:        Placed,
		items:         items,
		isConstructed: true,
	}
	o.timeline.stamp(Placed, placedAt)
	return o, nil
}

// RestoreOrder rebuilds an order loaded from persistence. Status and timeline
// are taken as stored; only identifiers and the status value are validated.
//
// Returns:
//   - *Order: the restored order
//   - error: validation error for a malformed id, tenant or unknown status
func RestoreOrder(
	id kernel.UUID,
	tenant kernel.TenantID,
	resourceID kernel.UUID,
	source kernel.Source,
	status Status,
	timeline Timeline,
	items []*Item,
) (*Order, error) {
	if err := errors.Join(id.Validate(), tenant.Validate(), resourceID.Validate(), status.Validate()); err != nil {
		return nil, err
	}
	return &Order{
		id:            id,
		tenant:        tenant,
		resourceID:    resourceID,
		source:        source,
		status:        status,
		timeline:      timeline,
		items:         items,
		isConstructed: true,
	}, nil
}

// Validate ensures the Order was built through NewOrder or RestoreOrder.
//
// Returns:
//   - nil if the order is valid
//   - ErrOrderIsNotConstructed for nil or zero-value orders
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}
	return nil
}

// ID returns the order's unique identifier.
func (o *Order) ID() kernel.UUID { return o.id }

// Tenant returns the tenant that owns the order.
func (o *Order) Tenant() kernel.TenantID { return o.tenant }

// ResourceID returns the resource the order was placed at.
func (o *Order) ResourceID() kernel.UUID { return o.resourceID }

// Source returns the client address the order was placed from. REJECTED
// transitions are attributed to it.
func (o *Order) Source() kernel.Source { return o.source }

// Status returns the current order-level status.
func (o *Order) Status() Status { return o.status }

// Timeline returns the per-status timestamps stamped so far.
func (o *Order) Timeline() Timeline { return o.timeline }

// IsEqual compares two orders by id. A nil other is never equal.
func (o *Order) IsEqual(other *Order) bool { return other != nil && o.id.IsEqual(other.id) }

// Items returns the order lines in admission order.
func (o *Order) Items() []*Item {
	out := make([]*Item, len(o.items))
	copy(out, o.items)
	return out
}

// Item finds a line by id.
func (o *Order) Item(id kernel.UUID) (*Item, error) {
	for _, item := range o.items {
		if item.ID().IsEqual(id) {
			return item, nil
		}
	}
	return nil, errs.NewObjectNotFoundError("order item", id.String())
}

// Total sums every line total.
func (o *Order) Total() kernel.Money {
	total := kernel.Zero
	for _, item := range o.items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// Transition moves the order along OrderMachine and stamps the destination
// timestamp. On error nothing changes.
func (o *Order) Transition(to Status, at time.Time) error {
	next, err := OrderMachine.Transition(o.status, to)
	if err != nil {
		return err
	}
	o.status = next
	o.timeline.stamp(next, at)
	return nil
}
