package order

import (
	"errors"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"
)

// Quantity bounds of one line.
const (
	MinQuantity = 1
	MaxQuantity = 99
)

var ErrItemIsNotConstructed = errors.New("Item must be created via NewItem")

// Item is one order line. Its status follows ItemMachine independently of
// the owning order.
type Item struct {
	id       kernel.UUID
	orderID  kernel.UUID
	snapshot LineSnapshot
	quantity int
	status   Status
	timeline Timeline

	isConstructed bool
}

// NewItem creates a PLACED line for an order.
//
// Parameters:
//   - id: unique identifier for the line
//   - orderID: the owning order; NewOrder rejects lines whose id differs
//   - snapshot: name and unit price copied from the menu at admission
//   - quantity: MinQuantity..MaxQuantity
//   - placedAt: stamped as the PLACED time of the line
//
// Returns:
//   - *Item: the line in PLACED status
//   - error: validation error, or ValueIsOutOfRange for the quantity
//
// Example:
//
//	snapshot, _ := NewLineSnapshot(menuItemID, "Burger", price, nil)
//	item, err := NewItem(kernel.NewUUID(), orderID, snapshot, 2, time.Now())
func NewItem(id, orderID kernel.UUID, snapshot LineSnapshot, quantity int, placedAt time.Time) (*Item, error) {
	if err := errors.Join(id.Validate(), orderID.Validate(), snapshot.Validate()); err != nil {
		return nil, err
	}
	if quantity < MinQuantity || quantity > MaxQuantity {
		return nil, errs.NewValueIsOutOfRangeError("quantity", quantity, MinQuantity, MaxQuantity)
	}

	item := &Item{
		id:            id,
		orderID:       orderID,
		snapshot:      snapshot,
		quantity:      quantity,
		status:        Placed,
		isConstructed: true,
	}
	item.timeline.stamp(Placed, placedAt)
	return item, nil
}

// RestoreItem rebuilds an item from persistence without re-running admission rules.
func RestoreItem(
	id, orderID kernel.UUID,
	snapshot LineSnapshot,
	quantity int,
	status Status,
	timeline Timeline,
) (*Item, error) {
	if err := errors.Join(id.Validate(), orderID.Validate(), snapshot.Validate(), status.Validate()); err != nil {
		return nil, err
	}
	return &Item{
		id:            id,
		orderID:       orderID,
		snapshot:      snapshot,
		quantity:      quantity,
		status:        status,
		timeline:      timeline,
		isConstructed: true,
	}, nil
}

// Validate ensures the Item was built through NewItem or RestoreItem.
func (i *Item) Validate() error {
	if i == nil || !i.isConstructed {
		return ErrItemIsNotConstructed
	}
	return nil
}

// ID returns the line's unique identifier.
func (i *Item) ID() kernel.UUID { return i.id }

// OrderID returns the id of the owning order.
func (i *Item) OrderID() kernel.UUID { return i.orderID }

// Snapshot returns the menu data frozen at admission.
func (i *Item) Snapshot() LineSnapshot { return i.snapshot }

// Quantity returns how many units the line orders.
func (i *Item) Quantity() int { return i.quantity }

// Status returns the line's own status, independent of the order's.
func (i *Item) Status() Status { return i.status }

// Timeline returns the per-status timestamps of the line.
func (i *Item) Timeline() Timeline { return i.timeline }

// LineTotal is UnitPrice × quantity.
func (i *Item) LineTotal() kernel.Money {
	return i.snapshot.UnitPrice().Mul(i.quantity)
}

// Transition moves the item along ItemMachine. On error nothing changes.
func (i *Item) Transition(to Status, at time.Time) error {
	next, err := ItemMachine.Transition(i.status, to)
	if err != nil {
		return err
	}
	i.status = next
	i.timeline.stamp(next, at)
	return nil
}
