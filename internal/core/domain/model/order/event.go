package order

import (
	"time"

	"orderflow/internal/core/domain/model/kernel"
)

// Scope distinguishes order-level from item-level events.
type Scope string

const (
	ScopeOrder Scope = "order"
	ScopeItem  Scope = "item"
)

// StatusChanged is emitted after an order is placed and after every accepted
// transition. It is routed to the resource channel and to the tenant stream.
type StatusChanged struct {
	Tenant     kernel.TenantID
	ResourceID kernel.UUID
	OrderID    kernel.UUID
	ItemID     *kernel.UUID
	Scope      Scope
	Status     Status
	ETA        time.Duration
	// Estimate is the tenant's average preparation time at commit. Only
	// order-level events carry it.
	Estimate time.Duration
	At       time.Time
}

// NewOrderEvent snapshots an order after a committed change.
func NewOrderEvent(o *Order, eta time.Duration, at time.Time) StatusChanged {
	return StatusChanged{
		Tenant:     o.Tenant(),
		ResourceID: o.ResourceID(),
		OrderID:    o.ID(),
		Scope:      ScopeOrder,
		Status:     o.Status(),
		ETA:        eta,
		At:         at.UTC(),
	}
}

// WithEstimate returns a copy of the event carrying the tenant estimate.
func (e StatusChanged) WithEstimate(estimate time.Duration) StatusChanged {
	e.Estimate = estimate
	return e
}

// NewItemEvent snapshots an item change; the ETA is the owning order's.
func NewItemEvent(o *Order, item *Item, eta time.Duration, at time.Time) StatusChanged {
	id := item.ID()
	return StatusChanged{
		Tenant:     o.Tenant(),
		ResourceID: o.ResourceID(),
		OrderID:    o.ID(),
		ItemID:     &id,
		Scope:      ScopeItem,
		Status:     item.Status(),
		ETA:        eta,
		At:         at.UTC(),
	}
}
