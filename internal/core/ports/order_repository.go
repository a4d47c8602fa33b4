// Package ports defines the contracts between the ordering core and its
// infrastructure: tenant-scoped persistence, catalog lookup, the
// idempotency store and event publishing.
package ports

import (
	"context"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
)

// OrderRepository persists order aggregates of a single tenant. Every
// method is implicitly filtered by the tenant of the unit of work that
// produced the repository.
type OrderRepository interface {
	// Add persists a new order together with all of its items.
	Add(ctx context.Context, aggregate *order.Order) error

	// Get loads an order with its items.
	// Returns errs.ObjectNotFoundError when the order does not exist for the tenant.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// GetForUpdate is Get plus a row lock on the order held until the
	// transaction ends. Concurrent transitions of the same order serialize here.
	GetForUpdate(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// UpdateStatus writes the order status and timeline, but only if the
	// stored status still equals expected. Otherwise it returns
	// errs.ConflictError and writes nothing.
	UpdateStatus(ctx context.Context, aggregate *order.Order, expected order.Status) error

	// UpdateItemStatus is the item-level counterpart of UpdateStatus.
	UpdateItemStatus(ctx context.Context, item *order.Item, expected order.Status) error

	// ListActive returns every non-terminal order, oldest first.
	ListActive(ctx context.Context) ([]*order.Order, error)
}
