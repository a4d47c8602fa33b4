// Package commands contains business operations that modify system state.
// Implements the Command pattern for write operations in the CQRS architecture.
// All commands follow a consistent pattern: validation, transaction management,
// persistence, and best-effort event publishing after commit.
package commands

import (
	"context"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/ports"
)

// Unit of Work interfaces provide tenant-scoped transaction management for
// command handlers.
type (
	// TxManager handles database transaction lifecycle.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	// OrderRepoFactory provides access to the order repository within a transaction.
	OrderRepoFactory interface {
		OrderRepository() ports.OrderRepository
	}

	// ETARepoFactory provides access to the tenant EMA row within a transaction.
	ETARepoFactory interface {
		ETARepository() ports.ETARepository
	}

	// ResourceLookupFactory provides the soft-delete aware catalog view.
	ResourceLookupFactory interface {
		ResourceLookup() ports.ResourceLookup
	}

	// AdmissionUoW is what order admission needs: the catalog to validate
	// against, the order repository to persist into, and the estimate to
	// announce with the PLACED event.
	AdmissionUoW interface {
		TxManager
		OrderRepoFactory
		ResourceLookupFactory
		ETARepoFactory
	}

	// AdmissionUoWFactory creates admission units for a tenant.
	AdmissionUoWFactory interface {
		Create(tenant kernel.TenantID) AdmissionUoW
	}

	// TransitionUoW manages transactions for order and item transitions.
	//
	// Example:
	//   uow := factory.Create(tenant)
	//   err := uow.Begin(ctx)
	//   defer uow.Rollback(ctx)
	//
	//   o, err := uow.OrderRepository().GetForUpdate(ctx, id)
	//   // ... transition, update, fold EMA sample
	//
	//   err = uow.Commit(ctx)
	TransitionUoW interface {
		TxManager
		OrderRepoFactory
		ETARepoFactory
	}

	// TransitionUoWFactory creates transition units for a tenant.
	TransitionUoWFactory interface {
		Create(tenant kernel.TenantID) TransitionUoW
	}
)
