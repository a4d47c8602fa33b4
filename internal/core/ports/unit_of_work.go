package ports

import (
	"context"

	"orderflow/internal/core/domain/model/kernel"
)

// UnitOfWorkFactory creates a UnitOfWork bound to one tenant. Each request
// or command gets its own instance; there is no ambient tenant.
type UnitOfWorkFactory interface {
	Create(tenant kernel.TenantID) UnitOfWork
}

// UnitOfWork represents a business transaction boundary inside one tenant.
type UnitOfWork interface {
	// Begin starts a new database transaction.
	Begin(ctx context.Context) error

	// Commit commits the current transaction.
	// Returns error if no active transaction or commit fails.
	Commit(ctx context.Context) error

	// Rollback rolls back the current transaction.
	// Returns error if no active transaction or rollback fails.
	Rollback(ctx context.Context) error

	// Tenant returns the tenant every repository of this unit is scoped to.
	Tenant() kernel.TenantID

	OrderRepository() OrderRepository
	ETARepository() ETARepository
	ResourceLookup() ResourceLookup
}
