// Package postgres provides the GORM-based, tenant-scoped implementation of
// the Unit of Work pattern.
//
// A unit of work is created for exactly one tenant. Every repository it hands
// out filters by that tenant, and all of them share the transaction opened by
// Begin. The tenant is never global state: it travels with the unit.
//
// Usage:
//
//	factory := NewGormUnitOfWorkFactory(db)
//	uow := factory.Create(tenant)
//
//	if err := uow.Begin(ctx); err != nil {
//	    return err
//	}
//	defer func() { _ = uow.Rollback(ctx) }()
//
//	o, err := uow.OrderRepository().GetForUpdate(ctx, id)
//	// ...
//	return uow.Commit(ctx)
//
// Keep transactions short: GetForUpdate holds a row lock until Commit or
// Rollback, and nothing that talks to the network should run in between.
package postgres

import (
	"context"

	"orderflow/internal/adapters/out/postgres/catalogrepo"
	"orderflow/internal/adapters/out/postgres/etarepo"
	"orderflow/internal/adapters/out/postgres/idempotencyrepo"
	"orderflow/internal/adapters/out/postgres/orderrepo"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/ports"

	"gorm.io/gorm"
)

// trackedAggregate represents an aggregate modified during the unit of work.
type trackedAggregate struct {
	ID        kernel.UUID
	Aggregate any
}

// Models lists every table this service migrates.
func Models() []any {
	return []any{
		&catalogrepo.ResourceDTO{},
		&catalogrepo.MenuItemDTO{},
		&catalogrepo.ModifierDTO{},
		&orderrepo.OrderDTO{},
		&orderrepo.OrderItemDTO{},
		&etarepo.StatDTO{},
		&idempotencyrepo.RecordDTO{},
	}
}

// GormUnitOfWorkFactory creates tenant-bound UnitOfWork instances.
type GormUnitOfWorkFactory struct {
	db *gorm.DB
}

func NewGormUnitOfWorkFactory(db *gorm.DB) *GormUnitOfWorkFactory {
	return &GormUnitOfWorkFactory{db: db}
}

// Create produces a fresh unit of work for tenant.
func (f *GormUnitOfWorkFactory) Create(tenant kernel.TenantID) ports.UnitOfWork {
	return &GormUnitOfWork{
		db:                f.db,
		tenant:            tenant,
		trackedAggregates: make([]trackedAggregate, 0),
	}
}

// GormUnitOfWork coordinates one tenant's database transaction and tracks the
// aggregates changed in it.
type GormUnitOfWork struct {
	db                *gorm.DB
	tx                *gorm.DB
	tenant            kernel.TenantID
	trackedAggregates []trackedAggregate
}

// Begin starts a transaction. Calling it twice keeps the first one.
func (uow *GormUnitOfWork) Begin(ctx context.Context) error {
	if uow.tx != nil {
		return nil
	}

	uow.tx = uow.db.WithContext(ctx).Begin()
	if uow.tx.Error != nil {
		err := uow.tx.Error
		uow.tx = nil
		return err
	}

	return nil
}

// Commit finalizes the transaction. After commit the unit can Begin again.
func (uow *GormUnitOfWork) Commit(_ context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	err := uow.tx.Commit().Error
	uow.tx = nil
	return err
}

// Rollback discards the transaction. Handlers defer it unconditionally, so
// after Commit it simply returns gorm.ErrInvalidTransaction.
func (uow *GormUnitOfWork) Rollback(_ context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	err := uow.tx.Rollback().Error
	uow.tx = nil
	uow.trackedAggregates = uow.trackedAggregates[:0]
	return err
}

func (uow *GormUnitOfWork) Tenant() kernel.TenantID {
	return uow.tenant
}

func (uow *GormUnitOfWork) conn() *gorm.DB {
	if uow.tx != nil {
		return uow.tx
	}
	return uow.db
}

// OrderRepository returns the tenant's order repository bound to the current
// transaction, or to the plain connection when none is open.
func (uow *GormUnitOfWork) OrderRepository() ports.OrderRepository {
	return orderrepo.NewGormOrderRepository(uow.conn(), uow.tenant, uow)
}

// ETARepository returns the tenant's EMA repository.
func (uow *GormUnitOfWork) ETARepository() ports.ETARepository {
	return etarepo.NewGormETARepository(uow.conn(), uow.tenant)
}

// ResourceLookup returns the tenant's soft-delete aware catalog view.
func (uow *GormUnitOfWork) ResourceLookup() ports.ResourceLookup {
	return catalogrepo.NewGormResourceLookup(uow.conn(), uow.tenant)
}

// TrackAggregate registers an aggregate as modified within this unit of work.
// Repositories call it after a successful write.
func (uow *GormUnitOfWork) TrackAggregate(id kernel.UUID, aggregate any) {
	uow.trackedAggregates = append(uow.trackedAggregates, trackedAggregate{
		ID:        id,
		Aggregate: aggregate,
	})
}

// TrackedCount reports how many writes the unit has tracked since the last rollback.
func (uow *GormUnitOfWork) TrackedCount() int {
	return len(uow.trackedAggregates)
}
