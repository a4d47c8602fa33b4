package queries

import (
	"errors"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/guard"
)

var (
	ErrGetActiveOrdersQueryIsNotConstructed = errors.New(
		"GetActiveOrdersQuery must be created via NewGetActiveOrdersQuery constructor",
	)
)

// GetActiveOrdersQuery lists the kitchen queue of one tenant: every order that
// is not SERVED, REJECTED or CANCELLED, oldest first.
//
// Example:
//
//	query, err := NewGetActiveOrdersQuery(tenant)
//	if err != nil {
//	    return err
//	}
//	queue, err := handler.Handle(ctx, query)
type GetActiveOrdersQuery struct {
	tenant kernel.TenantID
	guard  guard.ConstructorGuard
}

func NewGetActiveOrdersQuery(tenant kernel.TenantID) (GetActiveOrdersQuery, error) {
	if err := tenant.Validate(); err != nil {
		return GetActiveOrdersQuery{}, err
	}
	return GetActiveOrdersQuery{tenant: tenant, guard: guard.NewConstructorGuard()}, nil
}

func (q GetActiveOrdersQuery) Tenant() kernel.TenantID {
	return q.tenant
}

// Validate ensures the query was created through the constructor.
func (q GetActiveOrdersQuery) Validate() error {
	return q.guard.Validate(ErrGetActiveOrdersQueryIsNotConstructed)
}

// ActiveOrderView is one row of the queue display.
type ActiveOrderView struct {
	ID            kernel.UUID
	ResourceID    kernel.UUID
	ResourceLabel string
	Status        order.Status
	ItemCount     int
	Total         kernel.Money
	PlacedAt      time.Time
	AcceptedAt    *time.Time
	ETA           time.Duration
}
