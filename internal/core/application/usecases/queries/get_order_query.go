package queries

import (
	"errors"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/guard"
)

var (
	ErrGetOrderQueryIsNotConstructed = errors.New(
		"GetOrderQuery must be created via NewGetOrderQuery constructor",
	)
)

// GetOrderQuery fetches one order with its lines and current ETA.
type GetOrderQuery struct {
	tenant  kernel.TenantID
	orderID kernel.UUID
	guard   guard.ConstructorGuard
}

func NewGetOrderQuery(tenant kernel.TenantID, orderID kernel.UUID) (GetOrderQuery, error) {
	if err := errors.Join(tenant.Validate(), orderID.Validate()); err != nil {
		return GetOrderQuery{}, err
	}
	return GetOrderQuery{tenant: tenant, orderID: orderID, guard: guard.NewConstructorGuard()}, nil
}

func (q GetOrderQuery) Tenant() kernel.TenantID { return q.tenant }
func (q GetOrderQuery) OrderID() kernel.UUID    { return q.orderID }

func (q GetOrderQuery) Validate() error {
	return q.guard.Validate(ErrGetOrderQueryIsNotConstructed)
}

// OrderView is the detail page of an order.
type OrderView struct {
	ID            kernel.UUID
	ResourceID    kernel.UUID
	ResourceLabel string
	Status        order.Status
	Total         kernel.Money
	Timeline      order.Timeline
	ETA           time.Duration
	Items         []ItemView
}

// ItemView is one line of an order as it was priced at placement.
type ItemView struct {
	ID         kernel.UUID
	MenuItemID kernel.UUID
	Name       string
	UnitPrice  kernel.Money
	Quantity   int
	LineTotal  kernel.Money
	Modifiers  []string
	Status     order.Status
}
