package commands

import (
	"errors"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/guard"
)

var ErrTransitionOrderCommandIsNotConstructed = errors.New(
	"TransitionOrderCommand must be created via NewTransitionOrderCommand constructor",
)

// TransitionOrderCommand asks to move an order to a destination status.
// Whether the move is legal is decided against the stored status.
type TransitionOrderCommand struct { //nolint:recvcheck //using for validation
	tenant  kernel.TenantID
	orderID kernel.UUID
	to      order.Status

	guard guard.ConstructorGuard
}

func NewTransitionOrderCommand(tenant kernel.TenantID, orderID kernel.UUID, to order.Status) (TransitionOrderCommand, error) {
	cmd := TransitionOrderCommand{guard: guard.NewConstructorGuard()}

	if err := errors.Join(
		cmd.setTenant(tenant),
		cmd.setOrderID(orderID),
		cmd.setTo(to),
	); err != nil {
		return TransitionOrderCommand{}, err
	}
	return cmd, nil
}

func (c TransitionOrderCommand) Validate() error {
	return c.guard.Validate(ErrTransitionOrderCommandIsNotConstructed)
}

func (c TransitionOrderCommand) Tenant() kernel.TenantID { return c.tenant }
func (c TransitionOrderCommand) OrderID() kernel.UUID    { return c.orderID }
func (c TransitionOrderCommand) To() order.Status        { return c.to }

func (c *TransitionOrderCommand) setTenant(tenant kernel.TenantID) error {
	if err := tenant.Validate(); err != nil {
		return err
	}
	c.tenant = tenant
	return nil
}

func (c *TransitionOrderCommand) setOrderID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	c.orderID = id
	return nil
}

func (c *TransitionOrderCommand) setTo(to order.Status) error {
	if err := to.Validate(); err != nil {
		return err
	}
	c.to = to
	return nil
}
