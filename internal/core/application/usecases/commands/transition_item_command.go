package commands

import (
	"errors"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/guard"
)

var ErrTransitionItemCommandIsNotConstructed = errors.New(
	"TransitionItemCommand must be created via NewTransitionItemCommand constructor",
)

// TransitionItemCommand moves one order line. The owning order's status is
// not touched.
type TransitionItemCommand struct { //nolint:recvcheck //using for validation
	tenant  kernel.TenantID
	orderID kernel.UUID
	itemID  kernel.UUID
	to      order.Status

	guard guard.ConstructorGuard
}

func NewTransitionItemCommand(
	tenant kernel.TenantID,
	orderID, itemID kernel.UUID,
	to order.Status,
) (TransitionItemCommand, error) {
	cmd := TransitionItemCommand{guard: guard.NewConstructorGuard()}

	if err := errors.Join(tenant.Validate(), orderID.Validate(), itemID.Validate(), to.Validate()); err != nil {
		return TransitionItemCommand{}, err
	}
	cmd.tenant = tenant
	cmd.orderID = orderID
	cmd.itemID = itemID
	cmd.to = to
	return cmd, nil
}

func (c TransitionItemCommand) Validate() error {
	return c.guard.Validate(ErrTransitionItemCommandIsNotConstructed)
}

func (c TransitionItemCommand) Tenant() kernel.TenantID { return c.tenant }
func (c TransitionItemCommand) OrderID() kernel.UUID    { return c.orderID }
func (c TransitionItemCommand) ItemID() kernel.UUID     { return c.itemID }
func (c TransitionItemCommand) To() order.Status        { return c.to }
