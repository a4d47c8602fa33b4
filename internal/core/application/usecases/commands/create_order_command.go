package commands

import (
	"errors"
	"strings"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/services"
	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"
)

var ErrCreateOrderCommandIsNotConstructed = errors.New(
	"CreateOrderCommand must be created via NewCreateOrderCommand constructor",
)

// CreateOrderCommand represents a guest placing an order from a resource.
//
// Example:
//
//	cmd, err := NewCreateOrderCommand(tenant, "table-7", source, []services.LineRequest{
//	    {MenuItemID: burgerID, Quantity: 2, ModifierIDs: []kernel.UUID{baconID}},
//	})
//	if err != nil {
//	    return fmt.Errorf("invalid order data: %w", err)
//	}
//
//	orderID, err := handler.Handle(ctx, cmd)
type CreateOrderCommand struct { //nolint:recvcheck //using for validation
	tenant        kernel.TenantID
	resourceToken string
	source        kernel.Source
	lines         []services.LineRequest

	guard guard.ConstructorGuard
}

// NewCreateOrderCommand validates the request shape. Catalog checks happen
// in the handler, against live data.
func NewCreateOrderCommand(
	tenant kernel.TenantID,
	resourceToken string,
	source kernel.Source,
	lines []services.LineRequest,
) (CreateOrderCommand, error) {
	cmd := CreateOrderCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setTenant(tenant),
		cmd.setResourceToken(resourceToken),
		cmd.setSource(source),
		cmd.setLines(lines),
	); err != nil {
		return CreateOrderCommand{}, err
	}

	return cmd, nil
}

func (c CreateOrderCommand) Validate() error {
	return c.guard.Validate(ErrCreateOrderCommandIsNotConstructed)
}

func (c CreateOrderCommand) Tenant() kernel.TenantID { return c.tenant }
func (c CreateOrderCommand) ResourceToken() string   { return c.resourceToken }
func (c CreateOrderCommand) Source() kernel.Source   { return c.source }

// Lines returns a copy of the requested lines.
func (c CreateOrderCommand) Lines() []services.LineRequest {
	out := make([]services.LineRequest, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *CreateOrderCommand) setTenant(tenant kernel.TenantID) error {
	if err := tenant.Validate(); err != nil {
		return err
	}
	c.tenant = tenant
	return nil
}

func (c *CreateOrderCommand) setResourceToken(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errs.NewValueIsRequiredError("resource token")
	}
	c.resourceToken = token
	return nil
}

func (c *CreateOrderCommand) setSource(source kernel.Source) error {
	if source.IsZero() {
		return errs.NewValueIsRequiredError("source")
	}
	c.source = source
	return nil
}

func (c *CreateOrderCommand) setLines(lines []services.LineRequest) error {
	if len(lines) == 0 {
		return errs.NewValueIsRequiredError("items")
	}
	if len(lines) > services.MaxLinesPerOrder {
		return errs.NewValueIsOutOfRangeError("items", len(lines), 1, services.MaxLinesPerOrder)
	}
	c.lines = make([]services.LineRequest, len(lines))
	copy(c.lines, lines)
	return nil
}
