package commands

import (
	"context"
	"log/slog"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/domain/services"
	"orderflow/internal/core/ports"
)

// CreateOrderCommandHandler admits an order: resolves the resource, checks
// and snapshots every line against the live catalog, persists order and
// items in one transaction, then announces the PLACED order.
//
// Example:
//
//	handler := NewCreateOrderCommandHandler(uowFactory, publisher, time.Now, logger)
//	orderID, err := handler.Handle(ctx, cmd)
//	if errors.Is(err, errs.ErrResourceGone) {
//	    // table retired or item no longer on the menu
//	}
type CreateOrderCommandHandler struct {
	uowFactory AdmissionUoWFactory
	admitter   services.OrderAdmitter
	publisher  ports.Publisher
	now        func() time.Time
	logger     *slog.Logger
}

func NewCreateOrderCommandHandler(
	uowFactory AdmissionUoWFactory,
	publisher ports.Publisher,
	now func() time.Time,
	logger *slog.Logger,
) CreateOrderCommandHandler {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return CreateOrderCommandHandler{
		uowFactory: uowFactory,
		admitter:   services.NewOrderAdmitter(),
		publisher:  publisher,
		now:        now,
		logger:     logger.With("component", "create_order_handler"),
	}
}

// Handle returns the id of the new order.
func (h CreateOrderCommandHandler) Handle(ctx context.Context, cmd CreateOrderCommand) (kernel.UUID, error) {
	if err := cmd.Validate(); err != nil {
		return kernel.UUID{}, err
	}

	uow := h.uowFactory.Create(cmd.Tenant())
	if err := uow.Begin(ctx); err != nil {
		return kernel.UUID{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	lookup := uow.ResourceLookup()
	resource, err := lookup.ResourceByToken(ctx, cmd.ResourceToken())
	if err != nil {
		return kernel.UUID{}, err
	}

	lines := cmd.Lines()
	ids := make([]kernel.UUID, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.MenuItemID)
	}
	catalog, err := lookup.MenuItems(ctx, ids)
	if err != nil {
		return kernel.UUID{}, err
	}

	now := h.now()
	placed, err := h.admitter.Admit(resource, catalog, lines, cmd.Source(), now)
	if err != nil {
		return kernel.UUID{}, err
	}

	if err = uow.OrderRepository().Add(ctx, placed); err != nil {
		return kernel.UUID{}, err
	}

	stat, err := uow.ETARepository().Get(ctx)
	if err != nil {
		return kernel.UUID{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return kernel.UUID{}, err
	}

	h.logger.InfoContext(ctx, "order placed",
		"tenant", placed.Tenant().String(),
		"order_id", placed.ID().String(),
		"items", len(placed.Items()),
	)

	remaining := stat.Remaining(placed.Status(), placed.Timeline().AcceptedAt, now)
	publishCommitted(ctx, h.publisher, h.logger, order.NewOrderEvent(placed, remaining, now).WithEstimate(stat.EMA()))

	return placed.ID(), nil
}
