package commands

import (
	"context"
	"log/slog"
	"time"

	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/ports"
)

// TransitionItemCommandHandler applies one item-level transition under the
// owning order's row lock and publishes it after commit.
type TransitionItemCommandHandler struct {
	uowFactory TransitionUoWFactory
	publisher  ports.Publisher
	now        func() time.Time
	logger     *slog.Logger
}

func NewTransitionItemCommandHandler(
	uowFactory TransitionUoWFactory,
	publisher ports.Publisher,
	now func() time.Time,
	logger *slog.Logger,
) TransitionItemCommandHandler {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return TransitionItemCommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
		now:        now,
		logger:     logger.With("component", "transition_item_handler"),
	}
}

func (h TransitionItemCommandHandler) Handle(ctx context.Context, cmd TransitionItemCommand) (TransitionResult, error) {
	if err := cmd.Validate(); err != nil {
		return TransitionResult{}, err
	}

	uow := h.uowFactory.Create(cmd.Tenant())
	if err := uow.Begin(ctx); err != nil {
		return TransitionResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()
	o, err := orderRepo.GetForUpdate(ctx, cmd.OrderID())
	if err != nil {
		return TransitionResult{}, err
	}
	item, err := o.Item(cmd.ItemID())
	if err != nil {
		return TransitionResult{}, err
	}

	now := h.now()
	from := item.Status()
	if err = item.Transition(cmd.To(), now); err != nil {
		return TransitionResult{}, err
	}

	if err = orderRepo.UpdateItemStatus(ctx, item, from); err != nil {
		return TransitionResult{}, err
	}

	stat, err := uow.ETARepository().Get(ctx)
	if err != nil {
		return TransitionResult{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return TransitionResult{}, err
	}

	remaining := stat.Remaining(o.Status(), o.Timeline().AcceptedAt, now)
	publishCommitted(ctx, h.publisher, h.logger, order.NewItemEvent(o, item, remaining, now))

	return TransitionResult{Status: item.Status(), ETA: remaining}, nil
}
