package commands

import (
	"context"
	"log/slog"
	"time"

	"orderflow/internal/core/domain/model/eta"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/ports"
)

// TransitionResult is what a transition endpoint reports back.
type TransitionResult struct {
	Status order.Status
	ETA    time.Duration
}

// TransitionOrderCommandHandler applies one order-level transition.
//
// The order row is locked, the move is checked against the order state
// machine, and status plus timestamp are written conditionally on the status
// that was read. When the order becomes SERVED after having been accepted,
// the tenant EMA absorbs the accept-to-serve time inside the same
// transaction, under the EMA row lock. After commit the change is published
// and a REJECTED order is reported to the rejection observer. Neither of
// those can fail the request.
type TransitionOrderCommandHandler struct {
	uowFactory TransitionUoWFactory
	publisher  ports.Publisher
	rejections ports.RejectionObserver
	windowCap  int
	now        func() time.Time
	logger     *slog.Logger
}

func NewTransitionOrderCommandHandler(
	uowFactory TransitionUoWFactory,
	publisher ports.Publisher,
	rejections ports.RejectionObserver,
	windowCap int,
	now func() time.Time,
	logger *slog.Logger,
) TransitionOrderCommandHandler {
	if windowCap < 1 {
		windowCap = eta.DefaultWindowCap
	}
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return TransitionOrderCommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
		rejections: rejections,
		windowCap:  windowCap,
		now:        now,
		logger:     logger.With("component", "transition_order_handler"),
	}
}

func (h TransitionOrderCommandHandler) Handle(ctx context.Context, cmd TransitionOrderCommand) (TransitionResult, error) {
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

	now := h.now()
	from := o.Status()
	if err = o.Transition(cmd.To(), now); err != nil {
		return TransitionResult{}, err
	}

	if err = orderRepo.UpdateStatus(ctx, o, from); err != nil {
		return TransitionResult{}, err
	}

	stat, err := h.foldSample(ctx, uow.ETARepository(), o, now)
	if err != nil {
		return TransitionResult{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return TransitionResult{}, err
	}

	h.logger.InfoContext(ctx, "order transitioned",
		"tenant", o.Tenant().String(),
		"order_id", o.ID().String(),
		"from", from.String(),
		"to", o.Status().String(),
	)

	remaining := stat.Remaining(o.Status(), o.Timeline().AcceptedAt, now)
	publishCommitted(ctx, h.publisher, h.logger, order.NewOrderEvent(o, remaining, now).WithEstimate(stat.EMA()))

	if o.Status() == order.Rejected {
		h.reportRejection(ctx, o)
	}

	return TransitionResult{Status: o.Status(), ETA: remaining}, nil
}

// foldSample updates the EMA on SERVED and otherwise just reads it.
func (h TransitionOrderCommandHandler) foldSample(
	ctx context.Context,
	repo ports.ETARepository,
	o *order.Order,
	now time.Time,
) (eta.Stat, error) {
	acceptedAt := o.Timeline().AcceptedAt
	if o.Status() != order.Served || acceptedAt == nil {
		return repo.Get(ctx)
	}

	stat, err := repo.GetForUpdate(ctx)
	if err != nil {
		return eta.Stat{}, err
	}
	next := stat.Observe(now.Sub(*acceptedAt), h.windowCap)
	if err = repo.Save(ctx, next); err != nil {
		return eta.Stat{}, err
	}
	return next, nil
}

func (h TransitionOrderCommandHandler) reportRejection(ctx context.Context, o *order.Order) {
	if h.rejections == nil || o.Source().IsZero() {
		return
	}
	if blocked := h.rejections.RecordRejection(o.Tenant(), o.Source()); blocked {
		h.logger.WarnContext(ctx, "source blocked after repeated rejections",
			"tenant", o.Tenant().String(),
			"source", o.Source().String(),
		)
	}
}
