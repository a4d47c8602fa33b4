package commands

import (
	"context"
	"log/slog"

	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/ports"
)

// publishCommitted hands a committed transition to the fan-out. Failures
// are logged only: the transition is already durable.
func publishCommitted(ctx context.Context, publisher ports.Publisher, logger *slog.Logger, event order.StatusChanged) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, event); err != nil {
		logger.WarnContext(ctx, "failed to publish status change",
			"tenant", event.Tenant.String(),
			"order_id", event.OrderID.String(),
			"scope", string(event.Scope),
			"status", event.Status.String(),
			"error", err,
		)
	}
}
