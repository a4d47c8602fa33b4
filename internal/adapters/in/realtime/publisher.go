package realtime

import (
	"context"

	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/ports"
)

// MetricsPublisher counts every status change and tracks each tenant's
// estimate before handing the change on.
type MetricsPublisher struct {
	next    ports.Publisher
	metrics *Metrics
}

func NewMetricsPublisher(next ports.Publisher, metrics *Metrics) *MetricsPublisher {
	return &MetricsPublisher{next: next, metrics: metrics}
}

func (p *MetricsPublisher) Publish(ctx context.Context, event order.StatusChanged) error {
	p.metrics.Transition(string(event.Scope), event.Status.String())
	// Order events carry the estimate as committed, including the fold on SERVED.
	if event.Scope == order.ScopeOrder {
		p.metrics.ETA(event.Tenant.String(), event.Estimate.Seconds())
	}
	return p.next.Publish(ctx, event)
}
