package ports

import (
	"context"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
)

// Publisher hands an accepted transition to the fan-out. It is called
// after commit; an error is logged by the caller and never undoes the
// transition.
type Publisher interface {
	Publish(ctx context.Context, event order.StatusChanged) error
}

// RejectionObserver is told about every REJECTED order so it can track
// abusive sources. It reports whether the source ended up blocked.
type RejectionObserver interface {
	RecordRejection(tenant kernel.TenantID, source kernel.Source) bool
}
