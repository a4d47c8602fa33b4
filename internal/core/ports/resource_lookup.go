package ports

import (
	"context"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/menu"
)

// ResourceLookup is the soft-delete aware view of the catalog. Retired rows
// are returned with Active=false rather than hidden, so admission can tell
// "gone" apart from "never existed".
type ResourceLookup interface {
	// ResourceByToken resolves a guest-facing token.
	// Returns errs.ObjectNotFoundError when no resource ever had the token.
	ResourceByToken(ctx context.Context, token string) (menu.Resource, error)

	// ResourceByID resolves a resource by id, including retired ones.
	ResourceByID(ctx context.Context, id kernel.UUID) (menu.Resource, error)

	// MenuItems returns the requested items with all their modifiers.
	// Unknown ids are simply absent from the result.
	MenuItems(ctx context.Context, ids []kernel.UUID) (map[kernel.UUID]menu.Item, error)
}
