package menu

import (
	"orderflow/internal/core/domain/model/kernel"
)

// ResourceKind tells what a guest is ordering from.
type ResourceKind string

const (
	KindTable   ResourceKind = "table"
	KindCounter ResourceKind = "counter"
	KindRoom    ResourceKind = "room"
)

// Resource is a guest-facing ordering point addressed by an opaque token.
// An inactive resource was retired and can no longer take orders.
type Resource struct {
	ID     kernel.UUID
	Tenant kernel.TenantID
	Token  string
	Label  string
	Kind   ResourceKind
	Active bool
}
