package idempotency

import (
	"time"

	"orderflow/internal/core/domain/model/kernel"
)

// Key scopes a token to a tenant and a route so the same token can be used
// against different endpoints.
type Key struct {
	Tenant kernel.TenantID
	Route  string
	Token  Token
}

func (k Key) String() string {
	return k.Tenant.String() + "|" + k.Route + "|" + k.Token.String()
}

type State int

const (
	Pending State = iota + 1
	Completed
)

// Record is what the store keeps under a key. A Pending record has no
// response yet; its owner is still running the handler.
type Record struct {
	Key         Key
	State       State
	StatusCode  int
	ContentType string
	Body        []byte
	ExpiresAt   time.Time
}

func (r Record) IsCompleted() bool {
	return r.State == Completed
}

func (r Record) IsExpired(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}
