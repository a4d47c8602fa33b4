package kernel

import (
	"fmt"
	"regexp"

	"orderflow/internal/pkg/errs"
)

var tenantPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{1,62}$`)

// ErrTenantIDIsNotConstructed is returned when a zero TenantID is used.
var ErrTenantIDIsNotConstructed = errs.NewValueIsRequiredError("TenantID must be created via NewTenantID")

// TenantID is the slug of one ordering tenant (a restaurant, hotel or venue).
// Every persistence handle, EMA row, abuse counter and subscription channel is
// scoped by it.
type TenantID struct {
	slug string
}

// NewTenantID validates a slug of 2-63 lowercase letters, digits and dashes.
func NewTenantID(slug string) (TenantID, error) {
	if slug == "" {
		return TenantID{}, errs.NewValueIsRequiredError("tenant")
	}
	if !tenantPattern.MatchString(slug) {
		return TenantID{}, errs.NewValueIsInvalidErrorWithCause("tenant", fmt.Errorf("%q is not a valid tenant slug", slug))
	}
	return TenantID{slug: slug}, nil
}

// MustTenantID is NewTenantID for literals in wiring code and tests.
func MustTenantID(slug string) TenantID {
	t, err := NewTenantID(slug)
	if err != nil {
		panic(err)
	}
	return t
}

func (t TenantID) String() string {
	return t.slug
}

func (t TenantID) IsEqual(other TenantID) bool {
	return t.slug == other.slug
}

func (t TenantID) Validate() error {
	if t.slug == "" {
		return ErrTenantIDIsNotConstructed
	}
	return nil
}
