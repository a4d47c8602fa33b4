package kernel_test

import (
	"strings"
	"testing"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTenantID(t *testing.T) {
	t.Run("should accept slugs", func(t *testing.T) {
		for _, slug := range []string{"ab", "trattoria-roma", "hotel-42"} {
			tenant, err := kernel.NewTenantID(slug)
			require.NoError(t, err, slug)
			assert.Equal(t, slug, tenant.String())
			require.NoError(t, tenant.Validate())
		}
	})

	t.Run("should reject empty slug", func(t *testing.T) {
		_, err := kernel.NewTenantID("")
		require.ErrorIs(t, err, errs.ErrValueIsRequired)
	})

	t.Run("should reject malformed slugs", func(t *testing.T) {
		for _, slug := range []string{"A", "-leading", "with space", "Upper", strings.Repeat("a", 64), "semi;colon"} {
			_, err := kernel.NewTenantID(slug)
			require.ErrorIs(t, err, errs.ErrValueIsInvalid, slug)
		}
	})

	t.Run("zero value is invalid", func(t *testing.T) {
		var tenant kernel.TenantID
		require.ErrorIs(t, tenant.Validate(), kernel.ErrTenantIDIsNotConstructed)
	})
}

func TestNewSource(t *testing.T) {
	s, err := kernel.NewSource("  device-1 ")
	require.NoError(t, err)
	assert.Equal(t, "device-1", s.String())
	assert.False(t, s.IsZero())

	_, err = kernel.NewSource("   ")
	require.ErrorIs(t, err, errs.ErrValueIsRequired)

	_, err = kernel.NewSource(strings.Repeat("x", 129))
	require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
}
