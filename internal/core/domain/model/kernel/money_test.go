package kernel_test

import (
	"testing"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoney(t *testing.T) {
	t.Run("should add and multiply exactly", func(t *testing.T) {
		base := kernel.MustMoney("10.10")
		delta := kernel.MustMoney("0.20")

		total := base.Add(delta).Mul(3)

		assert.Equal(t, "30.90", total.String())
		assert.True(t, total.Equal(kernel.MustMoney("30.9")))
	})

	t.Run("should report negatives", func(t *testing.T) {
		assert.True(t, kernel.MustMoney("-1").IsNegative())
		assert.False(t, kernel.Zero.IsNegative())
	})

	t.Run("should reject non decimal input", func(t *testing.T) {
		_, err := kernel.MoneyFromString("ten")
		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})
}
