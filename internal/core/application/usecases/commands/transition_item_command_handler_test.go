package commands_test

import (
	"context"
	"testing"
	"time"

	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestTransitionItemCommandHandler_Handle(t *testing.T) {
	t.Run("moves the item and leaves the order alone", func(t *testing.T) {
		f := newTransitionFixture()
		o := storedOrder(order.Accepted, order.Timeline{PlacedAt: at(-3 * time.Minute), AcceptedAt: at(-2 * time.Minute)})
		item := o.Items()[0]

		f.repo.On("GetForUpdate", mock.Anything, o.ID()).Return(o, nil).Once()
		f.repo.On("UpdateItemStatus", mock.Anything, item, order.Placed).Return(nil).Once()
		f.stats.On("Get", mock.Anything).Return(mustStat(2, 300), nil).Once()
		f.uow.On("Commit", mock.Anything).Return(nil).Once()
		f.pub.On("Publish", mock.Anything, mock.MatchedBy(func(e order.StatusChanged) bool {
			return e.Scope == order.ScopeItem && e.ItemID != nil && e.ItemID.IsEqual(item.ID()) &&
				e.Status == order.InProgress && e.ETA == 3*time.Minute
		})).Return(nil).Once()

		cmd, err := commands.NewTransitionItemCommand(testTenant, o.ID(), item.ID(), order.InProgress)
		require.NoError(t, err)

		h := commands.NewTransitionItemCommandHandler(f.factory, f.pub, fixedClock, nil)
		res, err := h.Handle(context.Background(), cmd)

		require.NoError(t, err)
		assert.Equal(t, order.InProgress, res.Status)
		assert.Equal(t, order.Accepted, o.Status())
		f.repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
		f.pub.AssertExpectations(t)
	})

	t.Run("unknown item is not found", func(t *testing.T) {
		f := newTransitionFixture()
		o := storedOrder(order.Accepted, order.Timeline{PlacedAt: at(-time.Minute)})
		f.repo.On("GetForUpdate", mock.Anything, o.ID()).Return(o, nil).Once()

		cmd, err := commands.NewTransitionItemCommand(testTenant, o.ID(), kernel.NewUUID(), order.Ready)
		require.NoError(t, err)

		h := commands.NewTransitionItemCommandHandler(f.factory, f.pub, fixedClock, nil)
		_, err = h.Handle(context.Background(), cmd)

		require.ErrorIs(t, err, errs.ErrObjectNotFound)
		f.uow.AssertNotCalled(t, "Commit", mock.Anything)
	})

	t.Run("item machine has no ACCEPTED", func(t *testing.T) {
		f := newTransitionFixture()
		o := storedOrder(order.Placed, order.Timeline{PlacedAt: at(-time.Minute)})
		f.repo.On("GetForUpdate", mock.Anything, o.ID()).Return(o, nil).Once()

		cmd, err := commands.NewTransitionItemCommand(testTenant, o.ID(), o.Items()[0].ID(), order.Accepted)
		require.NoError(t, err)

		h := commands.NewTransitionItemCommandHandler(f.factory, f.pub, fixedClock, nil)
		_, err = h.Handle(context.Background(), cmd)

		require.ErrorIs(t, err, errs.ErrInvalidTransition)
		f.repo.AssertNotCalled(t, "UpdateItemStatus", mock.Anything, mock.Anything, mock.Anything)
	})
}
