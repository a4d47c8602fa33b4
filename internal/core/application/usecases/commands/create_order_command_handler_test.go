package commands_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/menu"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/domain/services"
	"orderflow/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type admissionFixture struct {
	resource menu.Resource
	item     menu.Item
	cmd      commands.CreateOrderCommand
	repo     *MockOrderRepository
	stats    *MockETARepository
	lookup   *MockResourceLookup
	uow      *MockUoW
	factory  *MockAdmissionUoWFactory
	pub      *MockPublisher
}

func newAdmissionFixture(t *testing.T) *admissionFixture {
	t.Helper()
	f := &admissionFixture{
		resource: menu.Resource{
			ID: kernel.NewUUID(), Tenant: testTenant, Token: "table-3", Label: "Table 3",
			Kind: menu.KindTable, Active: true,
		},
		item: menu.Item{
			ID: kernel.NewUUID(), Name: "Chowder", BasePrice: kernel.MustMoney("8.00"), Active: true,
		},
		repo:    new(MockOrderRepository),
		stats:   new(MockETARepository),
		lookup:  new(MockResourceLookup),
		uow:     new(MockUoW),
		factory: new(MockAdmissionUoWFactory),
		pub:     new(MockPublisher),
	}
	cmd, err := commands.NewCreateOrderCommand(testTenant, "table-3", mustSource("device-9"),
		[]services.LineRequest{{MenuItemID: f.item.ID, Quantity: 2}})
	require.NoError(t, err)
	f.cmd = cmd

	f.factory.On("Create", testTenant).Return(f.uow).Once()
	f.uow.On("Begin", mock.Anything).Return(nil).Once()
	f.uow.On("Rollback", mock.Anything).Return(nil).Maybe()
	f.uow.On("ResourceLookup").Return(f.lookup).Maybe()
	f.uow.On("OrderRepository").Return(f.repo).Maybe()
	f.uow.On("ETARepository").Return(f.stats).Maybe()
	return f
}

func (f *admissionFixture) handler() commands.CreateOrderCommandHandler {
	return commands.NewCreateOrderCommandHandler(f.factory, f.pub, fixedClock, nil)
}

func (f *admissionFixture) assertAll(t *testing.T) {
	f.factory.AssertExpectations(t)
	f.uow.AssertExpectations(t)
	f.repo.AssertExpectations(t)
	f.lookup.AssertExpectations(t)
	f.stats.AssertExpectations(t)
	f.pub.AssertExpectations(t)
}

func TestCreateOrderCommandHandler_Handle_Success(t *testing.T) {
	ctx := context.Background()
	f := newAdmissionFixture(t)

	var added *order.Order
	f.lookup.On("ResourceByToken", mock.Anything, "table-3").Return(f.resource, nil).Once()
	f.lookup.On("MenuItems", mock.Anything, []kernel.UUID{f.item.ID}).
		Return(map[kernel.UUID]menu.Item{f.item.ID: f.item}, nil).Once()
	f.repo.On("Add", mock.Anything, mock.AnythingOfType("*order.Order")).
		Run(func(args mock.Arguments) { added = args.Get(1).(*order.Order) }).
		Return(nil).Once()
	f.stats.On("Get", mock.Anything).Return(mustStat(4, 420), nil).Once()
	f.uow.On("Commit", mock.Anything).Return(nil).Once()
	f.pub.On("Publish", mock.Anything, mock.MatchedBy(func(e order.StatusChanged) bool {
		return e.Scope == order.ScopeOrder && e.Status == order.Placed && e.ETA == 7*time.Minute && e.Estimate == 7*time.Minute &&
			e.ResourceID.IsEqual(f.resource.ID) && e.At.Equal(testNow)
	})).Return(nil).Once()

	h := f.handler()
	id, err := h.Handle(ctx, f.cmd)

	require.NoError(t, err)
	require.NotNil(t, added)
	assert.True(t, id.IsEqual(added.ID()))
	assert.Equal(t, "16.00", added.Total().String())
	assert.Equal(t, "device-9", added.Source().String())
	f.assertAll(t)
}

func TestCreateOrderCommandHandler_Handle_ValidationError(t *testing.T) {
	factory := new(MockAdmissionUoWFactory)
	h := commands.NewCreateOrderCommandHandler(factory, nil, fixedClock, nil)

	_, err := h.Handle(context.Background(), commands.CreateOrderCommand{})

	require.ErrorIs(t, err, commands.ErrCreateOrderCommandIsNotConstructed)
	factory.AssertNotCalled(t, "Create", mock.Anything)
}

func TestCreateOrderCommandHandler_Handle_RetiredResource(t *testing.T) {
	f := newAdmissionFixture(t)
	f.resource.Active = false
	f.lookup.On("ResourceByToken", mock.Anything, "table-3").Return(f.resource, nil).Once()
	f.lookup.On("MenuItems", mock.Anything, mock.Anything).
		Return(map[kernel.UUID]menu.Item{f.item.ID: f.item}, nil).Once()

	h := f.handler()
	_, err := h.Handle(context.Background(), f.cmd)

	require.ErrorIs(t, err, errs.ErrResourceGone)
	f.repo.AssertNotCalled(t, "Add", mock.Anything, mock.Anything)
	f.uow.AssertNotCalled(t, "Commit", mock.Anything)
	f.pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestCreateOrderCommandHandler_Handle_UnknownResource(t *testing.T) {
	f := newAdmissionFixture(t)
	f.lookup.On("ResourceByToken", mock.Anything, "table-3").
		Return(menu.Resource{}, errs.NewObjectNotFoundError("resource", "table-3")).Once()

	h := f.handler()
	_, err := h.Handle(context.Background(), f.cmd)

	require.ErrorIs(t, err, errs.ErrObjectNotFound)
	f.uow.AssertNotCalled(t, "Commit", mock.Anything)
}

func TestCreateOrderCommandHandler_Handle_CommitError(t *testing.T) {
	f := newAdmissionFixture(t)
	f.lookup.On("ResourceByToken", mock.Anything, "table-3").Return(f.resource, nil).Once()
	f.lookup.On("MenuItems", mock.Anything, mock.Anything).
		Return(map[kernel.UUID]menu.Item{f.item.ID: f.item}, nil).Once()
	f.repo.On("Add", mock.Anything, mock.Anything).Return(nil).Once()
	f.stats.On("Get", mock.Anything).Return(mustStat(0, 0), nil).Once()
	f.uow.On("Commit", mock.Anything).Return(errors.New("commit error")).Once()

	h := f.handler()
	_, err := h.Handle(context.Background(), f.cmd)

	require.EqualError(t, err, "commit error")
	f.pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestCreateOrderCommandHandler_Handle_PublishFailureDoesNotFailRequest(t *testing.T) {
	f := newAdmissionFixture(t)
	f.lookup.On("ResourceByToken", mock.Anything, "table-3").Return(f.resource, nil).Once()
	f.lookup.On("MenuItems", mock.Anything, mock.Anything).
		Return(map[kernel.UUID]menu.Item{f.item.ID: f.item}, nil).Once()
	f.repo.On("Add", mock.Anything, mock.Anything).Return(nil).Once()
	f.stats.On("Get", mock.Anything).Return(mustStat(0, 0), nil).Once()
	f.uow.On("Commit", mock.Anything).Return(nil).Once()
	f.pub.On("Publish", mock.Anything, mock.Anything).Return(errors.New("broker down")).Once()

	h := f.handler()
	id, err := h.Handle(context.Background(), f.cmd)

	require.NoError(t, err)
	require.NoError(t, id.Validate())
	f.assertAll(t)
}
