package commands_test

import (
	"context"
	"time"

	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/domain/model/eta"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/menu"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/ports"

	"github.com/stretchr/testify/mock"
)

type MockOrderRepository struct{ mock.Mock }

func (m *MockOrderRepository) Add(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	o, _ := args.Get(0).(*order.Order)
	return o, args.Error(1)
}

func (m *MockOrderRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	o, _ := args.Get(0).(*order.Order)
	return o, args.Error(1)
}

func (m *MockOrderRepository) UpdateStatus(ctx context.Context, o *order.Order, expected order.Status) error {
	args := m.Called(ctx, o, expected)
	return args.Error(0)
}

func (m *MockOrderRepository) UpdateItemStatus(ctx context.Context, item *order.Item, expected order.Status) error {
	args := m.Called(ctx, item, expected)
	return args.Error(0)
}

func (m *MockOrderRepository) ListActive(ctx context.Context) ([]*order.Order, error) {
	args := m.Called(ctx)
	orders, _ := args.Get(0).([]*order.Order)
	return orders, args.Error(1)
}

type MockETARepository struct{ mock.Mock }

func (m *MockETARepository) Get(ctx context.Context) (eta.Stat, error) {
	args := m.Called(ctx)
	return args.Get(0).(eta.Stat), args.Error(1)
}

func (m *MockETARepository) GetForUpdate(ctx context.Context) (eta.Stat, error) {
	args := m.Called(ctx)
	return args.Get(0).(eta.Stat), args.Error(1)
}

func (m *MockETARepository) Save(ctx context.Context, stat eta.Stat) error {
	args := m.Called(ctx, stat)
	return args.Error(0)
}

type MockResourceLookup struct{ mock.Mock }

func (m *MockResourceLookup) ResourceByToken(ctx context.Context, token string) (menu.Resource, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(menu.Resource), args.Error(1)
}

func (m *MockResourceLookup) ResourceByID(ctx context.Context, id kernel.UUID) (menu.Resource, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(menu.Resource), args.Error(1)
}

func (m *MockResourceLookup) MenuItems(ctx context.Context, ids []kernel.UUID) (map[kernel.UUID]menu.Item, error) {
	args := m.Called(ctx, ids)
	items, _ := args.Get(0).(map[kernel.UUID]menu.Item)
	return items, args.Error(1)
}

// MockUoW satisfies both AdmissionUoW and TransitionUoW.
type MockUoW struct{ mock.Mock }

func (m *MockUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) OrderRepository() ports.OrderRepository {
	args := m.Called()
	return args.Get(0).(ports.OrderRepository)
}

func (m *MockUoW) ETARepository() ports.ETARepository {
	args := m.Called()
	return args.Get(0).(ports.ETARepository)
}

func (m *MockUoW) ResourceLookup() ports.ResourceLookup {
	args := m.Called()
	return args.Get(0).(ports.ResourceLookup)
}

type MockAdmissionUoWFactory struct{ mock.Mock }

func (m *MockAdmissionUoWFactory) Create(tenant kernel.TenantID) commands.AdmissionUoW {
	args := m.Called(tenant)
	return args.Get(0).(commands.AdmissionUoW)
}

type MockTransitionUoWFactory struct{ mock.Mock }

func (m *MockTransitionUoWFactory) Create(tenant kernel.TenantID) commands.TransitionUoW {
	args := m.Called(tenant)
	return args.Get(0).(commands.TransitionUoW)
}

type MockPublisher struct{ mock.Mock }

func (m *MockPublisher) Publish(ctx context.Context, event order.StatusChanged) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

type MockRejectionObserver struct{ mock.Mock }

func (m *MockRejectionObserver) RecordRejection(tenant kernel.TenantID, source kernel.Source) bool {
	args := m.Called(tenant, source)
	return args.Bool(0)
}

var (
	testTenant = kernel.MustTenantID("harbour-grill")
	testNow    = time.Date(2026, 4, 10, 18, 0, 0, 0, time.UTC)
)

func fixedClock() time.Time { return testNow }

func mustSource(value string) kernel.Source {
	s, err := kernel.NewSource(value)
	if err != nil {
		panic(err)
	}
	return s
}

func mustStat(n int64, ema float64) eta.Stat {
	s, err := eta.NewStat(testTenant, n, ema)
	if err != nil {
		panic(err)
	}
	return s
}

// storedOrder rebuilds an order as the repository would return it.
func storedOrder(status order.Status, timeline order.Timeline) *order.Order {
	id := kernel.NewUUID()
	snap, err := order.NewLineSnapshot(kernel.NewUUID(), "Fish & Chips", kernel.MustMoney("14.00"), nil)
	if err != nil {
		panic(err)
	}
	item, err := order.RestoreItem(kernel.NewUUID(), id, snap, 1, order.Placed, order.Timeline{PlacedAt: timeline.PlacedAt})
	if err != nil {
		panic(err)
	}
	o, err := order.RestoreOrder(id, testTenant, kernel.NewUUID(), mustSource("device-42"), status, timeline, []*order.Item{item})
	if err != nil {
		panic(err)
	}
	return o
}

func at(d time.Duration) *time.Time {
	t := testNow.Add(d)
	return &t
}
