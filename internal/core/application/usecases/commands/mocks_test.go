package commands_test

import (
	"context"
	"testing"
	"time"

	"github.com/smartfixosapp/smartfixos/internal/core/application/usecases/commands"
	"github.com/smartfixosapp/smartfixos/internal/core/domain/model/event"
	"github.com/smartfixosapp/smartfixos/internal/core/domain/model/kernel"
	"github.com/smartfixosapp/smartfixos/internal/core/domain/model/payment"
	"github.com/smartfixosapp/smartfixos/internal/core/domain/model/workorder"
	"github.com/smartfixosapp/smartfixos/internal/core/ports"
	"github.com/smartfixosapp/smartfixos/internal/notifications"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockWorkOrderRepository struct{ mock.Mock }

func (m *MockWorkOrderRepository) Add(ctx context.Context, wo *workorder.WorkOrder) error {
	args := m.Called(ctx, wo)
	return args.Error(0)
}

func (m *MockWorkOrderRepository) Update(ctx context.Context, wo *workorder.WorkOrder) error {
	args := m.Called(ctx, wo)
	return args.Error(0)
}

func (m *MockWorkOrderRepository) Get(ctx context.Context, id kernel.UUID) (*workorder.WorkOrder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*workorder.WorkOrder), args.Error(1)
}

func (m *MockWorkOrderRepository) GetAllActive(ctx context.Context) ([]*workorder.WorkOrder, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*workorder.WorkOrder), args.Error(1)
}

type MockEventRepository struct{ mock.Mock }

func (m *MockEventRepository) Append(ctx context.Context, ev event.WorkOrderEvent) error {
	args := m.Called(ctx, ev)
	return args.Error(0)
}

func (m *MockEventRepository) Get(ctx context.Context, id kernel.UUID) (event.WorkOrderEvent, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(event.WorkOrderEvent), args.Error(1)
}

func (m *MockEventRepository) GetByOrder(ctx context.Context, orderID kernel.UUID) ([]event.WorkOrderEvent, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]event.WorkOrderEvent), args.Error(1)
}

func (m *MockEventRepository) Delete(ctx context.Context, id kernel.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockPaymentRepository struct{ mock.Mock }

func (m *MockPaymentRepository) Add(ctx context.Context, record payment.PaymentRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockPaymentRepository) GetByOrder(ctx context.Context, orderID kernel.UUID) ([]payment.PaymentRecord, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]payment.PaymentRecord), args.Error(1)
}

// MockUoW backs all three unit-of-work interfaces used by the handlers.
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

func (m *MockUoW) WorkOrderRepository() ports.WorkOrderRepository {
	args := m.Called()
	return args.Get(0).(ports.WorkOrderRepository)
}

func (m *MockUoW) EventRepository() ports.EventRepository {
	args := m.Called()
	return args.Get(0).(ports.EventRepository)
}

func (m *MockUoW) PaymentRepository() ports.PaymentRepository {
	args := m.Called()
	return args.Get(0).(ports.PaymentRepository)
}

type MockOrderUoWFactory struct{ mock.Mock }

func (m *MockOrderUoWFactory) Create() commands.OrderUoW {
	args := m.Called()
	return args.Get(0).(commands.OrderUoW)
}

type MockPaymentUoWFactory struct{ mock.Mock }

func (m *MockPaymentUoWFactory) Create() commands.PaymentUoW {
	args := m.Called()
	return args.Get(0).(commands.PaymentUoW)
}

type MockEventUoWFactory struct{ mock.Mock }

func (m *MockEventUoWFactory) Create() commands.EventUoW {
	args := m.Called()
	return args.Get(0).(commands.EventUoW)
}

type MockIdentityProvider struct{ mock.Mock }

func (m *MockIdentityProvider) CurrentActor(ctx context.Context) (kernel.Actor, error) {
	args := m.Called(ctx)
	return args.Get(0).(kernel.Actor), args.Error(1)
}

type MockSideEffects struct{ mock.Mock }

func (m *MockSideEffects) StatusChanged(ctx context.Context, order notifications.OrderContext, actor kernel.Actor) {
	m.Called(ctx, order, actor)
}

func (m *MockSideEffects) PaymentReceived(
	ctx context.Context,
	order notifications.OrderContext,
	actor kernel.Actor,
	amount kernel.Money,
	method payment.Method,
	mode payment.Mode,
) {
	m.Called(ctx, order, actor, amount, method, mode)
}

// fakeLocks hands out no-op unlocks and records which keys were locked.
type fakeLocks struct {
	locked []kernel.UUID
}

func (f *fakeLocks) Lock(orderID kernel.UUID) func() {
	f.locked = append(f.locked, orderID)
	return func() {}
}

// fakeEventCache always misses and records invalidations.
type fakeEventCache struct {
	invalidated []kernel.UUID
}

func (f *fakeEventCache) Get(kernel.UUID) ([]event.WorkOrderEvent, bool) { return nil, false }

func (f *fakeEventCache) Set(kernel.UUID, []event.WorkOrderEvent, time.Duration) {}

func (f *fakeEventCache) Invalidate(orderID kernel.UUID) {
	f.invalidated = append(f.invalidated, orderID)
}

func testActor(t *testing.T) kernel.Actor {
	t.Helper()
	actor, err := kernel.NewActor(kernel.NewUUID(), "Ana Rivera", "ana@shop.test")
	require.NoError(t, err)
	return actor
}

func testWorkOrder(t *testing.T) *workorder.WorkOrder {
	t.Helper()
	wo, err := workorder.NewWorkOrder(
		kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(),
		"iPhone 13", kernel.RateFromFloat(0.115), testActor(t))
	require.NoError(t, err)
	return wo
}

func testLineItem(t *testing.T, price float64, qty int) workorder.LineItem {
	t.Helper()
	item, err := workorder.NewLineItem(
		kernel.NewUUID(), workorder.LineItemService, nil,
		"Repair", kernel.MoneyFromFloat(price), qty)
	require.NoError(t, err)
	return item
}
