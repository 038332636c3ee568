package commands_test

import (
	"context"
	"errors"
	"testing"

	"github.com/smartfixosapp/smartfixos/internal/core/application/usecases/commands"
	"github.com/smartfixosapp/smartfixos/internal/core/domain/model/event"
	"github.com/smartfixosapp/smartfixos/internal/core/domain/model/kernel"
	"github.com/smartfixosapp/smartfixos/internal/core/domain/model/workorder"
	"github.com/smartfixosapp/smartfixos/internal/core/domain/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newChangeStatusCommand(
	t *testing.T,
	orderID kernel.UUID,
	target workorder.Status,
	metadata workorder.StatusMetadata,
	closeAnyway bool,
) commands.ChangeStatusCommand {
	t.Helper()
	cmd, err := commands.NewChangeStatusCommand(orderID, target, "", true, metadata, closeAnyway)
	require.NoError(t, err)
	return cmd
}

func newChangeStatusHandler(
	factory *MockOrderUoWFactory,
	identity *MockIdentityProvider,
	locks *fakeLocks,
	sideEffects *MockSideEffects,
	cache *fakeEventCache,
) commands.ChangeStatusCommandHandler {
	return commands.NewChangeStatusCommandHandler(
		factory, identity, locks, services.NewTransitionGuard(), sideEffects, cache)
}

func TestChangeStatusCommandHandler_Handle_Commit(t *testing.T) {
	ctx := context.Background()
	wo := testWorkOrder(t)
	cmd := newChangeStatusCommand(t, wo.ID(), workorder.Diagnosing, workorder.StatusMetadata{}, false)
	actor := testActor(t)

	orders := new(MockWorkOrderRepository)
	events := new(MockEventRepository)
	uow := new(MockUoW)
	uow.On("WorkOrderRepository").Return(orders)
	uow.On("EventRepository").Return(events)
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		orders.On("Get", mock.Anything, wo.ID()).Return(wo, nil).Once(),
		orders.On("Update", mock.Anything, wo).Return(nil).Once(),
		events.On("Append", mock.Anything, mock.AnythingOfType("event.WorkOrderEvent")).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow).Once()

	identity := new(MockIdentityProvider)
	identity.On("CurrentActor", ctx).Return(actor, nil).Once()

	sideEffects := new(MockSideEffects)
	sideEffects.On("StatusChanged", ctx, mock.Anything, actor).Once()

	locks := &fakeLocks{}
	cache := &fakeEventCache{}

	h := newChangeStatusHandler(factory, identity, locks, sideEffects, cache)
	decision, err := h.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.True(t, decision.IsCommit())
	assert.Equal(t, workorder.Diagnosing, wo.Status())
	assert.Len(t, wo.History(), 2)
	assert.Equal(t, []kernel.UUID{wo.ID()}, locks.locked)
	assert.Equal(t, []kernel.UUID{wo.ID()}, cache.invalidated)
	orders.AssertExpectations(t)
	events.AssertExpectations(t)
	uow.AssertExpectations(t)
	sideEffects.AssertExpectations(t)
}

func TestChangeStatusCommandHandler_Handle_NeedsInput(t *testing.T) {
	ctx := context.Background()
	wo := testWorkOrder(t)
	cmd := newChangeStatusCommand(t, wo.ID(), workorder.Cancelled, workorder.StatusMetadata{}, false)

	orders := new(MockWorkOrderRepository)
	uow := new(MockUoW)
	uow.On("WorkOrderRepository").Return(orders)
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		orders.On("Get", mock.Anything, wo.ID()).Return(wo, nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow).Once()

	identity := new(MockIdentityProvider)
	identity.On("CurrentActor", ctx).Return(testActor(t), nil).Once()

	sideEffects := new(MockSideEffects)
	cache := &fakeEventCache{}

	h := newChangeStatusHandler(factory, identity, &fakeLocks{}, sideEffects, cache)
	decision, err := h.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, services.DecisionNeedsInput, decision.Kind())
	assert.Equal(t, []string{"reason"}, decision.RequiredFields)
	assert.Equal(t, workorder.Intake, wo.Status())
	assert.Empty(t, cache.invalidated)
	sideEffects.AssertNotCalled(t, "StatusChanged", mock.Anything, mock.Anything, mock.Anything)
	uow.AssertExpectations(t)
}

func TestChangeStatusCommandHandler_Handle_BalanceConflict(t *testing.T) {
	ctx := context.Background()
	wo := testWorkOrder(t)
	require.NoError(t, wo.AddLineItem(testLineItem(t, 96.40, 1)))
	cmd := newChangeStatusCommand(t, wo.ID(), workorder.Delivered, workorder.StatusMetadata{}, false)

	orders := new(MockWorkOrderRepository)
	uow := new(MockUoW)
	uow.On("WorkOrderRepository").Return(orders)
	uow.On("Begin", ctx).Return(nil).Once()
	orders.On("Get", mock.Anything, wo.ID()).Return(wo, nil).Once()
	uow.On("Rollback", ctx).Return(nil).Once()

	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow).Once()

	identity := new(MockIdentityProvider)
	identity.On("CurrentActor", ctx).Return(testActor(t), nil).Once()

	h := newChangeStatusHandler(factory, identity, &fakeLocks{}, new(MockSideEffects), &fakeEventCache{})
	decision, err := h.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, services.DecisionBalanceConflict, decision.Kind())
	assert.Equal(t, "107.48", decision.BalanceDue.String())
	assert.Equal(t, workorder.Intake, wo.Status())
}

func TestChangeStatusCommandHandler_Handle_CloseAnywayOverride(t *testing.T) {
	ctx := context.Background()
	wo := testWorkOrder(t)
	require.NoError(t, wo.AddLineItem(testLineItem(t, 96.40, 1)))
	cmd := newChangeStatusCommand(t, wo.ID(), workorder.Delivered, workorder.StatusMetadata{}, true)
	actor := testActor(t)

	var appended []event.WorkOrderEvent
	orders := new(MockWorkOrderRepository)
	events := new(MockEventRepository)
	events.On("Append", mock.Anything, mock.AnythingOfType("event.WorkOrderEvent")).
		Run(func(args mock.Arguments) {
			appended = append(appended, args.Get(1).(event.WorkOrderEvent))
		}).Return(nil).Once()

	uow := new(MockUoW)
	uow.On("WorkOrderRepository").Return(orders)
	uow.On("EventRepository").Return(events)
	uow.On("Begin", ctx).Return(nil).Once()
	orders.On("Get", mock.Anything, wo.ID()).Return(wo, nil).Once()
	orders.On("Update", mock.Anything, wo).Return(nil).Once()
	uow.On("Commit", ctx).Return(nil).Once()
	uow.On("Rollback", ctx).Return(nil).Once()

	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow).Once()

	identity := new(MockIdentityProvider)
	identity.On("CurrentActor", ctx).Return(actor, nil).Once()

	sideEffects := new(MockSideEffects)
	sideEffects.On("StatusChanged", ctx, mock.Anything, actor).Once()

	h := newChangeStatusHandler(factory, identity, &fakeLocks{}, sideEffects, &fakeEventCache{})
	decision, err := h.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.True(t, decision.IsCommit())
	assert.Equal(t, workorder.Delivered, wo.Status())
	require.Len(t, appended, 1)
	assert.Equal(t, event.TypeStatusChange, appended[0].Type())
	assert.Contains(t, appended[0].Description(), "unpaid balance 107.48")
	assert.Contains(t, appended[0].Description(), "close_anyway")
}

func TestChangeStatusCommandHandler_Handle_AppendsPartsInfoEvent(t *testing.T) {
	ctx := context.Background()
	wo := testWorkOrder(t)
	metadata := workorder.StatusMetadata{
		DeviceLocation: workorder.DeviceAtShop,
		Supplier:       "PartsCo",
		Tracking:       "TRK-1001",
		PartName:       "Screen assembly",
	}
	cmd := newChangeStatusCommand(t, wo.ID(), workorder.WaitingParts, metadata, false)

	var appended []event.WorkOrderEvent
	orders := new(MockWorkOrderRepository)
	events := new(MockEventRepository)
	events.On("Append", mock.Anything, mock.AnythingOfType("event.WorkOrderEvent")).
		Run(func(args mock.Arguments) {
			appended = append(appended, args.Get(1).(event.WorkOrderEvent))
		}).Return(nil).Twice()

	uow := new(MockUoW)
	uow.On("WorkOrderRepository").Return(orders)
	uow.On("EventRepository").Return(events)
	uow.On("Begin", ctx).Return(nil).Once()
	orders.On("Get", mock.Anything, wo.ID()).Return(wo, nil).Once()
	orders.On("Update", mock.Anything, wo).Return(nil).Once()
	uow.On("Commit", ctx).Return(nil).Once()
	uow.On("Rollback", ctx).Return(nil).Once()

	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow).Once()

	identity := new(MockIdentityProvider)
	identity.On("CurrentActor", ctx).Return(testActor(t), nil).Once()

	sideEffects := new(MockSideEffects)
	sideEffects.On("StatusChanged", ctx, mock.Anything, mock.Anything).Once()

	h := newChangeStatusHandler(factory, identity, &fakeLocks{}, sideEffects, &fakeEventCache{})
	_, err := h.Handle(ctx, cmd)

	require.NoError(t, err)
	require.Len(t, appended, 2)
	assert.Equal(t, event.TypeStatusChange, appended[0].Type())
	assert.Equal(t, event.TypePartsInfo, appended[1].Type())
	assert.Equal(t, "PartsCo", appended[1].Metadata()["supplier"])
}

func TestChangeStatusCommandHandler_Handle_ClosedOrderRejected(t *testing.T) {
	ctx := context.Background()
	wo := testWorkOrder(t)
	entry, err := workorder.NewStatusHistoryEntry(workorder.Completed, testActor(t), "", true)
	require.NoError(t, err)
	require.NoError(t, wo.ChangeStatus(entry, workorder.StatusMetadata{}))
	cmd := newChangeStatusCommand(t, wo.ID(), workorder.InProgress, workorder.StatusMetadata{}, false)

	orders := new(MockWorkOrderRepository)
	uow := new(MockUoW)
	uow.On("WorkOrderRepository").Return(orders)
	uow.On("Begin", ctx).Return(nil).Once()
	orders.On("Get", mock.Anything, wo.ID()).Return(wo, nil).Once()
	uow.On("Rollback", ctx).Return(nil).Once()

	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow).Once()

	identity := new(MockIdentityProvider)
	identity.On("CurrentActor", ctx).Return(testActor(t), nil).Once()

	h := newChangeStatusHandler(factory, identity, &fakeLocks{}, new(MockSideEffects), &fakeEventCache{})
	_, err = h.Handle(ctx, cmd)

	require.Error(t, err)
	assert.Equal(t, workorder.Completed, wo.Status())
}

func TestChangeStatusCommandHandler_Handle_GetError(t *testing.T) {
	ctx := context.Background()
	orderID := kernel.NewUUID()
	cmd := newChangeStatusCommand(t, orderID, workorder.Diagnosing, workorder.StatusMetadata{}, false)

	orders := new(MockWorkOrderRepository)
	uow := new(MockUoW)
	uow.On("WorkOrderRepository").Return(orders)
	uow.On("Begin", ctx).Return(nil).Once()
	orders.On("Get", mock.Anything, orderID).Return(nil, errors.New("not found")).Once()
	uow.On("Rollback", ctx).Return(nil).Once()

	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow).Once()

	identity := new(MockIdentityProvider)
	identity.On("CurrentActor", ctx).Return(testActor(t), nil).Once()

	h := newChangeStatusHandler(factory, identity, &fakeLocks{}, new(MockSideEffects), &fakeEventCache{})
	_, err := h.Handle(ctx, cmd)

	require.Error(t, err)
}

func TestChangeStatusCommandHandler_Handle_ValidationError(t *testing.T) {
	ctx := context.Background()

	h := newChangeStatusHandler(
		new(MockOrderUoWFactory), new(MockIdentityProvider),
		&fakeLocks{}, new(MockSideEffects), &fakeEventCache{})
	_, err := h.Handle(ctx, commands.ChangeStatusCommand{})

	require.ErrorIs(t, err, commands.ErrChangeStatusCommandIsNotConstructed)
}
