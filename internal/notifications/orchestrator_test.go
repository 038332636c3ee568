package notifications_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/smartfixosapp/smartfixos/internal/core/domain/model/event"
	"github.com/smartfixosapp/smartfixos/internal/core/domain/model/kernel"
	"github.com/smartfixosapp/smartfixos/internal/core/domain/model/payment"
	"github.com/smartfixosapp/smartfixos/internal/core/domain/model/workorder"
	"github.com/smartfixosapp/smartfixos/internal/core/ports"
	"github.com/smartfixosapp/smartfixos/internal/notifications"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockEventAppender struct{ mock.Mock }

func (m *MockEventAppender) Append(ctx context.Context, ev event.WorkOrderEvent) error {
	args := m.Called(ctx, ev)
	return args.Error(0)
}

type MockEmailSender struct{ mock.Mock }

func (m *MockEmailSender) Send(ctx context.Context, msg ports.EmailMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

type MockNotifier struct{ mock.Mock }

func (m *MockNotifier) Notify(ctx context.Context, n ports.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

type MockStaffDirectory struct{ mock.Mock }

func (m *MockStaffDirectory) Admins(ctx context.Context) ([]ports.StaffAccount, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ports.StaffAccount), args.Error(1)
}

func (m *MockStaffDirectory) Get(ctx context.Context, id kernel.UUID) (ports.StaffAccount, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(ports.StaffAccount), args.Error(1)
}

type MockCustomerDirectory struct{ mock.Mock }

func (m *MockCustomerDirectory) Get(ctx context.Context, id kernel.UUID) (ports.Customer, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(ports.Customer), args.Error(1)
}

type orchestratorFixture struct {
	events    *MockEventAppender
	email     *MockEmailSender
	notifier  *MockNotifier
	staff     *MockStaffDirectory
	customers *MockCustomerDirectory
}

func newFixture() *orchestratorFixture {
	return &orchestratorFixture{
		events:    new(MockEventAppender),
		email:     new(MockEmailSender),
		notifier:  new(MockNotifier),
		staff:     new(MockStaffDirectory),
		customers: new(MockCustomerDirectory),
	}
}

func (f *orchestratorFixture) build(skip ...workorder.Status) *notifications.Orchestrator {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return notifications.NewOrchestrator(
		f.events, f.email, f.notifier, f.staff, f.customers,
		skip, time.Second, "SmartFix Repairs", logger)
}

func testOrchestratorActor(t *testing.T) kernel.Actor {
	t.Helper()
	actor, err := kernel.NewActor(kernel.NewUUID(), "Ana Rivera", "ana@shop.test")
	require.NoError(t, err)
	return actor
}

func testOrderContext(status workorder.Status) notifications.OrderContext {
	return notifications.OrderContext{
		OrderID:     kernel.NewUUID(),
		Status:      status,
		CustomerID:  kernel.NewUUID(),
		DeviceModel: "iPhone 13",
		BalanceDue:  kernel.MoneyFromFloat(57.48),
	}
}

func TestOrchestrator_StatusChanged_EmailsCustomerAndRecordsOutcome(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	order := testOrderContext(workorder.ReadyForPickup)
	actor := testOrchestratorActor(t)

	f.customers.On("Get", mock.Anything, order.CustomerID).
		Return(ports.Customer{ID: order.CustomerID, Email: "customer@example.test"}, nil).Once()

	var sent ports.EmailMessage
	f.email.On("Send", mock.Anything, mock.AnythingOfType("ports.EmailMessage")).
		Run(func(args mock.Arguments) {
			sent = args.Get(1).(ports.EmailMessage)
		}).
		Return(nil).Once()

	var recorded event.WorkOrderEvent
	f.events.On("Append", mock.Anything, mock.AnythingOfType("event.WorkOrderEvent")).
		Run(func(args mock.Arguments) {
			recorded = args.Get(1).(event.WorkOrderEvent)
		}).
		Return(nil).Once()

	f.staff.On("Admins", mock.Anything).Return([]ports.StaffAccount{}, nil).Once()

	o := f.build()
	o.StatusChanged(ctx, order, actor)
	o.Wait()

	assert.Equal(t, "customer@example.test", sent.To)
	assert.Contains(t, sent.Subject, "Ready for pickup")
	assert.Contains(t, sent.Body, "iPhone 13")
	assert.Equal(t, event.TypeEmailSent, recorded.Type())
	assert.Equal(t, order.OrderID, recorded.OrderID())
	f.email.AssertExpectations(t)
	f.events.AssertExpectations(t)
}

func TestOrchestrator_StatusChanged_SkipsEmailForSkippedStatus(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	order := testOrderContext(workorder.Diagnosing)

	f.staff.On("Admins", mock.Anything).Return([]ports.StaffAccount{}, nil).Once()

	o := f.build(workorder.Diagnosing)
	o.StatusChanged(ctx, order, testOrchestratorActor(t))
	o.Wait()

	f.customers.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
	f.email.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	f.events.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
	f.staff.AssertExpectations(t)
}

func TestOrchestrator_StatusChanged_RecordsEmailFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	order := testOrderContext(workorder.ReadyForPickup)

	f.customers.On("Get", mock.Anything, order.CustomerID).
		Return(ports.Customer{ID: order.CustomerID, Email: "customer@example.test"}, nil).Once()
	f.email.On("Send", mock.Anything, mock.AnythingOfType("ports.EmailMessage")).
		Return(errors.New("smtp: connection refused")).Once()

	var recorded event.WorkOrderEvent
	f.events.On("Append", mock.Anything, mock.AnythingOfType("event.WorkOrderEvent")).
		Run(func(args mock.Arguments) {
			recorded = args.Get(1).(event.WorkOrderEvent)
		}).
		Return(nil).Once()

	f.staff.On("Admins", mock.Anything).Return([]ports.StaffAccount{}, nil).Once()

	o := f.build()
	o.StatusChanged(ctx, order, testOrchestratorActor(t))
	o.Wait()

	assert.Equal(t, event.TypeEmailFailed, recorded.Type())
	assert.Contains(t, recorded.Description(), "failed")
	assert.Equal(t, "smtp: connection refused", recorded.Metadata()["error"])
	f.events.AssertExpectations(t)
}

func TestOrchestrator_StatusChanged_SkipsCustomerWithoutEmail(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	order := testOrderContext(workorder.ReadyForPickup)

	f.customers.On("Get", mock.Anything, order.CustomerID).
		Return(ports.Customer{ID: order.CustomerID}, nil).Once()
	f.staff.On("Admins", mock.Anything).Return([]ports.StaffAccount{}, nil).Once()

	o := f.build()
	o.StatusChanged(ctx, order, testOrchestratorActor(t))
	o.Wait()

	f.email.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	f.events.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}

func TestOrchestrator_StatusChanged_FansOutToStaffExceptActor(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	actor := testOrchestratorActor(t)
	techID := kernel.NewUUID()
	adminID := kernel.NewUUID()

	order := testOrderContext(workorder.InProgress)
	order.TechnicianID = &techID

	f.customers.On("Get", mock.Anything, order.CustomerID).
		Return(ports.Customer{ID: order.CustomerID}, nil).Once()
	f.staff.On("Admins", mock.Anything).Return([]ports.StaffAccount{
		{ID: adminID, Name: "Marta", Role: "admin"},
		{ID: actor.ID(), Name: "Ana Rivera", Role: "admin"},
	}, nil).Once()

	var recipients []kernel.UUID
	f.notifier.On("Notify", mock.Anything, mock.AnythingOfType("ports.Notification")).
		Run(func(args mock.Arguments) {
			n := args.Get(1).(ports.Notification)
			recipients = append(recipients, n.RecipientID)
			assert.Equal(t, "status_change", n.Type)
			assert.Equal(t, order.OrderID, n.RelatedEntity)
		}).
		Return(nil).Twice()

	o := f.build()
	o.StatusChanged(ctx, order, actor)
	o.Wait()

	assert.ElementsMatch(t, []kernel.UUID{techID, adminID}, recipients)
	f.notifier.AssertExpectations(t)
}

func TestOrchestrator_PaymentReceived_SendsReceiptAndNotifies(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	order := testOrderContext(workorder.Intake)
	actor := testOrchestratorActor(t)
	adminID := kernel.NewUUID()

	f.customers.On("Get", mock.Anything, order.CustomerID).
		Return(ports.Customer{ID: order.CustomerID, Email: "customer@example.test"}, nil).Once()

	var sent ports.EmailMessage
	f.email.On("Send", mock.Anything, mock.AnythingOfType("ports.EmailMessage")).
		Run(func(args mock.Arguments) {
			sent = args.Get(1).(ports.EmailMessage)
		}).
		Return(nil).Once()

	f.events.On("Append", mock.Anything, mock.AnythingOfType("event.WorkOrderEvent")).
		Return(nil).Once()
	f.staff.On("Admins", mock.Anything).Return([]ports.StaffAccount{
		{ID: adminID, Name: "Marta", Role: "admin"},
	}, nil).Once()

	var notified ports.Notification
	f.notifier.On("Notify", mock.Anything, mock.AnythingOfType("ports.Notification")).
		Run(func(args mock.Arguments) {
			notified = args.Get(1).(ports.Notification)
		}).
		Return(nil).Once()

	o := f.build()
	o.PaymentReceived(ctx, order, actor, kernel.MoneyFromFloat(50), payment.MethodCash, payment.ModeDeposit)
	o.Wait()

	assert.Equal(t, "Payment received", sent.Subject)
	assert.Contains(t, sent.Body, "50.00")
	assert.Contains(t, sent.Body, "57.48")
	assert.Equal(t, "payment", notified.Type)
	assert.Equal(t, adminID, notified.RecipientID)
	assert.Contains(t, notified.Body, "Ana Rivera")
	f.email.AssertExpectations(t)
	f.notifier.AssertExpectations(t)
}

func TestOrchestrator_NotifierFailureDoesNotBlockOthers(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	order := testOrderContext(workorder.InProgress)
	actor := testOrchestratorActor(t)

	f.customers.On("Get", mock.Anything, order.CustomerID).
		Return(ports.Customer{ID: order.CustomerID}, nil).Once()
	f.staff.On("Admins", mock.Anything).Return([]ports.StaffAccount{
		{ID: kernel.NewUUID(), Role: "admin"},
		{ID: kernel.NewUUID(), Role: "admin"},
	}, nil).Once()
	f.notifier.On("Notify", mock.Anything, mock.AnythingOfType("ports.Notification")).
		Return(errors.New("push gateway down")).Twice()

	o := f.build()
	o.StatusChanged(ctx, order, actor)
	o.Wait()

	f.notifier.AssertExpectations(t)
}
