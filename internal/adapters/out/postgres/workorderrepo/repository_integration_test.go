package workorderrepo_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/smartfixosapp/smartfixos/internal/adapters/out/postgres/workorderrepo"
	"github.com/smartfixosapp/smartfixos/internal/core/domain/model/kernel"
	"github.com/smartfixosapp/smartfixos/internal/core/domain/model/workorder"
	"github.com/smartfixosapp/smartfixos/internal/pkg/errs"
)

// MockAggregateTracker is a mock implementation of aggregateTracker interface.
type MockAggregateTracker struct {
	mock.Mock
}

func (m *MockAggregateTracker) TrackAggregate(id kernel.UUID, aggregate any) {
	m.Called(id, aggregate)
}

// WorkOrderRepositoryIntegrationTestSuite provides integration tests for
// GormWorkOrderRepository using PostgreSQL containers to verify persistence
// of the full aggregate: order row, line items, and status history.
type WorkOrderRepositoryIntegrationTestSuite struct {
	suite.Suite
	container  *postgres.PostgresContainer
	db         *gorm.DB
	repository *workorderrepo.GormWorkOrderRepository
	tracker    *MockAggregateTracker
}

func (suite *WorkOrderRepositoryIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	suite.Require().NoError(err)
	suite.container = container

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(postgresdriver.Open(connStr), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	suite.Require().NoError(db.AutoMigrate(
		&workorderrepo.WorkOrderDTO{},
		&workorderrepo.LineItemDTO{},
		&workorderrepo.StatusHistoryDTO{},
	))
}

func (suite *WorkOrderRepositoryIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec(
		"TRUNCATE TABLE work_orders, work_order_line_items, work_order_status_history").Error)

	suite.tracker = new(MockAggregateTracker)
	suite.repository = workorderrepo.NewGormWorkOrderRepository(suite.db, suite.tracker)
}

func (suite *WorkOrderRepositoryIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *WorkOrderRepositoryIntegrationTestSuite) TestAdd_ValidWorkOrder_Success() {
	ctx := context.Background()

	wo := suite.createTestWorkOrder()
	suite.tracker.On("TrackAggregate", wo.ID(), wo).Once()

	err := suite.repository.Add(ctx, wo)
	suite.Require().NoError(err)

	suite.assertWorkOrderCount(1)
	suite.assertHistoryCount(1)
	suite.tracker.AssertExpectations(suite.T())
}

func (suite *WorkOrderRepositoryIntegrationTestSuite) TestGet_ExistingWorkOrder_RoundTripsAggregate() {
	ctx := context.Background()

	wo := suite.createTestWorkOrder()
	suite.Require().NoError(wo.AddLineItem(suite.createLineItem("Screen replacement", "96.40", 1)))
	suite.Require().NoError(wo.AddLineItem(suite.createLineItem("Diagnostic fee", "15.00", 2)))
	techID := kernel.NewUUID()
	suite.Require().NoError(wo.AssignTechnician(techID))
	wo.SetDeviceSecret([]byte("sealed-bytes"))

	suite.tracker.On("TrackAggregate", wo.ID(), wo).Once()
	suite.Require().NoError(suite.repository.Add(ctx, wo))

	restored, err := suite.repository.Get(ctx, wo.ID())
	suite.Require().NoError(err)

	suite.Equal(wo.ID(), restored.ID())
	suite.Equal(wo.CustomerID(), restored.CustomerID())
	suite.Equal(wo.DeviceID(), restored.DeviceID())
	suite.Equal("iPhone 13", restored.DeviceModel())
	suite.Equal(workorder.Intake, restored.Status())
	suite.Require().NotNil(restored.Technician())
	suite.Equal(techID, *restored.Technician())
	suite.Equal([]byte("sealed-bytes"), restored.DeviceSecret())

	// Line items come back in billing order.
	items := restored.LineItems()
	suite.Require().Len(items, 2)
	suite.Equal("Screen replacement", items[0].Name())
	suite.Equal("Diagnostic fee", items[1].Name())
	suite.Equal("96.40", items[0].UnitPrice().String())
	suite.Equal(2, items[1].Quantity())

	// The ledger is derived, not stored; the restored aggregate recomputes it.
	suite.Equal("126.40", restored.Ledger().Subtotal.String())
	suite.Equal(wo.Ledger().Total.String(), restored.Ledger().Total.String())

	suite.Require().Len(restored.History(), 1)
	suite.Equal(workorder.Intake, restored.History()[0].Status())

	suite.tracker.AssertExpectations(suite.T())
}

func (suite *WorkOrderRepositoryIntegrationTestSuite) TestGet_NonExistentWorkOrder_ReturnsNotFoundError() {
	ctx := context.Background()

	restored, err := suite.repository.Get(ctx, kernel.NewUUID())

	suite.Nil(restored)
	suite.Require().Error(err)

	var notFoundErr *errs.ObjectNotFoundError
	suite.Require().ErrorAs(err, &notFoundErr)
	suite.tracker.AssertExpectations(suite.T())
}

func (suite *WorkOrderRepositoryIntegrationTestSuite) TestUpdate_ExistingWorkOrder_PersistsChanges() {
	ctx := context.Background()

	wo := suite.createTestWorkOrder()
	suite.tracker.On("TrackAggregate", wo.ID(), wo).Twice()
	suite.Require().NoError(suite.repository.Add(ctx, wo))

	suite.Require().NoError(wo.AddLineItem(suite.createLineItem("Battery", "45.00", 1)))
	entry := suite.createHistoryEntry(workorder.Diagnosing)
	suite.Require().NoError(wo.ChangeStatus(entry, workorder.StatusMetadata{}))
	suite.Require().NoError(wo.RegisterPayment(kernel.MoneyFromFloat(20)))

	suite.Require().NoError(suite.repository.Update(ctx, wo))

	restored, err := suite.repository.Get(ctx, wo.ID())
	suite.Require().NoError(err)

	suite.Equal(workorder.Diagnosing, restored.Status())
	suite.Require().Len(restored.LineItems(), 1)
	suite.Equal("20.00", restored.TotalPaid().String())
	suite.Require().Len(restored.History(), 2)
	suite.Equal(workorder.Diagnosing, restored.History()[1].Status())
	suite.Equal(wo.Version()+1, restored.Version())

	suite.tracker.AssertExpectations(suite.T())
}

func (suite *WorkOrderRepositoryIntegrationTestSuite) TestUpdate_StaleVersion_ReturnsVersionError() {
	ctx := context.Background()

	wo := suite.createTestWorkOrder()
	suite.tracker.On("TrackAggregate", wo.ID(), mock.Anything).Times(2)
	suite.Require().NoError(suite.repository.Add(ctx, wo))

	// First writer wins.
	suite.Require().NoError(wo.RegisterPayment(kernel.MoneyFromFloat(10)))
	suite.Require().NoError(suite.repository.Update(ctx, wo))

	// A second write from the same in-memory version loses the race.
	err := suite.repository.Update(ctx, wo)
	suite.Require().Error(err)

	var versionErr *errs.VersionIsInvalidError
	suite.Require().ErrorAs(err, &versionErr)
}

func (suite *WorkOrderRepositoryIntegrationTestSuite) TestUpdate_NonExistentWorkOrder_ReturnsNotFoundError() {
	ctx := context.Background()

	wo := suite.createTestWorkOrder()

	err := suite.repository.Update(ctx, wo)
	suite.Require().Error(err)

	var notFoundErr *errs.ObjectNotFoundError
	suite.Require().ErrorAs(err, &notFoundErr)
	suite.tracker.AssertExpectations(suite.T())
}

func (suite *WorkOrderRepositoryIntegrationTestSuite) TestGetAllActive_ExcludesClosedOrders() {
	ctx := context.Background()

	suite.tracker.On("TrackAggregate", mock.AnythingOfType("kernel.UUID"), mock.Anything).Times(4)

	open1 := suite.createTestWorkOrder()
	open2 := suite.createTestWorkOrder()
	delivered := suite.createTestWorkOrder()
	cancelled := suite.createTestWorkOrder()

	suite.Require().NoError(delivered.ChangeStatus(
		suite.createHistoryEntry(workorder.Delivered), workorder.StatusMetadata{}))
	suite.Require().NoError(cancelled.ChangeStatus(
		suite.createHistoryEntry(workorder.Cancelled),
		workorder.StatusMetadata{Reason: "customer declined quote"}))

	for _, wo := range []*workorder.WorkOrder{open1, open2, delivered, cancelled} {
		suite.Require().NoError(suite.repository.Add(ctx, wo))
	}

	active, err := suite.repository.GetAllActive(ctx)
	suite.Require().NoError(err)

	suite.Len(active, 2)
	activeIDs := []kernel.UUID{active[0].ID(), active[1].ID()}
	suite.Contains(activeIDs, open1.ID())
	suite.Contains(activeIDs, open2.ID())

	suite.tracker.AssertExpectations(suite.T())
}

func (suite *WorkOrderRepositoryIntegrationTestSuite) TestGetAllActive_NoOrders_ReturnsEmptySlice() {
	active, err := suite.repository.GetAllActive(context.Background())
	suite.Require().NoError(err)
	suite.Empty(active)
}

func (suite *WorkOrderRepositoryIntegrationTestSuite) TestGet_MetadataRoundTrip() {
	ctx := context.Background()

	wo := suite.createTestWorkOrder()
	suite.Require().NoError(wo.ChangeStatus(
		suite.createHistoryEntry(workorder.WaitingParts),
		workorder.StatusMetadata{
			DeviceLocation: workorder.DeviceAtShop,
			Supplier:       "PartsCo",
			Tracking:       "TRK-881",
			PartName:       "OLED panel",
		}))

	suite.tracker.On("TrackAggregate", wo.ID(), wo).Once()
	suite.Require().NoError(suite.repository.Add(ctx, wo))

	restored, err := suite.repository.Get(ctx, wo.ID())
	suite.Require().NoError(err)

	metadata := restored.StatusMetadata()
	suite.Equal(workorder.DeviceAtShop, metadata.DeviceLocation)
	suite.Equal("PartsCo", metadata.Supplier)
	suite.Equal("TRK-881", metadata.Tracking)
	suite.Equal("OLED panel", metadata.PartName)
}

func (suite *WorkOrderRepositoryIntegrationTestSuite) createTestWorkOrder() *workorder.WorkOrder {
	actor, err := kernel.NewActor(kernel.NewUUID(), "Ana Rivera", "ana@shop.test")
	suite.Require().NoError(err)

	wo, err := workorder.NewWorkOrder(
		kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(),
		"iPhone 13", decimal.NewFromFloat(0.115), actor)
	suite.Require().NoError(err)
	return wo
}

func (suite *WorkOrderRepositoryIntegrationTestSuite) createLineItem(
	name, price string, quantity int,
) workorder.LineItem {
	unitPrice, err := kernel.MoneyFromString(price)
	suite.Require().NoError(err)

	item, err := workorder.NewLineItem(
		kernel.NewUUID(), workorder.LineItemService, nil, name, unitPrice, quantity)
	suite.Require().NoError(err)
	return item
}

func (suite *WorkOrderRepositoryIntegrationTestSuite) createHistoryEntry(
	status workorder.Status,
) workorder.StatusHistoryEntry {
	actor, err := kernel.NewActor(kernel.NewUUID(), "Ana Rivera", "ana@shop.test")
	suite.Require().NoError(err)

	entry, err := workorder.NewStatusHistoryEntry(status, actor, "", true)
	suite.Require().NoError(err)
	return entry
}

func (suite *WorkOrderRepositoryIntegrationTestSuite) assertWorkOrderCount(expected int) {
	var count int64
	err := suite.db.Model(&workorderrepo.WorkOrderDTO{}).Count(&count).Error
	suite.Require().NoError(err)
	suite.Equal(int64(expected), count)
}

func (suite *WorkOrderRepositoryIntegrationTestSuite) assertHistoryCount(expected int) {
	var count int64
	err := suite.db.Model(&workorderrepo.StatusHistoryDTO{}).Count(&count).Error
	suite.Require().NoError(err)
	suite.Equal(int64(expected), count)
}

func TestWorkOrderRepositoryIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(WorkOrderRepositoryIntegrationTestSuite))
}
