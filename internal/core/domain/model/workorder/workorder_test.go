package workorder_test

import (
	"testing"
	"time"

	"github.com/smartfixosapp/smartfixos/internal/core/domain/model/kernel"
	"github.com/smartfixosapp/smartfixos/internal/core/domain/model/workorder"
	"github.com/smartfixosapp/smartfixos/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustActor(t *testing.T) kernel.Actor {
	t.Helper()
	actor, err := kernel.NewActor(kernel.NewUUID(), "Ana Rivera", "ana@shop.test")
	require.NoError(t, err)
	return actor
}

func mustWorkOrder(t *testing.T) *workorder.WorkOrder {
	t.Helper()
	wo, err := workorder.NewWorkOrder(
		kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(),
		"iPhone 13", kernel.RateFromFloat(0.115), mustActor(t))
	require.NoError(t, err)
	return wo
}

func mustHistoryEntry(t *testing.T, status workorder.Status) workorder.StatusHistoryEntry {
	t.Helper()
	entry, err := workorder.NewStatusHistoryEntry(status, mustActor(t), "", true)
	require.NoError(t, err)
	return entry
}

func TestNewWorkOrder(t *testing.T) {
	t.Run("should open at intake with an empty ledger", func(t *testing.T) {
		id := kernel.NewUUID()
		customerID := kernel.NewUUID()
		deviceID := kernel.NewUUID()
		actor := mustActor(t)

		wo, err := workorder.NewWorkOrder(
			id, customerID, deviceID, "iPhone 13", kernel.RateFromFloat(0.115), actor)

		require.NoError(t, err)
		require.NoError(t, wo.Validate())
		assert.True(t, wo.ID().IsEqual(id))
		assert.True(t, wo.CustomerID().IsEqual(customerID))
		assert.True(t, wo.DeviceID().IsEqual(deviceID))
		assert.Equal(t, "iPhone 13", wo.DeviceModel())
		assert.Equal(t, workorder.Intake, wo.Status())
		assert.Nil(t, wo.Technician())
		assert.Empty(t, wo.LineItems())
		assert.True(t, wo.TotalPaid().IsZero())
		assert.True(t, wo.BalanceDue().IsZero())
		assert.Equal(t, 0, wo.Version())
	})

	t.Run("should record the opening in the history", func(t *testing.T) {
		actor := mustActor(t)
		wo, err := workorder.NewWorkOrder(
			kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(),
			"ThinkPad T14", kernel.RateFromFloat(0.115), actor)

		require.NoError(t, err)
		history := wo.History()
		require.Len(t, history, 1)
		assert.Equal(t, workorder.Intake, history[0].Status())
		assert.True(t, history[0].Actor().IsEqual(actor))
	})

	t.Run("should fail with invalid ids", func(t *testing.T) {
		var invalidID kernel.UUID

		_, err := workorder.NewWorkOrder(
			invalidID, invalidID, invalidID,
			"iPhone 13", kernel.RateFromFloat(0.115), mustActor(t))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "UUID must be created")
	})

	t.Run("should fail with negative tax rate", func(t *testing.T) {
		_, err := workorder.NewWorkOrder(
			kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(),
			"iPhone 13", kernel.RateFromFloat(-0.1), mustActor(t))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "tax rate")
	})

	t.Run("should fail with unconstructed actor", func(t *testing.T) {
		var actor kernel.Actor

		_, err := workorder.NewWorkOrder(
			kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(),
			"iPhone 13", kernel.RateFromFloat(0.115), actor)

		require.Error(t, err)
	})
}

func TestWorkOrder_Validate(t *testing.T) {
	t.Run("should reject zero value", func(t *testing.T) {
		var wo workorder.WorkOrder

		require.ErrorIs(t, wo.Validate(), workorder.ErrWorkOrderIsNotConstructed)
	})

	t.Run("should reject nil", func(t *testing.T) {
		var wo *workorder.WorkOrder

		require.ErrorIs(t, wo.Validate(), workorder.ErrWorkOrderIsNotConstructed)
	})
}

func TestWorkOrder_LineItems(t *testing.T) {
	t.Run("should add items and reflect them in the ledger", func(t *testing.T) {
		wo := mustWorkOrder(t)

		require.NoError(t, wo.AddLineItem(mustLineItem(t, workorder.LineItemProduct, "Screen", 96.40, 1)))

		ledger := wo.Ledger()
		assert.Equal(t, "96.40", ledger.Subtotal.String())
		assert.Equal(t, "11.08", ledger.Tax.String())
		assert.Equal(t, "107.48", ledger.Total.String())
		assert.Equal(t, "107.48", wo.BalanceDue().String())
	})

	t.Run("should reject duplicate item ids", func(t *testing.T) {
		wo := mustWorkOrder(t)
		item := mustLineItem(t, workorder.LineItemProduct, "Battery", 30, 1)

		require.NoError(t, wo.AddLineItem(item))
		err := wo.AddLineItem(item)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "already on the order")
	})

	t.Run("should reject unconstructed items", func(t *testing.T) {
		wo := mustWorkOrder(t)

		require.Error(t, wo.AddLineItem(workorder.LineItem{}))
	})

	t.Run("should remove an item and return it", func(t *testing.T) {
		wo := mustWorkOrder(t)
		item := mustLineItem(t, workorder.LineItemService, "Labor", 40, 1)
		require.NoError(t, wo.AddLineItem(item))

		removed, err := wo.RemoveLineItem(item.ID())

		require.NoError(t, err)
		assert.True(t, removed.ID().IsEqual(item.ID()))
		assert.Empty(t, wo.LineItems())
		assert.True(t, wo.BalanceDue().IsZero())
	})

	t.Run("should report missing items on remove", func(t *testing.T) {
		wo := mustWorkOrder(t)

		_, err := wo.RemoveLineItem(kernel.NewUUID())

		require.ErrorIs(t, err, errs.ErrObjectNotFound)
	})

	t.Run("LineItems should return a copy", func(t *testing.T) {
		wo := mustWorkOrder(t)
		require.NoError(t, wo.AddLineItem(mustLineItem(t, workorder.LineItemProduct, "Case", 10, 1)))

		items := wo.LineItems()
		items[0] = workorder.LineItem{}

		assert.NoError(t, wo.LineItems()[0].Validate())
	})
}

func TestWorkOrder_SetDiscount(t *testing.T) {
	t.Run("should apply discount before tax", func(t *testing.T) {
		wo := mustWorkOrder(t)
		require.NoError(t, wo.AddLineItem(mustLineItem(t, workorder.LineItemProduct, "Screen", 100, 1)))

		require.NoError(t, wo.SetDiscount(kernel.MoneyFromFloat(20)))

		assert.Equal(t, "80.00", wo.Ledger().Subtotal.String())
		assert.Equal(t, "20.00", wo.Discount().String())
	})

	t.Run("should reject negative discounts", func(t *testing.T) {
		wo := mustWorkOrder(t)

		err := wo.SetDiscount(kernel.MoneyFromFloat(-5))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "discount")
	})
}

func TestWorkOrder_RegisterPayment(t *testing.T) {
	t.Run("should accumulate payments and settle the balance", func(t *testing.T) {
		wo := mustWorkOrder(t)
		require.NoError(t, wo.AddLineItem(mustLineItem(t, workorder.LineItemService, "Repair", 96.40, 1)))

		require.NoError(t, wo.RegisterPayment(kernel.MoneyFromFloat(50)))
		assert.Equal(t, "57.48", wo.BalanceDue().String())
		assert.False(t, wo.IsPaid())

		require.NoError(t, wo.RegisterPayment(kernel.MoneyFromFloat(57.48)))
		assert.True(t, wo.BalanceDue().IsZero())
		assert.True(t, wo.IsPaid())
	})

	t.Run("should floor balance at zero on overpayment", func(t *testing.T) {
		wo := mustWorkOrder(t)
		require.NoError(t, wo.AddLineItem(mustLineItem(t, workorder.LineItemService, "Repair", 40, 1)))

		require.NoError(t, wo.RegisterPayment(kernel.MoneyFromFloat(60)))

		assert.True(t, wo.BalanceDue().IsZero())
		assert.Equal(t, "60.00", wo.TotalPaid().String())
	})

	t.Run("should reject non-positive amounts", func(t *testing.T) {
		wo := mustWorkOrder(t)

		require.Error(t, wo.RegisterPayment(kernel.ZeroMoney()))
		require.Error(t, wo.RegisterPayment(kernel.MoneyFromFloat(-10)))
	})
}

func TestWorkOrder_ChangeStatus(t *testing.T) {
	t.Run("should commit a transition and grow the history", func(t *testing.T) {
		wo := mustWorkOrder(t)
		entry := mustHistoryEntry(t, workorder.Diagnosing)

		err := wo.ChangeStatus(entry, workorder.StatusMetadata{})

		require.NoError(t, err)
		assert.Equal(t, workorder.Diagnosing, wo.Status())
		assert.Len(t, wo.History(), 2)
	})

	t.Run("should record the transition metadata", func(t *testing.T) {
		wo := mustWorkOrder(t)
		metadata := workorder.StatusMetadata{DeviceLocation: workorder.DeviceAtShop, Supplier: "PartsCo"}

		err := wo.ChangeStatus(mustHistoryEntry(t, workorder.WaitingParts), metadata)

		require.NoError(t, err)
		assert.Equal(t, metadata, wo.StatusMetadata())
	})

	t.Run("should reject transitions missing required metadata", func(t *testing.T) {
		wo := mustWorkOrder(t)

		err := wo.ChangeStatus(mustHistoryEntry(t, workorder.Cancelled), workorder.StatusMetadata{})

		require.Error(t, err)
		require.ErrorIs(t, err, errs.ErrValueIsRequired)
		assert.Equal(t, workorder.Intake, wo.Status())
		assert.Len(t, wo.History(), 1)
	})

	t.Run("should reject transitions out of a closed status", func(t *testing.T) {
		wo := mustWorkOrder(t)
		require.NoError(t, wo.ChangeStatus(mustHistoryEntry(t, workorder.Delivered), workorder.StatusMetadata{}))

		err := wo.ChangeStatus(mustHistoryEntry(t, workorder.InProgress), workorder.StatusMetadata{})

		require.Error(t, err)
		assert.Equal(t, workorder.Delivered, wo.Status())
	})

	t.Run("should reject unconstructed history entries", func(t *testing.T) {
		wo := mustWorkOrder(t)

		err := wo.ChangeStatus(workorder.StatusHistoryEntry{}, workorder.StatusMetadata{})

		require.ErrorIs(t, err, workorder.ErrHistoryEntryIsNotConstructed)
	})
}

func TestWorkOrder_AssignTechnician(t *testing.T) {
	t.Run("should assign a technician", func(t *testing.T) {
		wo := mustWorkOrder(t)
		techID := kernel.NewUUID()

		require.NoError(t, wo.AssignTechnician(techID))
		require.NotNil(t, wo.Technician())
		assert.True(t, wo.Technician().IsEqual(techID))
	})

	t.Run("should reject invalid technician id", func(t *testing.T) {
		wo := mustWorkOrder(t)

		require.Error(t, wo.AssignTechnician(kernel.UUID{}))
	})
}

func TestRestoreWorkOrder(t *testing.T) {
	t.Run("should rehydrate stored state as-is", func(t *testing.T) {
		id := kernel.NewUUID()
		techID := kernel.NewUUID()
		items := []workorder.LineItem{mustLineItem(t, workorder.LineItemProduct, "Screen", 96.40, 1)}
		entry, err := workorder.RestoreStatusHistoryEntry(
			workorder.InProgress, time.Now().UTC().Add(-time.Hour), mustActor(t), "started", true)
		require.NoError(t, err)

		wo, err := workorder.RestoreWorkOrder(
			id, kernel.NewUUID(), kernel.NewUUID(), "iPhone 13", &techID,
			[]byte("sealed"), workorder.InProgress,
			workorder.StatusMetadata{}, items,
			kernel.MoneyFromFloat(10), kernel.RateFromFloat(0.115),
			kernel.MoneyFromFloat(25),
			[]workorder.StatusHistoryEntry{entry}, 7)

		require.NoError(t, err)
		require.NoError(t, wo.Validate())
		assert.Equal(t, workorder.InProgress, wo.Status())
		assert.Equal(t, 7, wo.Version())
		assert.Equal(t, "25.00", wo.TotalPaid().String())
		assert.Equal(t, []byte("sealed"), wo.DeviceSecret())
		assert.Len(t, wo.History(), 1)

		// 96.40 - 10.00 = 86.40; tax 9.93; total 96.33; paid 25.00
		assert.Equal(t, "71.33", wo.BalanceDue().String())
	})

	t.Run("should reject an invalid stored status", func(t *testing.T) {
		_, err := workorder.RestoreWorkOrder(
			kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(), "iPhone 13", nil,
			nil, workorder.Unknown, workorder.StatusMetadata{}, nil,
			kernel.ZeroMoney(), kernel.RateFromFloat(0.115), kernel.ZeroMoney(), nil, 0)

		require.Error(t, err)
	})
}
