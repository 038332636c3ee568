package workorder_test

import (
	"testing"

	"github.com/smartfixosapp/smartfixos/internal/core/domain/model/kernel"
	"github.com/smartfixosapp/smartfixos/internal/core/domain/model/workorder"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustLineItem(t *testing.T, kind workorder.LineItemKind, name string, price float64, qty int) workorder.LineItem {
	t.Helper()
	item, err := workorder.NewLineItem(
		kernel.NewUUID(), kind, nil, name, kernel.MoneyFromFloat(price), qty)
	require.NoError(t, err)
	return item
}

func TestComputeLedger(t *testing.T) {
	taxRate := kernel.RateFromFloat(0.115)

	t.Run("should be zero for an empty order", func(t *testing.T) {
		ledger := workorder.ComputeLedger(nil, kernel.ZeroMoney(), taxRate)

		assert.True(t, ledger.Subtotal.IsZero())
		assert.True(t, ledger.Tax.IsZero())
		assert.True(t, ledger.Total.IsZero())
	})

	t.Run("should sum items and apply quantity", func(t *testing.T) {
		items := []workorder.LineItem{
			mustLineItem(t, workorder.LineItemProduct, "Screen assembly", 45.00, 2),
			mustLineItem(t, workorder.LineItemService, "Labor", 30.00, 1),
		}

		ledger := workorder.ComputeLedger(items, kernel.ZeroMoney(), taxRate)

		assert.Equal(t, "120.00", ledger.Subtotal.String())
		assert.Equal(t, "13.80", ledger.Tax.String())
		assert.Equal(t, "133.80", ledger.Total.String())
	})

	t.Run("should truncate tax rather than round", func(t *testing.T) {
		// 96.40 * 0.115 = 11.086; truncation bills 11.08
		items := []workorder.LineItem{
			mustLineItem(t, workorder.LineItemService, "Diagnostic and repair", 96.40, 1),
		}

		ledger := workorder.ComputeLedger(items, kernel.ZeroMoney(), taxRate)

		assert.Equal(t, "96.40", ledger.Subtotal.String())
		assert.Equal(t, "11.08", ledger.Tax.String())
		assert.Equal(t, "107.48", ledger.Total.String())
	})

	t.Run("should subtract discount before tax", func(t *testing.T) {
		items := []workorder.LineItem{
			mustLineItem(t, workorder.LineItemProduct, "Battery", 100.00, 1),
		}

		ledger := workorder.ComputeLedger(items, kernel.MoneyFromFloat(20), taxRate)

		assert.Equal(t, "80.00", ledger.Subtotal.String())
		assert.Equal(t, "9.20", ledger.Tax.String())
		assert.Equal(t, "89.20", ledger.Total.String())
	})

	t.Run("should floor subtotal at zero when discount exceeds gross", func(t *testing.T) {
		items := []workorder.LineItem{
			mustLineItem(t, workorder.LineItemService, "Cleaning", 15.00, 1),
		}

		ledger := workorder.ComputeLedger(items, kernel.MoneyFromFloat(50), taxRate)

		assert.True(t, ledger.Subtotal.IsZero())
		assert.True(t, ledger.Tax.IsZero())
		assert.True(t, ledger.Total.IsZero())
	})

	t.Run("should bill no tax at a zero rate", func(t *testing.T) {
		items := []workorder.LineItem{
			mustLineItem(t, workorder.LineItemProduct, "Case", 25.00, 1),
		}

		ledger := workorder.ComputeLedger(items, kernel.ZeroMoney(), kernel.RateFromFloat(0))

		assert.Equal(t, "25.00", ledger.Subtotal.String())
		assert.True(t, ledger.Tax.IsZero())
		assert.Equal(t, "25.00", ledger.Total.String())
	})
}
