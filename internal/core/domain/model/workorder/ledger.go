package workorder

import (
	"github.com/smartfixosapp/smartfixos/internal/core/domain/model/kernel"

	"github.com/shopspring/decimal"
)

// Ledger is the derived financial view of a work order: subtotal after
// discount, tax, and total. It is recomputed from line items on every read
// and never stored, so it cannot drift from its inputs.
type Ledger struct {
	Subtotal kernel.Money
	Tax      kernel.Money
	Total    kernel.Money
}

// ComputeLedger derives the ledger from line items, a flat discount, and a
// tax rate.
//
//	subtotal = max(0, sum(price * qty) - discount)
//	tax      = subtotal * taxRate, truncated to cents
//	total    = subtotal + tax
//
// Tax is truncated rather than rounded: a $96.40 subtotal at 11.5% bills
// $11.08 of tax for a $107.48 total.
func ComputeLedger(items []LineItem, discount kernel.Money, taxRate decimal.Decimal) Ledger {
	gross := kernel.ZeroMoney()
	for _, item := range items {
		gross = gross.Add(item.Total())
	}

	subtotal := gross.Sub(discount).FloorZero()
	tax := subtotal.Mul(taxRate)

	return Ledger{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal.Add(tax),
	}
}
