package services

import (
	"fmt"

	"github.com/smartfixosapp/smartfixos/internal/core/domain/model/kernel"
	"github.com/smartfixosapp/smartfixos/internal/core/domain/model/payment"
	"github.com/smartfixosapp/smartfixos/internal/core/domain/model/workorder"
	"github.com/smartfixosapp/smartfixos/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

// PaymentOutcome describes what applying a payment would do to an order's
// ledger. It is a pure computation; nothing is mutated until the command
// handler commits it.
type PaymentOutcome struct {
	// NewTotalPaid is the paid total after the payment.
	NewTotalPaid kernel.Money

	// NewBalance is the remaining balance after the payment, floored at zero.
	NewBalance kernel.Money

	// IsPaid reports whether the new balance is within the cent tolerance.
	IsPaid bool
}

// LedgerReconciler computes financial state for work orders and validates
// payments against the outstanding balance. It is stateless.
type LedgerReconciler struct{}

// NewLedgerReconciler creates a ledger reconciler.
func NewLedgerReconciler() LedgerReconciler {
	return LedgerReconciler{}
}

// RecomputeTotals derives subtotal, tax, and total from line items, a flat
// discount, and a tax rate. Thin façade over the aggregate's ledger math so
// callers outside the aggregate (quotes, previews) share one formula.
func (LedgerReconciler) RecomputeTotals(
	items []workorder.LineItem,
	discount kernel.Money,
	taxRate decimal.Decimal,
) workorder.Ledger {
	return workorder.ComputeLedger(items, discount, taxRate)
}

// ApplyPayment validates amount and mode against the order's current ledger
// and returns the resulting totals.
//
// Rejected outright:
//   - non-positive amounts
//   - deposit amounts exceeding the current balance (a deposit cannot
//     overpay; a full-mode payment may, producing change)
func (LedgerReconciler) ApplyPayment(
	wo *workorder.WorkOrder,
	amount kernel.Money,
	mode payment.Mode,
) (PaymentOutcome, error) {
	if err := wo.Validate(); err != nil {
		return PaymentOutcome{}, err
	}
	if err := mode.Validate(); err != nil {
		return PaymentOutcome{}, err
	}
	if !amount.IsPositive() {
		return PaymentOutcome{}, errs.NewValueIsInvalidErrorWithCause(
			"payment amount", fmt.Errorf("%s is not greater than 0", amount))
	}

	balance := wo.BalanceDue()
	if mode == payment.ModeDeposit && amount.GreaterThan(balance) {
		return PaymentOutcome{}, errs.NewValueIsOutOfRangeError(
			"deposit amount", amount.String(), "0.01", balance.String())
	}

	newTotalPaid := wo.TotalPaid().Add(amount)
	newBalance := wo.Ledger().Total.Sub(newTotalPaid).FloorZero()

	return PaymentOutcome{
		NewTotalPaid: newTotalPaid,
		NewBalance:   newBalance,
		IsPaid:       newBalance.IsSettled(),
	}, nil
}
