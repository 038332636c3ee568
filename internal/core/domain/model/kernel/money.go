package kernel

import (
	"fmt"

	"github.com/smartfixosapp/smartfixos/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

// paymentTolerance is the band within which a balance is considered settled.
// Two-decimal currencies accumulate sub-cent residue from tax math, so
// "paid in full" means a remaining balance of at most one cent.
var paymentTolerance = decimal.NewFromFloat(0.01)

// Money is a value object representing a currency amount with cent precision.
// It wraps shopspring/decimal to keep ledger arithmetic exact; float64 must
// never carry balances.
//
// The zero value of Money is a valid zero amount. Money is immutable and
// thread-safe.
//
// Example usage:
//
//	price := kernel.MoneyFromFloat(96.40)
//	tax := price.Mul(kernel.RateFromFloat(0.115))
//	total := price.Add(tax)
type Money struct {
	amount decimal.Decimal
}

// NewMoney creates a Money from a decimal amount.
func NewMoney(amount decimal.Decimal) Money {
	return Money{amount: amount}
}

// MoneyFromFloat creates a Money from a float64 amount.
// Intended for config defaults and tests; wire input should use MoneyFromString.
func MoneyFromFloat(amount float64) Money {
	return Money{amount: decimal.NewFromFloat(amount)}
}

// MoneyFromString parses a decimal string such as "107.48".
// Returns an error for malformed input.
func MoneyFromString(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, errs.NewValueIsInvalidErrorWithCause("amount", fmt.Errorf("%q is not a decimal amount: %w", s, err))
	}
	return Money{amount: d}, nil
}

// ZeroMoney returns the zero amount.
func ZeroMoney() Money {
	return Money{amount: decimal.Zero}
}

// Add returns m + other.
func (m Money) Add(other Money) Money {
	return Money{amount: m.amount.Add(other.amount)}
}

// Sub returns m - other.
func (m Money) Sub(other Money) Money {
	return Money{amount: m.amount.Sub(other.amount)}
}

// Mul returns m multiplied by a scalar rate, truncated to cents.
// Truncation (not rounding) keeps tax math stable: 96.40 at 11.5% yields
// 11.08, never 11.09.
func (m Money) Mul(rate decimal.Decimal) Money {
	return Money{amount: m.amount.Mul(rate).Truncate(2)}
}

// MulQty returns m multiplied by an integer quantity.
func (m Money) MulQty(qty int) Money {
	return Money{amount: m.amount.Mul(decimal.NewFromInt(int64(qty)))}
}

// FloorZero returns m, floored at zero. Balances are never negative.
func (m Money) FloorZero() Money {
	if m.amount.IsNegative() {
		return ZeroMoney()
	}
	return m
}

// IsPositive reports whether m > 0.
func (m Money) IsPositive() bool {
	return m.amount.IsPositive()
}

// IsNegative reports whether m < 0.
func (m Money) IsNegative() bool {
	return m.amount.IsNegative()
}

// IsZero reports whether m == 0.
func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

// GreaterThan reports whether m > other.
func (m Money) GreaterThan(other Money) bool {
	return m.amount.GreaterThan(other.amount)
}

// LessThanOrEqual reports whether m <= other.
func (m Money) LessThanOrEqual(other Money) bool {
	return m.amount.LessThanOrEqual(other.amount)
}

// IsSettled reports whether the amount is within the payment tolerance of
// zero, i.e. the balance it represents is considered paid in full.
func (m Money) IsSettled() bool {
	return m.amount.LessThanOrEqual(paymentTolerance)
}

// IsEqual reports whether both amounts represent the same value.
func (m Money) IsEqual(other Money) bool {
	return m.amount.Equal(other.amount)
}

// Decimal returns the underlying decimal amount.
func (m Money) Decimal() decimal.Decimal {
	return m.amount
}

// Round2 returns the amount rounded to two decimal places.
// Use at presentation and persistence boundaries.
func (m Money) Round2() Money {
	return Money{amount: m.amount.Round(2)}
}

// String returns the amount formatted with two decimal places.
func (m Money) String() string {
	return m.amount.StringFixed(2)
}

// RateFromFloat converts a float64 rate (e.g. a tax rate of 0.115) into a
// decimal scalar for use with Mul.
func RateFromFloat(rate float64) decimal.Decimal {
	return decimal.NewFromFloat(rate)
}
