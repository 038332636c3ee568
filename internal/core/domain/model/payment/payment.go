// Package payment provides the immutable payment record entity and its
// method/mode enums. Payment records are created when money changes hands and
// are never mutated afterwards; the work order's paid total is the only
// derived state.
package payment

import (
	"errors"
	"fmt"
	"time"

	"github.com/smartfixosapp/smartfixos/internal/core/domain/model/kernel"
	"github.com/smartfixosapp/smartfixos/internal/pkg/errs"
	"github.com/smartfixosapp/smartfixos/internal/pkg/guard"
)

// ErrPaymentRecordIsNotConstructed is returned when a PaymentRecord was not
// created via NewPaymentRecord.
var ErrPaymentRecordIsNotConstructed = errors.New(
	"PaymentRecord must be created via NewPaymentRecord constructor")

// Method is how the customer paid.
type Method string

const (
	MethodCash     Method = "cash"
	MethodCard     Method = "card"
	MethodTransfer Method = "transfer"
	MethodOther    Method = "other"
)

// Validate checks the method is one of the known ids.
func (m Method) Validate() error {
	switch m {
	case MethodCash, MethodCard, MethodTransfer, MethodOther:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause(
			"payment method", fmt.Errorf("%q is not a known payment method", string(m)))
	}
}

// Mode distinguishes a deposit from a settling payment. Deposit-mode
// payments never change the order's status regardless of the resulting
// balance; full-mode payments may auto-advance a settled order.
type Mode string

const (
	ModeFull    Mode = "full"
	ModeDeposit Mode = "deposit"
)

// Validate checks the mode is one of the known ids.
func (m Mode) Validate() error {
	switch m {
	case ModeFull, ModeDeposit:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause(
			"payment mode", fmt.Errorf("%q is not a known payment mode", string(m)))
	}
}

// PaymentRecord is the immutable record of one payment against a work order.
type PaymentRecord struct {
	id          kernel.UUID
	orderID     kernel.UUID
	amount      kernel.Money
	method      Method
	mode        Mode
	changeGiven kernel.Money
	receivedAt  time.Time
	receivedBy  kernel.Actor

	guard guard.ConstructorGuard
}

// NewPaymentRecord creates a payment record stamped with the current server
// time. Amount must be positive; change may be zero.
func NewPaymentRecord(
	id kernel.UUID,
	orderID kernel.UUID,
	amount kernel.Money,
	method Method,
	mode Mode,
	changeGiven kernel.Money,
	receivedBy kernel.Actor,
) (PaymentRecord, error) {
	record := PaymentRecord{
		receivedAt: time.Now().UTC(),
		guard:      guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		record.setID(id),
		record.setOrderID(orderID),
		record.setAmount(amount),
		record.setMethod(method),
		record.setMode(mode),
		record.setChangeGiven(changeGiven),
		record.setReceivedBy(receivedBy),
	); err != nil {
		return PaymentRecord{}, err
	}

	return record, nil
}

// RestorePaymentRecord rebuilds a record from persistence with its original
// timestamp.
func RestorePaymentRecord(
	id kernel.UUID,
	orderID kernel.UUID,
	amount kernel.Money,
	method Method,
	mode Mode,
	changeGiven kernel.Money,
	receivedAt time.Time,
	receivedBy kernel.Actor,
) (PaymentRecord, error) {
	record, err := NewPaymentRecord(id, orderID, amount, method, mode, changeGiven, receivedBy)
	if err != nil {
		return PaymentRecord{}, err
	}
	record.receivedAt = receivedAt
	return record, nil
}

// Validate ensures the record was created through a constructor.
func (p PaymentRecord) Validate() error {
	return p.guard.Validate(ErrPaymentRecordIsNotConstructed)
}

// ID returns the payment record's unique identifier.
func (p PaymentRecord) ID() kernel.UUID {
	return p.id
}

// OrderID returns the work order the payment applies to.
func (p PaymentRecord) OrderID() kernel.UUID {
	return p.orderID
}

// Amount returns the paid amount.
func (p PaymentRecord) Amount() kernel.Money {
	return p.amount
}

// Method returns how the customer paid.
func (p PaymentRecord) Method() Method {
	return p.method
}

// Mode returns whether the payment was a deposit or a settling payment.
func (p PaymentRecord) Mode() Mode {
	return p.mode
}

// ChangeGiven returns the cash change handed back, zero for exact payments.
func (p PaymentRecord) ChangeGiven() kernel.Money {
	return p.changeGiven
}

// ReceivedAt returns the server timestamp of the payment.
func (p PaymentRecord) ReceivedAt() time.Time {
	return p.receivedAt
}

// ReceivedBy returns the staff member who took the payment.
func (p PaymentRecord) ReceivedBy() kernel.Actor {
	return p.receivedBy
}

func (p *PaymentRecord) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	p.id = id
	return nil
}

func (p *PaymentRecord) setOrderID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	p.orderID = id
	return nil
}

func (p *PaymentRecord) setAmount(amount kernel.Money) error {
	if !amount.IsPositive() {
		return errs.NewValueIsInvalidErrorWithCause(
			"payment amount", fmt.Errorf("%s is not greater than 0", amount))
	}
	p.amount = amount
	return nil
}

func (p *PaymentRecord) setMethod(method Method) error {
	if err := method.Validate(); err != nil {
		return err
	}
	p.method = method
	return nil
}

func (p *PaymentRecord) setMode(mode Mode) error {
	if err := mode.Validate(); err != nil {
		return err
	}
	p.mode = mode
	return nil
}

func (p *PaymentRecord) setChangeGiven(change kernel.Money) error {
	if change.IsNegative() {
		return errs.NewValueIsInvalidErrorWithCause(
			"change given", fmt.Errorf("%s is negative", change))
	}
	p.changeGiven = change
	return nil
}

func (p *PaymentRecord) setReceivedBy(actor kernel.Actor) error {
	if err := actor.Validate(); err != nil {
		return err
	}
	p.receivedBy = actor
	return nil
}
