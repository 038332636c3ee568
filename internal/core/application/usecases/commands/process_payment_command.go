package commands

import (
	"errors"
	"fmt"

	"github.com/smartfixosapp/smartfixos/internal/core/domain/model/kernel"
	"github.com/smartfixosapp/smartfixos/internal/core/domain/model/payment"
	"github.com/smartfixosapp/smartfixos/internal/pkg/errs"
	"github.com/smartfixosapp/smartfixos/internal/pkg/guard"
)

var ErrProcessPaymentCommandIsNotConstructed = errors.New(
	"ProcessPaymentCommand must be created via NewProcessPaymentCommand constructor",
)

// ProcessPaymentCommand represents a payment or deposit taken against a work
// order. Repeated submissions are not deduplicated here; callers needing
// idempotency must key their own submissions.
type ProcessPaymentCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID
	amount  kernel.Money
	method  payment.Method
	mode    payment.Mode

	guard guard.ConstructorGuard
}

// NewProcessPaymentCommand creates a command to record a payment.
// Amount must be positive; method and mode must be known ids.
func NewProcessPaymentCommand(
	orderID kernel.UUID,
	amount kernel.Money,
	method payment.Method,
	mode payment.Mode,
) (ProcessPaymentCommand, error) {
	cmd := ProcessPaymentCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setAmount(amount),
		cmd.setMethod(method),
		cmd.setMode(mode),
	); err != nil {
		return ProcessPaymentCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c ProcessPaymentCommand) Validate() error {
	return c.guard.Validate(ErrProcessPaymentCommandIsNotConstructed)
}

// OrderID returns the work order being paid.
func (c ProcessPaymentCommand) OrderID() kernel.UUID {
	return c.orderID
}

// Amount returns the tendered amount.
func (c ProcessPaymentCommand) Amount() kernel.Money {
	return c.amount
}

// Method returns how the customer paid.
func (c ProcessPaymentCommand) Method() payment.Method {
	return c.method
}

// Mode returns whether this is a deposit or a settling payment.
func (c ProcessPaymentCommand) Mode() payment.Mode {
	return c.mode
}

func (c *ProcessPaymentCommand) setOrderID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	c.orderID = id
	return nil
}

func (c *ProcessPaymentCommand) setAmount(amount kernel.Money) error {
	if !amount.IsPositive() {
		return errs.NewValueIsInvalidErrorWithCause(
			"payment amount", fmt.Errorf("%s is not greater than 0", amount))
	}
	c.amount = amount
	return nil
}

func (c *ProcessPaymentCommand) setMethod(method payment.Method) error {
	if err := method.Validate(); err != nil {
		return err
	}
	c.method = method
	return nil
}

func (c *ProcessPaymentCommand) setMode(mode payment.Mode) error {
	if err := mode.Validate(); err != nil {
		return err
	}
	c.mode = mode
	return nil
}
