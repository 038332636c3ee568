package commands

import (
	"errors"
	"fmt"

	"github.com/smartfixosapp/smartfixos/internal/core/domain/model/kernel"
	"github.com/smartfixosapp/smartfixos/internal/pkg/errs"
	"github.com/smartfixosapp/smartfixos/internal/pkg/guard"
)

var ErrSetDiscountCommandIsNotConstructed = errors.New(
	"SetDiscountCommand must be created via NewSetDiscountCommand constructor",
)

// SetDiscountCommand replaces the order-level discount.
type SetDiscountCommand struct { //nolint:recvcheck //using for validation
	orderID  kernel.UUID
	discount kernel.Money

	guard guard.ConstructorGuard
}

// NewSetDiscountCommand creates a command to set a work-order discount.
func NewSetDiscountCommand(orderID kernel.UUID, discount kernel.Money) (SetDiscountCommand, error) {
	cmd := SetDiscountCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setDiscount(discount),
	); err != nil {
		return SetDiscountCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c SetDiscountCommand) Validate() error {
	return c.guard.Validate(ErrSetDiscountCommandIsNotConstructed)
}

// OrderID returns the work order being discounted.
func (c SetDiscountCommand) OrderID() kernel.UUID {
	return c.orderID
}

// Discount returns the new order-level discount.
func (c SetDiscountCommand) Discount() kernel.Money {
	return c.discount
}

func (c *SetDiscountCommand) setOrderID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	c.orderID = id
	return nil
}

func (c *SetDiscountCommand) setDiscount(discount kernel.Money) error {
	if discount.IsNegative() {
		return errs.NewValueIsInvalidErrorWithCause(
			"discount", fmt.Errorf("%s is negative", discount))
	}
	c.discount = discount
	return nil
}
