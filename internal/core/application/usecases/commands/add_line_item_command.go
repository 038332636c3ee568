package commands

import (
	"errors"

	"github.com/smartfixosapp/smartfixos/internal/core/domain/model/kernel"
	"github.com/smartfixosapp/smartfixos/internal/core/domain/model/workorder"
	"github.com/smartfixosapp/smartfixos/internal/pkg/guard"
)

var ErrAddLineItemCommandIsNotConstructed = errors.New(
	"AddLineItemCommand must be created via NewAddLineItemCommand constructor",
)

// AddLineItemCommand adds a billed product or service to a work order.
type AddLineItemCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID
	item    workorder.LineItem

	guard guard.ConstructorGuard
}

// NewAddLineItemCommand creates a command to bill an item on a work order.
func NewAddLineItemCommand(orderID kernel.UUID, item workorder.LineItem) (AddLineItemCommand, error) {
	cmd := AddLineItemCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setItem(item),
	); err != nil {
		return AddLineItemCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c AddLineItemCommand) Validate() error {
	return c.guard.Validate(ErrAddLineItemCommandIsNotConstructed)
}

// OrderID returns the work order being billed.
func (c AddLineItemCommand) OrderID() kernel.UUID {
	return c.orderID
}

// Item returns the line item to add.
func (c AddLineItemCommand) Item() workorder.LineItem {
	return c.item
}

func (c *AddLineItemCommand) setOrderID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	c.orderID = id
	return nil
}

func (c *AddLineItemCommand) setItem(item workorder.LineItem) error {
	if err := item.Validate(); err != nil {
		return err
	}
	c.item = item
	return nil
}
