package commands

import (
	"errors"

	"github.com/smartfixosapp/smartfixos/internal/core/domain/model/kernel"
	"github.com/smartfixosapp/smartfixos/internal/pkg/errs"
	"github.com/smartfixosapp/smartfixos/internal/pkg/guard"
)

var ErrAddNoteCommandIsNotConstructed = errors.New(
	"AddNoteCommand must be created via NewAddNoteCommand constructor",
)

// AddNoteCommand appends a free-form operator note to an order's activity
// trail.
type AddNoteCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID
	text    string

	guard guard.ConstructorGuard
}

// NewAddNoteCommand creates a command to append a note event.
func NewAddNoteCommand(orderID kernel.UUID, text string) (AddNoteCommand, error) {
	cmd := AddNoteCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setText(text),
	); err != nil {
		return AddNoteCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c AddNoteCommand) Validate() error {
	return c.guard.Validate(ErrAddNoteCommandIsNotConstructed)
}

// OrderID returns the work order the note belongs to.
func (c AddNoteCommand) OrderID() kernel.UUID {
	return c.orderID
}

// Text returns the note body.
func (c AddNoteCommand) Text() string {
	return c.text
}

func (c *AddNoteCommand) setOrderID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	c.orderID = id
	return nil
}

func (c *AddNoteCommand) setText(text string) error {
	if text == "" {
		return errs.NewValueIsRequiredError("note text")
	}
	c.text = text
	return nil
}
