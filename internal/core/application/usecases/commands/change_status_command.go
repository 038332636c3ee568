package commands

import (
	"errors"

	"github.com/smartfixosapp/smartfixos/internal/core/domain/model/kernel"
	"github.com/smartfixosapp/smartfixos/internal/core/domain/model/workorder"
	"github.com/smartfixosapp/smartfixos/internal/pkg/guard"
)

var ErrChangeStatusCommandIsNotConstructed = errors.New(
	"ChangeStatusCommand must be created via NewChangeStatusCommand constructor",
)

// ChangeStatusCommand represents a proposed status transition for a work
// order. The transition is not guaranteed to commit: the transition guard
// may answer with a needs-input or balance-conflict decision that the caller
// resolves and resubmits (with CloseAnyway for an accepted balance override).
type ChangeStatusCommand struct { //nolint:recvcheck //using for validation
	orderID         kernel.UUID
	target          workorder.Status
	note            string
	customerVisible bool
	metadata        workorder.StatusMetadata
	closeAnyway     bool

	guard guard.ConstructorGuard
}

// NewChangeStatusCommand creates a command to move a work order to target.
// The note is optional; metadata carries whatever the target status requires.
func NewChangeStatusCommand(
	orderID kernel.UUID,
	target workorder.Status,
	note string,
	customerVisible bool,
	metadata workorder.StatusMetadata,
	closeAnyway bool,
) (ChangeStatusCommand, error) {
	cmd := ChangeStatusCommand{
		note:            note,
		customerVisible: customerVisible,
		metadata:        metadata,
		closeAnyway:     closeAnyway,
		guard:           guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setTarget(target),
		metadata.Validate(),
	); err != nil {
		return ChangeStatusCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c ChangeStatusCommand) Validate() error {
	return c.guard.Validate(ErrChangeStatusCommandIsNotConstructed)
}

// OrderID returns the work order to transition.
func (c ChangeStatusCommand) OrderID() kernel.UUID {
	return c.orderID
}

// Target returns the proposed status.
func (c ChangeStatusCommand) Target() workorder.Status {
	return c.target
}

// Note returns the optional transition note.
func (c ChangeStatusCommand) Note() string {
	return c.note
}

// CustomerVisible reports whether the history entry shows to the customer.
func (c ChangeStatusCommand) CustomerVisible() bool {
	return c.customerVisible
}

// Metadata returns the per-target auxiliary data.
func (c ChangeStatusCommand) Metadata() workorder.StatusMetadata {
	return c.metadata
}

// CloseAnyway reports whether the caller resolved a balance conflict with an
// explicit close-anyway override.
func (c ChangeStatusCommand) CloseAnyway() bool {
	return c.closeAnyway
}

func (c *ChangeStatusCommand) setOrderID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	c.orderID = id
	return nil
}

func (c *ChangeStatusCommand) setTarget(target workorder.Status) error {
	if err := target.Validate(); err != nil {
		return err
	}
	c.target = target
	return nil
}
