package commands

import (
	"errors"

	"github.com/smartfixosapp/smartfixos/internal/core/domain/model/kernel"
	"github.com/smartfixosapp/smartfixos/internal/pkg/errs"
	"github.com/smartfixosapp/smartfixos/internal/pkg/guard"
)

var ErrDeleteNoteEventCommandIsNotConstructed = errors.New(
	"DeleteNoteEventCommand must be created via NewDeleteNoteEventCommand constructor",
)

// DeleteNoteEventCommand removes a note event from an order's activity trail.
// This is the single sanctioned exception to the append-only trail, gated by
// a shared operator secret.
type DeleteNoteEventCommand struct { //nolint:recvcheck //using for validation
	eventID    kernel.UUID
	credential string

	guard guard.ConstructorGuard
}

// NewDeleteNoteEventCommand creates a command to delete a note event.
func NewDeleteNoteEventCommand(eventID kernel.UUID, credential string) (DeleteNoteEventCommand, error) {
	cmd := DeleteNoteEventCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setEventID(eventID),
		cmd.setCredential(credential),
	); err != nil {
		return DeleteNoteEventCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c DeleteNoteEventCommand) Validate() error {
	return c.guard.Validate(ErrDeleteNoteEventCommandIsNotConstructed)
}

// EventID returns the event to delete.
func (c DeleteNoteEventCommand) EventID() kernel.UUID {
	return c.eventID
}

// Credential returns the operator-supplied shared secret.
func (c DeleteNoteEventCommand) Credential() string {
	return c.credential
}

func (c *DeleteNoteEventCommand) setEventID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	c.eventID = id
	return nil
}

func (c *DeleteNoteEventCommand) setCredential(credential string) error {
	if credential == "" {
		return errs.NewValueIsRequiredError("credential")
	}
	c.credential = credential
	return nil
}
