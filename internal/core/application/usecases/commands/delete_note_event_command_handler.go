package commands

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/smartfixosapp/smartfixos/internal/core/ports"
	"github.com/smartfixosapp/smartfixos/internal/pkg/errs"
)

// DeleteNoteEventCommandHandler deletes note events behind a shared-secret
// check. The secret is stored as a bcrypt hash; the handler never sees the
// plaintext reference value.
type DeleteNoteEventCommandHandler struct {
	uowFactory EventUoWFactory
	identity   ports.IdentityProvider
	eventCache ports.EventCache

	credentialHash []byte
}

// NewDeleteNoteEventCommandHandler creates a handler for gated note deletion.
func NewDeleteNoteEventCommandHandler(
	uowFactory EventUoWFactory,
	identity ports.IdentityProvider,
	eventCache ports.EventCache,
	credentialHash []byte,
) DeleteNoteEventCommandHandler {
	return DeleteNoteEventCommandHandler{
		uowFactory:     uowFactory,
		identity:       identity,
		eventCache:     eventCache,
		credentialHash: credentialHash,
	}
}

// Handle verifies the credential, then deletes the event if and only if its
// type permits deletion.
func (h *DeleteNoteEventCommandHandler) Handle(ctx context.Context, cmd DeleteNoteEventCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	if _, err := h.identity.CurrentActor(ctx); err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword(h.credentialHash, []byte(cmd.Credential())); err != nil {
		return errs.NewValueIsInvalidErrorWithCause(
			"credential", fmt.Errorf("credential does not match"))
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	ev, err := uow.EventRepository().Get(ctx, cmd.EventID())
	if err != nil {
		return err
	}

	if !ev.Type().IsDeletable() {
		return errs.NewValueIsInvalidErrorWithCause(
			"event type", fmt.Errorf("%s events cannot be deleted", ev.Type()))
	}

	if err = uow.EventRepository().Delete(ctx, ev.ID()); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.eventCache.Invalidate(ev.OrderID())
	return nil
}
