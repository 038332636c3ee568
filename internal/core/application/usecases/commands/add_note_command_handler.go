package commands

import (
	"context"

	"github.com/smartfixosapp/smartfixos/internal/core/domain/model/event"
	"github.com/smartfixosapp/smartfixos/internal/core/domain/model/kernel"
	"github.com/smartfixosapp/smartfixos/internal/core/ports"
)

// AddNoteCommandHandler appends a note event to an order's activity trail.
// Notes never touch the order row itself.
type AddNoteCommandHandler struct {
	uowFactory EventUoWFactory
	identity   ports.IdentityProvider
	eventCache ports.EventCache
}

// NewAddNoteCommandHandler creates a handler for appending notes.
func NewAddNoteCommandHandler(
	uowFactory EventUoWFactory,
	identity ports.IdentityProvider,
	eventCache ports.EventCache,
) AddNoteCommandHandler {
	return AddNoteCommandHandler{
		uowFactory: uowFactory,
		identity:   identity,
		eventCache: eventCache,
	}
}

// Handle appends the note event and invalidates the order's cached trail.
func (h *AddNoteCommandHandler) Handle(ctx context.Context, cmd AddNoteCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	actor, err := h.identity.CurrentActor(ctx)
	if err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	ev, err := event.NewWorkOrderEvent(
		kernel.NewUUID(), cmd.OrderID(), event.TypeNote, cmd.Text(), actor, nil)
	if err != nil {
		return err
	}
	if err = uow.EventRepository().Append(ctx, ev); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.eventCache.Invalidate(cmd.OrderID())
	return nil
}
