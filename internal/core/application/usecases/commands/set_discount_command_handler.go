package commands

import (
	"context"
	"fmt"

	"github.com/smartfixosapp/smartfixos/internal/core/domain/model/event"
	"github.com/smartfixosapp/smartfixos/internal/core/domain/model/kernel"
	"github.com/smartfixosapp/smartfixos/internal/core/ports"
	"github.com/smartfixosapp/smartfixos/internal/pkg/errs"
)

// SetDiscountCommandHandler replaces the order-level discount and recomputes
// the derived ledger.
type SetDiscountCommandHandler struct {
	uowFactory OrderUoWFactory
	identity   ports.IdentityProvider
	locks      OrderLocks
	eventCache ports.EventCache

	allowAfterClose bool
}

// NewSetDiscountCommandHandler creates a handler for discount changes.
func NewSetDiscountCommandHandler(
	uowFactory OrderUoWFactory,
	identity ports.IdentityProvider,
	locks OrderLocks,
	eventCache ports.EventCache,
	allowAfterClose bool,
) SetDiscountCommandHandler {
	return SetDiscountCommandHandler{
		uowFactory:      uowFactory,
		identity:        identity,
		locks:           locks,
		eventCache:      eventCache,
		allowAfterClose: allowAfterClose,
	}
}

// Handle applies the discount and records a note event with the old and new
// values.
func (h *SetDiscountCommandHandler) Handle(ctx context.Context, cmd SetDiscountCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	actor, err := h.identity.CurrentActor(ctx)
	if err != nil {
		return err
	}

	unlock := h.locks.Lock(cmd.OrderID())
	defer unlock()

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	wo, err := uow.WorkOrderRepository().Get(ctx, cmd.OrderID())
	if err != nil {
		return err
	}

	if wo.Status().IsTerminal() && !h.allowAfterClose {
		return errs.NewValueIsInvalidErrorWithCause(
			"order status", fmt.Errorf("order is closed (%s); the ledger is frozen", wo.Status()))
	}

	previous := wo.Discount()
	if err = wo.SetDiscount(cmd.Discount()); err != nil {
		return err
	}

	if err = uow.WorkOrderRepository().Update(ctx, wo); err != nil {
		return err
	}

	ev, err := event.NewWorkOrderEvent(
		kernel.NewUUID(), wo.ID(), event.TypeNote,
		fmt.Sprintf("Discount changed from %s to %s", previous, cmd.Discount()),
		actor,
		map[string]any{
			"previous_discount": previous.String(),
			"discount":          cmd.Discount().String(),
		})
	if err != nil {
		return err
	}
	if err = uow.EventRepository().Append(ctx, ev); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.eventCache.Invalidate(wo.ID())
	return nil
}
