package commands

import (
	"context"
	"fmt"

	"github.com/smartfixosapp/smartfixos/internal/core/domain/model/event"
	"github.com/smartfixosapp/smartfixos/internal/core/domain/model/kernel"
	"github.com/smartfixosapp/smartfixos/internal/core/ports"
	"github.com/smartfixosapp/smartfixos/internal/pkg/errs"
)

// RemoveLineItemCommandHandler takes a billed item off a work order and
// recomputes the derived ledger.
type RemoveLineItemCommandHandler struct {
	uowFactory OrderUoWFactory
	identity   ports.IdentityProvider
	locks      OrderLocks
	eventCache ports.EventCache

	allowAfterClose bool
}

// NewRemoveLineItemCommandHandler creates a handler for removing billed items.
func NewRemoveLineItemCommandHandler(
	uowFactory OrderUoWFactory,
	identity ports.IdentityProvider,
	locks OrderLocks,
	eventCache ports.EventCache,
	allowAfterClose bool,
) RemoveLineItemCommandHandler {
	return RemoveLineItemCommandHandler{
		uowFactory:      uowFactory,
		identity:        identity,
		locks:           locks,
		eventCache:      eventCache,
		allowAfterClose: allowAfterClose,
	}
}

// Handle removes the item, persists the order, and appends an item_removed
// event in the same transaction.
func (h *RemoveLineItemCommandHandler) Handle(ctx context.Context, cmd RemoveLineItemCommand) error {
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
			"order status", fmt.Errorf("order is closed (%s); line items are frozen", wo.Status()))
	}

	item, err := wo.RemoveLineItem(cmd.ItemID())
	if err != nil {
		return err
	}

	if err = uow.WorkOrderRepository().Update(ctx, wo); err != nil {
		return err
	}

	ev, err := event.NewWorkOrderEvent(
		kernel.NewUUID(), wo.ID(), event.TypeItemRemoved,
		fmt.Sprintf("Removed %s %q x%d at %s", item.Kind(), item.Name(), item.Quantity(), item.UnitPrice()),
		actor,
		map[string]any{
			"item_id":    item.ID().String(),
			"kind":       item.Kind().String(),
			"name":       item.Name(),
			"unit_price": item.UnitPrice().String(),
			"quantity":   item.Quantity(),
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
