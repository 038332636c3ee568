package commands

import (
	"context"
	"fmt"

	"github.com/smartfixosapp/smartfixos/internal/core/domain/model/event"
	"github.com/smartfixosapp/smartfixos/internal/core/domain/model/kernel"
	"github.com/smartfixosapp/smartfixos/internal/core/domain/model/workorder"
	"github.com/smartfixosapp/smartfixos/internal/core/domain/services"
	"github.com/smartfixosapp/smartfixos/internal/core/ports"
	"github.com/smartfixosapp/smartfixos/internal/notifications"
)

// ChangeStatusCommandHandler commits guarded status transitions.
//
// The handler serializes per order id, validates the proposal through the
// transition guard, and either returns the guard's decision for the caller
// to resolve (needs-input, balance conflict) or atomically commits the new
// status, the history entry, and the status_change event. Side effects are
// dispatched only after a durable commit.
type ChangeStatusCommandHandler struct {
	uowFactory  OrderUoWFactory
	identity    ports.IdentityProvider
	locks       OrderLocks
	guard       services.TransitionGuard
	sideEffects SideEffects
	eventCache  ports.EventCache
}

// NewChangeStatusCommandHandler creates a handler for status transitions.
func NewChangeStatusCommandHandler(
	uowFactory OrderUoWFactory,
	identity ports.IdentityProvider,
	locks OrderLocks,
	transitionGuard services.TransitionGuard,
	sideEffects SideEffects,
	eventCache ports.EventCache,
) ChangeStatusCommandHandler {
	return ChangeStatusCommandHandler{
		uowFactory:  uowFactory,
		identity:    identity,
		locks:       locks,
		guard:       transitionGuard,
		sideEffects: sideEffects,
		eventCache:  eventCache,
	}
}

// Handle processes the transition proposal.
//
// Returns the guard's decision. A non-commit decision means nothing was
// mutated: no status change, no history entry, no event. On commit, the
// order state, history, and event trail are updated in one transaction and
// side effects are dispatched afterwards.
func (h *ChangeStatusCommandHandler) Handle(
	ctx context.Context,
	cmd ChangeStatusCommand,
) (services.Decision, error) {
	if err := cmd.Validate(); err != nil {
		return services.Decision{}, err
	}

	actor, err := h.identity.CurrentActor(ctx)
	if err != nil {
		return services.Decision{}, err
	}

	unlock := h.locks.Lock(cmd.OrderID())
	defer unlock()

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return services.Decision{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	wo, err := uow.WorkOrderRepository().Get(ctx, cmd.OrderID())
	if err != nil {
		return services.Decision{}, err
	}

	decision, err := h.guard.Propose(wo, cmd.Target(), cmd.Metadata(), cmd.CloseAnyway())
	if err != nil {
		return services.Decision{}, err
	}
	if !decision.IsCommit() {
		return decision, nil
	}

	previous := wo.Status()
	unpaidOverride := cmd.Target() == workorder.Delivered && cmd.CloseAnyway() && !wo.IsPaid()
	unpaidBalance := wo.BalanceDue()

	entry, err := workorder.NewStatusHistoryEntry(cmd.Target(), actor, cmd.Note(), cmd.CustomerVisible())
	if err != nil {
		return services.Decision{}, err
	}

	if err = wo.ChangeStatus(entry, cmd.Metadata()); err != nil {
		return services.Decision{}, err
	}

	if err = uow.WorkOrderRepository().Update(ctx, wo); err != nil {
		return services.Decision{}, err
	}

	if err = h.appendTransitionEvents(ctx, uow, wo, actor, cmd, previous, unpaidOverride, unpaidBalance); err != nil {
		return services.Decision{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return services.Decision{}, err
	}

	h.eventCache.Invalidate(wo.ID())
	h.sideEffects.StatusChanged(ctx, snapshotOrder(wo), actor)

	return decision, nil
}

// appendTransitionEvents writes the status_change event plus the auxiliary
// parts_info/external_shop events when the transition carried that data.
func (h *ChangeStatusCommandHandler) appendTransitionEvents(
	ctx context.Context,
	uow OrderUoW,
	wo *workorder.WorkOrder,
	actor kernel.Actor,
	cmd ChangeStatusCommand,
	previous workorder.Status,
	unpaidOverride bool,
	unpaidBalance kernel.Money,
) error {
	description := fmt.Sprintf("Status changed from %s to %s", previous.Label(), cmd.Target().Label())
	if unpaidOverride {
		description += fmt.Sprintf("; closed with unpaid balance %s (close_anyway override)", unpaidBalance)
	}

	metadata := map[string]any{
		"from": previous.String(),
		"to":   cmd.Target().String(),
	}
	if cmd.Note() != "" {
		metadata["note"] = cmd.Note()
	}

	ev, err := event.NewWorkOrderEvent(
		kernel.NewUUID(), wo.ID(), event.TypeStatusChange, description, actor, metadata)
	if err != nil {
		return err
	}
	if err = uow.EventRepository().Append(ctx, ev); err != nil {
		return err
	}

	meta := cmd.Metadata()
	switch cmd.Target() {
	case workorder.WaitingParts:
		if meta.Supplier != "" || meta.Tracking != "" || meta.PartName != "" {
			partsEv, partsErr := event.NewWorkOrderEvent(
				kernel.NewUUID(), wo.ID(), event.TypePartsInfo,
				fmt.Sprintf("Parts info recorded (device at %s)", meta.DeviceLocation),
				actor,
				map[string]any{
					"supplier":  meta.Supplier,
					"tracking":  meta.Tracking,
					"part_name": meta.PartName,
				})
			if partsErr != nil {
				return partsErr
			}
			if err = uow.EventRepository().Append(ctx, partsEv); err != nil {
				return err
			}
		}
	case workorder.ExternalRepair:
		shopEv, shopErr := event.NewWorkOrderEvent(
			kernel.NewUUID(), wo.ID(), event.TypeExternalShop,
			"Device sent to external shop", actor,
			map[string]any{
				"shop": meta.Shop,
				"work": meta.Work,
			})
		if shopErr != nil {
			return shopErr
		}
		if err = uow.EventRepository().Append(ctx, shopEv); err != nil {
			return err
		}
	}

	return nil
}

// snapshotOrder captures the committed-order view side effects work from.
func snapshotOrder(wo *workorder.WorkOrder) notifications.OrderContext {
	return notifications.OrderContext{
		OrderID:      wo.ID(),
		Status:       wo.Status(),
		CustomerID:   wo.CustomerID(),
		DeviceModel:  wo.DeviceModel(),
		TechnicianID: wo.Technician(),
		BalanceDue:   wo.BalanceDue(),
	}
}
