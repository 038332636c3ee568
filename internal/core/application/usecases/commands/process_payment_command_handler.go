package commands

import (
	"context"
	"fmt"

	"github.com/smartfixosapp/smartfixos/internal/core/domain/model/event"
	"github.com/smartfixosapp/smartfixos/internal/core/domain/model/kernel"
	"github.com/smartfixosapp/smartfixos/internal/core/domain/model/payment"
	"github.com/smartfixosapp/smartfixos/internal/core/domain/model/workorder"
	"github.com/smartfixosapp/smartfixos/internal/core/domain/services"
	"github.com/smartfixosapp/smartfixos/internal/core/ports"
)

// ProcessPaymentResult reports what a committed payment did to the order.
type ProcessPaymentResult struct {
	// Record is the stored payment record, including any change given.
	Record payment.PaymentRecord

	// Outcome is the ledger result: new paid total, new balance, settled flag.
	Outcome services.PaymentOutcome

	// AutoTransitioned reports whether a full-mode settling payment moved
	// the order to ready-for-pickup.
	AutoTransitioned bool
}

// ProcessPaymentCommandHandler records payments and deposits against a work
// order. It composes the ledger reconciler (amount validation, new totals),
// the transition guard (optional automatic move to ready-for-pickup), and
// the side-effect orchestrator (receipt email, staff notifications).
type ProcessPaymentCommandHandler struct {
	uowFactory  PaymentUoWFactory
	identity    ports.IdentityProvider
	locks       OrderLocks
	reconciler  services.LedgerReconciler
	guard       services.TransitionGuard
	sideEffects SideEffects
	eventCache  ports.EventCache
}

// NewProcessPaymentCommandHandler creates a handler for payment processing.
func NewProcessPaymentCommandHandler(
	uowFactory PaymentUoWFactory,
	identity ports.IdentityProvider,
	locks OrderLocks,
	reconciler services.LedgerReconciler,
	transitionGuard services.TransitionGuard,
	sideEffects SideEffects,
	eventCache ports.EventCache,
) ProcessPaymentCommandHandler {
	return ProcessPaymentCommandHandler{
		uowFactory:  uowFactory,
		identity:    identity,
		locks:       locks,
		reconciler:  reconciler,
		guard:       transitionGuard,
		sideEffects: sideEffects,
		eventCache:  eventCache,
	}
}

// Handle records the payment.
//
// Deposit-mode payments never change the status. A full-mode payment that
// settles the balance auto-transitions a non-closed order to
// ready-for-pickup. Cash tendered above the balance in full mode produces
// change; the applied amount never exceeds the balance. The payment event is
// always appended in the same transaction as the payment itself.
func (h *ProcessPaymentCommandHandler) Handle(
	ctx context.Context,
	cmd ProcessPaymentCommand,
) (ProcessPaymentResult, error) {
	if err := cmd.Validate(); err != nil {
		return ProcessPaymentResult{}, err
	}

	actor, err := h.identity.CurrentActor(ctx)
	if err != nil {
		return ProcessPaymentResult{}, err
	}

	unlock := h.locks.Lock(cmd.OrderID())
	defer unlock()

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return ProcessPaymentResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	wo, err := uow.WorkOrderRepository().Get(ctx, cmd.OrderID())
	if err != nil {
		return ProcessPaymentResult{}, err
	}

	applied, change := splitTender(cmd, wo.BalanceDue())

	outcome, err := h.reconciler.ApplyPayment(wo, applied, cmd.Mode())
	if err != nil {
		return ProcessPaymentResult{}, err
	}

	if err = wo.RegisterPayment(applied); err != nil {
		return ProcessPaymentResult{}, err
	}

	record, err := payment.NewPaymentRecord(
		kernel.NewUUID(), wo.ID(), applied, cmd.Method(), cmd.Mode(), change, actor)
	if err != nil {
		return ProcessPaymentResult{}, err
	}

	if err = uow.PaymentRepository().Add(ctx, record); err != nil {
		return ProcessPaymentResult{}, err
	}

	ev, err := event.NewWorkOrderEvent(
		kernel.NewUUID(), wo.ID(), event.TypePayment,
		fmt.Sprintf("Payment of %s received (%s, %s); balance %s",
			applied, cmd.Method(), cmd.Mode(), outcome.NewBalance),
		actor,
		map[string]any{
			"amount":  applied.String(),
			"method":  string(cmd.Method()),
			"mode":    string(cmd.Mode()),
			"balance": outcome.NewBalance.String(),
		})
	if err != nil {
		return ProcessPaymentResult{}, err
	}
	if err = uow.EventRepository().Append(ctx, ev); err != nil {
		return ProcessPaymentResult{}, err
	}

	autoTransitioned, err := h.maybeAutoTransition(ctx, uow, wo, actor, cmd.Mode(), outcome)
	if err != nil {
		return ProcessPaymentResult{}, err
	}

	if err = uow.WorkOrderRepository().Update(ctx, wo); err != nil {
		return ProcessPaymentResult{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return ProcessPaymentResult{}, err
	}

	h.eventCache.Invalidate(wo.ID())
	h.sideEffects.PaymentReceived(ctx, snapshotOrder(wo), actor, applied, cmd.Method(), cmd.Mode())
	if autoTransitioned {
		h.sideEffects.StatusChanged(ctx, snapshotOrder(wo), actor)
	}

	return ProcessPaymentResult{
		Record:           record,
		Outcome:          outcome,
		AutoTransitioned: autoTransitioned,
	}, nil
}

// maybeAutoTransition moves a settled order to ready-for-pickup after a
// full-mode payment. Deposits never transition, closed orders never
// transition, and an order already ready for pickup stays put.
func (h *ProcessPaymentCommandHandler) maybeAutoTransition(
	ctx context.Context,
	uow PaymentUoW,
	wo *workorder.WorkOrder,
	actor kernel.Actor,
	mode payment.Mode,
	outcome services.PaymentOutcome,
) (bool, error) {
	if mode != payment.ModeFull || !outcome.IsPaid {
		return false, nil
	}
	if wo.Status().IsTerminal() || wo.Status() == workorder.ReadyForPickup {
		return false, nil
	}

	decision, err := h.guard.Propose(wo, workorder.ReadyForPickup, workorder.StatusMetadata{}, false)
	if err != nil || !decision.IsCommit() {
		// The guard refusing an automatic courtesy move is not a payment
		// failure; the payment stands.
		return false, nil
	}

	previous := wo.Status()
	entry, err := workorder.NewStatusHistoryEntry(
		workorder.ReadyForPickup, actor, "Paid in full", true)
	if err != nil {
		return false, err
	}

	if err = wo.ChangeStatus(entry, workorder.StatusMetadata{}); err != nil {
		return false, err
	}

	ev, err := event.NewWorkOrderEvent(
		kernel.NewUUID(), wo.ID(), event.TypeStatusChange,
		fmt.Sprintf("Status changed from %s to %s (paid in full)",
			previous.Label(), workorder.ReadyForPickup.Label()),
		actor,
		map[string]any{"from": previous.String(), "to": workorder.ReadyForPickup.String()})
	if err != nil {
		return false, err
	}
	if err = uow.EventRepository().Append(ctx, ev); err != nil {
		return false, err
	}

	return true, nil
}

// splitTender divides the tendered amount into the applied payment and cash
// change. Full-mode overpayment settles the balance and returns the rest;
// anything else applies as tendered.
func splitTender(cmd ProcessPaymentCommand, balance kernel.Money) (applied, change kernel.Money) {
	if cmd.Mode() == payment.ModeFull && cmd.Amount().GreaterThan(balance) && balance.IsPositive() {
		return balance, cmd.Amount().Sub(balance)
	}
	return cmd.Amount(), kernel.ZeroMoney()
}
