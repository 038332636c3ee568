// Package notifications implements the side-effect orchestrator: everything
// that happens after a work-order change is durably committed. Emails and
// staff notifications are best-effort; their failure is recorded and
// swallowed, never surfaced to the caller and never rolled back.
package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/smartfixosapp/smartfixos/internal/core/domain/model/event"
	"github.com/smartfixosapp/smartfixos/internal/core/domain/model/kernel"
	"github.com/smartfixosapp/smartfixos/internal/core/domain/model/payment"
	"github.com/smartfixosapp/smartfixos/internal/core/domain/model/workorder"
	"github.com/smartfixosapp/smartfixos/internal/core/ports"
)

// EventAppender appends follow-up events (email_sent, email_failed) outside
// the committing transaction. Append failures here are logged, not raised:
// the commit already happened.
type EventAppender interface {
	Append(ctx context.Context, ev event.WorkOrderEvent) error
}

// OrderContext is the committed-order snapshot the orchestrator works from.
// It is captured after commit so a concurrent edit cannot change what gets
// notified.
type OrderContext struct {
	OrderID      kernel.UUID
	Status       workorder.Status
	CustomerID   kernel.UUID
	DeviceModel  string
	TechnicianID *kernel.UUID
	BalanceDue   kernel.Money
}

// Orchestrator fans out best-effort side effects after a committed status
// transition or payment. Dispatch is asynchronous with a bounded per-call
// timeout so a slow mail server cannot stall the commit path; each step is
// fault-isolated from the others.
type Orchestrator struct {
	events    EventAppender
	email     ports.EmailSender
	notifier  ports.Notifier
	staff     ports.StaffDirectory
	customers ports.CustomerDirectory

	skipEmail   map[workorder.Status]bool
	callTimeout time.Duration
	fromName    string
	logger      *slog.Logger

	wg sync.WaitGroup
}

// NewOrchestrator creates an orchestrator.
//
// skipEmailStatuses lists target statuses for which customer email is
// considered non-actionable and silently skipped. callTimeout bounds every
// outbound call; exceeding it is a recorded failure, not a retry.
func NewOrchestrator(
	events EventAppender,
	email ports.EmailSender,
	notifier ports.Notifier,
	staff ports.StaffDirectory,
	customers ports.CustomerDirectory,
	skipEmailStatuses []workorder.Status,
	callTimeout time.Duration,
	fromName string,
	logger *slog.Logger,
) *Orchestrator {
	skip := make(map[workorder.Status]bool, len(skipEmailStatuses))
	for _, s := range skipEmailStatuses {
		skip[s] = true
	}

	return &Orchestrator{
		events:      events,
		email:       email,
		notifier:    notifier,
		staff:       staff,
		customers:   customers,
		skipEmail:   skip,
		callTimeout: callTimeout,
		fromName:    fromName,
		logger:      logger.With("component", "side_effect_orchestrator"),
	}
}

// StatusChanged dispatches side effects for a committed status transition:
// a customer email (unless the target status is in the skip set) and
// internal notifications to the assigned technician and all admins, minus
// the acting user. Returns immediately; Wait drains in-flight dispatches.
func (o *Orchestrator) StatusChanged(ctx context.Context, order OrderContext, actor kernel.Actor) {
	o.dispatch(ctx, func(ctx context.Context) {
		o.sendStatusEmail(ctx, order, actor)
		o.fanOutStaff(ctx, order, actor,
			"status_change",
			fmt.Sprintf("Order %s moved to %s", shortID(order.OrderID), order.Status.Label()),
			fmt.Sprintf("%s moved the order for %s to %s", actor.Name(), order.DeviceModel, order.Status.Label()),
		)
	})
}

// PaymentReceived dispatches side effects for a committed payment: a
// best-effort receipt email and internal notifications.
func (o *Orchestrator) PaymentReceived(
	ctx context.Context,
	order OrderContext,
	actor kernel.Actor,
	amount kernel.Money,
	method payment.Method,
	mode payment.Mode,
) {
	o.dispatch(ctx, func(ctx context.Context) {
		o.sendReceiptEmail(ctx, order, actor, amount, method, mode)
		o.fanOutStaff(ctx, order, actor,
			"payment",
			fmt.Sprintf("Payment on order %s", shortID(order.OrderID)),
			fmt.Sprintf("%s took a %s %s payment (%s); balance %s",
				actor.Name(), amount, method, mode, order.BalanceDue),
		)
	})
}

// Wait blocks until every in-flight dispatch has finished. Used on shutdown
// and in tests; the commit path never waits.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

// dispatch runs fn on its own goroutine, detached from the caller's
// cancellation. The commit happened; side effects get their own bounded
// lifetime.
func (o *Orchestrator) dispatch(ctx context.Context, fn func(ctx context.Context)) {
	detached := context.WithoutCancel(ctx)

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				o.logger.Error("side-effect dispatch panicked", "panic", r)
			}
		}()
		fn(detached)
	}()
}

func (o *Orchestrator) sendStatusEmail(ctx context.Context, order OrderContext, actor kernel.Actor) {
	if o.skipEmail[order.Status] {
		return
	}

	subject := fmt.Sprintf("Your repair is now: %s", order.Status.Label())
	body := fmt.Sprintf("Hello,\n\nYour %s repair order is now %s.\n\n%s",
		order.DeviceModel, order.Status.Label(), o.fromName)

	o.sendEmail(ctx, order, actor, subject, body)
}

func (o *Orchestrator) sendReceiptEmail(
	ctx context.Context,
	order OrderContext,
	actor kernel.Actor,
	amount kernel.Money,
	method payment.Method,
	mode payment.Mode,
) {
	subject := "Payment received"
	body := fmt.Sprintf("Hello,\n\nWe received your %s payment of %s (%s) for the %s repair.\nRemaining balance: %s.\n\n%s",
		method, amount, mode, order.DeviceModel, order.BalanceDue, o.fromName)

	o.sendEmail(ctx, order, actor, subject, body)
}

// sendEmail attempts one customer email and records the outcome as an
// email_sent or email_failed event. Nothing propagates to the caller.
func (o *Orchestrator) sendEmail(ctx context.Context, order OrderContext, actor kernel.Actor, subject, body string) {
	callCtx, cancel := context.WithTimeout(ctx, o.callTimeout)
	defer cancel()

	customer, err := o.customers.Get(callCtx, order.CustomerID)
	if err != nil {
		o.recordEmailOutcome(ctx, order, actor, subject, fmt.Errorf("customer lookup: %w", err))
		return
	}
	if customer.Email == "" {
		return
	}

	err = o.email.Send(callCtx, ports.EmailMessage{
		To:       customer.Email,
		Subject:  subject,
		Body:     body,
		FromName: o.fromName,
	})
	o.recordEmailOutcome(ctx, order, actor, subject, err)
}

func (o *Orchestrator) recordEmailOutcome(ctx context.Context, order OrderContext, actor kernel.Actor, subject string, sendErr error) {
	eventType := event.TypeEmailSent
	description := fmt.Sprintf("Email sent to customer: %s", subject)
	var metadata map[string]any

	if sendErr != nil {
		eventType = event.TypeEmailFailed
		description = fmt.Sprintf("Email to customer failed: %s", subject)
		metadata = map[string]any{"error": sendErr.Error()}
		o.logger.WarnContext(ctx, "Customer email failed", "order_id", order.OrderID.String(), "error", sendErr)
	}

	ev, err := event.NewWorkOrderEvent(
		kernel.NewUUID(), order.OrderID, eventType, description, actor, metadata)
	if err != nil {
		o.logger.ErrorContext(ctx, "Could not build email outcome event", "error", err)
		return
	}

	appendCtx, cancel := context.WithTimeout(ctx, o.callTimeout)
	defer cancel()
	if err := o.events.Append(appendCtx, ev); err != nil {
		o.logger.ErrorContext(ctx, "Could not append email outcome event",
			"order_id", order.OrderID.String(), "error", err)
	}
}

// fanOutStaff notifies the assigned technician (if any, and not the actor)
// and every admin account except the actor. Each send is independent.
func (o *Orchestrator) fanOutStaff(ctx context.Context, order OrderContext, actor kernel.Actor, notifType, title, body string) {
	recipients := make(map[kernel.UUID]bool)

	if order.TechnicianID != nil && !order.TechnicianID.IsEqual(actor.ID()) {
		recipients[*order.TechnicianID] = true
	}

	lookupCtx, cancel := context.WithTimeout(ctx, o.callTimeout)
	admins, err := o.staff.Admins(lookupCtx)
	cancel()
	if err != nil {
		o.logger.WarnContext(ctx, "Admin lookup for notification fan-out failed", "error", err)
	}
	for _, admin := range admins {
		if !admin.ID.IsEqual(actor.ID()) {
			recipients[admin.ID] = true
		}
	}

	for recipientID := range recipients {
		sendCtx, cancelSend := context.WithTimeout(ctx, o.callTimeout)
		err := o.notifier.Notify(sendCtx, ports.Notification{
			RecipientID:   recipientID,
			Type:          notifType,
			Title:         title,
			Body:          body,
			RelatedEntity: order.OrderID,
			Priority:      "normal",
			Metadata:      map[string]any{"status": order.Status.String()},
		})
		cancelSend()
		if err != nil {
			o.logger.WarnContext(ctx, "Staff notification failed",
				"recipient_id", recipientID.String(), "error", err)
		}
	}
}

func shortID(id kernel.UUID) string {
	s := id.String()
	if len(s) > 8 {
		return s[:8]
	}
	return s
}
