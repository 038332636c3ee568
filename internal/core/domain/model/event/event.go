// Package event provides the append-only work-order activity trail. Events
// record what happened to an order, who did it, and any structured detail.
// The single exception to append-only is operator-gated deletion of note
// events, enforced at the application layer.
package event

import (
	"errors"
	"fmt"
	"time"

	"github.com/smartfixosapp/smartfixos/internal/core/domain/model/kernel"
	"github.com/smartfixosapp/smartfixos/internal/pkg/errs"
	"github.com/smartfixosapp/smartfixos/internal/pkg/guard"
)

// ErrEventIsNotConstructed is returned when a WorkOrderEvent was not created
// via NewWorkOrderEvent.
var ErrEventIsNotConstructed = errors.New(
	"WorkOrderEvent must be created via NewWorkOrderEvent constructor")

// Type tags the kind of activity an event records.
type Type string

const (
	TypeStatusChange Type = "status_change"
	TypePayment      Type = "payment"
	TypeItemAdded    Type = "item_added"
	TypeItemRemoved  Type = "item_removed"
	TypeEmailSent    Type = "email_sent"
	TypeEmailFailed  Type = "email_failed"
	TypePartsInfo    Type = "parts_info"
	TypeExternalShop Type = "external_shop"
	TypeNote         Type = "note"
)

// Validate checks the type is one of the known tags.
func (t Type) Validate() error {
	switch t {
	case TypeStatusChange, TypePayment, TypeItemAdded, TypeItemRemoved,
		TypeEmailSent, TypeEmailFailed, TypePartsInfo, TypeExternalShop, TypeNote:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause(
			"event type", fmt.Errorf("%q is not a known event type", string(t)))
	}
}

// IsDeletable reports whether events of this type may ever be deleted.
// Only operator notes are; everything else is permanent.
func (t Type) IsDeletable() bool {
	return t == TypeNote
}

// WorkOrderEvent is one immutable entry in an order's activity trail,
// server-timestamped at creation.
type WorkOrderEvent struct {
	id          kernel.UUID
	orderID     kernel.UUID
	eventType   Type
	description string
	actor       kernel.Actor
	metadata    map[string]any
	occurredAt  time.Time

	guard guard.ConstructorGuard
}

// NewWorkOrderEvent creates an event stamped with the current server time.
// Metadata is optional structured detail (amounts, recipients, error text).
func NewWorkOrderEvent(
	id kernel.UUID,
	orderID kernel.UUID,
	eventType Type,
	description string,
	actor kernel.Actor,
	metadata map[string]any,
) (WorkOrderEvent, error) {
	ev := WorkOrderEvent{
		metadata:   metadata,
		occurredAt: time.Now().UTC(),
		guard:      guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		ev.setID(id),
		ev.setOrderID(orderID),
		ev.setType(eventType),
		ev.setDescription(description),
		ev.setActor(actor),
	); err != nil {
		return WorkOrderEvent{}, err
	}

	return ev, nil
}

// RestoreWorkOrderEvent rebuilds an event from persistence with its original
// timestamp.
func RestoreWorkOrderEvent(
	id kernel.UUID,
	orderID kernel.UUID,
	eventType Type,
	description string,
	actor kernel.Actor,
	metadata map[string]any,
	occurredAt time.Time,
) (WorkOrderEvent, error) {
	ev, err := NewWorkOrderEvent(id, orderID, eventType, description, actor, metadata)
	if err != nil {
		return WorkOrderEvent{}, err
	}
	ev.occurredAt = occurredAt
	return ev, nil
}

// Validate ensures the event was created through a constructor.
func (e WorkOrderEvent) Validate() error {
	return e.guard.Validate(ErrEventIsNotConstructed)
}

// ID returns the event's unique identifier.
func (e WorkOrderEvent) ID() kernel.UUID {
	return e.id
}

// OrderID returns the work order the event belongs to.
func (e WorkOrderEvent) OrderID() kernel.UUID {
	return e.orderID
}

// Type returns the event's activity tag.
func (e WorkOrderEvent) Type() Type {
	return e.eventType
}

// Description returns the human-readable event text.
func (e WorkOrderEvent) Description() string {
	return e.description
}

// Actor returns who caused the event.
func (e WorkOrderEvent) Actor() kernel.Actor {
	return e.actor
}

// Metadata returns the structured detail map, possibly nil.
func (e WorkOrderEvent) Metadata() map[string]any {
	return e.metadata
}

// OccurredAt returns the server timestamp of the event.
func (e WorkOrderEvent) OccurredAt() time.Time {
	return e.occurredAt
}

func (e *WorkOrderEvent) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	e.id = id
	return nil
}

func (e *WorkOrderEvent) setOrderID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	e.orderID = id
	return nil
}

func (e *WorkOrderEvent) setType(t Type) error {
	if err := t.Validate(); err != nil {
		return err
	}
	e.eventType = t
	return nil
}

func (e *WorkOrderEvent) setDescription(description string) error {
	if description == "" {
		return errs.NewValueIsRequiredError("event description")
	}
	e.description = description
	return nil
}

func (e *WorkOrderEvent) setActor(actor kernel.Actor) error {
	if err := actor.Validate(); err != nil {
		return err
	}
	e.actor = actor
	return nil
}
