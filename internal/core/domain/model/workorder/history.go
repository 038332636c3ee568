package workorder

import (
	"errors"
	"time"

	"github.com/smartfixosapp/smartfixos/internal/core/domain/model/kernel"
	"github.com/smartfixosapp/smartfixos/internal/pkg/guard"
)

// ErrHistoryEntryIsNotConstructed is returned when a StatusHistoryEntry was
// not created via NewStatusHistoryEntry.
var ErrHistoryEntryIsNotConstructed = errors.New(
	"StatusHistoryEntry must be created via NewStatusHistoryEntry constructor")

// StatusHistoryEntry records one committed status transition. Entries are
// immutable once appended and the history only ever grows.
type StatusHistoryEntry struct {
	status          Status
	occurredAt      time.Time
	actor           kernel.Actor
	note            string
	customerVisible bool

	guard guard.ConstructorGuard
}

// NewStatusHistoryEntry creates a history entry stamped with the given actor
// and the current server time. The note is optional; customerVisible controls
// whether the entry shows on the customer-facing timeline.
func NewStatusHistoryEntry(status Status, actor kernel.Actor, note string, customerVisible bool) (StatusHistoryEntry, error) {
	if err := status.Validate(); err != nil {
		return StatusHistoryEntry{}, err
	}
	if err := actor.Validate(); err != nil {
		return StatusHistoryEntry{}, err
	}

	return StatusHistoryEntry{
		status:          status,
		occurredAt:      time.Now().UTC(),
		actor:           actor,
		note:            note,
		customerVisible: customerVisible,
		guard:           guard.NewConstructorGuard(),
	}, nil
}

// RestoreStatusHistoryEntry rebuilds an entry from persistence with its
// original timestamp.
func RestoreStatusHistoryEntry(
	status Status,
	occurredAt time.Time,
	actor kernel.Actor,
	note string,
	customerVisible bool,
) (StatusHistoryEntry, error) {
	entry, err := NewStatusHistoryEntry(status, actor, note, customerVisible)
	if err != nil {
		return StatusHistoryEntry{}, err
	}
	entry.occurredAt = occurredAt
	return entry, nil
}

// Validate ensures the entry was created through a constructor.
func (e StatusHistoryEntry) Validate() error {
	return e.guard.Validate(ErrHistoryEntryIsNotConstructed)
}

// Status returns the status the order entered.
func (e StatusHistoryEntry) Status() Status {
	return e.status
}

// OccurredAt returns the server timestamp of the transition.
func (e StatusHistoryEntry) OccurredAt() time.Time {
	return e.occurredAt
}

// Actor returns who performed the transition.
func (e StatusHistoryEntry) Actor() kernel.Actor {
	return e.actor
}

// Note returns the optional transition note.
func (e StatusHistoryEntry) Note() string {
	return e.note
}

// CustomerVisible reports whether the entry shows on the customer timeline.
func (e StatusHistoryEntry) CustomerVisible() bool {
	return e.customerVisible
}
