package ports

import (
	"context"
	"time"

	"github.com/smartfixosapp/smartfixos/internal/core/domain/model/event"
	"github.com/smartfixosapp/smartfixos/internal/core/domain/model/kernel"
)

// IdentityProvider resolves the staff member performing the current request.
// Its failure aborts the whole operation; mutations are never attempted
// without an identified actor.
type IdentityProvider interface {
	CurrentActor(ctx context.Context) (kernel.Actor, error)
}

// EmailMessage is an outbound customer email.
type EmailMessage struct {
	To       string
	Subject  string
	Body     string
	FromName string
}

// EmailSender delivers customer emails. Calls are best-effort: the caller
// bounds them with a timeout and records failures as events instead of
// propagating them.
type EmailSender interface {
	Send(ctx context.Context, msg EmailMessage) error
}

// Notification is an internal staff notification.
type Notification struct {
	RecipientID   kernel.UUID
	Type          string
	Title         string
	Body          string
	RelatedEntity kernel.UUID
	Priority      string
	Metadata      map[string]any
}

// Notifier fans out internal notifications, one call per recipient.
// Each send is independent; one recipient's failure must not block others.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// StaffAccount is a minimal view of a staff member for notification fan-out.
type StaffAccount struct {
	ID    kernel.UUID
	Name  string
	Email string
	Role  string
}

// Customer is a minimal view of a customer record for outbound email.
type Customer struct {
	ID    kernel.UUID
	Name  string
	Email string
	Phone string
}

// CustomerDirectory looks up customer contact details. Customer CRUD itself
// is outside this core; only the read needed for notifications lives here.
type CustomerDirectory interface {
	Get(ctx context.Context, id kernel.UUID) (Customer, error)
}

// StaffDirectory looks up staff accounts for notification targeting.
type StaffDirectory interface {
	// Admins returns all admin and manager accounts.
	Admins(ctx context.Context) ([]StaffAccount, error)

	// Get returns one staff account by id.
	Get(ctx context.Context, id kernel.UUID) (StaffAccount, error)
}

// EventCache is an explicit TTL cache for per-order event history, injected
// as a dependency rather than held as ambient global state.
type EventCache interface {
	Get(orderID kernel.UUID) ([]event.WorkOrderEvent, bool)
	Set(orderID kernel.UUID, events []event.WorkOrderEvent, ttl time.Duration)
	Invalidate(orderID kernel.UUID)
}
