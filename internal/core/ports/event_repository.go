package ports

import (
	"context"

	"github.com/smartfixosapp/smartfixos/internal/core/domain/model/event"
	"github.com/smartfixosapp/smartfixos/internal/core/domain/model/kernel"
)

// EventRepository defines the persistence contract for the append-only
// work-order activity trail.
type EventRepository interface {
	// Append stores a new event. Events are immutable once stored.
	Append(ctx context.Context, ev event.WorkOrderEvent) error

	// Get retrieves an event by its unique identifier.
	Get(ctx context.Context, id kernel.UUID) (event.WorkOrderEvent, error)

	// GetByOrder retrieves all events for an order, oldest first.
	GetByOrder(ctx context.Context, orderID kernel.UUID) ([]event.WorkOrderEvent, error)

	// Delete removes an event. The application layer permits this only for
	// note-typed events behind an operator credential; the repository
	// performs the removal without re-checking policy.
	Delete(ctx context.Context, id kernel.UUID) error
}
