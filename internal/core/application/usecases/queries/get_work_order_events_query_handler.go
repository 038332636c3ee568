package queries

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/smartfixosapp/smartfixos/internal/core/domain/model/event"
	"github.com/smartfixosapp/smartfixos/internal/core/domain/model/kernel"
	"github.com/smartfixosapp/smartfixos/internal/core/ports"
)

// GetWorkOrderEventsQueryHandler reads an order's activity trail through an
// explicit TTL cache. Command handlers invalidate the cached trail on every
// mutation, so a hit is never stale; a miss falls through to raw SQL and
// repopulates the cache.
type GetWorkOrderEventsQueryHandler struct {
	db    *gorm.DB
	cache ports.EventCache
	ttl   time.Duration
}

// NewGetWorkOrderEventsQueryHandler creates a handler for cached trail reads.
func NewGetWorkOrderEventsQueryHandler(
	db *gorm.DB,
	cache ports.EventCache,
	ttl time.Duration,
) GetWorkOrderEventsQueryHandler {
	return GetWorkOrderEventsQueryHandler{db: db, cache: cache, ttl: ttl}
}

// Handle executes the query, serving from cache when possible.
func (h GetWorkOrderEventsQueryHandler) Handle(
	ctx context.Context,
	query GetWorkOrderEventsQuery,
) ([]GetWorkOrderEventsQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	if cached, ok := h.cache.Get(query.OrderID()); ok {
		return toResponses(cached), nil
	}

	events, err := h.loadEvents(ctx, query.OrderID())
	if err != nil {
		return nil, err
	}

	h.cache.Set(query.OrderID(), events, h.ttl)
	return toResponses(events), nil
}

func (h GetWorkOrderEventsQueryHandler) loadEvents(
	ctx context.Context,
	orderID kernel.UUID,
) ([]event.WorkOrderEvent, error) {
	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			event_type,
			description,
			actor_id,
			actor_name,
			actor_email,
			metadata,
			occurred_at
		FROM work_order_events
		WHERE order_id = ?
		ORDER BY occurred_at, id
	`, orderID.Bytes()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]event.WorkOrderEvent, 0)

	for rows.Next() {
		var id, actorID uuid.UUID
		var eventType, description, actorName, actorEmail string
		var metadata datatypes.JSONMap
		var occurredAt time.Time

		err = rows.Scan(
			&id,
			&eventType,
			&description,
			&actorID,
			&actorName,
			&actorEmail,
			&metadata,
			&occurredAt,
		)
		if err != nil {
			return nil, err
		}

		eventID, idErr := kernel.UUIDFromBytes(id[:])
		if idErr != nil {
			return nil, idErr
		}
		aID, aErr := kernel.UUIDFromBytes(actorID[:])
		if aErr != nil {
			return nil, aErr
		}
		actor, actorErr := kernel.NewActor(aID, actorName, actorEmail)
		if actorErr != nil {
			return nil, actorErr
		}

		ev, evErr := event.RestoreWorkOrderEvent(
			eventID, orderID, event.Type(eventType), description, actor,
			map[string]any(metadata), occurredAt)
		if evErr != nil {
			return nil, evErr
		}

		events = append(events, ev)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return events, nil
}

func toResponses(events []event.WorkOrderEvent) []GetWorkOrderEventsQueryResponse {
	responses := make([]GetWorkOrderEventsQueryResponse, 0, len(events))
	for _, ev := range events {
		responses = append(responses, GetWorkOrderEventsQueryResponse{
			ID:          ev.ID(),
			Type:        string(ev.Type()),
			Description: ev.Description(),
			ActorName:   ev.Actor().Name(),
			Metadata:    ev.Metadata(),
			OccurredAt:  ev.OccurredAt(),
		})
	}
	return responses
}
