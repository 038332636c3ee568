// Package eventrepo provides persistence for the append-only work-order
// activity trail.
package eventrepo

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/smartfixosapp/smartfixos/internal/core/domain/model/event"
	"github.com/smartfixosapp/smartfixos/internal/core/domain/model/kernel"
)

// WorkOrderEventDTO represents one activity-trail entry. The actor is
// denormalized into the row, like the status history table.
type WorkOrderEventDTO struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID     uuid.UUID `gorm:"type:uuid;index"`
	EventType   string    `gorm:"index"`
	Description string
	ActorID     uuid.UUID `gorm:"type:uuid"`
	ActorName   string
	ActorEmail  string
	Metadata    datatypes.JSONMap
	OccurredAt  time.Time `gorm:"index"`
}

// TableName specifies the database table name for work-order events.
func (WorkOrderEventDTO) TableName() string {
	return "work_order_events"
}

// fromDomain converts an event to its database representation.
func fromDomain(ev event.WorkOrderEvent) WorkOrderEventDTO {
	var metadata datatypes.JSONMap
	if m := ev.Metadata(); m != nil {
		metadata = datatypes.JSONMap(m)
	}

	return WorkOrderEventDTO{
		ID:          ev.ID().Bytes(),
		OrderID:     ev.OrderID().Bytes(),
		EventType:   string(ev.Type()),
		Description: ev.Description(),
		ActorID:     ev.Actor().ID().Bytes(),
		ActorName:   ev.Actor().Name(),
		ActorEmail:  ev.Actor().Email(),
		Metadata:    metadata,
		OccurredAt:  ev.OccurredAt(),
	}
}

// toDomain converts a database row back into an event entity.
func toDomain(dto WorkOrderEventDTO) (event.WorkOrderEvent, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return event.WorkOrderEvent{}, err
	}
	orderID, err := kernel.UUIDFromBytes(dto.OrderID[:])
	if err != nil {
		return event.WorkOrderEvent{}, err
	}
	actorID, err := kernel.UUIDFromBytes(dto.ActorID[:])
	if err != nil {
		return event.WorkOrderEvent{}, err
	}
	actor, err := kernel.NewActor(actorID, dto.ActorName, dto.ActorEmail)
	if err != nil {
		return event.WorkOrderEvent{}, err
	}

	var metadata map[string]any
	if dto.Metadata != nil {
		metadata = map[string]any(dto.Metadata)
	}

	return event.RestoreWorkOrderEvent(
		id, orderID, event.Type(dto.EventType), dto.Description, actor, metadata, dto.OccurredAt)
}
