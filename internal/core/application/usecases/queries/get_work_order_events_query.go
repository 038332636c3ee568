package queries

import (
	"errors"
	"time"

	"github.com/smartfixosapp/smartfixos/internal/core/domain/model/kernel"
	"github.com/smartfixosapp/smartfixos/internal/pkg/guard"
)

var ErrGetWorkOrderEventsQueryIsNotConstructed = errors.New(
	"GetWorkOrderEventsQuery must be created via NewGetWorkOrderEventsQuery constructor",
)

// GetWorkOrderEventsQuery retrieves the activity trail of one order, oldest
// first.
type GetWorkOrderEventsQuery struct {
	orderID kernel.UUID

	guard guard.ConstructorGuard
}

// NewGetWorkOrderEventsQuery creates a query for an order's activity trail.
func NewGetWorkOrderEventsQuery(orderID kernel.UUID) (GetWorkOrderEventsQuery, error) {
	if err := orderID.Validate(); err != nil {
		return GetWorkOrderEventsQuery{}, err
	}

	return GetWorkOrderEventsQuery{
		orderID: orderID,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetWorkOrderEventsQuery) Validate() error {
	return q.guard.Validate(ErrGetWorkOrderEventsQueryIsNotConstructed)
}

// OrderID returns the order whose trail is requested.
func (q GetWorkOrderEventsQuery) OrderID() kernel.UUID {
	return q.orderID
}

// GetWorkOrderEventsQueryResponse is the read model of one trail entry.
type GetWorkOrderEventsQueryResponse struct {
	ID          kernel.UUID
	Type        string
	Description string
	ActorName   string
	Metadata    map[string]any
	OccurredAt  time.Time
}
