// Package queries contains read-only operations over the work-order store.
// Query handlers bypass the aggregate write model and read with raw SQL,
// returning flat response structs shaped for presentation.
package queries

import (
	"errors"
	"time"

	"github.com/smartfixosapp/smartfixos/internal/core/domain/model/kernel"
	"github.com/smartfixosapp/smartfixos/internal/pkg/guard"
)

var ErrGetWorkOrderQueryIsNotConstructed = errors.New(
	"GetWorkOrderQuery must be created via NewGetWorkOrderQuery constructor",
)

// GetWorkOrderQuery retrieves one work order with its line items, derived
// ledger, and status history.
type GetWorkOrderQuery struct {
	orderID kernel.UUID

	guard guard.ConstructorGuard
}

// NewGetWorkOrderQuery creates a query for a single work order.
func NewGetWorkOrderQuery(orderID kernel.UUID) (GetWorkOrderQuery, error) {
	if err := orderID.Validate(); err != nil {
		return GetWorkOrderQuery{}, err
	}

	return GetWorkOrderQuery{
		orderID: orderID,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetWorkOrderQuery) Validate() error {
	return q.guard.Validate(ErrGetWorkOrderQueryIsNotConstructed)
}

// OrderID returns the requested work order id.
func (q GetWorkOrderQuery) OrderID() kernel.UUID {
	return q.orderID
}

// LineItemResponse is the read model of one billed item.
type LineItemResponse struct {
	ID        kernel.UUID
	Kind      string
	Name      string
	UnitPrice kernel.Money
	Quantity  int
	Total     kernel.Money
}

// HistoryEntryResponse is the read model of one committed transition.
type HistoryEntryResponse struct {
	Status          string
	StatusLabel     string
	OccurredAt      time.Time
	ActorName       string
	Note            string
	CustomerVisible bool
}

// GetWorkOrderQueryResponse is the full read model of a work order. The
// financial fields are derived at read time; the device secret is never
// exposed, only its presence as a redaction marker.
type GetWorkOrderQueryResponse struct {
	ID             kernel.UUID
	CustomerID     kernel.UUID
	DeviceID       kernel.UUID
	DeviceModel    string
	TechnicianID   *kernel.UUID
	DeviceSecret   string
	Status         string
	StatusLabel    string
	StatusMetadata map[string]any
	LineItems      []LineItemResponse
	Subtotal       kernel.Money
	Tax            kernel.Money
	Total          kernel.Money
	TotalPaid      kernel.Money
	BalanceDue     kernel.Money
	History        []HistoryEntryResponse
	Version        int
}
