package queries

import (
	"errors"

	"github.com/smartfixosapp/smartfixos/internal/core/domain/model/kernel"
	"github.com/smartfixosapp/smartfixos/internal/pkg/guard"
)

var ErrGetActiveWorkOrdersQueryIsNotConstructed = errors.New(
	"GetActiveWorkOrdersQuery must be created via NewGetActiveWorkOrdersQuery constructor",
)

// GetActiveWorkOrdersQuery retrieves all orders whose status is not closed.
// This is the workshop board view: everything still moving through the shop.
type GetActiveWorkOrdersQuery struct {
	guard guard.ConstructorGuard
}

// NewGetActiveWorkOrdersQuery creates a query for the active-order board.
func NewGetActiveWorkOrdersQuery() GetActiveWorkOrdersQuery {
	return GetActiveWorkOrdersQuery{guard: guard.NewConstructorGuard()}
}

// Validate ensures the query was created through the constructor.
func (q GetActiveWorkOrdersQuery) Validate() error {
	return q.guard.Validate(ErrGetActiveWorkOrdersQueryIsNotConstructed)
}

// GetActiveWorkOrdersQueryResponse is one row of the active-order board.
// TotalPaid is the stored running sum; the full ledger needs the detail view.
type GetActiveWorkOrdersQueryResponse struct {
	ID           kernel.UUID
	CustomerID   kernel.UUID
	DeviceModel  string
	TechnicianID *kernel.UUID
	Status       string
	StatusLabel  string
	TotalPaid    kernel.Money
}
