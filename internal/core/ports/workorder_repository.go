package ports

import (
	"context"

	"github.com/smartfixosapp/smartfixos/internal/core/domain/model/kernel"
	"github.com/smartfixosapp/smartfixos/internal/core/domain/model/workorder"
)

// WorkOrderRepository defines the persistence contract for work-order
// aggregates.
type WorkOrderRepository interface {
	// Add persists a new work order. The order must be valid and not
	// already exist in the repository.
	Add(ctx context.Context, aggregate *workorder.WorkOrder) error

	// Update persists changes to an existing work order using a
	// compare-and-swap on the aggregate version. A stale version is
	// rejected with a VersionIsInvalidError instead of overwriting.
	Update(ctx context.Context, aggregate *workorder.WorkOrder) error

	// Get retrieves a work order by its unique identifier, including its
	// line items and full status history.
	Get(ctx context.Context, id kernel.UUID) (*workorder.WorkOrder, error)

	// GetAllActive retrieves all orders whose status is not closed.
	GetAllActive(ctx context.Context) ([]*workorder.WorkOrder, error)
}
