package queries

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/smartfixosapp/smartfixos/internal/core/domain/model/kernel"
	"github.com/smartfixosapp/smartfixos/internal/core/domain/model/workorder"
)

// GetActiveWorkOrdersQueryHandler reads the active-order board with raw SQL.
type GetActiveWorkOrdersQueryHandler struct {
	db *gorm.DB
}

// NewGetActiveWorkOrdersQueryHandler creates a handler for the board query.
func NewGetActiveWorkOrdersQueryHandler(db *gorm.DB) GetActiveWorkOrdersQueryHandler {
	return GetActiveWorkOrdersQueryHandler{db: db}
}

// Handle executes the query. Closed orders (delivered, completed, cancelled)
// are filtered out; results are sorted by order id for stable output.
func (h GetActiveWorkOrdersQueryHandler) Handle(
	ctx context.Context,
	query GetActiveWorkOrdersQuery,
) ([]GetActiveWorkOrdersQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	orders := make([]GetActiveWorkOrdersQueryResponse, 0)

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			customer_id,
			device_model,
			technician_id,
			status,
			total_paid
		FROM work_orders
		WHERE status NOT IN (?, ?, ?)
		ORDER BY id
	`, workorder.Delivered.String(), workorder.Completed.String(), workorder.Cancelled.String()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id, customerID uuid.UUID
		var technicianID uuid.NullUUID
		var resp GetActiveWorkOrdersQueryResponse
		var statusStr string
		var totalPaid decimal.Decimal

		err = rows.Scan(
			&id,
			&customerID,
			&resp.DeviceModel,
			&technicianID,
			&statusStr,
			&totalPaid,
		)
		if err != nil {
			return nil, err
		}

		if resp.ID, err = kernel.UUIDFromBytes(id[:]); err != nil {
			return nil, err
		}
		if resp.CustomerID, err = kernel.UUIDFromBytes(customerID[:]); err != nil {
			return nil, err
		}
		if technicianID.Valid {
			tID, tErr := kernel.UUIDFromBytes(technicianID.UUID[:])
			if tErr != nil {
				return nil, tErr
			}
			resp.TechnicianID = &tID
		}

		status, statusErr := workorder.StatusFromString(statusStr)
		if statusErr != nil {
			return nil, statusErr
		}
		resp.Status = status.String()
		resp.StatusLabel = status.Label()
		resp.TotalPaid = kernel.NewMoney(totalPaid)

		orders = append(orders, resp)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return orders, nil
}
