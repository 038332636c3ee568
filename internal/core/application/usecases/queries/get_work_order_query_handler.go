package queries

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/smartfixosapp/smartfixos/internal/core/domain/model/kernel"
	"github.com/smartfixosapp/smartfixos/internal/core/domain/model/workorder"
	"github.com/smartfixosapp/smartfixos/internal/pkg/errs"
	"github.com/smartfixosapp/smartfixos/internal/pkg/secrets"
)

// GetWorkOrderQueryHandler reads one work order with raw SQL and derives its
// financial view on the way out.
type GetWorkOrderQueryHandler struct {
	db *gorm.DB
}

// NewGetWorkOrderQueryHandler creates a handler for single-order reads.
func NewGetWorkOrderQueryHandler(db *gorm.DB) GetWorkOrderQueryHandler {
	return GetWorkOrderQueryHandler{db: db}
}

// Handle executes the query. The ledger (subtotal, tax, total, balance) is
// computed from the line-item rows, never read from a stored column.
func (h GetWorkOrderQueryHandler) Handle(
	ctx context.Context,
	query GetWorkOrderQuery,
) (GetWorkOrderQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetWorkOrderQueryResponse{}, err
	}

	var resp GetWorkOrderQueryResponse
	var discount decimal.Decimal
	var taxRate decimal.Decimal

	row := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			customer_id,
			device_id,
			device_model,
			technician_id,
			device_secret,
			status,
			status_metadata,
			discount,
			tax_rate,
			total_paid,
			version
		FROM work_orders
		WHERE id = ?
	`, query.OrderID().Bytes()).Row()

	var id, customerID, deviceID uuid.UUID
	var technicianID uuid.NullUUID
	var deviceSecret []byte
	var status string
	var metadata datatypes.JSONMap
	var totalPaid decimal.Decimal

	err := row.Scan(
		&id,
		&customerID,
		&deviceID,
		&resp.DeviceModel,
		&technicianID,
		&deviceSecret,
		&status,
		&metadata,
		&discount,
		&taxRate,
		&totalPaid,
		&resp.Version,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return GetWorkOrderQueryResponse{}, errs.NewObjectNotFoundError(
				"work order", query.OrderID().String())
		}
		return GetWorkOrderQueryResponse{}, err
	}

	if resp.ID, err = kernel.UUIDFromBytes(id[:]); err != nil {
		return GetWorkOrderQueryResponse{}, err
	}
	if resp.CustomerID, err = kernel.UUIDFromBytes(customerID[:]); err != nil {
		return GetWorkOrderQueryResponse{}, err
	}
	if resp.DeviceID, err = kernel.UUIDFromBytes(deviceID[:]); err != nil {
		return GetWorkOrderQueryResponse{}, err
	}
	if technicianID.Valid {
		tID, tErr := kernel.UUIDFromBytes(technicianID.UUID[:])
		if tErr != nil {
			return GetWorkOrderQueryResponse{}, tErr
		}
		resp.TechnicianID = &tID
	}
	if len(deviceSecret) > 0 {
		resp.DeviceSecret = secrets.Redacted
	}

	parsedStatus, err := workorder.StatusFromString(status)
	if err != nil {
		return GetWorkOrderQueryResponse{}, err
	}
	resp.Status = parsedStatus.String()
	resp.StatusLabel = parsedStatus.Label()
	resp.StatusMetadata = map[string]any(metadata)
	resp.TotalPaid = kernel.NewMoney(totalPaid)

	items, domainItems, err := h.loadLineItems(ctx, query.OrderID())
	if err != nil {
		return GetWorkOrderQueryResponse{}, err
	}
	resp.LineItems = items

	ledger := workorder.ComputeLedger(domainItems, kernel.NewMoney(discount), taxRate)
	resp.Subtotal = ledger.Subtotal
	resp.Tax = ledger.Tax
	resp.Total = ledger.Total
	resp.BalanceDue = ledger.Total.Sub(resp.TotalPaid).FloorZero()

	if resp.History, err = h.loadHistory(ctx, query.OrderID()); err != nil {
		return GetWorkOrderQueryResponse{}, err
	}

	return resp, nil
}

func (h GetWorkOrderQueryHandler) loadLineItems(
	ctx context.Context,
	orderID kernel.UUID,
) ([]LineItemResponse, []workorder.LineItem, error) {
	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			kind,
			source_id,
			name,
			unit_price,
			quantity
		FROM work_order_line_items
		WHERE work_order_id = ?
		ORDER BY position
	`, orderID.Bytes()).Rows()
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	views := make([]LineItemResponse, 0)
	domainItems := make([]workorder.LineItem, 0)

	for rows.Next() {
		var id uuid.UUID
		var kindStr string
		var sourceID uuid.NullUUID
		var name string
		var unitPrice decimal.Decimal
		var quantity int

		if err = rows.Scan(&id, &kindStr, &sourceID, &name, &unitPrice, &quantity); err != nil {
			return nil, nil, err
		}

		itemID, idErr := kernel.UUIDFromBytes(id[:])
		if idErr != nil {
			return nil, nil, idErr
		}
		kind, kindErr := workorder.LineItemKindFromString(kindStr)
		if kindErr != nil {
			return nil, nil, kindErr
		}

		var source *kernel.UUID
		if sourceID.Valid {
			sID, sErr := kernel.UUIDFromBytes(sourceID.UUID[:])
			if sErr != nil {
				return nil, nil, sErr
			}
			source = &sID
		}

		item, itemErr := workorder.NewLineItem(itemID, kind, source, name, kernel.NewMoney(unitPrice), quantity)
		if itemErr != nil {
			return nil, nil, itemErr
		}

		domainItems = append(domainItems, item)
		views = append(views, LineItemResponse{
			ID:        item.ID(),
			Kind:      item.Kind().String(),
			Name:      item.Name(),
			UnitPrice: item.UnitPrice(),
			Quantity:  item.Quantity(),
			Total:     item.Total(),
		})
	}

	if err = rows.Err(); err != nil {
		return nil, nil, err
	}

	return views, domainItems, nil
}

func (h GetWorkOrderQueryHandler) loadHistory(
	ctx context.Context,
	orderID kernel.UUID,
) ([]HistoryEntryResponse, error) {
	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			status,
			occurred_at,
			actor_name,
			note,
			customer_visible
		FROM work_order_status_history
		WHERE work_order_id = ?
		ORDER BY occurred_at, id
	`, orderID.Bytes()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]HistoryEntryResponse, 0)

	for rows.Next() {
		var statusStr string
		var occurredAt time.Time
		var actorName, note string
		var customerVisible bool

		if err = rows.Scan(&statusStr, &occurredAt, &actorName, &note, &customerVisible); err != nil {
			return nil, err
		}

		status, statusErr := workorder.StatusFromString(statusStr)
		if statusErr != nil {
			return nil, statusErr
		}

		entries = append(entries, HistoryEntryResponse{
			Status:          status.String(),
			StatusLabel:     status.Label(),
			OccurredAt:      occurredAt,
			ActorName:       actorName,
			Note:            note,
			CustomerVisible: customerVisible,
		})
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}
