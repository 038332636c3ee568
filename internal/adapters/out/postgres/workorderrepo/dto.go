// Package workorderrepo provides data transfer objects and mapping functions
// for work-order persistence. It implements the repository pattern for the
// work-order aggregate, handling the conversion between the domain aggregate
// (order row, line items, status history) and its relational representation.
package workorderrepo

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"github.com/smartfixosapp/smartfixos/internal/core/domain/model/kernel"
	"github.com/smartfixosapp/smartfixos/internal/core/domain/model/workorder"
)

// WorkOrderDTO represents the database structure for persisting work-order
// aggregates. The version column supports compare-and-swap updates; line
// items and status history live in child tables owned by the aggregate row.
type WorkOrderDTO struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey"`
	CustomerID     uuid.UUID  `gorm:"type:uuid;index"`
	DeviceID       uuid.UUID  `gorm:"type:uuid"`
	DeviceModel    string
	TechnicianID   *uuid.UUID `gorm:"type:uuid;index"`
	DeviceSecret   []byte
	Status         string `gorm:"index"`
	StatusMetadata datatypes.JSONMap
	Discount       decimal.Decimal `gorm:"type:decimal(12,2)"`
	TaxRate        decimal.Decimal `gorm:"type:decimal(8,4)"`
	TotalPaid      decimal.Decimal `gorm:"type:decimal(12,2)"`
	Version        int

	LineItems []LineItemDTO      `gorm:"foreignKey:WorkOrderID;constraint:OnDelete:CASCADE"`
	History   []StatusHistoryDTO `gorm:"foreignKey:WorkOrderID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the database table name for work orders.
func (WorkOrderDTO) TableName() string {
	return "work_orders"
}

// LineItemDTO represents one billed product or service on a work order.
// Position preserves the order in which items were billed.
type LineItemDTO struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	WorkOrderID uuid.UUID  `gorm:"type:uuid;index"`
	Kind        string
	SourceID    *uuid.UUID `gorm:"type:uuid"`
	Name        string
	UnitPrice   decimal.Decimal `gorm:"type:decimal(12,2)"`
	Quantity    int
	Position    int
}

// TableName specifies the database table name for line items.
func (LineItemDTO) TableName() string {
	return "work_order_line_items"
}

// StatusHistoryDTO represents one committed status transition. The actor is
// denormalized into the row so history reads need no joins and survive staff
// record changes.
type StatusHistoryDTO struct {
	ID              int64     `gorm:"primaryKey;autoIncrement"`
	WorkOrderID     uuid.UUID `gorm:"type:uuid;index"`
	Status          string
	OccurredAt      time.Time
	ActorID         uuid.UUID `gorm:"type:uuid"`
	ActorName       string
	ActorEmail      string
	Note            string
	CustomerVisible bool
}

// TableName specifies the database table name for status history.
func (StatusHistoryDTO) TableName() string {
	return "work_order_status_history"
}

// fromDomain converts a work-order aggregate to its database representation,
// including child rows for line items and status history.
func fromDomain(wo *workorder.WorkOrder) WorkOrderDTO {
	var technicianID *uuid.UUID
	if id := wo.Technician(); id != nil {
		raw := id.Bytes()
		technicianID = &raw
	}

	items := make([]LineItemDTO, 0, len(wo.LineItems()))
	for i, item := range wo.LineItems() {
		items = append(items, lineItemFromDomain(wo.ID(), item, i))
	}

	history := make([]StatusHistoryDTO, 0, len(wo.History()))
	for _, entry := range wo.History() {
		history = append(history, historyFromDomain(wo.ID(), entry))
	}

	return WorkOrderDTO{
		ID:             wo.ID().Bytes(),
		CustomerID:     wo.CustomerID().Bytes(),
		DeviceID:       wo.DeviceID().Bytes(),
		DeviceModel:    wo.DeviceModel(),
		TechnicianID:   technicianID,
		DeviceSecret:   wo.DeviceSecret(),
		Status:         wo.Status().String(),
		StatusMetadata: metadataToMap(wo.StatusMetadata()),
		Discount:       wo.Discount().Decimal(),
		TaxRate:        wo.TaxRate(),
		TotalPaid:      wo.TotalPaid().Decimal(),
		Version:        wo.Version(),
		LineItems:      items,
		History:        history,
	}
}

func lineItemFromDomain(orderID kernel.UUID, item workorder.LineItem, position int) LineItemDTO {
	var sourceID *uuid.UUID
	if id := item.SourceID(); id != nil {
		raw := id.Bytes()
		sourceID = &raw
	}

	return LineItemDTO{
		ID:          item.ID().Bytes(),
		WorkOrderID: orderID.Bytes(),
		Kind:        item.Kind().String(),
		SourceID:    sourceID,
		Name:        item.Name(),
		UnitPrice:   item.UnitPrice().Decimal(),
		Quantity:    item.Quantity(),
		Position:    position,
	}
}

func historyFromDomain(orderID kernel.UUID, entry workorder.StatusHistoryEntry) StatusHistoryDTO {
	return StatusHistoryDTO{
		WorkOrderID:     orderID.Bytes(),
		Status:          entry.Status().String(),
		OccurredAt:      entry.OccurredAt(),
		ActorID:         entry.Actor().ID().Bytes(),
		ActorName:       entry.Actor().Name(),
		ActorEmail:      entry.Actor().Email(),
		Note:            entry.Note(),
		CustomerVisible: entry.CustomerVisible(),
	}
}

// toDomain converts database rows back into a work-order aggregate using
// RestoreWorkOrder, re-running the same validation as the constructors.
func toDomain(dto WorkOrderDTO) (*workorder.WorkOrder, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	customerID, err := kernel.UUIDFromBytes(dto.CustomerID[:])
	if err != nil {
		return nil, err
	}
	deviceID, err := kernel.UUIDFromBytes(dto.DeviceID[:])
	if err != nil {
		return nil, err
	}

	var technicianID *kernel.UUID
	if dto.TechnicianID != nil {
		tID, tErr := kernel.UUIDFromBytes((*dto.TechnicianID)[:])
		if tErr != nil {
			return nil, tErr
		}
		technicianID = &tID
	}

	status, err := workorder.StatusFromString(dto.Status)
	if err != nil {
		return nil, err
	}

	items := make([]workorder.LineItem, 0, len(dto.LineItems))
	for _, itemDTO := range dto.LineItems {
		item, itemErr := lineItemToDomain(itemDTO)
		if itemErr != nil {
			return nil, itemErr
		}
		items = append(items, item)
	}

	history := make([]workorder.StatusHistoryEntry, 0, len(dto.History))
	for _, entryDTO := range dto.History {
		entry, entryErr := historyToDomain(entryDTO)
		if entryErr != nil {
			return nil, entryErr
		}
		history = append(history, entry)
	}

	return workorder.RestoreWorkOrder(
		id,
		customerID,
		deviceID,
		dto.DeviceModel,
		technicianID,
		dto.DeviceSecret,
		status,
		metadataFromMap(dto.StatusMetadata),
		items,
		kernel.NewMoney(dto.Discount),
		dto.TaxRate,
		kernel.NewMoney(dto.TotalPaid),
		history,
		dto.Version,
	)
}

func lineItemToDomain(dto LineItemDTO) (workorder.LineItem, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return workorder.LineItem{}, err
	}

	kind, err := workorder.LineItemKindFromString(dto.Kind)
	if err != nil {
		return workorder.LineItem{}, err
	}

	var sourceID *kernel.UUID
	if dto.SourceID != nil {
		sID, sErr := kernel.UUIDFromBytes((*dto.SourceID)[:])
		if sErr != nil {
			return workorder.LineItem{}, sErr
		}
		sourceID = &sID
	}

	return workorder.NewLineItem(id, kind, sourceID, dto.Name, kernel.NewMoney(dto.UnitPrice), dto.Quantity)
}

func historyToDomain(dto StatusHistoryDTO) (workorder.StatusHistoryEntry, error) {
	status, err := workorder.StatusFromString(dto.Status)
	if err != nil {
		return workorder.StatusHistoryEntry{}, err
	}

	actorID, err := kernel.UUIDFromBytes(dto.ActorID[:])
	if err != nil {
		return workorder.StatusHistoryEntry{}, err
	}
	actor, err := kernel.NewActor(actorID, dto.ActorName, dto.ActorEmail)
	if err != nil {
		return workorder.StatusHistoryEntry{}, err
	}

	return workorder.RestoreStatusHistoryEntry(status, dto.OccurredAt, actor, dto.Note, dto.CustomerVisible)
}

// metadataToMap flattens status metadata into a JSON column, omitting empty
// fields to keep the stored document minimal.
func metadataToMap(m workorder.StatusMetadata) datatypes.JSONMap {
	out := datatypes.JSONMap{}
	if m.Reason != "" {
		out["reason"] = m.Reason
	}
	if m.DeviceLocation != workorder.DeviceLocationNone {
		out["device_location"] = string(m.DeviceLocation)
	}
	if m.Supplier != "" {
		out["supplier"] = m.Supplier
	}
	if m.Tracking != "" {
		out["tracking"] = m.Tracking
	}
	if m.PartName != "" {
		out["part_name"] = m.PartName
	}
	if m.Shop != "" {
		out["shop"] = m.Shop
	}
	if m.Work != "" {
		out["work"] = m.Work
	}
	return out
}

func metadataFromMap(raw datatypes.JSONMap) workorder.StatusMetadata {
	str := func(key string) string {
		if v, ok := raw[key].(string); ok {
			return v
		}
		return ""
	}

	return workorder.StatusMetadata{
		Reason:         str("reason"),
		DeviceLocation: workorder.DeviceLocation(str("device_location")),
		Supplier:       str("supplier"),
		Tracking:       str("tracking"),
		PartName:       str("part_name"),
		Shop:           str("shop"),
		Work:           str("work"),
	}
}
