package workorderrepo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/smartfixosapp/smartfixos/internal/core/domain/model/kernel"
	"github.com/smartfixosapp/smartfixos/internal/core/domain/model/workorder"
	"github.com/smartfixosapp/smartfixos/internal/pkg/errs"
)

// GormWorkOrderRepository implements WorkOrderRepository using GORM.
type GormWorkOrderRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormWorkOrderRepository creates a new GORM work-order repository.
func NewGormWorkOrderRepository(db *gorm.DB, tracker aggregateTracker) *GormWorkOrderRepository {
	return &GormWorkOrderRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add saves a new work order with its line items and opening history entry.
func (r *GormWorkOrderRepository) Add(ctx context.Context, aggregate *workorder.WorkOrder) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Update saves an existing work order using compare-and-swap on the version
// column. A row whose version moved since the aggregate was loaded is left
// untouched and the write is rejected as stale.
func (r *GormWorkOrderRepository) Update(ctx context.Context, aggregate *workorder.WorkOrder) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	tx := r.db.WithContext(ctx)

	result := tx.Model(&WorkOrderDTO{}).
		Where("id = ? AND version = ?", dto.ID, dto.Version).
		Updates(map[string]any{
			"device_model":    dto.DeviceModel,
			"technician_id":   dto.TechnicianID,
			"device_secret":   dto.DeviceSecret,
			"status":          dto.Status,
			"status_metadata": dto.StatusMetadata,
			"discount":        dto.Discount,
			"tax_rate":        dto.TaxRate,
			"total_paid":      dto.TotalPaid,
			"version":         dto.Version + 1,
		})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		// Either the row is gone or someone else committed first.
		var exists int64
		if err := tx.Model(&WorkOrderDTO{}).Where("id = ?", dto.ID).Count(&exists).Error; err != nil {
			return err
		}
		if exists == 0 {
			return errs.NewObjectNotFoundError("work order", aggregate.ID().String())
		}
		return errs.NewVersionIsInvalidError("work order version")
	}

	if err := r.replaceLineItems(tx, dto); err != nil {
		return err
	}
	if err := r.replaceHistory(tx, dto); err != nil {
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Get retrieves a work order by ID, including line items and history.
func (r *GormWorkOrderRepository) Get(ctx context.Context, id kernel.UUID) (*workorder.WorkOrder, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto WorkOrderDTO
	err := r.preloaded(ctx).First(&dto, "work_orders.id = ?", id.Bytes()).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("work order", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// GetAllActive retrieves all orders whose status is not closed.
func (r *GormWorkOrderRepository) GetAllActive(ctx context.Context) ([]*workorder.WorkOrder, error) {
	var dtos []WorkOrderDTO
	err := r.preloaded(ctx).
		Where("status NOT IN ?", closedStatusStrings()).
		Order("work_orders.id").
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	orders := make([]*workorder.WorkOrder, 0, len(dtos))
	for _, dto := range dtos {
		wo, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		orders = append(orders, wo)
	}

	return orders, nil
}

func (r *GormWorkOrderRepository) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("LineItems", func(db *gorm.DB) *gorm.DB {
			return db.Order("work_order_line_items.position")
		}).
		Preload("History", func(db *gorm.DB) *gorm.DB {
			return db.Order("work_order_status_history.occurred_at, work_order_status_history.id")
		})
}

// replaceLineItems rewrites the child rows wholesale. Item sets are small and
// immutable per item, so diffing buys nothing.
func (r *GormWorkOrderRepository) replaceLineItems(tx *gorm.DB, dto WorkOrderDTO) error {
	if err := tx.Where("work_order_id = ?", dto.ID).Delete(&LineItemDTO{}).Error; err != nil {
		return err
	}
	if len(dto.LineItems) == 0 {
		return nil
	}
	return tx.Create(&dto.LineItems).Error
}

func (r *GormWorkOrderRepository) replaceHistory(tx *gorm.DB, dto WorkOrderDTO) error {
	if err := tx.Where("work_order_id = ?", dto.ID).Delete(&StatusHistoryDTO{}).Error; err != nil {
		return err
	}
	if len(dto.History) == 0 {
		return nil
	}
	return tx.Create(&dto.History).Error
}

func closedStatusStrings() []string {
	return []string{
		workorder.Delivered.String(),
		workorder.Completed.String(),
		workorder.Cancelled.String(),
	}
}
