package eventrepo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/smartfixosapp/smartfixos/internal/core/domain/model/event"
	"github.com/smartfixosapp/smartfixos/internal/core/domain/model/kernel"
	"github.com/smartfixosapp/smartfixos/internal/pkg/errs"
)

// GormEventRepository implements EventRepository using GORM.
type GormEventRepository struct {
	db *gorm.DB
}

// NewGormEventRepository creates a new GORM event repository.
func NewGormEventRepository(db *gorm.DB) *GormEventRepository {
	return &GormEventRepository{db: db}
}

// Append stores a new event. Events are insert-only; there is no update path.
func (r *GormEventRepository) Append(ctx context.Context, ev event.WorkOrderEvent) error {
	if err := ev.Validate(); err != nil {
		return err
	}

	dto := fromDomain(ev)
	return r.db.WithContext(ctx).Create(&dto).Error
}

// Get retrieves an event by ID.
func (r *GormEventRepository) Get(ctx context.Context, id kernel.UUID) (event.WorkOrderEvent, error) {
	if err := id.Validate(); err != nil {
		return event.WorkOrderEvent{}, err
	}

	var dto WorkOrderEventDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return event.WorkOrderEvent{}, errs.NewObjectNotFoundError("event", id.String())
		}
		return event.WorkOrderEvent{}, err
	}

	return toDomain(dto)
}

// GetByOrder retrieves all events for an order, oldest first.
func (r *GormEventRepository) GetByOrder(ctx context.Context, orderID kernel.UUID) ([]event.WorkOrderEvent, error) {
	if err := orderID.Validate(); err != nil {
		return nil, err
	}

	var dtos []WorkOrderEventDTO
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID.Bytes()).
		Order("occurred_at, id").
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	events := make([]event.WorkOrderEvent, 0, len(dtos))
	for _, dto := range dtos {
		ev, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}

	return events, nil
}

// Delete removes an event by ID. Policy (only note events, credential-gated)
// is enforced by the caller.
func (r *GormEventRepository) Delete(ctx context.Context, id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}

	result := r.db.WithContext(ctx).Delete(&WorkOrderEventDTO{}, "id = ?", id.Bytes())
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("event", id.String())
	}
	return nil
}
