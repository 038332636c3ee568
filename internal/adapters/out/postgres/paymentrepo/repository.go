package paymentrepo

import (
	"context"

	"gorm.io/gorm"

	"github.com/smartfixosapp/smartfixos/internal/core/domain/model/kernel"
	"github.com/smartfixosapp/smartfixos/internal/core/domain/model/payment"
)

// GormPaymentRepository implements PaymentRepository using GORM.
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GORM payment repository.
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// Add stores a new payment record.
func (r *GormPaymentRepository) Add(ctx context.Context, record payment.PaymentRecord) error {
	if err := record.Validate(); err != nil {
		return err
	}

	dto := fromDomain(record)
	return r.db.WithContext(ctx).Create(&dto).Error
}

// GetByOrder retrieves all payment records for an order, oldest first.
func (r *GormPaymentRepository) GetByOrder(ctx context.Context, orderID kernel.UUID) ([]payment.PaymentRecord, error) {
	if err := orderID.Validate(); err != nil {
		return nil, err
	}

	var dtos []PaymentDTO
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID.Bytes()).
		Order("received_at, id").
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	records := make([]payment.PaymentRecord, 0, len(dtos))
	for _, dto := range dtos {
		record, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	return records, nil
}
