package ports

import (
	"context"

	"github.com/smartfixosapp/smartfixos/internal/core/domain/model/kernel"
	"github.com/smartfixosapp/smartfixos/internal/core/domain/model/payment"
)

// PaymentRepository defines the persistence contract for payment records.
// Records are created and read, never mutated.
type PaymentRepository interface {
	// Add stores a new payment record.
	Add(ctx context.Context, record payment.PaymentRecord) error

	// GetByOrder retrieves all payment records for an order, oldest first.
	GetByOrder(ctx context.Context, orderID kernel.UUID) ([]payment.PaymentRecord, error)
}
