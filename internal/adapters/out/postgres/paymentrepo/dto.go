// Package paymentrepo provides persistence for immutable payment records.
package paymentrepo

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/smartfixosapp/smartfixos/internal/core/domain/model/kernel"
	"github.com/smartfixosapp/smartfixos/internal/core/domain/model/payment"
)

// PaymentDTO represents one recorded payment against a work order.
type PaymentDTO struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID         uuid.UUID `gorm:"type:uuid;index"`
	Amount          decimal.Decimal `gorm:"type:decimal(12,2)"`
	Method          string
	Mode            string
	ChangeGiven     decimal.Decimal `gorm:"type:decimal(12,2)"`
	ReceivedAt      time.Time
	ReceivedByID    uuid.UUID `gorm:"type:uuid"`
	ReceivedByName  string
	ReceivedByEmail string
}

// TableName specifies the database table name for payments.
func (PaymentDTO) TableName() string {
	return "payments"
}

// fromDomain converts a payment record to its database representation.
func fromDomain(record payment.PaymentRecord) PaymentDTO {
	return PaymentDTO{
		ID:              record.ID().Bytes(),
		OrderID:         record.OrderID().Bytes(),
		Amount:          record.Amount().Decimal(),
		Method:          string(record.Method()),
		Mode:            string(record.Mode()),
		ChangeGiven:     record.ChangeGiven().Decimal(),
		ReceivedAt:      record.ReceivedAt(),
		ReceivedByID:    record.ReceivedBy().ID().Bytes(),
		ReceivedByName:  record.ReceivedBy().Name(),
		ReceivedByEmail: record.ReceivedBy().Email(),
	}
}

// toDomain converts a database row back into a payment record.
func toDomain(dto PaymentDTO) (payment.PaymentRecord, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return payment.PaymentRecord{}, err
	}
	orderID, err := kernel.UUIDFromBytes(dto.OrderID[:])
	if err != nil {
		return payment.PaymentRecord{}, err
	}
	actorID, err := kernel.UUIDFromBytes(dto.ReceivedByID[:])
	if err != nil {
		return payment.PaymentRecord{}, err
	}
	actor, err := kernel.NewActor(actorID, dto.ReceivedByName, dto.ReceivedByEmail)
	if err != nil {
		return payment.PaymentRecord{}, err
	}

	return payment.RestorePaymentRecord(
		id,
		orderID,
		kernel.NewMoney(dto.Amount),
		payment.Method(dto.Method),
		payment.Mode(dto.Mode),
		kernel.NewMoney(dto.ChangeGiven),
		dto.ReceivedAt,
		actor,
	)
}
