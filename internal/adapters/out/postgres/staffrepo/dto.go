// Package staffrepo provides read access to staff and customer records and
// persistence for internal notifications. Staff and customer CRUD lives
// outside this service; only the lookups the notification fan-out needs are
// implemented here.
package staffrepo

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/smartfixosapp/smartfixos/internal/core/domain/model/kernel"
	"github.com/smartfixosapp/smartfixos/internal/core/ports"
)

// StaffAccountDTO represents a staff member row.
type StaffAccountDTO struct {
	ID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name  string
	Email string
	Role  string `gorm:"index"`
}

// TableName specifies the database table name for staff accounts.
func (StaffAccountDTO) TableName() string {
	return "staff_accounts"
}

// CustomerDTO represents a customer row.
type CustomerDTO struct {
	ID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name  string
	Email string
	Phone string
}

// TableName specifies the database table name for customers.
func (CustomerDTO) TableName() string {
	return "customers"
}

// NotificationDTO represents a stored internal notification.
type NotificationDTO struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	RecipientID   uuid.UUID `gorm:"type:uuid;index"`
	Type          string
	Title         string
	Body          string
	RelatedEntity uuid.UUID `gorm:"type:uuid;index"`
	Priority      string
	Metadata      datatypes.JSONMap
	CreatedAt     time.Time
}

// TableName specifies the database table name for notifications.
func (NotificationDTO) TableName() string {
	return "notifications"
}

func staffToDomain(dto StaffAccountDTO) (ports.StaffAccount, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return ports.StaffAccount{}, err
	}

	return ports.StaffAccount{
		ID:    id,
		Name:  dto.Name,
		Email: dto.Email,
		Role:  dto.Role,
	}, nil
}

func customerToDomain(dto CustomerDTO) (ports.Customer, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return ports.Customer{}, err
	}

	return ports.Customer{
		ID:    id,
		Name:  dto.Name,
		Email: dto.Email,
		Phone: dto.Phone,
	}, nil
}

func notificationFromDomain(n ports.Notification) NotificationDTO {
	var metadata datatypes.JSONMap
	if n.Metadata != nil {
		metadata = datatypes.JSONMap(n.Metadata)
	}

	return NotificationDTO{
		ID:            uuid.New(),
		RecipientID:   n.RecipientID.Bytes(),
		Type:          n.Type,
		Title:         n.Title,
		Body:          n.Body,
		RelatedEntity: n.RelatedEntity.Bytes(),
		Priority:      n.Priority,
		Metadata:      metadata,
		CreatedAt:     time.Now().UTC(),
	}
}
