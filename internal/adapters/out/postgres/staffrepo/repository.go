package staffrepo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/smartfixosapp/smartfixos/internal/core/domain/model/kernel"
	"github.com/smartfixosapp/smartfixos/internal/core/ports"
	"github.com/smartfixosapp/smartfixos/internal/pkg/errs"
)

// GormStaffDirectory implements StaffDirectory using GORM.
type GormStaffDirectory struct {
	db *gorm.DB
}

// NewGormStaffDirectory creates a new GORM staff directory.
func NewGormStaffDirectory(db *gorm.DB) *GormStaffDirectory {
	return &GormStaffDirectory{db: db}
}

// Admins returns all admin and manager accounts.
func (d *GormStaffDirectory) Admins(ctx context.Context) ([]ports.StaffAccount, error) {
	var dtos []StaffAccountDTO
	err := d.db.WithContext(ctx).
		Where("role IN ?", []string{"admin", "manager"}).
		Order("id").
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	accounts := make([]ports.StaffAccount, 0, len(dtos))
	for _, dto := range dtos {
		account, err := staffToDomain(dto)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}

	return accounts, nil
}

// Get returns one staff account by ID.
func (d *GormStaffDirectory) Get(ctx context.Context, id kernel.UUID) (ports.StaffAccount, error) {
	if err := id.Validate(); err != nil {
		return ports.StaffAccount{}, err
	}

	var dto StaffAccountDTO
	if err := d.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.StaffAccount{}, errs.NewObjectNotFoundError("staff account", id.String())
		}
		return ports.StaffAccount{}, err
	}

	return staffToDomain(dto)
}

// GormCustomerDirectory implements CustomerDirectory using GORM.
type GormCustomerDirectory struct {
	db *gorm.DB
}

// NewGormCustomerDirectory creates a new GORM customer directory.
func NewGormCustomerDirectory(db *gorm.DB) *GormCustomerDirectory {
	return &GormCustomerDirectory{db: db}
}

// Get returns one customer by ID.
func (d *GormCustomerDirectory) Get(ctx context.Context, id kernel.UUID) (ports.Customer, error) {
	if err := id.Validate(); err != nil {
		return ports.Customer{}, err
	}

	var dto CustomerDTO
	if err := d.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.Customer{}, errs.NewObjectNotFoundError("customer", id.String())
		}
		return ports.Customer{}, err
	}

	return customerToDomain(dto)
}

// GormNotifier implements Notifier by inserting notification rows. Reads are
// served elsewhere; this side only writes.
type GormNotifier struct {
	db *gorm.DB
}

// NewGormNotifier creates a new GORM notifier.
func NewGormNotifier(db *gorm.DB) *GormNotifier {
	return &GormNotifier{db: db}
}

// Notify stores a notification for one recipient.
func (n *GormNotifier) Notify(ctx context.Context, notification ports.Notification) error {
	if err := notification.RecipientID.Validate(); err != nil {
		return err
	}

	dto := notificationFromDomain(notification)
	return n.db.WithContext(ctx).Create(&dto).Error
}
