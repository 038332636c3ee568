package commands

import (
	"errors"

	"github.com/smartfixosapp/smartfixos/internal/core/domain/model/kernel"
	"github.com/smartfixosapp/smartfixos/internal/pkg/guard"
)

var (
	ErrCreateWorkOrderCommandIsNotConstructed = errors.New(
		"CreateWorkOrderCommand must be created via NewCreateWorkOrderCommand constructor",
	)
	ErrDeviceModelIsRequired = errors.New("device model is required")
)

// CreateWorkOrderCommand represents a request to open a work order at intake.
// The optional device secret is the customer's PIN/passcode; it is sealed
// before persistence and never stored in the clear.
type CreateWorkOrderCommand struct { //nolint:recvcheck //using for validation
	orderID      kernel.UUID
	customerID   kernel.UUID
	deviceID     kernel.UUID
	deviceModel  string
	deviceSecret string

	guard guard.ConstructorGuard
}

// NewCreateWorkOrderCommand creates a command to open a work order.
// Validates the order, customer, and device references and the device model.
func NewCreateWorkOrderCommand(
	orderID kernel.UUID,
	customerID kernel.UUID,
	deviceID kernel.UUID,
	deviceModel string,
	deviceSecret string,
) (CreateWorkOrderCommand, error) {
	cmd := CreateWorkOrderCommand{
		deviceSecret: deviceSecret,
		guard:        guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setCustomerID(customerID),
		cmd.setDeviceID(deviceID),
		cmd.setDeviceModel(deviceModel),
	); err != nil {
		return CreateWorkOrderCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c CreateWorkOrderCommand) Validate() error {
	return c.guard.Validate(ErrCreateWorkOrderCommandIsNotConstructed)
}

// OrderID returns the identifier for the new work order.
func (c CreateWorkOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

// CustomerID returns the owning customer reference.
func (c CreateWorkOrderCommand) CustomerID() kernel.UUID {
	return c.customerID
}

// DeviceID returns the repaired device reference.
func (c CreateWorkOrderCommand) DeviceID() kernel.UUID {
	return c.deviceID
}

// DeviceModel returns the device display snapshot.
func (c CreateWorkOrderCommand) DeviceModel() string {
	return c.deviceModel
}

// DeviceSecret returns the plaintext device secret, empty if none was given.
func (c CreateWorkOrderCommand) DeviceSecret() string {
	return c.deviceSecret
}

func (c *CreateWorkOrderCommand) setOrderID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	c.orderID = id
	return nil
}

func (c *CreateWorkOrderCommand) setCustomerID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	c.customerID = id
	return nil
}

func (c *CreateWorkOrderCommand) setDeviceID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	c.deviceID = id
	return nil
}

func (c *CreateWorkOrderCommand) setDeviceModel(model string) error {
	if model == "" {
		return ErrDeviceModelIsRequired
	}
	c.deviceModel = model
	return nil
}
