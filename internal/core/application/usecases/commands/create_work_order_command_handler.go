package commands

import (
	"context"

	"github.com/smartfixosapp/smartfixos/internal/core/domain/model/workorder"
	"github.com/smartfixosapp/smartfixos/internal/core/ports"

	"github.com/shopspring/decimal"
)

// SecretSealer seals a plaintext device secret for storage.
type SecretSealer interface {
	Seal(plaintext string) ([]byte, error)
}

// CreateWorkOrderCommandHandler opens work orders at intake with an empty
// ledger and the configured tax rate.
type CreateWorkOrderCommandHandler struct {
	uowFactory OrderUoWFactory
	identity   ports.IdentityProvider
	sealer     SecretSealer
	taxRate    decimal.Decimal
}

// NewCreateWorkOrderCommandHandler creates a handler for intake registration.
func NewCreateWorkOrderCommandHandler(
	uowFactory OrderUoWFactory,
	identity ports.IdentityProvider,
	sealer SecretSealer,
	taxRate decimal.Decimal,
) CreateWorkOrderCommandHandler {
	return CreateWorkOrderCommandHandler{
		uowFactory: uowFactory,
		identity:   identity,
		sealer:     sealer,
		taxRate:    taxRate,
	}
}

// Handle opens the work order in intake status, stamped with the resolving
// actor. An unresolvable actor aborts before any mutation.
func (h *CreateWorkOrderCommandHandler) Handle(ctx context.Context, cmd CreateWorkOrderCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	actor, err := h.identity.CurrentActor(ctx)
	if err != nil {
		return err
	}

	wo, err := workorder.NewWorkOrder(
		cmd.OrderID(), cmd.CustomerID(), cmd.DeviceID(), cmd.DeviceModel(), h.taxRate, actor)
	if err != nil {
		return err
	}

	if secret := cmd.DeviceSecret(); secret != "" {
		sealed, sealErr := h.sealer.Seal(secret)
		if sealErr != nil {
			return sealErr
		}
		wo.SetDeviceSecret(sealed)
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.WorkOrderRepository().Add(ctx, wo); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	return nil
}
