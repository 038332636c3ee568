package workorder

import (
	"errors"
	"fmt"

	"github.com/smartfixosapp/smartfixos/internal/core/domain/model/kernel"
	"github.com/smartfixosapp/smartfixos/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

var (
	// ErrWorkOrderIsNotConstructed is returned when a WorkOrder instance was not
	// created through NewWorkOrder or RestoreWorkOrder. This ensures all orders
	// are properly validated.
	ErrWorkOrderIsNotConstructed = errors.New(
		"WorkOrder must be created via NewWorkOrder or RestoreWorkOrder constructor")
)

// WorkOrder represents a repair job tracking a customer's device from intake
// through delivery. It is the aggregate root that owns the status lifecycle,
// the line items, and the payment ledger.
//
// WorkOrder maintains these invariants:
//   - Must have a valid unique identifier and customer reference
//   - BalanceDue() == max(0, Total - TotalPaid), never negative
//   - Status transitions go through ChangeStatus, which enforces the closed
//     status enum, per-target metadata requirements, and closed-state finality
//   - The status history is append-only; its length grows by exactly one per
//     committed transition
//   - TotalPaid only grows, and only through RegisterPayment
//
// The struct uses private fields to keep those invariants enforceable; it can
// only be created through NewWorkOrder (fresh intake) or RestoreWorkOrder
// (rehydration from persistence).
type WorkOrder struct {
	// id is the unique identifier for the work order
	id kernel.UUID

	// customerID references the owning customer record
	customerID kernel.UUID

	// deviceID references the device record brought in for repair
	deviceID kernel.UUID

	// deviceModel is a display snapshot of the device taken at intake
	deviceModel string

	// technicianID is the assigned technician (nil if unassigned)
	technicianID *kernel.UUID

	// deviceSecret holds the customer's PIN/passcode sealed with
	// authenticated encryption; plaintext never touches the aggregate
	deviceSecret []byte

	// status is the current lifecycle state
	status Status

	// statusMetadata is the auxiliary data recorded with the latest transition
	statusMetadata StatusMetadata

	// lineItems is the ordered sequence of billed products and services
	lineItems []LineItem

	// discount is a flat amount subtracted from the gross subtotal
	discount kernel.Money

	// taxRate applies to the discounted subtotal
	taxRate decimal.Decimal

	// totalPaid is the sum of all recorded payments
	totalPaid kernel.Money

	// history is the append-only record of committed transitions
	history []StatusHistoryEntry

	// version supports compare-and-swap updates; stale writes are rejected
	version int

	// isConstructed ensures the order was created via a constructor
	isConstructed bool
}

// NewWorkOrder opens a work order at intake with an empty ledger.
// The opening is recorded as the first history entry, stamped with the
// receiving actor.
func NewWorkOrder(
	id kernel.UUID,
	customerID kernel.UUID,
	deviceID kernel.UUID,
	deviceModel string,
	taxRate decimal.Decimal,
	openedBy kernel.Actor,
) (*WorkOrder, error) {
	wo := &WorkOrder{
		deviceModel:   deviceModel,
		status:        Intake,
		taxRate:       taxRate,
		totalPaid:     kernel.ZeroMoney(),
		isConstructed: true,
	}

	if err := errors.Join(
		wo.setID(id),
		wo.setCustomerID(customerID),
		wo.setDeviceID(deviceID),
		wo.setTaxRate(taxRate),
	); err != nil {
		return nil, err
	}

	entry, err := NewStatusHistoryEntry(Intake, openedBy, "", true)
	if err != nil {
		return nil, err
	}
	wo.history = append(wo.history, entry)

	return wo, nil
}

// RestoreWorkOrder rehydrates a work order from persistence without
// re-running intake logic. The stored history and version are taken as-is.
func RestoreWorkOrder(
	id kernel.UUID,
	customerID kernel.UUID,
	deviceID kernel.UUID,
	deviceModel string,
	technicianID *kernel.UUID,
	deviceSecret []byte,
	status Status,
	statusMetadata StatusMetadata,
	lineItems []LineItem,
	discount kernel.Money,
	taxRate decimal.Decimal,
	totalPaid kernel.Money,
	history []StatusHistoryEntry,
	version int,
) (*WorkOrder, error) {
	wo := &WorkOrder{
		deviceModel:    deviceModel,
		technicianID:   technicianID,
		deviceSecret:   deviceSecret,
		statusMetadata: statusMetadata,
		lineItems:      lineItems,
		discount:       discount,
		totalPaid:      totalPaid,
		history:        history,
		version:        version,
		isConstructed:  true,
	}

	if err := errors.Join(
		wo.setID(id),
		wo.setCustomerID(customerID),
		wo.setDeviceID(deviceID),
		wo.setTaxRate(taxRate),
		status.Validate(),
		statusMetadata.Validate(),
	); err != nil {
		return nil, err
	}
	wo.status = status

	return wo, nil
}

// Validate ensures the WorkOrder instance was properly constructed.
// Call when reconstructing orders from persistence to ensure data integrity.
func (wo *WorkOrder) Validate() error {
	if wo == nil || !wo.isConstructed {
		return ErrWorkOrderIsNotConstructed
	}
	return nil
}

// IsEqual compares two work orders by their unique identifiers.
func (wo *WorkOrder) IsEqual(other *WorkOrder) bool {
	return other != nil && wo.id.IsEqual(other.id)
}

// ID returns the work order's unique identifier.
func (wo *WorkOrder) ID() kernel.UUID {
	return wo.id
}

// CustomerID returns the owning customer reference.
func (wo *WorkOrder) CustomerID() kernel.UUID {
	return wo.customerID
}

// DeviceID returns the repaired device reference.
func (wo *WorkOrder) DeviceID() kernel.UUID {
	return wo.deviceID
}

// DeviceModel returns the device display snapshot taken at intake.
func (wo *WorkOrder) DeviceModel() string {
	return wo.deviceModel
}

// Technician returns the assigned technician's ID, nil if unassigned.
func (wo *WorkOrder) Technician() *kernel.UUID {
	return wo.technicianID
}

// Status returns the current lifecycle status.
func (wo *WorkOrder) Status() Status {
	return wo.status
}

// StatusMetadata returns the auxiliary data from the latest transition.
func (wo *WorkOrder) StatusMetadata() StatusMetadata {
	return wo.statusMetadata
}

// LineItems returns a copy of the billed items in order.
func (wo *WorkOrder) LineItems() []LineItem {
	items := make([]LineItem, len(wo.lineItems))
	copy(items, wo.lineItems)
	return items
}

// Discount returns the flat discount applied to the gross subtotal.
func (wo *WorkOrder) Discount() kernel.Money {
	return wo.discount
}

// TaxRate returns the tax rate applied to the discounted subtotal.
func (wo *WorkOrder) TaxRate() decimal.Decimal {
	return wo.taxRate
}

// TotalPaid returns the sum of all recorded payments.
func (wo *WorkOrder) TotalPaid() kernel.Money {
	return wo.totalPaid
}

// History returns a copy of the append-only status history.
func (wo *WorkOrder) History() []StatusHistoryEntry {
	history := make([]StatusHistoryEntry, len(wo.history))
	copy(history, wo.history)
	return history
}

// Version returns the optimistic-concurrency version of the aggregate.
func (wo *WorkOrder) Version() int {
	return wo.version
}

// DeviceSecret returns the sealed device secret bytes, nil if none stored.
// Decryption happens only at an explicitly-requested reveal boundary.
func (wo *WorkOrder) DeviceSecret() []byte {
	return wo.deviceSecret
}

// Ledger recomputes subtotal, tax, and total from the current line items.
func (wo *WorkOrder) Ledger() Ledger {
	return ComputeLedger(wo.lineItems, wo.discount, wo.taxRate)
}

// BalanceDue returns total minus total paid, floored at zero.
func (wo *WorkOrder) BalanceDue() kernel.Money {
	return wo.Ledger().Total.Sub(wo.totalPaid).FloorZero()
}

// IsPaid reports whether the balance is settled within the cent tolerance.
func (wo *WorkOrder) IsPaid() bool {
	return wo.BalanceDue().IsSettled()
}

// AssignTechnician sets the technician responsible for the repair.
func (wo *WorkOrder) AssignTechnician(technicianID kernel.UUID) error {
	if err := technicianID.Validate(); err != nil {
		return err
	}
	wo.technicianID = &technicianID
	return nil
}

// SetDeviceSecret stores the sealed device secret. The caller is responsible
// for sealing; the aggregate never sees plaintext.
func (wo *WorkOrder) SetDeviceSecret(sealed []byte) {
	wo.deviceSecret = sealed
}

// AddLineItem appends a billed item to the order. The ledger is derived, so
// totals and balance reflect the item immediately.
func (wo *WorkOrder) AddLineItem(item LineItem) error {
	if err := item.Validate(); err != nil {
		return err
	}

	for _, existing := range wo.lineItems {
		if existing.ID().IsEqual(item.ID()) {
			return errs.NewValueIsInvalidErrorWithCause(
				"line item", fmt.Errorf("item %s is already on the order", item.ID()))
		}
	}

	wo.lineItems = append(wo.lineItems, item)
	return nil
}

// RemoveLineItem removes a billed item by its identifier.
func (wo *WorkOrder) RemoveLineItem(itemID kernel.UUID) (LineItem, error) {
	if err := itemID.Validate(); err != nil {
		return LineItem{}, err
	}

	for i, item := range wo.lineItems {
		if item.ID().IsEqual(itemID) {
			wo.lineItems = append(wo.lineItems[:i], wo.lineItems[i+1:]...)
			return item, nil
		}
	}

	return LineItem{}, errs.NewObjectNotFoundError("line item", itemID.String())
}

// SetDiscount replaces the flat discount. Negative discounts are rejected.
func (wo *WorkOrder) SetDiscount(discount kernel.Money) error {
	if discount.IsNegative() {
		return errs.NewValueIsInvalidErrorWithCause(
			"discount", fmt.Errorf("%s is negative", discount))
	}
	wo.discount = discount
	return nil
}

// RegisterPayment adds a validated payment amount to the paid total.
// Amount validation against the outstanding balance belongs to the ledger
// reconciler; the aggregate only rejects non-positive amounts outright.
func (wo *WorkOrder) RegisterPayment(amount kernel.Money) error {
	if !amount.IsPositive() {
		return errs.NewValueIsInvalidErrorWithCause(
			"payment amount", fmt.Errorf("%s is not greater than 0", amount))
	}
	wo.totalPaid = wo.totalPaid.Add(amount)
	return nil
}

// ChangeStatus commits a validated transition: it moves the order to the
// entry's status, appends the entry to the history, and records the supplied
// metadata.
//
// The method enforces:
//   - the transition is legal for the current status (closed states are final)
//   - the metadata carries every field the target status requires
//
// Balance gating on Delivered is a policy decision resolved before this call;
// by the time ChangeStatus runs, the transition is unconditional.
func (wo *WorkOrder) ChangeStatus(entry StatusHistoryEntry, metadata StatusMetadata) error {
	if err := entry.Validate(); err != nil {
		return err
	}
	if err := metadata.Validate(); err != nil {
		return err
	}

	target := entry.Status()
	newStatus, err := wo.status.TransitionTo(target)
	if err != nil {
		return err
	}

	if missing := metadata.RequiredFieldsFor(target); len(missing) > 0 {
		return errs.NewValueIsRequiredError(fmt.Sprintf("status metadata: %v", missing))
	}

	wo.status = newStatus
	wo.statusMetadata = metadata
	wo.history = append(wo.history, entry)
	return nil
}

func (wo *WorkOrder) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	wo.id = id
	return nil
}

func (wo *WorkOrder) setCustomerID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	wo.customerID = id
	return nil
}

func (wo *WorkOrder) setDeviceID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	wo.deviceID = id
	return nil
}

func (wo *WorkOrder) setTaxRate(rate decimal.Decimal) error {
	if rate.IsNegative() {
		return errs.NewValueIsInvalidErrorWithCause(
			"tax rate", fmt.Errorf("%s is negative", rate))
	}
	wo.taxRate = rate
	return nil
}
