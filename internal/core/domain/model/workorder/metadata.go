package workorder

import (
	"fmt"

	"github.com/smartfixosapp/smartfixos/internal/pkg/errs"
)

// DeviceLocation records where a device physically sits while the order is
// blocked on parts. The ids are kept from the historical data model.
type DeviceLocation string

const (
	// DeviceLocationNone means no location is recorded.
	DeviceLocationNone DeviceLocation = ""

	// DeviceAtShop means the device stays in the workshop ("taller").
	DeviceAtShop DeviceLocation = "taller"

	// DeviceWithCustomer means the customer keeps the device ("cliente").
	DeviceWithCustomer DeviceLocation = "cliente"
)

// Validate checks the location is one of the known ids. The empty value is
// valid; whether it is sufficient depends on the target status.
func (l DeviceLocation) Validate() error {
	switch l {
	case DeviceLocationNone, DeviceAtShop, DeviceWithCustomer:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause(
			"device location", fmt.Errorf("%q is not a known device location", string(l)))
	}
}

// StatusMetadata carries the auxiliary data a status transition may require.
// Which fields are mandatory depends on the target status; RequiredFieldsFor
// reports the gap without mutating anything.
type StatusMetadata struct {
	// Reason explains a cancellation. Required for Cancelled.
	Reason string

	// DeviceLocation says where the device sits. Required for WaitingParts.
	DeviceLocation DeviceLocation

	// Supplier, Tracking and PartName describe a parts order. All optional.
	Supplier string
	Tracking string
	PartName string

	// Shop and Work describe an external repair. At least one is required
	// for ExternalRepair.
	Shop string
	Work string
}

// RequiredFieldsFor returns the metadata fields that are missing for a
// transition to target. An empty slice means the metadata satisfies the
// target's requirements.
func (m StatusMetadata) RequiredFieldsFor(target Status) []string {
	switch target {
	case Cancelled:
		if m.Reason == "" {
			return []string{"reason"}
		}
	case WaitingParts:
		if m.DeviceLocation != DeviceAtShop && m.DeviceLocation != DeviceWithCustomer {
			return []string{"device_location"}
		}
	case ExternalRepair:
		if m.Shop == "" && m.Work == "" {
			return []string{"shop", "work"}
		}
	}
	return nil
}

// Validate checks field-level validity independent of any target status.
func (m StatusMetadata) Validate() error {
	return m.DeviceLocation.Validate()
}

// IsZero reports whether no metadata was supplied.
func (m StatusMetadata) IsZero() bool {
	return m == StatusMetadata{}
}
