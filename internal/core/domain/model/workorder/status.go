package workorder

import (
	"fmt"

	"github.com/smartfixosapp/smartfixos/internal/pkg/errs"
)

// Status represents the lifecycle state of a work order.
//
// The state machine is deliberately permissive among active states: any
// active status may move to any other active or closed status. What gates a
// transition is not a predecessor graph but the per-target data requirements
// (see StatusMetadata.RequiredFieldsFor) and the balance check on Delivered.
// Closed statuses accept no further transitions.
//
// Status is a closed enum: unknown ids are rejected at the boundary by
// StatusFromString instead of defaulting silently.
type Status int

const (
	// Unknown represents an invalid or undefined status.
	// This value (0) helps catch uninitialized Status values.
	Unknown Status = iota

	// Intake is the initial status when a device is received at the counter.
	Intake

	// Diagnosing indicates the device is being inspected for a quote.
	Diagnosing

	// AwaitingApproval indicates a quote was sent and the customer has not answered yet.
	AwaitingApproval

	// WaitingParts indicates the repair is blocked on parts; the device sits
	// either in the shop or with the customer (see StatusMetadata.DeviceLocation).
	WaitingParts

	// WaitingOrder indicates a parts order has been placed and is in transit.
	WaitingOrder

	// PendingOrder indicates a parts order is prepared but not yet placed.
	PendingOrder

	// ExternalRepair indicates the device was handed to an outside shop.
	ExternalRepair

	// InProgress indicates the repair is actively being worked on.
	InProgress

	// ReadyForPickup indicates the repair is done and the customer can collect.
	ReadyForPickup

	// Delivered indicates the customer picked the device up. Closed status.
	Delivered

	// Completed indicates the order was finished without a pickup handover. Closed status.
	Completed

	// Cancelled indicates the order was abandoned. Closed status.
	Cancelled
)

// getStatusStrings returns the wire/persistence id for every Status.
// "reparacion_externa" is the historical id for external repairs and is kept
// for data compatibility.
func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:          "unknown",
		Intake:           "intake",
		Diagnosing:       "diagnosing",
		AwaitingApproval: "awaiting_approval",
		WaitingParts:     "waiting_parts",
		WaitingOrder:     "waiting_order",
		PendingOrder:     "pending_order",
		ExternalRepair:   "reparacion_externa",
		InProgress:       "in_progress",
		ReadyForPickup:   "ready_for_pickup",
		Delivered:        "delivered",
		Completed:        "completed",
		Cancelled:        "cancelled",
	}
}

// getValidStatusStrings returns only the statuses a work order may hold.
func getValidStatusStrings() map[Status]string {
	m := getStatusStrings()
	delete(m, Unknown)
	return m
}

// getStatusLabels returns the human-readable label shown to staff for each
// valid status. Labels are presentation data; persistence always uses the
// string ids above.
func getStatusLabels() map[Status]string {
	return map[Status]string{
		Intake:           "Intake",
		Diagnosing:       "Diagnosing",
		AwaitingApproval: "Awaiting approval",
		WaitingParts:     "Waiting for parts",
		WaitingOrder:     "Waiting for order",
		PendingOrder:     "Pending order",
		ExternalRepair:   "External repair",
		InProgress:       "In progress",
		ReadyForPickup:   "Ready for pickup",
		Delivered:        "Delivered",
		Completed:        "Completed",
		Cancelled:        "Cancelled",
	}
}

// StatusFromString resolves a wire id to a Status.
// Unknown ids are rejected with an error rather than mapped to a default.
func StatusFromString(s string) (Status, error) {
	for status, str := range getValidStatusStrings() {
		if str == s {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a known status id", s))
}

// Validate checks if the Status value is valid.
// Unknown (0) and out-of-range values are invalid.
func (s Status) Validate() error {
	if _, ok := getValidStatusStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the persistence/wire id of the status.
// Implements fmt.Stringer and is safe on any value, including invalid ones.
func (s Status) String() string {
	if str, ok := getValidStatusStrings()[s]; ok {
		return str
	}
	return "unknown"
}

// Label returns the human-readable label for the status, or "Unknown".
func (s Status) Label() string {
	if label, ok := getStatusLabels()[s]; ok {
		return label
	}
	return "Unknown"
}

// IsTerminal reports whether the status is closed. A closed order accepts no
// further status transitions.
func (s Status) IsTerminal() bool {
	return s == Delivered || s == Completed || s == Cancelled
}

// IsActive reports whether the status is a valid non-closed state.
func (s Status) IsActive() bool {
	return s.Validate() == nil && !s.IsTerminal()
}

// TransitionTo validates that the status may move to target and returns the
// target on success.
//
// Valid transitions: any active status to any other valid status.
// Invalid transitions: out of a closed status, to Unknown, or to itself.
func (s Status) TransitionTo(target Status) (Status, error) {
	if err := target.Validate(); err != nil {
		return 0, err
	}

	if s.IsTerminal() {
		return 0, errs.NewValueIsInvalidErrorWithCause(
			"status",
			fmt.Errorf("%s is closed and cannot transition to %s", s, target),
		)
	}

	if err := s.Validate(); err != nil {
		return 0, err
	}

	if s == target {
		return 0, errs.NewValueIsInvalidErrorWithCause(
			"status",
			fmt.Errorf("order is already in status %s", s),
		)
	}

	return target, nil
}
