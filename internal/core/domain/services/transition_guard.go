package services

import (
	"github.com/smartfixosapp/smartfixos/internal/core/domain/model/kernel"
	"github.com/smartfixosapp/smartfixos/internal/core/domain/model/workorder"
)

// DecisionKind classifies the outcome of a proposed status transition.
type DecisionKind int

const (
	// DecisionUnknown represents an uninitialized decision.
	DecisionUnknown DecisionKind = iota

	// DecisionCommit means the transition is valid and may be committed.
	DecisionCommit

	// DecisionNeedsInput means required per-target metadata is missing;
	// the caller must supply the listed fields and resubmit.
	DecisionNeedsInput

	// DecisionBalanceConflict means an outstanding balance blocks closing
	// the order; the caller must resolve with one of the offered options
	// and resubmit.
	DecisionBalanceConflict
)

// ConflictOption is a caller resolution for a balance conflict. The conflict
// is returned as a value, never resolved by blocking; the caller encodes the
// chosen option in the resubmitted command.
type ConflictOption string

const (
	// OptionPayNow means take a payment first, then retry the transition.
	OptionPayNow ConflictOption = "pay_now"

	// OptionCloseAnyway means close with the balance unpaid; the override
	// is recorded in the transition's event description.
	OptionCloseAnyway ConflictOption = "close_anyway"

	// OptionCancel means abandon the transition.
	OptionCancel ConflictOption = "cancel"
)

// Decision is the structured outcome of proposing a transition. Exactly one
// of the kinds applies; the payload fields are populated per kind.
type Decision struct {
	kind DecisionKind

	// RequiredFields lists missing metadata for DecisionNeedsInput.
	RequiredFields []string

	// BalanceDue and Options are populated for DecisionBalanceConflict.
	BalanceDue kernel.Money
	Options    []ConflictOption
}

// Kind returns the decision's classification.
func (d Decision) Kind() DecisionKind {
	return d.kind
}

// IsCommit reports whether the proposal may be committed.
func (d Decision) IsCommit() bool {
	return d.kind == DecisionCommit
}

// TransitionGuard validates proposed status changes against the per-target
// data requirements and the balance constraint on closing. It never mutates
// the order; committing a DecisionCommit outcome is the caller's job.
type TransitionGuard struct{}

// NewTransitionGuard creates a transition guard.
func NewTransitionGuard() TransitionGuard {
	return TransitionGuard{}
}

// Propose evaluates moving the order to target with the supplied metadata.
//
// Outcomes:
//   - an error for transitions the state machine forbids outright (out of a
//     closed status, unknown target, no-op transition)
//   - DecisionNeedsInput when target-required metadata is missing
//   - DecisionBalanceConflict when target is Delivered, the balance exceeds
//     the cent tolerance, and no close-anyway override was given
//   - DecisionCommit otherwise
//
// closeAnyway is the caller's explicit resolution of a prior balance
// conflict; it bypasses only the balance check, never the metadata rules.
func (TransitionGuard) Propose(
	wo *workorder.WorkOrder,
	target workorder.Status,
	metadata workorder.StatusMetadata,
	closeAnyway bool,
) (Decision, error) {
	if err := wo.Validate(); err != nil {
		return Decision{}, err
	}
	if err := metadata.Validate(); err != nil {
		return Decision{}, err
	}

	if _, err := wo.Status().TransitionTo(target); err != nil {
		return Decision{}, err
	}

	if missing := metadata.RequiredFieldsFor(target); len(missing) > 0 {
		return Decision{
			kind:           DecisionNeedsInput,
			RequiredFields: missing,
		}, nil
	}

	if target == workorder.Delivered && !closeAnyway && !wo.IsPaid() {
		return Decision{
			kind:       DecisionBalanceConflict,
			BalanceDue: wo.BalanceDue(),
			Options:    []ConflictOption{OptionPayNow, OptionCloseAnyway, OptionCancel},
		}, nil
	}

	return Decision{kind: DecisionCommit}, nil
}
