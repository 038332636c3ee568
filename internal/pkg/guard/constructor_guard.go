package guard

import "errors"

// ErrDefaultConstructorGuard is returned by ConstructorGuard.Validate when no
// specific validation error is supplied, so validation of an unconstructed
// object always fails with a meaningful message.
var ErrDefaultConstructorGuard = errors.New("object must be created via its constructor")

// ConstructorGuard detects whether a value object, entity, or command was
// built through its designated constructor rather than as a zero value.
//
// Domain objects and use case commands embed a guard and set it in their
// constructor; Validate then distinguishes a properly built instance from a
// bare struct literal. This keeps invariants enforced at the construction
// boundary with a single flag.
//
// Example usage:
//
//	var ErrLineItemNotConstructed = errors.New("LineItem must be created via NewLineItem")
//
//	type LineItem struct {
//	    description string
//	    price       kernel.Money
//	    guard       guard.ConstructorGuard
//	}
//
//	func NewLineItem(description string, price kernel.Money) (LineItem, error) {
//	    if description == "" {
//	        return LineItem{}, errors.New("description is required")
//	    }
//	    return LineItem{
//	        description: description,
//	        price:       price,
//	        guard:       guard.NewConstructorGuard(),
//	    }, nil
//	}
//
//	func (li LineItem) Validate() error {
//	    return li.guard.Validate(ErrLineItemNotConstructed)
//	}
type ConstructorGuard struct {
	isConstructed bool
}

// NewConstructorGuard returns a guard that marks its holder as properly
// constructed. Call it from the constructor of the guarded type.
func NewConstructorGuard() ConstructorGuard {
	return ConstructorGuard{isConstructed: true}
}

// Validate returns nil when the holder was built through its constructor.
// Otherwise it returns validationError, or ErrDefaultConstructorGuard when
// validationError is nil.
//
// Call it first in the holder's own Validate method:
//
//	func (wo *WorkOrder) Validate() error {
//	    if err := wo.guard.Validate(ErrWorkOrderIsNotConstructed); err != nil {
//	        return err
//	    }
//	    // additional checks...
//	    return nil
//	}
func (g ConstructorGuard) Validate(validationError error) error {
	if validationError == nil {
		validationError = ErrDefaultConstructorGuard
	}
	if !g.isConstructed {
		return validationError
	}
	return nil
}
