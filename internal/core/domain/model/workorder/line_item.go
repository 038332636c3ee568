package workorder

import (
	"errors"
	"fmt"

	"github.com/smartfixosapp/smartfixos/internal/core/domain/model/kernel"
	"github.com/smartfixosapp/smartfixos/internal/pkg/errs"
	"github.com/smartfixosapp/smartfixos/internal/pkg/guard"
)

// ErrLineItemIsNotConstructed is returned when a LineItem was not created via NewLineItem.
var ErrLineItemIsNotConstructed = errors.New("LineItem must be created via NewLineItem constructor")

// LineItemKind distinguishes billed products from billed labor.
type LineItemKind int

const (
	// LineItemUnknown represents an invalid kind.
	LineItemUnknown LineItemKind = iota

	// LineItemProduct is a physical part or accessory sold on the order.
	LineItemProduct

	// LineItemService is labor or diagnostic work billed on the order.
	LineItemService
)

func getLineItemKindStrings() map[LineItemKind]string {
	return map[LineItemKind]string{
		LineItemProduct: "product",
		LineItemService: "service",
	}
}

// LineItemKindFromString resolves a wire id to a LineItemKind.
func LineItemKindFromString(s string) (LineItemKind, error) {
	for kind, str := range getLineItemKindStrings() {
		if str == s {
			return kind, nil
		}
	}
	return LineItemUnknown, errs.NewValueIsInvalidErrorWithCause(
		"line item kind", fmt.Errorf("%q is not a known kind", s))
}

// Validate checks if the kind is valid.
func (k LineItemKind) Validate() error {
	if _, ok := getLineItemKindStrings()[k]; !ok {
		return errs.NewValueIsInvalidErrorWithCause(
			"line item kind", fmt.Errorf("%d is not a valid kind", k))
	}
	return nil
}

// String returns the wire id of the kind.
func (k LineItemKind) String() string {
	if str, ok := getLineItemKindStrings()[k]; ok {
		return str
	}
	return "unknown"
}

// LineItem is a billed entry on a work order. The source id is a weak
// reference to inventory; the item snapshot (name, price) belongs to the
// order and does not follow later catalog changes.
//
// LineItem is immutable; replacing an item means removing and re-adding it.
type LineItem struct {
	id        kernel.UUID
	kind      LineItemKind
	sourceID  *kernel.UUID
	name      string
	unitPrice kernel.Money
	quantity  int

	guard guard.ConstructorGuard
}

// NewLineItem creates a validated line item.
// Price must not be negative and quantity must be positive.
func NewLineItem(
	id kernel.UUID,
	kind LineItemKind,
	sourceID *kernel.UUID,
	name string,
	unitPrice kernel.Money,
	quantity int,
) (LineItem, error) {
	item := LineItem{
		sourceID: sourceID,
		guard:    guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		item.setID(id),
		item.setKind(kind),
		item.setName(name),
		item.setUnitPrice(unitPrice),
		item.setQuantity(quantity),
	); err != nil {
		return LineItem{}, err
	}

	return item, nil
}

// Validate ensures the item was created through NewLineItem.
func (li LineItem) Validate() error {
	return li.guard.Validate(ErrLineItemIsNotConstructed)
}

// ID returns the line item's unique identifier.
func (li LineItem) ID() kernel.UUID {
	return li.id
}

// Kind returns whether the item is a product or a service.
func (li LineItem) Kind() LineItemKind {
	return li.kind
}

// SourceID returns the weak inventory reference, nil for ad-hoc items.
func (li LineItem) SourceID() *kernel.UUID {
	return li.sourceID
}

// Name returns the item's billed name.
func (li LineItem) Name() string {
	return li.name
}

// UnitPrice returns the price per unit.
func (li LineItem) UnitPrice() kernel.Money {
	return li.unitPrice
}

// Quantity returns the billed quantity.
func (li LineItem) Quantity() int {
	return li.quantity
}

// Total returns unit price multiplied by quantity.
func (li LineItem) Total() kernel.Money {
	return li.unitPrice.MulQty(li.quantity)
}

func (li *LineItem) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	li.id = id
	return nil
}

func (li *LineItem) setKind(kind LineItemKind) error {
	if err := kind.Validate(); err != nil {
		return err
	}
	li.kind = kind
	return nil
}

func (li *LineItem) setName(name string) error {
	if name == "" {
		return errs.NewValueIsRequiredError("line item name")
	}
	li.name = name
	return nil
}

func (li *LineItem) setUnitPrice(price kernel.Money) error {
	if price.IsNegative() {
		return errs.NewValueIsInvalidErrorWithCause(
			"unit price", fmt.Errorf("%s is negative", price))
	}
	li.unitPrice = price
	return nil
}

func (li *LineItem) setQuantity(quantity int) error {
	if quantity <= 0 {
		return errs.NewValueIsInvalidErrorWithCause(
			"quantity", fmt.Errorf("%d is not greater than 0", quantity))
	}
	li.quantity = quantity
	return nil
}
