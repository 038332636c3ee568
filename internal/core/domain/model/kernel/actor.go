package kernel

import (
	"errors"

	"github.com/smartfixosapp/smartfixos/internal/pkg/errs"
	"github.com/smartfixosapp/smartfixos/internal/pkg/guard"
)

// ErrActorIsNotConstructed is returned when an Actor was not created via NewActor.
var ErrActorIsNotConstructed = errors.New("Actor must be created via NewActor constructor")

// Actor identifies the staff member performing a mutation. Every committed
// change and every event is stamped with an actor; mutations are never
// performed anonymously.
//
// Actor is an immutable value object. The zero value is invalid and fails
// Validate.
type Actor struct {
	id    UUID
	name  string
	email string

	guard guard.ConstructorGuard
}

// NewActor creates an Actor with a validated identifier and a non-empty name.
// Email may be empty for accounts without a mailbox.
func NewActor(id UUID, name, email string) (Actor, error) {
	actor := Actor{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		actor.setID(id),
		actor.setName(name),
	); err != nil {
		return Actor{}, err
	}

	actor.email = email
	return actor, nil
}

// Validate ensures the Actor was created through NewActor.
func (a Actor) Validate() error {
	return a.guard.Validate(ErrActorIsNotConstructed)
}

// ID returns the actor's unique identifier.
func (a Actor) ID() UUID {
	return a.id
}

// Name returns the actor's display name.
func (a Actor) Name() string {
	return a.name
}

// Email returns the actor's email address, possibly empty.
func (a Actor) Email() string {
	return a.email
}

// IsEqual compares two actors by identifier.
func (a Actor) IsEqual(other Actor) bool {
	return a.id.IsEqual(other.id)
}

func (a *Actor) setID(id UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	a.id = id
	return nil
}

func (a *Actor) setName(name string) error {
	if name == "" {
		return errs.NewValueIsRequiredError("actor name")
	}
	a.name = name
	return nil
}
