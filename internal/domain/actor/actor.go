package actor

import (
	"errors"
	"strings"
)

// ErrMissingActor is returned when an operation requiring an actor
// identity is invoked without one.
var ErrMissingActor = errors.New("actor identity is required")

// Actor identifies who performed a mutation. Every archive, restore,
// and log write carries one; handlers build it from the session.
type Actor struct {
	Name  string
	Email string
}

// Validate checks the actor carries a usable identity.
// PRE: Actor struct is populated
// POST: Returns nil if valid, ErrMissingActor otherwise
func (a Actor) Validate() error {
	if strings.TrimSpace(a.Name) == "" && strings.TrimSpace(a.Email) == "" {
		return ErrMissingActor
	}
	return nil
}
