// Package identifier abstracts the deployment-dependent id scheme.
// Early deployments used sequential integers; later ones use random
// UUIDs. Storage and handlers only ever talk to a Strategy so neither
// format is hardcoded anywhere else.
package identifier

import (
	"fmt"
	"regexp"

	"github.com/google/uuid"
)

type Strategy interface {
	Name() string
	// ClientSuppliesID reports whether callers provide ids up front
	// (uuid deployments) or the database assigns them (serial
	// deployments).
	ClientSuppliesID() bool
	// Generate returns a fresh identifier, or "" when the database
	// assigns ids itself.
	Generate() string
	// Validate gates an id-bearing path or body parameter before it is
	// allowed anywhere near a query.
	Validate(id string) error
}

func FromName(name string) (Strategy, error) {
	switch name {
	case "uuid":
		return UUIDStrategy{}, nil
	case "serial":
		return SerialStrategy{}, nil
	}
	return nil, fmt.Errorf("unknown identifier strategy %q", name)
}

type UUIDStrategy struct{}

func (UUIDStrategy) Name() string { return "uuid" }

func (UUIDStrategy) ClientSuppliesID() bool { return true }

func (UUIDStrategy) Generate() string {
	return uuid.NewString()
}

func (UUIDStrategy) Validate(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%q is not a valid uuid", id)
	}
	return nil
}

var serialPattern = regexp.MustCompile(`^[1-9][0-9]*$`)

type SerialStrategy struct{}

func (SerialStrategy) Name() string { return "serial" }

func (SerialStrategy) ClientSuppliesID() bool { return false }

func (SerialStrategy) Generate() string {
	return ""
}

func (SerialStrategy) Validate(id string) error {
	if !serialPattern.MatchString(id) {
		return fmt.Errorf("%q is not a valid numeric id", id)
	}
	return nil
}
