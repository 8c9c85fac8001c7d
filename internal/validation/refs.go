// Package validation checks cross-entity references before a write is
// allowed to introduce them.
package validation

import "fmt"

type MaidFinder interface {
	MaidExists(id string) (bool, error)
}

// ReferenceError names the offending field so the API can surface a
// field-level 400 rather than a bare failure.
type ReferenceError struct {
	Field string
	ID    string
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("%s refers to a maid that does not exist: %s", e.Field, e.ID)
}

type Validator struct {
	maids MaidFinder
}

func NewValidator(maids MaidFinder) *Validator {
	return &Validator{maids: maids}
}

// RequireMaid passes silently when the referenced maid exists. A missing
// maid yields a *ReferenceError; storage failures propagate as-is.
func (v *Validator) RequireMaid(field, id string) error {
	exists, err := v.maids.MaidExists(id)
	if err != nil {
		return fmt.Errorf("failed to validate %s: %w", field, err)
	}
	if !exists {
		return &ReferenceError{Field: field, ID: id}
	}
	return nil
}
