// Package field implements the validated string values that make up a contact:
// names, phone numbers and birthdays.
//
// Every value is immutable once built. Mutators rebuild the value and swap it
// in only when the new input validates, so a failed update leaves the old value
// in place.
package field

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalid is wrapped by every ValidationError.
var ErrInvalid = errors.New("field: invalid value")

// ValidationError reports input that a field validator rejected.
type ValidationError struct {
	Field  string // "name", "phone" or "birthday".
	Raw    string // Input as given by the caller.
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %q is invalid: %s", e.Field, e.Raw, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalid
}

// Validator normalizes raw input or reports why it is unacceptable.
type Validator func(raw string) (string, error)

// Field holds a normalized string that passed its validator.
type Field struct {
	value string
}

// New runs validate over raw and returns the normalized field.
// A nil validator accepts raw unchanged.
func New(raw string, validate Validator) (Field, error) {
	if validate == nil {
		return Field{value: raw}, nil
	}
	v, err := validate(raw)
	if err != nil {
		return Field{}, err
	}
	return Field{value: v}, nil
}

// Value returns the normalized string.
func (f Field) Value() string {
	return f.value
}

func (f Field) String() string {
	return f.value
}

// IsZero reports whether the field was never set.
func (f Field) IsZero() bool {
	return f.value == ""
}

// Name is a contact name. Capitalization is the caller's concern.
type Name struct {
	Field
}

// NewName accepts any name that is not blank.
func NewName(raw string) (Name, error) {
	f, err := New(raw, validateName)
	if err != nil {
		return Name{}, err
	}
	return Name{Field: f}, nil
}

// Equal reports whether both names hold the same value.
func (n Name) Equal(other Name) bool {
	return n.value == other.value
}

func validateName(raw string) (string, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return "", &ValidationError{Field: "name", Raw: raw, Reason: "cannot be empty"}
	}
	return v, nil
}
