package thermo

import (
	"errors"
	"fmt"
)

// Configuration errors for chemical system definitions.
var (
	// ErrEmptySystem indicates a system definition without species.
	ErrEmptySystem = errors.New("thermo: system has no species")

	// ErrDuplicateSpecies indicates the same species name was given twice.
	ErrDuplicateSpecies = errors.New("thermo: duplicate species")

	// ErrUnknownSpecies indicates a species the system does not define.
	ErrUnknownSpecies = errors.New("thermo: unknown species")

	// ErrMissingThermo indicates a species without usable thermodynamic data.
	ErrMissingThermo = errors.New("thermo: missing thermodynamic data")

	// ErrUnknownElement indicates an element without an atomic weight.
	ErrUnknownElement = errors.New("thermo: unknown element")

	// ErrBadComposition indicates a composition that cannot be used.
	ErrBadComposition = errors.New("thermo: invalid composition")

	// ErrOutsideRange indicates a temperature outside a species' data range.
	ErrOutsideRange = errors.New("thermo: temperature outside species data range")
)

// ConfigurationError reports a problem with a chemical system definition or
// with a composition given against one.
type ConfigurationError struct {
	Species string
	Detail  string
	Wrapped error
}

func (e *ConfigurationError) Error() string {
	msg := e.Wrapped.Error()
	if e.Species != "" {
		msg = fmt.Sprintf("%s %q", msg, e.Species)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *ConfigurationError) Unwrap() error {
	return e.Wrapped
}

func configErr(wrapped error, species, detail string) error {
	return &ConfigurationError{Species: species, Detail: detail, Wrapped: wrapped}
}
