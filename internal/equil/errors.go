package equil

import (
	"errors"
	"fmt"

	"github.com/san-kum/ispsweep/internal/thermo"
)

// Solver failures.
var (
	// ErrNoConvergence indicates the iteration limit was reached.
	ErrNoConvergence = errors.New("equil: no convergence")

	// ErrSingular indicates the Newton system could not be solved.
	ErrSingular = errors.New("equil: singular iteration matrix")

	// ErrTemperatureRange indicates the equilibrium temperature lies outside
	// the range covered by the species data.
	ErrTemperatureRange = errors.New("equil: temperature outside species data range")

	// ErrInvalidState indicates a NaN or Inf appeared during iteration.
	ErrInvalidState = errors.New("equil: invalid state (NaN or Inf detected)")

	// ErrUnsupported indicates a constraint the solver does not handle.
	ErrUnsupported = errors.New("equil: unsupported constraint")

	// ErrNoProducts indicates no gas species can be formed from the elements present.
	ErrNoProducts = errors.New("equil: no product species for the given elements")
)

// EquilibrationError wraps a solver failure with the iteration context.
type EquilibrationError struct {
	Constraint  thermo.Constraint
	Iterations  int
	Temperature float64
	Wrapped     error
}

func (e *EquilibrationError) Error() string {
	return fmt.Sprintf("%s equilibrium failed after %d iterations (T=%.2f K): %v",
		e.Constraint, e.Iterations, e.Temperature, e.Wrapped)
}

func (e *EquilibrationError) Unwrap() error {
	return e.Wrapped
}
