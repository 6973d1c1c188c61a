package sweep

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/san-kum/ispsweep/internal/thermo"
)

// ErrRatioBounds is returned for a negative or non-finite mixture ratio.
var ErrRatioBounds = errors.New("sweep: oxidizer-to-fuel ratio must be finite and non-negative")

// Evaluator mixes and equilibrates one mixture ratio at a time. The
// reference streams are never modified; every evaluation works on copies.
type Evaluator struct {
	mu       sync.Mutex
	solver   Solver
	fuel     thermo.Quantity
	oxidizer thermo.Quantity
}

// NewEvaluator builds the fuel and oxidizer streams described by setup on
// sys. A system lacking one of setup.Products fails with a
// *thermo.ConfigurationError. The evaluator takes ownership of solver.
func NewEvaluator(sys *thermo.System, setup Setup, solver Solver) (*Evaluator, error) {
	if solver == nil {
		return nil, errors.New("sweep: nil solver")
	}
	if !(setup.ChamberPressure > 0) || math.IsInf(setup.ChamberPressure, 0) {
		return nil, fmt.Errorf("sweep: chamber pressure must be positive, got %g", setup.ChamberPressure)
	}

	if err := sys.Require(setup.Products...); err != nil {
		return nil, fmt.Errorf("products: %w", err)
	}

	fuel, err := sys.NewQuantity(setup.Fuel.Temperature, setup.ChamberPressure, setup.Fuel.Composition, 1.0, thermo.HP)
	if err != nil {
		return nil, fmt.Errorf("fuel: %w", err)
	}
	ox, err := sys.NewQuantity(setup.Oxidizer.Temperature, setup.ChamberPressure, setup.Oxidizer.Composition, 8.0, thermo.HP)
	if err != nil {
		return nil, fmt.Errorf("oxidizer: %w", err)
	}

	return &Evaluator{solver: solver, fuel: fuel, oxidizer: ox}, nil
}

// Fuel returns a copy of the fuel reference stream.
func (e *Evaluator) Fuel() thermo.Quantity { return e.fuel.WithMass(e.fuel.Mass) }

// Oxidizer returns a copy of the oxidizer reference stream.
func (e *Evaluator) Oxidizer() thermo.Quantity { return e.oxidizer.WithMass(e.oxidizer.Mass) }

// Evaluate mixes 1 kg of fuel with of kg of oxidizer at constant enthalpy
// and pressure and brings the mixture to HP equilibrium. The returned point
// carries the ratio, and the mixed mass once mixing succeeded, even when an
// error is returned.
func (e *Evaluator) Evaluate(of float64) (Point, error) {
	pt := Point{OF: of}
	if of < 0 || math.IsNaN(of) || math.IsInf(of, 0) {
		return pt, fmt.Errorf("%w: %g", ErrRatioBounds, of)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	mix, err := e.fuel.WithMass(1.0).Add(e.oxidizer.WithMass(of))
	if err != nil {
		return pt, fmt.Errorf("mixing: %w", err)
	}
	pt.Mass = mix.Mass

	if err := e.solver.SetTPY(mix.State.T, mix.State.P, mix.State.Y); err != nil {
		return pt, err
	}
	if err := e.solver.Equilibrate(thermo.HP); err != nil {
		return pt, err
	}

	pt.T = e.solver.T()
	pt.W = e.solver.MeanMolecularWeight()
	pt.Gamma = e.solver.CpMass() / e.solver.CvMass()
	pt.Converged = true
	return pt, nil
}
