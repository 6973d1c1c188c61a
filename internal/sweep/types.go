package sweep

import (
	"fmt"
	"strings"

	"github.com/san-kum/ispsweep/internal/thermo"
)

// Solver is the part of an equilibrium solver the sweep needs.
// *equil.Solution satisfies it.
type Solver interface {
	SetTPY(t, p float64, y []float64) error
	Equilibrate(c thermo.Constraint) error
	T() float64
	MeanMolecularWeight() float64
	CpMass() float64
	CvMass() float64
}

// Reactant is one propellant stream: a mole-fraction composition string and
// its temperature in K.
type Reactant struct {
	Composition string
	Temperature float64
}

type Setup struct {
	Fuel            Reactant
	Oxidizer        Reactant
	ChamberPressure float64 // Pa
	// Products the system must define for the combustion equilibrium.
	Products []string
}

// DefaultSetup is liquid hydrogen and liquid oxygen at their normal boiling
// points feeding a 20 MPa chamber.
func DefaultSetup() Setup {
	return Setup{
		Fuel:            Reactant{Composition: "H2(L):1", Temperature: 20.27},
		Oxidizer:        Reactant{Composition: "O2(L):1", Temperature: 90.17},
		ChamberPressure: 20e6,
		Products:        []string{"H2", "O2", "H2O", "OH", "H", "O"},
	}
}

// Point is the equilibrium result at one mixture ratio.
type Point struct {
	OF    float64 // oxidizer-to-fuel mass ratio
	T     float64 // K
	W     float64 // kg/kmol
	Gamma float64 // cp/cv, frozen
	Mass  float64 // kg of mixed propellant

	Converged bool
	Err       string
}

// Table holds sweep points in input order.
type Table []Point

// Ratios returns the mixture ratio of every point.
func (t Table) Ratios() []float64 {
	out := make([]float64, len(t))
	for i, p := range t {
		out[i] = p.OF
	}
	return out
}

// Failed returns the number of points that did not converge.
func (t Table) Failed() int {
	n := 0
	for _, p := range t {
		if !p.Converged {
			n++
		}
	}
	return n
}

// Policy decides what happens when a point fails.
type Policy int

const (
	// Abort stops the sweep at the first failed point.
	Abort Policy = iota
	// Skip records the failed point as not converged and carries on.
	Skip
)

func (p Policy) String() string {
	switch p {
	case Abort:
		return "abort"
	case Skip:
		return "skip"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "abort":
		return Abort, nil
	case "skip":
		return Skip, nil
	default:
		return Abort, fmt.Errorf("unknown error policy %q (want abort or skip)", s)
	}
}
