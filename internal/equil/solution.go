package equil

import (
	"github.com/san-kum/ispsweep/internal/thermo"
)

type Config struct {
	MaxIterations      int
	InitialTemperature float64 // HP starting estimate, K
	MinTemperature     float64
	MaxTemperature     float64
	// Convergence on n_j|dln n_j|/sum(n_j) and n|dln n|/sum(n_j).
	MolesTolerance       float64
	TemperatureTolerance float64
	// Element balance, relative to the largest element amount.
	ElementTolerance float64
}

func DefaultConfig() Config {
	return Config{
		MaxIterations:        200,
		InitialTemperature:   3800,
		MinTemperature:       200,
		MaxTemperature:       6000,
		MolesTolerance:       0.5e-5,
		TemperatureTolerance: 1e-4,
		ElementTolerance:     1e-6,
	}
}

// Solution is a mutable mixture state on a chemical system.
type Solution struct {
	sys   *thermo.System
	cfg   Config
	t, p  float64
	y     []float64
	iters int
}

// New returns a solution at 300 K and one atmosphere, filled with the first
// species of the system.
func New(sys *thermo.System) *Solution {
	return NewWithConfig(sys, DefaultConfig())
}

func NewWithConfig(sys *thermo.System, cfg Config) *Solution {
	y := make([]float64, sys.NumSpecies())
	y[0] = 1
	return &Solution{sys: sys, cfg: cfg, t: 300, p: thermo.OneAtm, y: y}
}

func (s *Solution) System() *thermo.System { return s.sys }

// SetTPY sets temperature, pressure and mass fractions. Fractions are
// normalised.
func (s *Solution) SetTPY(t, p float64, y []float64) error {
	st, err := s.sys.NewStateTPY(t, p, y)
	if err != nil {
		return err
	}
	s.t, s.p, s.y = st.T, st.P, st.Y
	return nil
}

// SetTPX sets temperature, pressure and a mole-fraction composition string.
func (s *Solution) SetTPX(t, p float64, x string) error {
	st, err := s.sys.NewStateTPX(t, p, x)
	if err != nil {
		return err
	}
	s.t, s.p, s.y = st.T, st.P, st.Y
	return nil
}

// SetState applies an intensive state taken from a quantity.
func (s *Solution) SetState(st thermo.State) error {
	return s.SetTPY(st.T, st.P, st.Y)
}

// State returns a copy of the current state.
func (s *Solution) State() thermo.State {
	return thermo.State{T: s.t, P: s.p, Y: s.Y()}
}

func (s *Solution) T() float64 { return s.t }
func (s *Solution) P() float64 { return s.p }

func (s *Solution) Y() []float64 {
	out := make([]float64, len(s.y))
	copy(out, s.y)
	return out
}

func (s *Solution) X() []float64 { return s.sys.MassToMole(s.y) }

// MeanMolecularWeight in kg/kmol.
func (s *Solution) MeanMolecularWeight() float64 {
	return s.sys.MeanMolecularWeight(s.y)
}

// EnthalpyMass in J/kg.
func (s *Solution) EnthalpyMass() float64 {
	return s.sys.EnthalpyMass(s.t, s.y)
}

// CpMass is the frozen heat capacity at constant pressure, J/(kg K).
func (s *Solution) CpMass() float64 {
	return s.sys.CpMass(s.t, s.y)
}

// CvMass is the frozen heat capacity at constant volume from the ideal-gas
// relation cv = cp - R/W.
func (s *Solution) CvMass() float64 {
	return s.CpMass() - thermo.GasConstant/s.MeanMolecularWeight()
}

// Iterations used by the last Equilibrate call.
func (s *Solution) Iterations() int { return s.iters }
