package thermo

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrIncompatible indicates quantities that cannot be combined.
	ErrIncompatible = errors.New("thermo: incompatible quantities")

	// ErrTemperatureSolve indicates no temperature matches a target enthalpy.
	ErrTemperatureSolve = errors.New("thermo: temperature for enthalpy did not converge")
)

// State is the intensive state of a mixture: temperature (K), pressure (Pa)
// and mass fractions indexed like the system species.
type State struct {
	T float64
	P float64
	Y []float64
}

func (st State) Clone() State {
	c := st
	c.Y = make([]float64, len(st.Y))
	copy(c.Y, st.Y)
	return c
}

// NewStateTPX builds a state from a mole-fraction composition string.
func (s *System) NewStateTPX(t, p float64, x string) (State, error) {
	xs, err := s.ParseComposition(x)
	if err != nil {
		return State{}, err
	}
	return s.NewStateTPY(t, p, s.MoleToMass(xs))
}

// NewStateTPY builds a state from mass fractions.
func (s *System) NewStateTPY(t, p float64, y []float64) (State, error) {
	if !(t > 0) || math.IsInf(t, 0) {
		return State{}, fmt.Errorf("thermo: temperature must be positive, got %g", t)
	}
	if !(p > 0) || math.IsInf(p, 0) {
		return State{}, fmt.Errorf("thermo: pressure must be positive, got %g", p)
	}
	ys, err := s.CheckFractions(y)
	if err != nil {
		return State{}, err
	}
	return State{T: t, P: p, Y: ys}, nil
}

// TemperatureForEnthalpy finds the temperature at which a mixture of mass
// fractions y has enthalpy h (J/kg), starting from guess.
func (s *System) TemperatureForEnthalpy(h float64, y []float64, guess float64) (float64, error) {
	t := guess
	if !(t > 0) {
		t = 300
	}
	for i := 0; i < 100; i++ {
		cp := s.CpMass(t, y)
		if !(cp > 0) {
			break
		}
		dt := (h - s.EnthalpyMass(t, y)) / cp
		next := t + dt
		if next <= 0 {
			next = t / 2
		}
		if math.Abs(next-t) <= 1e-10*t {
			return next, nil
		}
		t = next
	}
	return 0, fmt.Errorf("%w (target %g J/kg)", ErrTemperatureSolve, h)
}

// Quantity is a state with a mass (kg). Combining two quantities conserves
// mass, and enthalpy as well when Constant is HP.
type Quantity struct {
	sys      *System
	State    State
	Mass     float64
	Constant Constraint
}

// NewQuantity builds a quantity from a mole-fraction composition string.
// Every species present must have data covering t.
func (s *System) NewQuantity(t, p float64, x string, mass float64, c Constraint) (Quantity, error) {
	st, err := s.NewStateTPX(t, p, x)
	if err != nil {
		return Quantity{}, err
	}
	for k, yk := range st.Y {
		if yk == 0 {
			continue
		}
		if lo, hi := s.species[k].Thermo.Range(); t < lo || t > hi {
			return Quantity{}, configErr(ErrOutsideRange, s.species[k].Name, fmt.Sprintf("%g K not in %g-%g K", t, lo, hi))
		}
	}
	if mass < 0 || math.IsNaN(mass) || math.IsInf(mass, 0) {
		return Quantity{}, fmt.Errorf("thermo: mass must be non-negative, got %g", mass)
	}
	return Quantity{sys: s, State: st, Mass: mass, Constant: c}, nil
}

func (q Quantity) System() *System { return q.sys }

// WithMass returns a copy of q holding mass m.
func (q Quantity) WithMass(m float64) Quantity {
	c := q
	c.State = q.State.Clone()
	c.Mass = m
	return c
}

// EnthalpyMass returns the specific enthalpy in J/kg.
func (q Quantity) EnthalpyMass() float64 {
	return q.sys.EnthalpyMass(q.State.T, q.State.Y)
}

// Enthalpy returns the total enthalpy in J.
func (q Quantity) Enthalpy() float64 {
	return q.Mass * q.EnthalpyMass()
}

// Add combines q and o into a new quantity. Both must share a system and a
// pressure. The result takes q's constraint: HP solves the temperature that
// conserves total enthalpy, TP keeps q's temperature.
func (q Quantity) Add(o Quantity) (Quantity, error) {
	if q.sys == nil || q.sys != o.sys {
		return Quantity{}, fmt.Errorf("%w: different systems", ErrIncompatible)
	}
	if math.Abs(q.State.P-o.State.P) > 1e-9*math.Max(q.State.P, o.State.P) {
		return Quantity{}, fmt.Errorf("%w: pressures %g and %g Pa", ErrIncompatible, q.State.P, o.State.P)
	}
	m := q.Mass + o.Mass
	if !(m > 0) {
		return Quantity{}, fmt.Errorf("%w: total mass %g", ErrIncompatible, m)
	}

	y := make([]float64, len(q.State.Y))
	for k := range y {
		y[k] = (q.Mass*q.State.Y[k] + o.Mass*o.State.Y[k]) / m
	}

	t := q.State.T
	if q.Constant == HP {
		h := (q.Enthalpy() + o.Enthalpy()) / m
		guess := (q.Mass*q.State.T + o.Mass*o.State.T) / m
		var err error
		if t, err = q.sys.TemperatureForEnthalpy(h, y, guess); err != nil {
			return Quantity{}, err
		}
	}

	return Quantity{
		sys:      q.sys,
		State:    State{T: t, P: q.State.P, Y: y},
		Mass:     m,
		Constant: q.Constant,
	}, nil
}
