// Package perf turns equilibrium chamber properties into ideal rocket
// performance.
//
// The specific impulse is that of an ideal nozzle with isentropic expansion
// at constant composition and constant gamma from the chamber pressure to
// the exit pressure:
//
//	Isp = (1/g0) * sqrt( 2γ/(γ-1) * (Ru T / W) * (1 - (pe/pc)^((γ-1)/γ)) )
package perf

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/ispsweep/internal/sweep"
)

// ErrDomain is wrapped by every NumericDomainError.
var ErrDomain = errors.New("perf: input outside the domain of the specific impulse formula")

// NumericDomainError reports inputs for which the formula has no real value.
type NumericDomainError struct {
	Gamma    float64
	Radicand float64
	Reason   string
}

func (e *NumericDomainError) Error() string {
	return fmt.Sprintf("%v: %s (gamma=%g, radicand=%g)", ErrDomain, e.Reason, e.Gamma, e.Radicand)
}

func (e *NumericDomainError) Unwrap() error {
	return ErrDomain
}

// Conditions fixes the constants and pressures used by the formula.
type Conditions struct {
	G0              float64 // m/s^2
	GasConstant     float64 // J/(kmol K)
	ExitPressure    float64 // Pa
	ChamberPressure float64 // Pa
}

func DefaultConditions() Conditions {
	return Conditions{
		G0:              9.807,
		GasConstant:     8314,
		ExitPressure:    101325,
		ChamberPressure: 20e6,
	}
}

// Validate checks the conditions on their own, independently of any point.
func (c Conditions) Validate() error {
	switch {
	case !(c.G0 > 0):
		return &NumericDomainError{Reason: fmt.Sprintf("g0 must be positive, got %g", c.G0)}
	case !(c.GasConstant > 0):
		return &NumericDomainError{Reason: fmt.Sprintf("gas constant must be positive, got %g", c.GasConstant)}
	case !(c.ExitPressure > 0) || !(c.ChamberPressure > 0):
		return &NumericDomainError{Reason: "pressures must be positive"}
	case c.ExitPressure >= c.ChamberPressure:
		return &NumericDomainError{Reason: fmt.Sprintf("exit pressure %g Pa not below chamber pressure %g Pa", c.ExitPressure, c.ChamberPressure)}
	}
	return nil
}

// SpecificImpulse returns the ideal specific impulse in seconds for chamber
// temperature t (K), mean molecular weight w (kg/kmol) and heat capacity
// ratio gamma.
func SpecificImpulse(gamma, t, w float64, c Conditions) (float64, error) {
	if err := c.Validate(); err != nil {
		return 0, err
	}
	if !(gamma > 1) || math.IsInf(gamma, 0) {
		return 0, &NumericDomainError{Gamma: gamma, Reason: "gamma must be greater than 1"}
	}
	if !(t > 0) || !(w > 0) {
		return 0, &NumericDomainError{Gamma: gamma, Reason: fmt.Sprintf("temperature %g K and molecular weight %g must be positive", t, w)}
	}

	expo := (gamma - 1) / gamma
	rad := (2 * gamma / (gamma - 1)) * (c.GasConstant * t / w) * (1 - math.Pow(c.ExitPressure/c.ChamberPressure, expo))
	if !(rad >= 0) || math.IsInf(rad, 0) {
		return 0, &NumericDomainError{Gamma: gamma, Radicand: rad, Reason: "radicand is not a finite non-negative number"}
	}
	return math.Sqrt(rad) / c.G0, nil
}

// ExhaustVelocity converts a specific impulse to an effective exhaust
// velocity in m/s.
func ExhaustVelocity(isp float64, c Conditions) float64 {
	return isp * c.G0
}

// Curve holds one specific impulse per sweep point, in table order. Points
// that did not converge hold NaN.
type Curve []float64

// Compute applies SpecificImpulse to every converged point of table.
func Compute(table sweep.Table, c Conditions) (Curve, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	curve := make(Curve, len(table))
	for i, pt := range table {
		if !pt.Converged {
			curve[i] = math.NaN()
			continue
		}
		isp, err := SpecificImpulse(pt.Gamma, pt.T, pt.W, c)
		if err != nil {
			return nil, fmt.Errorf("point %d (of_ratio=%g): %w", i, pt.OF, err)
		}
		curve[i] = isp
	}
	return curve, nil
}

// Optimum is the best point of a curve.
type Optimum struct {
	Index int     `json:"index"`
	OF    float64 `json:"of_ratio"`
	Isp   float64 `json:"isp"`
}

// ErrNoOptimum is returned when a curve has no finite value.
var ErrNoOptimum = errors.New("perf: curve has no finite value")

// FindOptimum returns the point of highest specific impulse. Non-finite
// values are ignored.
func FindOptimum(table sweep.Table, curve Curve) (Optimum, error) {
	if len(table) != len(curve) {
		return Optimum{}, fmt.Errorf("perf: table has %d points, curve has %d", len(table), len(curve))
	}

	vals := make([]float64, len(curve))
	finite := false
	for i, v := range curve {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			vals[i] = math.Inf(-1)
			continue
		}
		vals[i] = v
		finite = true
	}
	if !finite {
		return Optimum{}, ErrNoOptimum
	}

	i := floats.MaxIdx(vals)
	return Optimum{Index: i, OF: table[i].OF, Isp: curve[i]}, nil
}
