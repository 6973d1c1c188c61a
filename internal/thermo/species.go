package thermo

import "math"

const (
	// GasConstant is the universal gas constant in J/(kmol K).
	GasConstant = 8314.462618

	// OneAtm is the reference pressure of the species data in Pa.
	OneAtm = 101325.0
)

// Phase of a species.
type Phase int

const (
	Gas Phase = iota
	Condensed
)

func (p Phase) String() string {
	if p == Condensed {
		return "condensed"
	}
	return "gas"
}

// Model gives the non-dimensional heat capacity and enthalpy of a species.
type Model interface {
	CpR(t float64) float64
	HRT(t float64) float64
	Range() (lo, hi float64)
}

// EntropyModel is a Model that also knows the standard-state entropy.
// Species taking part in product equilibrium must implement it.
type EntropyModel interface {
	Model
	SR(t float64) float64
}

// Species is a named substance with its elemental composition.
type Species struct {
	Name        string
	Phase       Phase
	Composition map[string]float64
	Thermo      Model
}

// NASA7 holds two-range NASA 7-coefficient polynomials.
type NASA7 struct {
	TMin, TMid, TMax float64
	Low, High        [7]float64
}

func (n NASA7) coeffs(t float64) *[7]float64 {
	if t < n.TMid {
		return &n.Low
	}
	return &n.High
}

func (n NASA7) CpR(t float64) float64 {
	a := n.coeffs(t)
	return a[0] + t*(a[1]+t*(a[2]+t*(a[3]+t*a[4])))
}

func (n NASA7) HRT(t float64) float64 {
	a := n.coeffs(t)
	return a[0] + t*(a[1]/2+t*(a[2]/3+t*(a[3]/4+t*a[4]/5))) + a[5]/t
}

func (n NASA7) SR(t float64) float64 {
	a := n.coeffs(t)
	return a[0]*math.Log(t) + t*(a[1]+t*(a[2]/2+t*(a[3]/3+t*a[4]/4))) + a[6]
}

func (n NASA7) Range() (float64, float64) { return n.TMin, n.TMax }

// ConstCp is a constant heat capacity model anchored at an assigned molar
// enthalpy H0 (J/kmol) at temperature T0. It carries no entropy, so species
// using it can only appear as reactants.
type ConstCp struct {
	T0, H0, Cp float64
	TMin, TMax float64
}

func (c ConstCp) CpR(float64) float64 { return c.Cp / GasConstant }

func (c ConstCp) HRT(t float64) float64 {
	return (c.H0 + c.Cp*(t-c.T0)) / (GasConstant * t)
}

func (c ConstCp) Range() (float64, float64) { return c.TMin, c.TMax }
