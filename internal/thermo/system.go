package thermo

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// System is an immutable chemical system definition. It is safe for
// concurrent use.
type System struct {
	species   []Species
	index     map[string]int
	elements  []string
	elemIndex map[string]int
	mw        []float64
	// atoms[e][k] is the number of atoms of element e in species k.
	atoms [][]float64
}

// NewSystem validates the species and builds a system from them.
func NewSystem(species ...Species) (*System, error) {
	if len(species) == 0 {
		return nil, configErr(ErrEmptySystem, "", "")
	}

	s := &System{
		species:   make([]Species, len(species)),
		index:     make(map[string]int, len(species)),
		elemIndex: make(map[string]int),
		mw:        make([]float64, len(species)),
	}

	for k, sp := range species {
		if sp.Name == "" {
			return nil, configErr(ErrBadComposition, "", "species without a name")
		}
		if _, dup := s.index[sp.Name]; dup {
			return nil, configErr(ErrDuplicateSpecies, sp.Name, "")
		}
		if sp.Thermo == nil {
			return nil, configErr(ErrMissingThermo, sp.Name, "")
		}
		if _, ok := sp.Thermo.(EntropyModel); sp.Phase == Gas && !ok {
			return nil, configErr(ErrMissingThermo, sp.Name, "gas species needs entropy data")
		}
		if len(sp.Composition) == 0 {
			return nil, configErr(ErrBadComposition, sp.Name, "no elements")
		}

		comp := make(map[string]float64, len(sp.Composition))
		for el, n := range sp.Composition {
			w, ok := atomicWeights[el]
			if !ok {
				return nil, configErr(ErrUnknownElement, sp.Name, el)
			}
			if n <= 0 {
				return nil, configErr(ErrBadComposition, sp.Name, fmt.Sprintf("%s count %g", el, n))
			}
			comp[el] = n
			s.mw[k] += w * n
			if _, seen := s.elemIndex[el]; !seen {
				s.elemIndex[el] = -1
			}
		}

		sp.Composition = comp
		s.species[k] = sp
		s.index[sp.Name] = k
	}

	for el := range s.elemIndex {
		s.elements = append(s.elements, el)
	}
	sort.Strings(s.elements)
	s.atoms = make([][]float64, len(s.elements))
	for e, el := range s.elements {
		s.elemIndex[el] = e
		s.atoms[e] = make([]float64, len(s.species))
		for k, sp := range s.species {
			s.atoms[e][k] = sp.Composition[el]
		}
	}

	return s, nil
}

func (s *System) NumSpecies() int  { return len(s.species) }
func (s *System) NumElements() int { return len(s.elements) }

// Species returns the k-th species definition.
func (s *System) Species(k int) Species { return s.species[k] }

// Elements returns the element symbols in system order.
func (s *System) Elements() []string {
	out := make([]string, len(s.elements))
	copy(out, s.elements)
	return out
}

// SpeciesIndex returns the position of a species, or -1.
func (s *System) SpeciesIndex(name string) int {
	if k, ok := s.index[name]; ok {
		return k
	}
	return -1
}

// Atoms returns the number of atoms of element e in species k.
func (s *System) Atoms(e, k int) float64 { return s.atoms[e][k] }

// MolecularWeight of species k in kg/kmol.
func (s *System) MolecularWeight(k int) float64 { return s.mw[k] }

// Require fails with a ConfigurationError naming the first missing species.
func (s *System) Require(names ...string) error {
	for _, name := range names {
		if _, ok := s.index[name]; !ok {
			return configErr(ErrUnknownSpecies, name, "")
		}
	}
	return nil
}

// ParseComposition reads a composition such as "H2:2, O2:1" and returns
// normalised fractions over the system species. Entries are separated by
// commas or whitespace; the value after the last ':' is the amount.
func (s *System) ParseComposition(comp string) ([]float64, error) {
	out := make([]float64, len(s.species))
	fields := strings.FieldsFunc(comp, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
	if len(fields) == 0 {
		return nil, configErr(ErrBadComposition, "", "empty composition")
	}

	for _, f := range fields {
		name, amount := f, 1.0
		if i := strings.LastIndex(f, ":"); i >= 0 {
			name = f[:i]
			v, err := strconv.ParseFloat(f[i+1:], 64)
			if err != nil {
				return nil, configErr(ErrBadComposition, name, err.Error())
			}
			amount = v
		}
		k, ok := s.index[name]
		if !ok {
			return nil, configErr(ErrUnknownSpecies, name, "")
		}
		if amount < 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
			return nil, configErr(ErrBadComposition, name, fmt.Sprintf("amount %g", amount))
		}
		out[k] += amount
	}

	if err := normalize(out); err != nil {
		return nil, err
	}
	return out, nil
}

// MoleToMass converts mole fractions to mass fractions.
func (s *System) MoleToMass(x []float64) []float64 {
	y := make([]float64, len(x))
	var sum float64
	for k, xk := range x {
		y[k] = xk * s.mw[k]
		sum += y[k]
	}
	for k := range y {
		y[k] /= sum
	}
	return y
}

// MassToMole converts mass fractions to mole fractions.
func (s *System) MassToMole(y []float64) []float64 {
	x := make([]float64, len(y))
	var sum float64
	for k, yk := range y {
		x[k] = yk / s.mw[k]
		sum += x[k]
	}
	for k := range x {
		x[k] /= sum
	}
	return x
}

// MeanMolecularWeight of a mixture given by mass fractions, kg/kmol.
func (s *System) MeanMolecularWeight(y []float64) float64 {
	var inv float64
	for k, yk := range y {
		inv += yk / s.mw[k]
	}
	return 1 / inv
}

// EnthalpyMass returns the mixture enthalpy in J/kg.
func (s *System) EnthalpyMass(t float64, y []float64) float64 {
	var h float64
	for k, yk := range y {
		if yk == 0 {
			continue
		}
		h += yk / s.mw[k] * s.species[k].Thermo.HRT(t)
	}
	return h * GasConstant * t
}

// CpMass returns the frozen mixture heat capacity in J/(kg K).
func (s *System) CpMass(t float64, y []float64) float64 {
	var cp float64
	for k, yk := range y {
		if yk == 0 {
			continue
		}
		cp += yk / s.mw[k] * s.species[k].Thermo.CpR(t)
	}
	return cp * GasConstant
}

// ElementMoles returns kmol of each element per kg of mixture.
func (s *System) ElementMoles(y []float64) []float64 {
	b := make([]float64, len(s.elements))
	for e := range s.elements {
		for k, yk := range y {
			b[e] += s.atoms[e][k] * yk / s.mw[k]
		}
	}
	return b
}

// CheckFractions validates a fraction vector against the system and returns
// a normalised copy.
func (s *System) CheckFractions(f []float64) ([]float64, error) {
	if len(f) != len(s.species) {
		return nil, configErr(ErrBadComposition, "", fmt.Sprintf("got %d fractions for %d species", len(f), len(s.species)))
	}
	out := make([]float64, len(f))
	for k, v := range f {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, configErr(ErrBadComposition, s.species[k].Name, fmt.Sprintf("fraction %g", v))
		}
		out[k] = v
	}
	if err := normalize(out); err != nil {
		return nil, err
	}
	return out, nil
}

func normalize(f []float64) error {
	var sum float64
	for _, v := range f {
		sum += v
	}
	if sum <= 0 {
		return configErr(ErrBadComposition, "", "fractions sum to zero")
	}
	for k := range f {
		f[k] /= sum
	}
	return nil
}
