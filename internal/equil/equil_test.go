package equil

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/ispsweep/internal/thermo"
)

// propellantMix returns the HP-mixed LH2/LOX state for the given ratio.
func propellantMix(t *testing.T, sys *thermo.System, of float64) thermo.State {
	t.Helper()

	fuel, err := sys.NewQuantity(20.27, 20e6, "H2(L):1", 1.0, thermo.HP)
	if err != nil {
		t.Fatal(err)
	}
	ox, err := sys.NewQuantity(90.17, 20e6, "O2(L):1", of, thermo.HP)
	if err != nil {
		t.Fatal(err)
	}
	mix, err := fuel.Add(ox)
	if err != nil {
		t.Fatal(err)
	}
	return mix.State
}

func TestEquilibrateHPCombustion(t *testing.T) {
	sys := thermo.Builtin()

	for _, of := range []float64{3, 4, 6, 8, 10} {
		sol := New(sys)
		if err := sol.SetState(propellantMix(t, sys, of)); err != nil {
			t.Fatal(err)
		}

		h0 := sol.EnthalpyMass()
		b0 := sys.ElementMoles(sol.Y())

		if err := sol.Equilibrate(thermo.HP); err != nil {
			t.Fatalf("of=%g: equilibrate failed: %v", of, err)
		}

		if sol.T() < 2300 || sol.T() > 4500 {
			t.Errorf("of=%g: expected flame temperature 2300-4500 K, got %.1f", of, sol.T())
		}
		if w := sol.MeanMolecularWeight(); w < 7 || w > 25 {
			t.Errorf("of=%g: mean molecular weight out of range: %f", of, w)
		}
		if gamma := sol.CpMass() / sol.CvMass(); gamma <= 1 || gamma > 1.67 {
			t.Errorf("of=%g: gamma out of range: %f", of, gamma)
		}
		if sol.P() != 20e6 {
			t.Errorf("of=%g: pressure changed to %f", of, sol.P())
		}

		if dh := math.Abs(sol.EnthalpyMass() - h0); dh > 1e-2*math.Abs(h0) {
			t.Errorf("of=%g: enthalpy not conserved: %g -> %g J/kg", of, h0, sol.EnthalpyMass())
		}
		b := sys.ElementMoles(sol.Y())
		for e := range b0 {
			if math.Abs(b[e]-b0[e]) > 1e-5*b0[e] {
				t.Errorf("of=%g: element %s not conserved: %g -> %g", of, sys.Elements()[e], b0[e], b[e])
			}
		}

		y := sol.Y()
		if y[sys.SpeciesIndex("H2(L)")] != 0 || y[sys.SpeciesIndex("O2(L)")] != 0 {
			t.Errorf("of=%g: condensed reactants left in products", of)
		}
	}
}

func TestEquilibrateHPWaterDominatesNearStoichiometric(t *testing.T) {
	sys := thermo.Builtin()
	sol := New(sys)
	if err := sol.SetState(propellantMix(t, sys, 7.0)); err != nil {
		t.Fatal(err)
	}
	if err := sol.Equilibrate(thermo.HP); err != nil {
		t.Fatal(err)
	}

	x := sol.X()
	water := x[sys.SpeciesIndex("H2O")]
	for k, xk := range x {
		if k != sys.SpeciesIndex("H2O") && xk > water {
			t.Errorf("%s (%f) exceeds H2O (%f)", sys.Species(k).Name, xk, water)
		}
	}
	if x[sys.SpeciesIndex("OH")] <= 0 {
		t.Error("expected dissociation products at flame temperature")
	}
}

func TestEquilibrateTP(t *testing.T) {
	sys := thermo.Builtin()
	sol := New(sys)
	if err := sol.SetTPX(1500, thermo.OneAtm, "H2:2, O2:1"); err != nil {
		t.Fatal(err)
	}

	if err := sol.Equilibrate(thermo.TP); err != nil {
		t.Fatalf("equilibrate failed: %v", err)
	}
	if sol.T() != 1500 {
		t.Errorf("TP equilibrium changed temperature to %f", sol.T())
	}
	if x := sol.X()[sys.SpeciesIndex("H2O")]; x < 0.99 {
		t.Errorf("expected nearly pure water at 1500 K, got x(H2O)=%f", x)
	}
}

func TestEquilibrateIsDeterministic(t *testing.T) {
	sys := thermo.Builtin()
	st := propellantMix(t, sys, 5.5)

	a, b := New(sys), New(sys)
	for _, sol := range []*Solution{a, b} {
		if err := sol.SetState(st); err != nil {
			t.Fatal(err)
		}
		if err := sol.Equilibrate(thermo.HP); err != nil {
			t.Fatal(err)
		}
	}

	if a.T() != b.T() || a.MeanMolecularWeight() != b.MeanMolecularWeight() {
		t.Errorf("results differ: T %v/%v, W %v/%v", a.T(), b.T(), a.MeanMolecularWeight(), b.MeanMolecularWeight())
	}
	if a.Iterations() == 0 || a.Iterations() > DefaultConfig().MaxIterations {
		t.Errorf("unexpected iteration count %d", a.Iterations())
	}
}

func TestEquilibratePureFuelFails(t *testing.T) {
	sys := thermo.Builtin()
	sol := New(sys)
	if err := sol.SetState(propellantMix(t, sys, 0)); err != nil {
		t.Fatal(err)
	}
	before := sol.State()

	err := sol.Equilibrate(thermo.HP)
	var eqErr *EquilibrationError
	if !errors.As(err, &eqErr) {
		t.Fatalf("expected *EquilibrationError, got %v", err)
	}
	if eqErr.Constraint != thermo.HP {
		t.Errorf("expected HP in error, got %s", eqErr.Constraint)
	}

	after := sol.State()
	if after.T != before.T {
		t.Errorf("failed equilibrate changed temperature: %f -> %f", before.T, after.T)
	}
	for k := range before.Y {
		if after.Y[k] != before.Y[k] {
			t.Fatalf("failed equilibrate changed composition")
		}
	}
}

func TestEquilibrateUnsupported(t *testing.T) {
	sol := New(thermo.Builtin())
	if err := sol.SetTPX(1000, thermo.OneAtm, "H2:1"); err != nil {
		t.Fatal(err)
	}
	if err := sol.Equilibrate(thermo.Constraint(9)); !errors.Is(err, ErrUnsupported) {
		t.Errorf("expected ErrUnsupported, got %v", err)
	}
}

func TestEquilibrateIterationLimit(t *testing.T) {
	sys := thermo.Builtin()
	cfg := DefaultConfig()
	cfg.MaxIterations = 1

	sol := NewWithConfig(sys, cfg)
	if err := sol.SetState(propellantMix(t, sys, 6)); err != nil {
		t.Fatal(err)
	}
	if err := sol.Equilibrate(thermo.HP); !errors.Is(err, ErrNoConvergence) {
		t.Errorf("expected ErrNoConvergence, got %v", err)
	}
}

func TestSetTPYValidation(t *testing.T) {
	sys := thermo.Builtin()
	sol := New(sys)
	y := make([]float64, sys.NumSpecies())
	y[0] = 1

	tests := []struct {
		name string
		t, p float64
		y    []float64
	}{
		{"zero temperature", 0, 1e5, y},
		{"negative pressure", 300, -1, y},
		{"short fractions", 300, 1e5, []float64{1}},
		{"NaN temperature", math.NaN(), 1e5, y},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := sol.SetTPY(tt.t, tt.p, tt.y); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}
