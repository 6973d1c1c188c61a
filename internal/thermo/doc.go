// Package thermo defines chemical systems and the thermodynamic states built
// on top of them.
//
// A [System] is an immutable set of species with their elemental make-up and
// thermodynamic data:
//
//   - [NASA7]: two-range 7-coefficient polynomials for gas-phase species
//   - [ConstCp]: constant heat capacity anchored at an assigned enthalpy, used
//     for cryogenic liquid reactants
//
// A [State] holds temperature, pressure and mass fractions over the species of
// a system, and a [Quantity] adds a mass to a state so that two quantities can
// be combined while conserving total mass and enthalpy:
//
//	sys := thermo.Builtin()
//	fuel, _ := sys.NewQuantity(20.27, 20e6, "H2(L):1", 1.0, thermo.HP)
//	ox, _ := sys.NewQuantity(90.17, 20e6, "O2(L):1", 6.0, thermo.HP)
//	mix, _ := fuel.Add(ox)
//
// Enthalpies are in J/kmol (molar) or J/kg (mass), matching [GasConstant].
package thermo
