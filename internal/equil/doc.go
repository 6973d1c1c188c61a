// Package equil computes chemical equilibrium of ideal-gas mixtures.
//
// A [Solution] is a mutable handle on one mixture state of a
// [thermo.System]. [Solution.Equilibrate] minimises the Gibbs energy of the
// gas-phase products at fixed enthalpy and pressure ([thermo.HP]) or fixed
// temperature and pressure ([thermo.TP]) using the element-potential method
// of Gordon and McBride (NASA RP-1311): a Newton iteration on the element
// potentials, ln n and ln T.
//
// Condensed species only take part as reactants. Elements absent from the
// reactants are dropped together with every species that contains them.
//
// # Example
//
//	sol := equil.New(thermo.Builtin())
//	_ = sol.SetTPY(60, 20e6, y)
//	if err := sol.Equilibrate(thermo.HP); err != nil {
//	    // *EquilibrationError
//	}
//	gamma := sol.CpMass() / sol.CvMass()
//
// # Thread Safety
//
// A Solution is NOT thread-safe. Use one Solution per goroutine.
package equil
