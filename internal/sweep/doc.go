// Package sweep evaluates a propellant pair across a range of
// oxidizer-to-fuel mass ratios.
//
// An [Evaluator] holds the two reference streams (fuel and oxidizer, both at
// the chamber pressure) and one equilibrium solver. For each ratio it mixes
// 1 kg of fuel with of_ratio kg of oxidizer at constant enthalpy and
// pressure, equilibrates the mixture at constant enthalpy and pressure and
// reports the flame temperature, mean molecular weight and frozen heat
// capacity ratio as a [Point].
//
// [Run] drives an evaluator over an ordered slice of ratios and returns a
// [Table] in input order.
//
// # Example
//
//	sys := thermo.Builtin()
//	ev, err := sweep.NewEvaluator(sys, sweep.DefaultSetup(), equil.New(sys))
//	if err != nil {
//	    return err
//	}
//	table, err := sweep.Run(ctx, ev, sweep.Linspace(3, 10, 200), sweep.Options{})
//
// # Thread Safety
//
// An Evaluator serializes access to its solver and may be shared, but calls
// on it never run concurrently. For a parallel sweep set [Options.Workers]
// and [Options.Factory]: each worker then gets its own evaluator.
package sweep
