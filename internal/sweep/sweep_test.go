package sweep_test

import (
	"context"
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/ispsweep/internal/equil"
	"github.com/san-kum/ispsweep/internal/sweep"
	"github.com/san-kum/ispsweep/internal/thermo"
)

// flakySolver fails the Equilibrate calls whose 1-based number is in failOn.
type flakySolver struct {
	sweep.Solver
	calls  int
	failOn map[int]bool
}

func (f *flakySolver) Equilibrate(c thermo.Constraint) error {
	f.calls++
	if f.failOn[f.calls] {
		return &equil.EquilibrationError{Constraint: c, Wrapped: equil.ErrNoConvergence}
	}
	return f.Solver.Equilibrate(c)
}

func newEvaluator(sys *thermo.System) *sweep.Evaluator {
	ev, err := sweep.NewEvaluator(sys, sweep.DefaultSetup(), equil.New(sys))
	Expect(err).NotTo(HaveOccurred())
	return ev
}

var _ = Describe("Linspace", func() {
	It("includes both ends", func() {
		r := sweep.Linspace(3, 10, 200)
		Expect(r).To(HaveLen(200))
		Expect(r[0]).To(Equal(3.0))
		Expect(r[199]).To(Equal(10.0))
		for i := 1; i < len(r); i++ {
			Expect(r[i]).To(BeNumerically(">", r[i-1]))
		}
	})

	It("handles degenerate counts", func() {
		Expect(sweep.Linspace(3, 10, 0)).To(BeEmpty())
		Expect(sweep.Linspace(3, 10, 1)).To(Equal([]float64{3}))
		Expect(sweep.Linspace(0, 1, 3)).To(Equal([]float64{0, 0.5, 1}))
	})
})

var _ = Describe("ParsePolicy", func() {
	It("defaults to abort", func() {
		p, err := sweep.ParsePolicy("")
		Expect(err).NotTo(HaveOccurred())
		Expect(p).To(Equal(sweep.Abort))
	})

	It("accepts skip", func() {
		p, err := sweep.ParsePolicy("Skip")
		Expect(err).NotTo(HaveOccurred())
		Expect(p).To(Equal(sweep.Skip))
		Expect(p.String()).To(Equal("skip"))
	})

	It("rejects unknown values", func() {
		_, err := sweep.ParsePolicy("retry")
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Evaluator", func() {
	var (
		sys *thermo.System
		ev  *sweep.Evaluator
	)

	BeforeEach(func() {
		sys = thermo.Builtin()
		ev = newEvaluator(sys)
	})

	It("builds HP reference streams at chamber pressure", func() {
		fuel, ox := ev.Fuel(), ev.Oxidizer()
		Expect(fuel.Mass).To(Equal(1.0))
		Expect(ox.Mass).To(Equal(8.0))
		Expect(fuel.Constant).To(Equal(thermo.HP))
		Expect(ox.Constant).To(Equal(thermo.HP))
		Expect(fuel.State.T).To(Equal(20.27))
		Expect(ox.State.T).To(Equal(90.17))
		Expect(fuel.State.P).To(Equal(20e6))
		Expect(ox.State.P).To(Equal(20e6))
	})

	It("records the mixed mass as fuel plus oxidizer", func() {
		for _, of := range []float64{3, 4.5, 6.25, 10} {
			pt, err := ev.Evaluate(of)
			Expect(err).NotTo(HaveOccurred())
			Expect(pt.Mass).To(Equal(1.0 + of))
			Expect(pt.OF).To(Equal(of))
		}
	})

	It("leaves the reference streams untouched", func() {
		_, err := ev.Evaluate(5)
		Expect(err).NotTo(HaveOccurred())
		Expect(ev.Fuel().Mass).To(Equal(1.0))
		Expect(ev.Oxidizer().Mass).To(Equal(8.0))
		Expect(ev.Oxidizer().State.T).To(Equal(90.17))
	})

	It("gives identical results for the same ratio", func() {
		a, err := ev.Evaluate(5.5)
		Expect(err).NotTo(HaveOccurred())
		_, err = ev.Evaluate(9)
		Expect(err).NotTo(HaveOccurred())
		b, err := ev.Evaluate(5.5)
		Expect(err).NotTo(HaveOccurred())
		Expect(b).To(Equal(a))
	})

	It("fails to equilibrate pure fuel", func() {
		pt, err := ev.Evaluate(0)
		var eqErr *equil.EquilibrationError
		Expect(errors.As(err, &eqErr)).To(BeTrue())
		Expect(pt.Converged).To(BeFalse())
		Expect(pt.Mass).To(Equal(1.0))
	})

	It("rejects negative and non-finite ratios", func() {
		for _, of := range []float64{-1, math.NaN(), math.Inf(1)} {
			_, err := ev.Evaluate(of)
			Expect(err).To(MatchError(sweep.ErrRatioBounds))
		}
	})

	It("rejects unknown reactants", func() {
		setup := sweep.DefaultSetup()
		setup.Fuel.Composition = "CH4:1"
		_, err := sweep.NewEvaluator(sys, setup, equil.New(sys))
		Expect(err).To(MatchError(thermo.ErrUnknownSpecies))
	})

	It("rejects a system without the combustion products", func() {
		full := thermo.Builtin()
		var species []thermo.Species
		for k := 0; k < full.NumSpecies(); k++ {
			switch sp := full.Species(k); sp.Name {
			case "H2O", "OH", "HO2", "H2O2":
			default:
				species = append(species, sp)
			}
		}
		dry, err := thermo.NewSystem(species...)
		Expect(err).NotTo(HaveOccurred())

		_, err = sweep.NewEvaluator(dry, sweep.DefaultSetup(), equil.New(dry))
		Expect(err).To(MatchError(thermo.ErrUnknownSpecies))
		var cfgErr *thermo.ConfigurationError
		Expect(errors.As(err, &cfgErr)).To(BeTrue())
		Expect(cfgErr.Species).To(Equal("H2O"))
	})

	It("rejects a reactant temperature outside its data range", func() {
		setup := sweep.DefaultSetup()
		setup.Fuel.Temperature = 300
		_, err := sweep.NewEvaluator(sys, setup, equil.New(sys))
		Expect(err).To(MatchError(thermo.ErrOutsideRange))
	})

	It("rejects a non-positive chamber pressure", func() {
		setup := sweep.DefaultSetup()
		setup.ChamberPressure = 0
		_, err := sweep.NewEvaluator(sys, setup, equil.New(sys))
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Run", func() {
	var sys *thermo.System

	BeforeEach(func() {
		sys = thermo.Builtin()
	})

	Describe("the default sweep", Ordered, func() {
		var (
			ratios []float64
			table  sweep.Table
		)

		BeforeAll(func() {
			ratios = sweep.Linspace(3, 10, 200)
			var err error
			table, err = sweep.Run(context.Background(), newEvaluator(thermo.Builtin()), ratios, sweep.Options{})
			Expect(err).NotTo(HaveOccurred())
		})

		It("keeps input order", func() {
			Expect(table).To(HaveLen(200))
			Expect(table.Ratios()).To(Equal(ratios))
			Expect(table[0].OF).To(Equal(3.0))
			Expect(table[199].OF).To(Equal(10.0))
			Expect(table.Failed()).To(BeZero())
		})

		It("produces physical flame properties", func() {
			for _, pt := range table {
				Expect(pt.Converged).To(BeTrue())
				Expect(pt.Gamma).To(BeNumerically(">", 1))
				Expect(pt.T).To(BeNumerically(">", 90.17))
				Expect(pt.T).To(BeNumerically(">", 2300))
				Expect(pt.T).To(BeNumerically("<", 4000))
				Expect(pt.W).To(BeNumerically(">", 2.016))
				Expect(pt.Mass).To(Equal(1.0 + pt.OF))
			}
		})

		It("matches a parallel sweep element-wise", func() {
			factory := func() (*sweep.Evaluator, error) {
				return sweep.NewEvaluator(sys, sweep.DefaultSetup(), equil.New(sys))
			}
			par, err := sweep.Run(context.Background(), newEvaluator(sys), ratios, sweep.Options{
				Workers: 4,
				Factory: factory,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(par).To(Equal(table))
		})
	})

	It("aborts on the first failed point by default", func() {
		solver := &flakySolver{Solver: equil.New(sys), failOn: map[int]bool{2: true}}
		ev, err := sweep.NewEvaluator(sys, sweep.DefaultSetup(), solver)
		Expect(err).NotTo(HaveOccurred())

		table, err := sweep.Run(context.Background(), ev, []float64{3, 4, 5}, sweep.Options{})
		Expect(table).To(BeNil())

		var perr *sweep.PointError
		Expect(errors.As(err, &perr)).To(BeTrue())
		Expect(perr.Index).To(Equal(1))
		Expect(perr.OF).To(Equal(4.0))
		Expect(err).To(MatchError(equil.ErrNoConvergence))
		Expect(solver.calls).To(Equal(2))
	})

	It("records failed points when skipping", func() {
		solver := &flakySolver{Solver: equil.New(sys), failOn: map[int]bool{2: true}}
		ev, err := sweep.NewEvaluator(sys, sweep.DefaultSetup(), solver)
		Expect(err).NotTo(HaveOccurred())

		table, err := sweep.Run(context.Background(), ev, []float64{3, 4, 5}, sweep.Options{OnError: sweep.Skip})
		Expect(err).NotTo(HaveOccurred())
		Expect(table).To(HaveLen(3))
		Expect(table.Failed()).To(Equal(1))

		Expect(table[0].Converged).To(BeTrue())
		Expect(table[1].Converged).To(BeFalse())
		Expect(table[1].OF).To(Equal(4.0))
		Expect(table[1].Mass).To(Equal(5.0))
		Expect(table[1].Err).To(ContainSubstring("no convergence"))
		Expect(table[2].Converged).To(BeTrue())
	})

	It("reports the failing point of a parallel sweep", func() {
		factory := func() (*sweep.Evaluator, error) {
			return sweep.NewEvaluator(sys, sweep.DefaultSetup(), equil.New(sys))
		}
		_, err := sweep.Run(context.Background(), newEvaluator(sys), []float64{3, 0, 5, 6}, sweep.Options{
			Workers: 2,
			Factory: factory,
		})
		var perr *sweep.PointError
		Expect(errors.As(err, &perr)).To(BeTrue())
		Expect(perr.Index).To(Equal(1))
	})

	It("needs a factory for parallel sweeps", func() {
		_, err := sweep.Run(context.Background(), newEvaluator(sys), []float64{3, 4}, sweep.Options{Workers: 2})
		Expect(err).To(MatchError(sweep.ErrNoFactory))
	})

	It("stops when the context is cancelled", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := sweep.Run(ctx, newEvaluator(sys), []float64{3, 4}, sweep.Options{})
		Expect(err).To(MatchError(context.Canceled))
	})
})
