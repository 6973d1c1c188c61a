package equil

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/ispsweep/internal/thermo"
)

const (
	// ln(1e-8): species below this mole fraction are treated as trace.
	traceLn = -18.420681
	// -ln(1e-4): trace species may not grow past this in one step.
	traceCap = 9.2103404
	lnFloor  = -300.0
)

// Equilibrate brings the mixture to chemical equilibrium holding the pair
// of properties named by c. On failure the state is left unchanged and an
// *EquilibrationError is returned.
func (s *Solution) Equilibrate(c thermo.Constraint) error {
	if c != thermo.HP && c != thermo.TP {
		return &EquilibrationError{Constraint: c, Temperature: s.t, Wrapped: ErrUnsupported}
	}

	p, err := newProblem(s.sys, s.y, s.t, s.p, c, s.cfg)
	if err != nil {
		s.iters = 0
		return &EquilibrationError{Constraint: c, Temperature: s.t, Wrapped: err}
	}

	t, nj, iters, err := p.solve()
	s.iters = iters
	if err != nil {
		return &EquilibrationError{Constraint: c, Iterations: iters, Temperature: t, Wrapped: err}
	}

	y := make([]float64, s.sys.NumSpecies())
	var sum float64
	for j, k := range p.species {
		y[k] = nj[j] * s.sys.MolecularWeight(k)
		sum += y[k]
	}
	for k := range y {
		y[k] /= sum
	}
	s.t, s.y = t, y
	return nil
}

type problem struct {
	c       thermo.Constraint
	cfg     Config
	species []int // system indices of product species
	a       [][]float64
	b0      []float64 // kmol/kg of each active element
	h0      float64   // J/kg
	models  []thermo.EntropyModel
	lnP     float64
	t0      float64
}

func newProblem(sys *thermo.System, y []float64, t, pres float64, c thermo.Constraint, cfg Config) (*problem, error) {
	b := sys.ElementMoles(y)

	var elems []int
	active := make([]bool, sys.NumElements())
	for e, be := range b {
		if be > 0 {
			elems = append(elems, e)
			active[e] = true
		}
	}

	p := &problem{
		c:   c,
		cfg: cfg,
		h0:  sys.EnthalpyMass(t, y),
		lnP: math.Log(pres / thermo.OneAtm),
		t0:  t,
		b0:  make([]float64, len(elems)),
		a:   make([][]float64, len(elems)),
	}
	if c == thermo.HP {
		p.t0 = cfg.InitialTemperature
	}
	for i, e := range elems {
		p.b0[i] = b[e]
	}

	for k := 0; k < sys.NumSpecies(); k++ {
		sp := sys.Species(k)
		if sp.Phase != thermo.Gas {
			continue
		}
		model, ok := sp.Thermo.(thermo.EntropyModel)
		if !ok {
			continue
		}
		usable := true
		for e := 0; e < sys.NumElements(); e++ {
			if sys.Atoms(e, k) > 0 && !active[e] {
				usable = false
				break
			}
		}
		if usable {
			p.species = append(p.species, k)
			p.models = append(p.models, model)
		}
	}
	if len(p.species) == 0 {
		return nil, ErrNoProducts
	}

	for i, e := range elems {
		p.a[i] = make([]float64, len(p.species))
		for j, k := range p.species {
			p.a[i][j] = sys.Atoms(e, k)
		}
	}
	return p, nil
}

// solve runs the Newton iteration and returns the temperature, the product
// amounts in kmol/kg and the number of iterations used.
func (p *problem) solve() (float64, []float64, int, error) {
	ne, ng := len(p.b0), len(p.species)
	m := ne + 1
	if p.c == thermo.HP {
		m++
	}

	lnNj := make([]float64, ng)
	for j := range lnNj {
		lnNj[j] = math.Log(0.1 / float64(ng))
	}
	lnN := math.Log(0.1)
	lnT := math.Log(p.t0)

	nj := make([]float64, ng)
	hRT := make([]float64, ng)
	cpR := make([]float64, ng)
	mu := make([]float64, ng)
	dlnNj := make([]float64, ng)
	bk := make([]float64, ne)

	maxB0 := 0.0
	for _, v := range p.b0 {
		maxB0 = math.Max(maxB0, v)
	}

	g := mat.NewDense(m, m, nil)
	rhs := mat.NewVecDense(m, nil)
	x := mat.NewVecDense(m, nil)

	t := p.t0
	for iter := 1; iter <= p.cfg.MaxIterations; iter++ {
		t = math.Exp(lnT)
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return t, nil, iter, ErrInvalidState
		}
		if t < p.cfg.MinTemperature/10 || t > 10*p.cfg.MaxTemperature {
			return t, nil, iter, ErrTemperatureRange
		}

		n := math.Exp(lnN)
		var sumN, sumH, sumCp, sumH2, sumMu, sumHMu float64
		for j, model := range p.models {
			nj[j] = math.Exp(lnNj[j])
			hRT[j] = model.HRT(t)
			cpR[j] = model.CpR(t)
			mu[j] = hRT[j] - model.SR(t) + lnNj[j] - lnN + p.lnP

			sumN += nj[j]
			sumH += nj[j] * hRT[j]
			sumCp += nj[j] * cpR[j]
			sumH2 += nj[j] * hRT[j] * hRT[j]
			sumMu += nj[j] * mu[j]
			sumHMu += nj[j] * hRT[j] * mu[j]
		}

		g.Zero()
		for k := 0; k < ne; k++ {
			var b, amu, ah float64
			for j := 0; j < ng; j++ {
				akn := p.a[k][j] * nj[j]
				b += akn
				amu += akn * mu[j]
				ah += akn * hRT[j]
			}
			bk[k] = b

			for i := 0; i < ne; i++ {
				var v float64
				for j := 0; j < ng; j++ {
					v += p.a[k][j] * p.a[i][j] * nj[j]
				}
				g.Set(k, i, v)
			}
			g.Set(k, ne, b)
			g.Set(ne, k, b)
			rhs.SetVec(k, p.b0[k]-b+amu)

			if p.c == thermo.HP {
				g.Set(k, ne+1, ah)
				g.Set(ne+1, k, ah)
			}
		}
		g.Set(ne, ne, sumN-n)
		rhs.SetVec(ne, n-sumN+sumMu)

		if p.c == thermo.HP {
			g.Set(ne, ne+1, sumH)
			g.Set(ne+1, ne, sumH)
			g.Set(ne+1, ne+1, sumCp+sumH2)
			rhs.SetVec(ne+1, p.h0/(thermo.GasConstant*t)-sumH+sumHMu)
		}

		if err := x.SolveVec(g, rhs); err != nil {
			var cond mat.Condition
			if !errors.As(err, &cond) || math.IsInf(float64(cond), 1) {
				return t, nil, iter, fmt.Errorf("%w: %v", ErrSingular, err)
			}
		}

		dlnN := x.AtVec(ne)
		dlnT := 0.0
		if p.c == thermo.HP {
			dlnT = x.AtVec(ne + 1)
		}
		if math.IsNaN(dlnN) || math.IsNaN(dlnT) || math.IsInf(dlnN, 0) || math.IsInf(dlnT, 0) {
			return t, nil, iter, ErrInvalidState
		}

		for j := 0; j < ng; j++ {
			d := -mu[j] + dlnN + hRT[j]*dlnT
			for i := 0; i < ne; i++ {
				d += p.a[i][j] * x.AtVec(i)
			}
			dlnNj[j] = d
		}

		if p.converged(nj, dlnNj, sumN, n, dlnN, dlnT, bk, maxB0) {
			if t < p.cfg.MinTemperature || t > p.cfg.MaxTemperature {
				return t, nil, iter, ErrTemperatureRange
			}
			return t, nj, iter, nil
		}

		lambda := p.stepSize(lnNj, lnN, dlnNj, dlnN, dlnT)
		for j := range lnNj {
			lnNj[j] = math.Max(lnNj[j]+lambda*dlnNj[j], lnFloor)
		}
		lnN += lambda * dlnN
		lnT += lambda * dlnT
	}

	return t, nil, p.cfg.MaxIterations, ErrNoConvergence
}

func (p *problem) converged(nj, dlnNj []float64, sumN, n, dlnN, dlnT float64, bk []float64, maxB0 float64) bool {
	tol := p.cfg.MolesTolerance
	for j := range nj {
		if nj[j]*math.Abs(dlnNj[j])/sumN > tol {
			return false
		}
	}
	if n*math.Abs(dlnN)/sumN > tol {
		return false
	}
	if math.Abs(dlnT) > p.cfg.TemperatureTolerance {
		return false
	}
	for k := range bk {
		if math.Abs(p.b0[k]-bk[k]) > p.cfg.ElementTolerance*maxB0 {
			return false
		}
	}
	return true
}

// stepSize limits the Newton update: major species, ln n and ln T may not
// change by more than a factor of e^0.4 in one step, and trace species may
// not grow past a mole fraction of 1e-4.
func (p *problem) stepSize(lnNj []float64, lnN float64, dlnNj []float64, dlnN, dlnT float64) float64 {
	big := 5 * math.Max(math.Abs(dlnT), math.Abs(dlnN))
	small := math.Inf(1)

	for j, d := range dlnNj {
		lnX := lnNj[j] - lnN
		if lnX > traceLn {
			if d > big {
				big = d
			}
			continue
		}
		if d >= 0 && d != dlnN {
			small = math.Min(small, math.Abs((-lnX-traceCap)/(d-dlnN)))
		}
	}

	lambda := 1.0
	if big > 2 {
		lambda = 2 / big
	}
	return math.Min(lambda, small)
}
