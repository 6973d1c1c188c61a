// Package optim locates the mixture ratio of highest specific impulse more
// precisely than a sweep grid can.
package optim

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/ispsweep/internal/perf"
	"github.com/san-kum/ispsweep/internal/sweep"
)

const invPhi = 0.6180339887498949

// ErrBracket is returned for an empty or non-finite search interval.
var ErrBracket = errors.New("optim: invalid search interval")

// Objective is the function to maximise.
type Objective func(x float64) (float64, error)

type Result struct {
	X           float64
	F           float64
	Evaluations int
}

// Maximize runs a golden-section search for the maximum of a unimodal f on
// [lo, hi] until the interval is narrower than tol or maxEval evaluations
// have been spent.
func Maximize(ctx context.Context, f Objective, lo, hi, tol float64, maxEval int) (Result, error) {
	if !(hi > lo) || math.IsInf(lo, 0) || math.IsInf(hi, 0) {
		return Result{}, fmt.Errorf("%w: [%g, %g]", ErrBracket, lo, hi)
	}
	if !(tol > 0) {
		return Result{}, fmt.Errorf("optim: tolerance must be positive, got %g", tol)
	}

	n := 0
	eval := func(x float64) (float64, error) {
		n++
		v, err := f(x)
		if err != nil {
			return 0, fmt.Errorf("optim: evaluating %g: %w", x, err)
		}
		return v, nil
	}

	a, b := lo, hi
	c := b - invPhi*(b-a)
	d := a + invPhi*(b-a)
	fc, err := eval(c)
	if err != nil {
		return Result{Evaluations: n}, err
	}
	fd, err := eval(d)
	if err != nil {
		return Result{Evaluations: n}, err
	}

	for b-a > tol && (maxEval <= 0 || n < maxEval) {
		select {
		case <-ctx.Done():
			return Result{Evaluations: n}, ctx.Err()
		default:
		}

		if fc > fd {
			b, d, fd = d, c, fc
			c = b - invPhi*(b-a)
			if fc, err = eval(c); err != nil {
				return Result{Evaluations: n}, err
			}
		} else {
			a, c, fc = c, d, fd
			d = a + invPhi*(b-a)
			if fd, err = eval(d); err != nil {
				return Result{Evaluations: n}, err
			}
		}
	}

	if fc > fd {
		return Result{X: c, F: fc, Evaluations: n}, nil
	}
	return Result{X: d, F: fd, Evaluations: n}, nil
}

// SpecificImpulse returns an objective that evaluates one mixture ratio with
// ev and converts it to a specific impulse.
func SpecificImpulse(ev *sweep.Evaluator, c perf.Conditions) Objective {
	return func(of float64) (float64, error) {
		pt, err := ev.Evaluate(of)
		if err != nil {
			return 0, err
		}
		return perf.SpecificImpulse(pt.Gamma, pt.T, pt.W, c)
	}
}

// RefineOptimum searches between the neighbours of the best sweep point.
func RefineOptimum(ctx context.Context, ev *sweep.Evaluator, table sweep.Table, curve perf.Curve, c perf.Conditions, tol float64) (perf.Optimum, error) {
	best, err := perf.FindOptimum(table, curve)
	if err != nil {
		return perf.Optimum{}, err
	}

	lo, hi := table[best.Index].OF, table[best.Index].OF
	if best.Index > 0 {
		lo = table[best.Index-1].OF
	}
	if best.Index < len(table)-1 {
		hi = table[best.Index+1].OF
	}
	if !(hi > lo) {
		return best, nil
	}

	res, err := Maximize(ctx, SpecificImpulse(ev, c), lo, hi, tol, 200)
	if err != nil {
		return perf.Optimum{}, err
	}
	if res.F < best.Isp {
		return best, nil
	}
	return perf.Optimum{Index: best.Index, OF: res.X, Isp: res.F}, nil
}
