package sweep

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
)

// ErrNoFactory is returned when a parallel sweep has no way to build the
// extra evaluators.
var ErrNoFactory = errors.New("sweep: parallel run requires an evaluator factory")

// Factory builds an independent evaluator for one worker.
type Factory func() (*Evaluator, error)

type Options struct {
	// Workers > 1 runs points concurrently, one evaluator per worker.
	Workers int
	OnError Policy
	Factory Factory
}

// PointError reports the failure of one sweep point.
type PointError struct {
	Index int
	OF    float64
	Err   error
}

func (e *PointError) Error() string {
	return fmt.Sprintf("point %d (of_ratio=%g): %v", e.Index, e.OF, e.Err)
}

func (e *PointError) Unwrap() error {
	return e.Err
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	switch {
	case n <= 0:
		return nil
	case n == 1:
		return []float64{lo}
	}
	out := floats.Span(make([]float64, n), lo, hi)
	out[n-1] = hi
	return out
}

// Run evaluates every ratio and returns the results in input order.
func Run(ctx context.Context, ev *Evaluator, ratios []float64, opts Options) (Table, error) {
	if ev == nil {
		return nil, errors.New("sweep: nil evaluator")
	}
	table := make(Table, len(ratios))

	var err error
	if opts.Workers <= 1 || len(ratios) < 2 {
		err = runSequential(ctx, ev, ratios, opts.OnError, table)
	} else {
		err = runParallel(ctx, ev, ratios, opts, table)
	}
	if err != nil {
		return nil, err
	}
	return table, nil
}

func runSequential(ctx context.Context, ev *Evaluator, ratios []float64, policy Policy, table Table) error {
	for i, of := range ratios {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := evaluateInto(ev, i, of, policy, table); err != nil {
			return err
		}
	}
	return nil
}

func runParallel(ctx context.Context, ev *Evaluator, ratios []float64, opts Options, table Table) error {
	if opts.Factory == nil {
		return ErrNoFactory
	}
	workers := min(opts.Workers, len(ratios))

	pool := make(chan *Evaluator, workers)
	pool <- ev
	for w := 1; w < workers; w++ {
		wev, err := opts.Factory()
		if err != nil {
			return fmt.Errorf("worker %d: %w", w, err)
		}
		pool <- wev
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, of := range ratios {
		if gctx.Err() != nil {
			break
		}
		i, of := i, of
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			wev := <-pool
			defer func() { pool <- wev }()
			return evaluateInto(wev, i, of, opts.OnError, table)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// evaluateInto writes the result for index i into table, applying policy on
// failure.
func evaluateInto(ev *Evaluator, i int, of float64, policy Policy, table Table) error {
	pt, err := ev.Evaluate(of)
	if err != nil {
		perr := &PointError{Index: i, OF: of, Err: err}
		if policy != Skip {
			return perr
		}
		log.WithFields(log.Fields{"index": i, "of_ratio": of}).WithError(err).Warn("skipping point")
		pt.Converged = false
		pt.Err = err.Error()
		table[i] = pt
		return nil
	}

	log.WithFields(log.Fields{
		"index":    i,
		"of_ratio": of,
		"T":        pt.T,
		"W":        pt.W,
		"gamma":    pt.Gamma,
	}).Debug("point equilibrated")
	table[i] = pt
	return nil
}
