// Package fit adjusts the {parameters} of a formula to data. It supports
// weighted nonlinear least squares and orthogonal distance regression, and
// can seed the initial guess with a differential evolution search.
package fit

import (
	"fmt"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"

	"github.com/HamletTheHamster/labutils/formula"
)

type problem struct {
	f     *formula.Formula
	x, y  []float64
	beta0 []float64
	opts  Options
	log   *slog.Logger
}

// Fit fits the formula src to (x, y). Without Beta0 it first searches for
// an initial guess with differential evolution, falling back to all ones
// when the search fails.
func Fit(src string, x, y []float64, opts *Options) (*Result, error) {
	return run(src, x, y, opts, true)
}

// SimpleFit is Fit without the initial search: a nil Beta0 starts from zeros.
func SimpleFit(src string, x, y []float64, opts *Options) (*Result, error) {
	return run(src, x, y, opts, false)
}

func run(src string, x, y []float64, opts *Options, search bool) (*Result, error) {
	o := opts.withDefaults()
	f, err := formula.Parse(src, formula.WithVariable(o.Variable))
	if err != nil {
		return nil, fmt.Errorf("fit: %w", err)
	}
	np := len(f.Params)
	if np == 0 {
		return nil, fmt.Errorf("fit %q: %w", src, formula.ErrNoParams)
	}
	if err := checkData(x, y, o); err != nil {
		return nil, err
	}
	if len(x) < np {
		return nil, fmt.Errorf("%w: %d points for %d parameters", ErrTooFewPoints, len(x), np)
	}
	if o.Bounds != nil {
		if err := o.Bounds.validate(np); err != nil {
			return nil, err
		}
	}

	log := o.Logger.With(slog.String("formula", src))
	p := &problem{f: f, x: x, y: y, opts: o, log: log}

	switch {
	case o.Beta0 != nil:
		if len(o.Beta0) != np {
			return nil, fmt.Errorf("%w: beta0 has %d values for %d parameters", ErrLength, len(o.Beta0), np)
		}
		p.beta0 = append([]float64(nil), o.Beta0...)
	case search:
		b := o.searchBounds(np, x, y)
		p.beta0, err = findBeta(f, x, y, b, o.DE, log)
		if err != nil {
			log.Warn("initial parameter search failed, starting from ones", "error", err)
			p.beta0 = make([]float64, np)
			for i := range p.beta0 {
				p.beta0[i] = 1
			}
		}
	default:
		p.beta0 = make([]float64, np)
	}
	log.Debug("fitting", slog.Int("points", len(x)), slog.Any("params", f.Params), slog.Any("beta0", p.beta0))

	var res *Result
	switch o.Method {
	case MethodSimple:
		res, err = leastSquares(p)
	case MethodODR:
		res, err = orthogonal(p)
	default:
		return nil, fmt.Errorf("%w: %q", ErrMethod, o.Method)
	}
	if err != nil {
		return nil, fmt.Errorf("fit %q: %w", src, err)
	}
	if res.Status == optimize.IterationLimit.String() {
		log.Warn("solver stopped at the iteration limit", slog.Int("max_iter", o.MaxIter))
	}
	log.Debug("fit done", slog.String("status", res.Status), slog.Float64("chi2", res.ChiSq))

	if o.Out != nil {
		if err := res.Fprint(o.Out, o.Measure); err != nil {
			return res, err
		}
		if o.PrintFunc {
			if _, err := fmt.Fprintln(o.Out, res.Func()); err != nil {
				return res, err
			}
		}
	}
	return res, nil
}

func checkData(x, y []float64, o Options) error {
	if len(x) != len(y) {
		return fmt.Errorf("%w: %d x values, %d y values", ErrLength, len(x), len(y))
	}
	if o.YErr != nil && len(o.YErr) != len(y) {
		return fmt.Errorf("%w: %d y errors for %d points", ErrLength, len(o.YErr), len(y))
	}
	if o.XErr != nil && len(o.XErr) != len(x) {
		return fmt.Errorf("%w: %d x errors for %d points", ErrLength, len(o.XErr), len(x))
	}
	return nil
}

// result assembles the common part of a Result. delta holds the ODR
// corrections to x and is nil for least squares.
func (p *problem) result(
	params []float64,
	cov *mat.SymDense,
	chi float64,
	status optimize.Status,
	delta []float64,
) *Result {
	n, np := len(p.x), len(params)
	r := &Result{
		Formula:   p.f,
		Method:    p.opts.Method,
		Values:    params,
		Errors:    stdErrors(cov),
		Cov:       cov,
		ChiSq:     chi,
		DOF:       n - np,
		RedChiSq:  math.NaN(),
		Residuals: make([]float64, n),
		Status:    status.String(),
		Beta0:     p.beta0,
		Delta:     delta,
	}
	if r.DOF > 0 {
		r.RedChiSq = chi / float64(r.DOF)
	}
	for i, x := range p.x {
		if delta != nil {
			x += delta[i]
		}
		r.Residuals[i] = p.y[i] - p.f.Eval(x, params)
	}
	return r
}
