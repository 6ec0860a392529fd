package fit

import (
	"errors"
	"fmt"
	"math"

	"github.com/maorshutman/lm"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"
)

var (
	ErrLength       = errors.New("fit: data lengths differ")
	ErrTooFewPoints = errors.New("fit: fewer points than parameters")
	ErrBounds       = errors.New("fit: invalid bounds")
	ErrMethod       = errors.New("fit: unknown method")
	ErrSingular     = errors.New("fit: singular normal equations")
)

type residualFunc func(dst, params []float64)

// solve runs Levenberg-Marquardt on the residual vector of length size.
// jac may be nil for a numerical Jacobian.
func solve(
	res residualFunc,
	jac func(dst *mat.Dense, params []float64),
	size int,
	init []float64,
	iterations int,
) (
	x []float64,
	status optimize.Status,
	err error,
) {
	// lm panics when the damped normal equations cannot be solved.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrSingular, r)
		}
	}()

	if jac == nil {
		nj := &lm.NumJac{Func: res}
		jac = nj.Jac
	}
	problem := lm.LMProblem{
		Dim:        len(init),
		Size:       size,
		Func:       res,
		Jac:        jac,
		InitParams: init,
		Tau:        1e-6,
		Eps1:       1e-8,
		Eps2:       1e-8,
	}
	result, err := lm.LM(problem, &lm.Settings{Iterations: iterations, ObjectiveTol: 1e-16})
	if err != nil {
		return nil, optimize.Failure, err
	}
	return result.X, result.Status, nil
}

// weights returns 1/σ per point. Points with no or zero uncertainty get
// weight 1.
func weights(sigma []float64, n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 1
		if sigma != nil && sigma[i] != 0 {
			w[i] = 1 / sigma[i]
		}
	}
	return w
}

// covariance returns (JᵀJ)⁻¹, or a matrix of +Inf when JᵀJ is singular.
func covariance(jac mat.Matrix) (*mat.SymDense, bool) {
	_, p := jac.Dims()
	var jtj mat.SymDense
	jtj.SymOuterK(1, jac.T())
	return invertSym(&jtj, p)
}

func invertSym(a *mat.SymDense, p int) (*mat.SymDense, bool) {
	cov := mat.NewSymDense(p, nil)
	var chol mat.Cholesky
	if chol.Factorize(a) {
		if err := chol.InverseTo(cov); err == nil {
			return cov, true
		}
	}
	for i := range p {
		for j := i; j < p; j++ {
			cov.SetSym(i, j, math.Inf(1))
		}
	}
	return cov, false
}

func scaleSym(c *mat.SymDense, s float64) {
	p := c.SymmetricDim()
	for i := range p {
		for j := i; j < p; j++ {
			c.SetSym(i, j, c.At(i, j)*s)
		}
	}
}

func stdErrors(c *mat.SymDense) []float64 {
	p := c.SymmetricDim()
	out := make([]float64, p)
	for i := range out {
		out[i] = math.Sqrt(c.At(i, i))
	}
	return out
}

func sumSquares(v []float64) float64 {
	s := 0.0
	for _, r := range v {
		s += r * r
	}
	return s
}

// leastSquares fits by minimising Σ((y - f(x))/σ)².
func leastSquares(p *problem) (*Result, error) {
	n, np := len(p.x), len(p.beta0)
	w := weights(p.opts.YErr, n)
	f := p.f
	res := func(dst, params []float64) {
		for i, x := range p.x {
			dst[i] = (p.y[i] - f.Eval(x, params)) * w[i]
		}
	}

	bounded := p.opts.Bounds.finite()
	solver := p.opts.Solver
	if solver == SolverAuto {
		solver = SolverLM
		if bounded {
			solver = SolverBounded
		}
	}

	var (
		params []float64
		status optimize.Status
		err    error
	)
	switch solver {
	case SolverLM:
		if bounded {
			return nil, fmt.Errorf("%w: solver %q does not take bounds", ErrBounds, SolverLM)
		}
		params, status, err = solve(res, nil, n, p.beta0, p.opts.MaxIter)
	case SolverBounded:
		b := UniformBounds(math.Inf(-1), math.Inf(1), np)
		if p.opts.Bounds != nil {
			b = *p.opts.Bounds
		}
		tr := transform{lo: b.Lower, hi: b.Upper}
		resU := func(dst, u []float64) { res(dst, tr.external(u)) }
		var u []float64
		u, status, err = solve(resU, nil, n, tr.internal(p.beta0), p.opts.MaxIter)
		if err == nil {
			params = tr.external(u)
		}
	default:
		return nil, fmt.Errorf("%w: solver %q", ErrMethod, solver)
	}
	if err != nil {
		return nil, err
	}

	jac := mat.NewDense(n, np, nil)
	nj := &lm.NumJac{Func: res}
	nj.Jac(jac, params)
	cov, ok := covariance(jac)
	if !ok {
		p.log.Warn("covariance of the parameters could not be estimated", "formula", f.Source)
	}

	weighted := make([]float64, n)
	res(weighted, params)
	chi := sumSquares(weighted)
	dof := n - np
	if ok && (p.opts.RelativeErr || p.opts.YErr == nil) {
		if dof > 0 {
			scaleSym(cov, chi/float64(dof))
		} else {
			scaleSym(cov, math.Inf(1))
		}
	}

	return p.result(params, cov, chi, status, nil), nil
}

// transform maps an unconstrained vector u onto the box [lo, hi], the
// MINUIT way: sin for two-sided limits, sqrt(u²+1) for one-sided ones.
type transform struct {
	lo, hi []float64
}

func (t transform) external(u []float64) []float64 {
	p := make([]float64, len(u))
	for i, v := range u {
		lo, hi := t.lo[i], t.hi[i]
		switch {
		case !math.IsInf(lo, 0) && !math.IsInf(hi, 0):
			p[i] = lo + (hi-lo)*(math.Sin(v)+1)/2
		case !math.IsInf(lo, 0):
			p[i] = lo - 1 + math.Sqrt(v*v+1)
		case !math.IsInf(hi, 0):
			p[i] = hi + 1 - math.Sqrt(v*v+1)
		default:
			p[i] = v
		}
	}
	return p
}

// internal is the inverse of external. Starting points on or outside a
// limit are moved inside it, where the transform still has a slope.
func (t transform) internal(p []float64) []float64 {
	u := make([]float64, len(p))
	for i, v := range p {
		lo, hi := t.lo[i], t.hi[i]
		switch {
		case !math.IsInf(lo, 0) && !math.IsInf(hi, 0):
			margin := 0.01 * (hi - lo)
			v = math.Min(math.Max(v, lo+margin), hi-margin)
			u[i] = math.Asin(2*(v-lo)/(hi-lo) - 1)
		case !math.IsInf(lo, 0):
			v = math.Max(v, lo+0.01)
			u[i] = math.Sqrt((v-lo+1)*(v-lo+1) - 1)
		case !math.IsInf(hi, 0):
			v = math.Min(v, hi-0.01)
			u[i] = math.Sqrt((hi-v+1)*(hi-v+1) - 1)
		default:
			u[i] = v
		}
	}
	return u
}
