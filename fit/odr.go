package fit

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"
)

var central = &fd.Settings{Formula: fd.Central}

// orthogonal fits by orthogonal distance regression. It minimises
//
//	Σ (ε_i/σy_i)² + (δ_i/σx_i)²,  ε_i = y_i - f(x_i + δ_i; β)
//
// jointly over β and the corrections δ. With ODROLS δ stays at zero.
func orthogonal(p *problem) (*Result, error) {
	n, np := len(p.x), len(p.beta0)
	wy := weights(p.opts.YErr, n)
	wx := weights(p.opts.XErr, n)
	f := p.f

	var (
		sol    []float64
		delta  []float64
		status optimize.Status
		err    error
	)
	if p.opts.ODR.Type == ODROLS {
		res := func(dst, beta []float64) {
			for i, x := range p.x {
				dst[i] = wy[i] * (p.y[i] - f.Eval(x, beta))
			}
		}
		sol, status, err = solve(res, nil, n, p.beta0, p.opts.MaxIter)
		delta = make([]float64, n)
	} else {
		init := make([]float64, np+n)
		copy(init, p.beta0)
		if d := p.opts.ODR.DeltaInit; d != nil {
			if len(d) != n {
				return nil, fmt.Errorf("%w: %d initial deltas for %d points", ErrLength, len(d), n)
			}
			copy(init[np:], d)
		}
		res := func(dst, q []float64) {
			beta, d := q[:np], q[np:]
			for i, x := range p.x {
				dst[i] = wy[i] * (p.y[i] - f.Eval(x+d[i], beta))
				dst[n+i] = wx[i] * d[i]
			}
		}
		jac := func(dst *mat.Dense, q []float64) {
			beta, d := q[:np], q[np:]
			dst.Zero()
			grad := make([]float64, np)
			for i, x := range p.x {
				g, dx := p.partials(grad, x+d[i], beta)
				for j, v := range g {
					dst.Set(i, j, -wy[i]*v)
				}
				dst.Set(i, np+i, -wy[i]*dx)
				dst.Set(n+i, np+i, wx[i])
			}
		}
		var q []float64
		q, status, err = solve(res, jac, 2*n, init, p.opts.MaxIter)
		if err == nil {
			sol, delta = q[:np], q[np:]
		}
	}
	if err != nil {
		return nil, err
	}

	// The β block of (JᵀJ)⁻¹ is the inverse of the Schur complement
	// Σ g_i g_iᵀ · wx_i²/(d_i² + wx_i²), where g_i and d_i are the
	// derivatives of the weighted residual i with respect to β and δ_i.
	schur := mat.NewSymDense(np, nil)
	grad := make([]float64, np)
	chi := 0.0
	for i, x := range p.x {
		xi := x + delta[i]
		g, dx := p.partials(grad, xi, sol)
		gi, di := make([]float64, np), -wy[i]*dx
		for j := range g {
			gi[j] = -wy[i] * g[j]
		}
		k := 1.0
		if p.opts.ODR.Type != ODROLS {
			k = wx[i] * wx[i] / (di*di + wx[i]*wx[i])
		}
		schur.SymRankOne(schur, k, mat.NewVecDense(np, gi))

		e := wy[i] * (p.y[i] - f.Eval(xi, sol))
		chi += e * e
		if p.opts.ODR.Type != ODROLS {
			chi += wx[i] * delta[i] * wx[i] * delta[i]
		}
	}
	cov, ok := invertSym(schur, np)
	if !ok {
		p.log.Warn("covariance of the parameters could not be estimated", "formula", f.Source)
	}
	if ok {
		if n > np {
			scaleSym(cov, chi/float64(n-np))
		} else {
			scaleSym(cov, math.Inf(1))
		}
	}
	return p.result(sol, cov, chi, status, delta), nil
}

// partials returns ∂f/∂β (written into grad) and ∂f/∂x at x.
func (p *problem) partials(grad []float64, x float64, beta []float64) ([]float64, float64) {
	g := fd.Gradient(grad, func(b []float64) float64 { return p.f.Eval(x, b) }, beta, central)
	dx := fd.Derivative(func(t float64) float64 { return p.f.Eval(t, beta) }, x, central)
	return g, dx
}
