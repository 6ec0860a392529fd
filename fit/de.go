package fit

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat"

	"github.com/HamletTheHamster/labutils/formula"
)

// SqErrSum is the sum of squared differences between y and the formula
// evaluated at x. Non-finite sums are reported as +Inf.
func SqErrSum(f *formula.Formula, x, y, params []float64) float64 {
	s := 0.0
	for i := range x {
		d := y[i] - f.Eval(x[i], params)
		s += d * d
	}
	if math.IsNaN(s) {
		return math.Inf(1)
	}
	return s
}

// FindBeta searches bounds for the parameters that minimise SqErrSum, using
// differential evolution (best/1/bin).
func FindBeta(f *formula.Formula, x, y []float64, bounds Bounds, de DEOptions) ([]float64, error) {
	return findBeta(f, x, y, bounds, de.withDefaults(), slog.New(slog.DiscardHandler))
}

func findBeta(
	f *formula.Formula,
	x, y []float64,
	bounds Bounds,
	de DEOptions,
	log *slog.Logger,
) (
	[]float64,
	error,
) {
	n := len(f.Params)
	if n == 0 {
		return nil, formula.ErrNoParams
	}
	if len(x) != len(y) {
		return nil, ErrLength
	}
	if err := bounds.validate(n); err != nil {
		return nil, err
	}
	for i := range n {
		if math.IsInf(bounds.Lower[i], 0) || math.IsInf(bounds.Upper[i], 0) {
			return nil, fmt.Errorf("%w: differential evolution needs finite bounds", ErrBounds)
		}
	}

	s := newSearch(f, x, y, bounds, de)
	best, err := s.run(log)
	if err != nil {
		return nil, err
	}
	if !de.NoPolish {
		best = s.polish(best, log)
	}
	return best, nil
}

type search struct {
	obj      func(p []float64) float64
	lo, span []float64
	de       DEOptions
	rng      *rand.Rand

	pop      [][]float64 // unit-cube coordinates
	energies []float64
}

func newSearch(f *formula.Formula, x, y []float64, b Bounds, de DEOptions) *search {
	seed := de.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	s := &search{
		obj:  func(p []float64) float64 { return SqErrSum(f, x, y, p) },
		lo:   b.Lower,
		span: make([]float64, len(b.Lower)),
		de:   de,
		rng:  rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
	floats.SubTo(s.span, b.Upper, b.Lower)
	return s
}

func (s *search) scale(unit []float64) []float64 {
	p := make([]float64, len(unit))
	for i, u := range unit {
		p[i] = s.lo[i] + u*s.span[i]
	}
	return p
}

func (s *search) init(m, n int) {
	s.pop = make([][]float64, m)
	for i := range s.pop {
		s.pop[i] = make([]float64, n)
	}
	if s.de.Init == "random" {
		for _, c := range s.pop {
			for j := range c {
				c[j] = s.rng.Float64()
			}
		}
		return
	}
	// Latin hypercube: one sample per stratum and dimension, strata
	// shuffled independently per dimension.
	seg := 1 / float64(m)
	for j := range n {
		order := s.rng.Perm(m)
		for i, k := range order {
			s.pop[i][j] = seg*s.rng.Float64() + float64(k)*seg
		}
	}
}

// evaluate fills energies for the given candidates on de.Workers goroutines.
func (s *search) evaluate(cands [][]float64, energies []float64) {
	if s.de.Workers <= 1 {
		for i, c := range cands {
			energies[i] = s.obj(s.scale(c))
		}
		return
	}
	var g errgroup.Group
	g.SetLimit(s.de.Workers)
	for i, c := range cands {
		g.Go(func() error {
			energies[i] = s.obj(s.scale(c))
			return nil
		})
	}
	_ = g.Wait()
}

func (s *search) promoteBest() {
	b := floats.MinIdx(s.energies)
	s.pop[0], s.pop[b] = s.pop[b], s.pop[0]
	s.energies[0], s.energies[b] = s.energies[b], s.energies[0]
}

// trial builds the best/1/bin candidate for member i.
func (s *search) trial(i int, scale float64) []float64 {
	m, n := len(s.pop), len(s.pop[0])
	r0, r1 := i, i
	for r0 == i {
		r0 = s.rng.IntN(m)
	}
	for r1 == i || r1 == r0 {
		r1 = s.rng.IntN(m)
	}
	t := append([]float64(nil), s.pop[i]...)
	fill := s.rng.IntN(n)
	for j := range n {
		if j == fill || s.rng.Float64() < s.de.Recombination {
			t[j] = s.pop[0][j] + scale*(s.pop[r0][j]-s.pop[r1][j])
		}
		if t[j] < 0 || t[j] > 1 {
			t[j] = s.rng.Float64()
		}
	}
	return t
}

func (s *search) converged() (bool, float64) {
	mean := stat.Mean(s.energies, nil)
	std := stat.PopStdDev(s.energies, nil)
	if math.IsNaN(std) || math.IsInf(mean, 0) {
		return false, 0
	}
	conv := math.Inf(1)
	if std > 0 {
		conv = s.de.Tol * math.Abs(mean) / std
	}
	return std <= s.de.Atol+s.de.Tol*math.Abs(mean), conv
}

func (s *search) run(log *slog.Logger) ([]float64, error) {
	n := len(s.lo)
	m := max(5, s.de.PopSize*n)
	s.init(m, n)
	s.energies = make([]float64, m)
	s.evaluate(s.pop, s.energies)
	s.promoteBest()

	mlo, mhi := s.de.Mutation[0], s.de.Mutation[1]
	for gen := range s.de.MaxIter {
		scale := mlo
		if mhi > mlo {
			scale = mlo + s.rng.Float64()*(mhi-mlo)
		}

		if s.de.Workers <= 1 {
			// immediate updating: a better trial replaces its parent and
			// may become the new best right away
			for i := range s.pop {
				t := s.trial(i, scale)
				e := s.obj(s.scale(t))
				if e <= s.energies[i] {
					s.pop[i], s.energies[i] = t, e
					if e <= s.energies[0] {
						s.promoteBest()
					}
				}
			}
		} else {
			trials := make([][]float64, m)
			for i := range trials {
				trials[i] = s.trial(i, scale)
			}
			te := make([]float64, m)
			s.evaluate(trials, te)
			for i := range trials {
				if te[i] <= s.energies[i] {
					s.pop[i], s.energies[i] = trials[i], te[i]
				}
			}
			s.promoteBest()
		}

		done, conv := s.converged()
		log.Debug("differential evolution", slog.Int("generation", gen), slog.Float64("best", s.energies[0]))
		if s.de.Callback != nil && s.de.Callback(s.scale(s.pop[0]), conv) {
			break
		}
		if done {
			break
		}
	}
	if math.IsInf(s.energies[0], 1) {
		return nil, errors.New("fit: no finite sum of squares inside the search bounds")
	}
	return s.scale(s.pop[0]), nil
}

// polish refines best with Nelder-Mead, clipped to the bounds, and keeps the
// result only if it improves the objective.
func (s *search) polish(best []float64, log *slog.Logger) []float64 {
	clip := func(p []float64) []float64 {
		out := make([]float64, len(p))
		for i, v := range p {
			out[i] = math.Min(math.Max(v, s.lo[i]), s.lo[i]+s.span[i])
		}
		return out
	}
	prob := optimize.Problem{Func: func(p []float64) float64 { return s.obj(clip(p)) }}
	res, err := optimize.Minimize(prob, best, nil, &optimize.NelderMead{})
	if res == nil {
		log.Debug("polish failed", "error", err)
		return best
	}
	cand := clip(res.X)
	if s.obj(cand) < s.obj(best) {
		return cand
	}
	return best
}
