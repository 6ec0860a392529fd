package fit

import (
	"fmt"
	"io"
	"log/slog"
	"math"

	"github.com/HamletTheHamster/labutils/measure"
)

// Method selects the regression.
type Method string

const (
	// MethodSimple is ordinary (optionally weighted) nonlinear least squares.
	MethodSimple Method = "simple"
	// MethodODR is orthogonal distance regression, using errors on both axes.
	MethodODR Method = "odr"
)

// Solver selects the least-squares engine used by MethodSimple.
type Solver string

const (
	// SolverAuto uses SolverLM unless finite bounds are set.
	SolverAuto Solver = ""
	// SolverLM is plain Levenberg-Marquardt and does not take bounds.
	SolverLM Solver = "lm"
	// SolverBounded runs Levenberg-Marquardt over a transform that keeps
	// every parameter inside its bounds.
	SolverBounded Solver = "bounded"
)

// ODRType selects between a full orthogonal fit and ordinary least squares
// with the ODR error model.
type ODRType int

const (
	ODRExplicit ODRType = iota
	ODROLS
)

// Bounds holds per-parameter limits. Use ±Inf for an open side.
type Bounds struct {
	Lower []float64
	Upper []float64
}

// UniformBounds applies the same limits to n parameters.
func UniformBounds(lo, hi float64, n int) Bounds {
	b := Bounds{Lower: make([]float64, n), Upper: make([]float64, n)}
	for i := range n {
		b.Lower[i], b.Upper[i] = lo, hi
	}
	return b
}

func (b Bounds) validate(n int) error {
	if len(b.Lower) != n || len(b.Upper) != n {
		return fmt.Errorf("%w: want %d lower and upper limits, got %d and %d", ErrBounds, n, len(b.Lower), len(b.Upper))
	}
	for i := range n {
		lo, hi := b.Lower[i], b.Upper[i]
		if math.IsNaN(lo) || math.IsNaN(hi) || lo >= hi {
			return fmt.Errorf("%w: parameter %d has lower %g >= upper %g", ErrBounds, i, lo, hi)
		}
	}
	return nil
}

// finite reports whether any limit is finite.
func (b *Bounds) finite() bool {
	if b == nil {
		return false
	}
	for i := range b.Lower {
		if !math.IsInf(b.Lower[i], -1) || !math.IsInf(b.Upper[i], 1) {
			return true
		}
	}
	return false
}

// capped replaces infinite limits with ±limit.
func (b Bounds) capped(limit float64) Bounds {
	out := Bounds{Lower: make([]float64, len(b.Lower)), Upper: make([]float64, len(b.Upper))}
	for i := range b.Lower {
		out.Lower[i] = math.Max(b.Lower[i], -limit)
		out.Upper[i] = math.Min(b.Upper[i], limit)
	}
	return out
}

// DEOptions tunes the differential evolution search that seeds the initial
// parameters. Zero fields take the defaults shown.
type DEOptions struct {
	MaxIter       int        // 1000
	PopSize       int        // 15, multiplied by the number of parameters
	Tol           float64    // 0.01
	Atol          float64    // 0
	Mutation      [2]float64 // {0.5, 1}, dithered once per generation
	Recombination float64    // 0.7
	Seed          uint64     // 0 draws a random seed
	Init          string     // "latinhypercube" or "random"
	NoPolish      bool
	Workers       int // 1
	// Callback is called after every generation; returning true stops the search.
	Callback func(best []float64, convergence float64) bool
}

func (d DEOptions) withDefaults() DEOptions {
	if d.MaxIter <= 0 {
		d.MaxIter = 1000
	}
	if d.PopSize <= 0 {
		d.PopSize = 15
	}
	if d.Tol <= 0 {
		d.Tol = 0.01
	}
	if d.Mutation == [2]float64{} {
		d.Mutation = [2]float64{0.5, 1}
	}
	if d.Recombination <= 0 {
		d.Recombination = 0.7
	}
	if d.Init == "" {
		d.Init = "latinhypercube"
	}
	if d.Workers <= 0 {
		d.Workers = 1
	}
	return d
}

// ODROptions tunes MethodODR.
type ODROptions struct {
	Type      ODRType
	DeltaInit []float64
}

// Options configures Fit and SimpleFit. A nil *Options means all defaults.
type Options struct {
	YErr []float64
	XErr []float64

	// Beta0 is the initial guess. When nil, Fit searches for one with
	// differential evolution and SimpleFit starts from zeros.
	Beta0 []float64

	// RelativeErr scales the covariance by the reduced chi-square, treating
	// YErr as relative weights rather than absolute standard deviations.
	RelativeErr bool

	Bounds *Bounds
	// SearchBounds limit the differential evolution search when Bounds
	// are not finite.
	SearchBounds *Bounds
	// DataSearchBounds searches within ±max(|x|, |y|).
	DataSearchBounds bool

	Method Method
	Solver Solver

	// Variable names the independent variable, overridden by a [name]
	// in the formula.
	Variable string

	MaxIter int // 1000
	DE      DEOptions
	ODR     ODROptions

	// Out receives one "name = value ± error" line per parameter.
	Out       io.Writer
	Measure   measure.Format
	PrintFunc bool

	Logger *slog.Logger
}

func (o *Options) withDefaults() Options {
	var out Options
	if o != nil {
		out = *o
	}
	if out.Method == "" {
		out.Method = MethodSimple
	}
	if out.MaxIter <= 0 {
		out.MaxIter = 1000
	}
	if out.Logger == nil {
		out.Logger = slog.New(slog.DiscardHandler)
	}
	out.DE = out.DE.withDefaults()
	return out
}

// searchBounds picks the box searched by differential evolution.
func (o *Options) searchBounds(n int, x, y []float64) Bounds {
	switch {
	case o.Bounds.finite():
		return o.Bounds.capped(1e9)
	case o.SearchBounds != nil:
		return o.SearchBounds.capped(1e9)
	case o.DataSearchBounds:
		m := 0.0
		for i := range x {
			m = math.Max(m, math.Max(math.Abs(x[i]), math.Abs(y[i])))
		}
		if m == 0 {
			m = 1
		}
		return UniformBounds(-m, m, n)
	}
	return UniformBounds(-1e9, 1e9, n)
}
