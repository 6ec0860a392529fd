package fit

import (
	"fmt"
	"io"
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/mat"

	"github.com/HamletTheHamster/labutils/formula"
	"github.com/HamletTheHamster/labutils/measure"
)

// Result holds the adjusted parameters and their standard errors.
type Result struct {
	Formula *formula.Formula
	Method  Method

	// Values and Errors follow the order of Formula.Params.
	Values []float64
	Errors []float64
	Cov    *mat.SymDense

	ChiSq    float64
	RedChiSq float64 // NaN when there are no degrees of freedom
	DOF      int

	// Residuals are y - f(x), unweighted. For ODR x includes Delta.
	Residuals []float64
	Delta     []float64

	Status string
	Beta0  []float64
}

// Measurement is one fitted parameter.
type Measurement struct {
	Name  string
	Value float64
	Error float64
}

// Measurements pairs every parameter name with its value and error.
func (r *Result) Measurements() []Measurement {
	out := make([]Measurement, len(r.Values))
	for i, name := range r.Formula.Params {
		out[i] = Measurement{Name: name, Value: r.Values[i], Error: r.Errors[i]}
	}
	return out
}

// Param looks up a parameter by name.
func (r *Result) Param(name string) (value, err float64, ok bool) {
	for i, p := range r.Formula.Params {
		if p == name {
			return r.Values[i], r.Errors[i], true
		}
	}
	return 0, 0, false
}

// Eval evaluates the fitted model at x.
func (r *Result) Eval(x float64) float64 {
	return r.Formula.Eval(x, r.Values)
}

// Func returns the formula with the fitted values substituted.
func (r *Result) Func() string {
	return r.Formula.Substitute(r.Values)
}

// Fprint writes one "name = value ± error" line per parameter.
func (r *Result) Fprint(w io.Writer, f measure.Format) error {
	for _, m := range r.Measurements() {
		if err := measure.Fprint(w, m.Name, m.Value, m.Error, f); err != nil {
			return err
		}
	}
	return nil
}

// ResidualStats summarises the unweighted residuals.
type ResidualStats struct {
	Mean   float64
	StdDev float64
	RMS    float64
	MaxAbs float64
}

// ResidualStats computes summary statistics of the residuals.
func (r *Result) ResidualStats() (ResidualStats, error) {
	var s ResidualStats
	data := stats.Float64Data(r.Residuals)
	var err error
	if s.Mean, err = stats.Mean(data); err != nil {
		return s, fmt.Errorf("residual mean: %w", err)
	}
	if s.StdDev, err = stats.StandardDeviationSample(data); err != nil {
		return s, fmt.Errorf("residual std: %w", err)
	}
	squares := make(stats.Float64Data, len(data))
	for i, v := range data {
		squares[i] = v * v
		s.MaxAbs = math.Max(s.MaxAbs, math.Abs(v))
	}
	ms, err := stats.Mean(squares)
	if err != nil {
		return s, err
	}
	s.RMS = math.Sqrt(ms)
	return s, nil
}
