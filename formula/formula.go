// Package formula parses and evaluates fit formulas such as
//
//	y = {A} * exp(-[t] / {tau}) + {C}
//
// Names in braces are the parameters to adjust. A name in square brackets
// marks the independent variable; without one the variable is x, or the name
// given with WithVariable.
package formula

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrNoParams is returned when a formula has nothing to fit.
var ErrNoParams = errors.New("formula has no {parameters}")

var (
	placeholderRe = regexp.MustCompile(`\{(\w[\w.()]*)\}`)
	bracketRe     = regexp.MustCompile(`\[(\w[\w.()]*)\]`)
	lhsRe         = regexp.MustCompile(`^[A-Za-z_][\w.]*$`)
)

// Formula is a parsed fit formula. It is immutable and safe for concurrent use.
type Formula struct {
	Source    string
	Dependent string
	Variable  string
	Params    []string

	root node
}

type config struct {
	variable string
}

// Option configures Parse.
type Option func(*config)

// WithVariable names the independent variable. A bracketed [name] in the
// formula takes precedence.
func WithVariable(name string) Option {
	return func(c *config) {
		if name != "" {
			c.variable = name
		}
	}
}

// Parse parses src into a Formula.
func Parse(src string, opts ...Option) (*Formula, error) {
	cfg := config{variable: "x"}
	for _, o := range opts {
		o(&cfg)
	}

	f := &Formula{Source: src, Dependent: "y"}
	rhs, offset := src, 0
	if i := strings.IndexByte(src, '='); i >= 0 {
		lhs := strings.TrimSpace(src[:i])
		if lhs != "" {
			if !lhsRe.MatchString(lhs) {
				return nil, withSource(newParseError(0, "left-hand side %q is not a name", lhs), src)
			}
			f.Dependent = lhs
		}
		rhs, offset = src[i+1:], i+1
	}

	toks, err := tokenize(rhs, offset)
	if err != nil {
		return nil, withSource(err, src)
	}

	index := map[string]int{}
	f.Variable = cfg.variable
	bracketed := ""
	for _, t := range toks {
		switch t.kind {
		case tokParam:
			if _, ok := index[t.text]; !ok {
				index[t.text] = len(f.Params)
				f.Params = append(f.Params, t.text)
			}
		case tokVar:
			if bracketed != "" && bracketed != t.text {
				return nil, withSource(newParseError(t.pos, "two independent variables [%s] and [%s]", bracketed, t.text), src)
			}
			bracketed = t.text
		}
	}
	if bracketed != "" {
		f.Variable = bracketed
	}

	p := &parser{toks: toks, variable: f.Variable, params: index}
	root, err := p.parse()
	if err != nil {
		return nil, withSource(err, src)
	}
	f.root = root
	return f, nil
}

// MustParse is like Parse but panics on error.
func MustParse(src string, opts ...Option) *Formula {
	f, err := Parse(src, opts...)
	if err != nil {
		panic(err)
	}
	return f
}

func withSource(err error, src string) error {
	var pe *ParseError
	if errors.As(err, &pe) {
		pe.Source = src
	}
	return err
}

// Eval evaluates the right-hand side at x. params must hold one value per
// entry of Params, in the same order.
func (f *Formula) Eval(x float64, params []float64) float64 {
	return f.root.eval(x, params)
}

// Image evaluates the formula at every x.
func (f *Formula) Image(xs, params []float64) ([]float64, error) {
	if len(params) != len(f.Params) {
		return nil, fmt.Errorf("formula %q wants %d parameters, got %d", f.Source, len(f.Params), len(params))
	}
	ys := make([]float64, len(xs))
	for i, x := range xs {
		ys[i] = f.root.eval(x, params)
	}
	return ys, nil
}

// Func binds the parameters and returns the model as a function of x.
func (f *Formula) Func(params []float64) func(float64) float64 {
	p := append([]float64(nil), params...)
	return func(x float64) float64 { return f.root.eval(x, p) }
}

// Substitute returns the source with every placeholder replaced by its
// value. Placeholders without a value are left alone.
func (f *Formula) Substitute(values []float64) string {
	index := make(map[string]int, len(f.Params))
	for i, name := range f.Params {
		index[name] = i
	}
	out := placeholderRe.ReplaceAllStringFunc(f.Source, func(m string) string {
		i, ok := index[m[1:len(m)-1]]
		if !ok || i >= len(values) {
			return m
		}
		s := strconv.FormatFloat(values[i], 'g', -1, 64)
		if values[i] < 0 {
			s = "(" + s + ")"
		}
		return s
	})
	return bracketRe.ReplaceAllString(out, "$1")
}

// String renders the right-hand side in canonical form.
func (f *Formula) String() string {
	var b strings.Builder
	f.root.write(&b)
	return b.String()
}

// LaTeX renders the formula as "dependent = expression" in LaTeX math.
func (f *Formula) LaTeX() string {
	var b strings.Builder
	b.WriteString(texName(f.Dependent) + " = ")
	f.root.latex(&b)
	return b.String()
}
