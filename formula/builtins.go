package formula

import (
	"math"
	"strings"
)

type function struct {
	name    string
	minArgs int
	maxArgs int // -1 for variadic
	call    func(args []float64) float64
}

func unary(name string, f func(float64) float64) *function {
	return &function{name: name, minArgs: 1, maxArgs: 1, call: func(a []float64) float64 { return f(a[0]) }}
}

func binary(name string, f func(a, b float64) float64) *function {
	return &function{name: name, minArgs: 2, maxArgs: 2, call: func(a []float64) float64 { return f(a[0], a[1]) }}
}

func sign(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return v
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

var functions = map[string]*function{}

func register(f *function, aliases ...string) {
	functions[f.name] = f
	for _, a := range aliases {
		functions[a] = f
	}
}

func init() {
	register(unary("exp", math.Exp))
	register(unary("exp2", math.Exp2))
	register(unary("expm1", math.Expm1))
	register(&function{name: "log", minArgs: 1, maxArgs: 2, call: func(a []float64) float64 {
		if len(a) == 2 {
			return math.Log(a[0]) / math.Log(a[1])
		}
		return math.Log(a[0])
	}}, "ln")
	register(unary("log10", math.Log10))
	register(unary("log2", math.Log2))
	register(unary("log1p", math.Log1p))
	register(unary("sqrt", math.Sqrt))
	register(unary("cbrt", math.Cbrt))
	register(binary("pow", math.Pow), "power")
	register(binary("hypot", math.Hypot))

	register(unary("sin", math.Sin))
	register(unary("cos", math.Cos))
	register(unary("tan", math.Tan))
	register(unary("arcsin", math.Asin), "asin")
	register(unary("arccos", math.Acos), "acos")
	register(unary("arctan", math.Atan), "atan")
	register(binary("arctan2", math.Atan2), "atan2")
	register(unary("sinh", math.Sinh))
	register(unary("cosh", math.Cosh))
	register(unary("tanh", math.Tanh))
	register(unary("arcsinh", math.Asinh), "asinh")
	register(unary("arccosh", math.Acosh), "acosh")
	register(unary("arctanh", math.Atanh), "atanh")

	register(unary("abs", math.Abs), "fabs", "absolute")
	register(unary("floor", math.Floor))
	register(unary("ceil", math.Ceil))
	register(unary("round", math.RoundToEven), "rint")
	register(unary("sign", sign))
	register(unary("erf", math.Erf))
	register(unary("erfc", math.Erfc))
	register(unary("gamma", math.Gamma))
	register(unary("deg2rad", func(v float64) float64 { return v * math.Pi / 180 }), "radians")
	register(unary("rad2deg", func(v float64) float64 { return v * 180 / math.Pi }), "degrees")

	register(&function{name: "min", minArgs: 1, maxArgs: -1, call: func(a []float64) float64 {
		m := a[0]
		for _, v := range a[1:] {
			m = math.Min(m, v)
		}
		return m
	}}, "fmin", "minimum")
	register(&function{name: "max", minArgs: 1, maxArgs: -1, call: func(a []float64) float64 {
		m := a[0]
		for _, v := range a[1:] {
			m = math.Max(m, v)
		}
		return m
	}}, "fmax", "maximum")
}

var mathConstants = map[string]float64{
	"pi":  math.Pi,
	"e":   math.E,
	"tau": 2 * math.Pi,
	"inf": math.Inf(1),
	"nan": math.NaN(),
}

// physicalConstants are reachable through the scs. namespace only
// (CODATA 2018, SI units).
var physicalConstants = map[string]float64{
	"c":         299792458.0,
	"h":         6.62607015e-34,
	"hbar":      1.0545718176461565e-34,
	"k":         1.380649e-23,
	"R":         8.314462618,
	"N_A":       6.02214076e23,
	"g":         9.80665,
	"G":         6.6743e-11,
	"e":         1.602176634e-19,
	"m_e":       9.1093837015e-31,
	"m_p":       1.67262192369e-27,
	"epsilon_0": 8.8541878128e-12,
	"mu_0":      1.25663706212e-06,
	"sigma":     5.670374419e-08,
	"pi":        math.Pi,
}

var (
	numericPrefixes  = []string{"np.", "numpy.", "math."}
	constantPrefixes = []string{"scipy.constants.", "scs."}
)

func lookupConstant(name string) (float64, bool) {
	for _, p := range constantPrefixes {
		if rest, ok := strings.CutPrefix(name, p); ok {
			v, ok := physicalConstants[rest]
			return v, ok
		}
	}
	v, ok := mathConstants[stripPrefix(name)]
	return v, ok
}

func lookupFunction(name string) (*function, bool) {
	f, ok := functions[stripPrefix(name)]
	return f, ok
}

func stripPrefix(name string) string {
	for _, p := range numericPrefixes {
		if rest, ok := strings.CutPrefix(name, p); ok {
			return rest
		}
	}
	return name
}
