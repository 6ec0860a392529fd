// Package measure formats a value with its uncertainty, rounding both to the
// significant digits of the uncertainty.
package measure

import (
	"fmt"
	"io"
	"math"
	"strconv"
)

// Style selects between fixed and power-of-ten notation.
type Style int

const (
	Auto Style = iota
	Fixed
	Exp
)

// Format controls how a measurement is rendered. The zero value means two
// significant digits, automatic notation, plain text.
type Format struct {
	Digits int
	Style  Style
	LaTeX  bool
}

func (f Format) digits() int {
	if f.Digits <= 0 {
		return 2
	}
	return f.Digits
}

func (f Format) pm() string {
	if f.LaTeX {
		return ` \pm `
	}
	return " ± "
}

// pick reproduces the notation heuristic used when printing fit results.
func pick(v, u float64) Style {
	if ((u >= 1000 || u <= 0.001) && (v >= u || v <= 0.001)) || v >= 1000 {
		return Exp
	}
	return Fixed
}

// Sprint renders v ± u.
func (f Format) Sprint(v, u float64) string {
	if u <= 0 || math.IsNaN(u) || math.IsInf(u, 0) || math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Sprintf("%g%s%g", v, f.pm(), u)
	}

	style := f.Style
	if style == Auto {
		style = pick(v, u)
	}
	if style == Fixed {
		vs, us := round(v, u, f.digits())
		return vs + f.pm() + us
	}

	ref := math.Max(math.Abs(v), u)
	e := int(math.Floor(math.Log10(ref)))
	scale := math.Pow(10, float64(e))
	vs, us := round(v/scale, u/scale, f.digits())
	if f.LaTeX {
		return fmt.Sprintf(`\left(%s \pm %s\right) \times 10^{%d}`, vs, us, e)
	}
	return fmt.Sprintf("(%s ± %s)e%+03d", vs, us, e)
}

// round rounds u to the given significant digits and v to the same
// decimal place.
func round(v, u float64, digits int) (string, string) {
	eu := int(math.Floor(math.Log10(u)))
	dec := digits - 1 - eu
	// rounding may carry into the next decade, e.g. 0.0996 -> 0.10
	if r := roundTo(u, dec); r >= math.Pow(10, float64(eu+1)) {
		dec--
	}
	if dec >= 0 {
		return strconv.FormatFloat(v, 'f', dec, 64), strconv.FormatFloat(u, 'f', dec, 64)
	}
	return strconv.FormatFloat(roundTo(v, dec), 'f', 0, 64), strconv.FormatFloat(roundTo(u, dec), 'f', 0, 64)
}

func roundTo(v float64, dec int) float64 {
	p := math.Pow(10, float64(dec))
	return math.Round(v*p) / p
}

// Fprint writes "name = v ± u" followed by a newline.
func Fprint(w io.Writer, name string, v, u float64, f Format) error {
	prefix := ""
	if name != "" {
		prefix = name + " = "
	}
	_, err := fmt.Fprintln(w, prefix+f.Sprint(v, u))
	return err
}
