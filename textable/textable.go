// Package textable renders numeric series as a LaTeX table environment.
package textable

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	ErrEmpty  = errors.New("textable: no data")
	ErrSize   = errors.New("textable: data's, titles' and precisions' sizes don't match")
	ErrRagged = errors.New("textable: data series sizes don't match")
)

// OptionError reports an option value outside its allowed set.
type OptionError struct {
	Option  string
	Value   any
	Allowed string
}

func (e *OptionError) Error() string {
	if e.Allowed == "" {
		return fmt.Sprintf("textable: %v is not a valid value for %q", e.Value, e.Option)
	}
	return fmt.Sprintf("textable: %v is not a valid value for %q (one of: %s)",
		e.Value, e.Option, strings.ReplaceAll(e.Allowed, " ", ", "))
}

// Options controls the layout. The zero value gives a vertical table with
// horizontal rules, fit H and a centered tabular.
type Options struct {
	// Prec is the number of decimals per series. nil picks 2 for series with
	// a non-integral value and 0 otherwise. Negative values round to tens,
	// hundreds and so on. A single value applies to every series.
	Prec []int `name:"prec"`

	Shape string `name:"shape" validate:"omitempty,oneof=v ver vertical h hor horizontal"`
	Sep   string `name:"sep" validate:"omitempty,oneof=v ver vertical h hor horizontal f full no none"`
	Fit   string `name:"fit" validate:"omitempty,oneof=h h! b t H"`
	Loc   string `name:"loc" validate:"omitempty,oneof=c l r center left right centering raggedleft raggedright"`

	Caption   string
	NoCaption bool
	Label     string
	NoLabel   bool

	// Exp selects scientific notation per series; ExpPrec is its number of
	// decimals, 2 by default. Single values broadcast.
	Exp     []bool
	ExpPrec []int `name:"exp_prec" validate:"dive,gte=0"`

	// FWF pads non-negative numbers with a space where the sign would go.
	FWF bool

	FontSize string `name:"font_size" validate:"omitempty,oneof=Huge huge LARGE Large normalsize small footnotesize scriptsize tiny"`
}

var validate = func() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return fld.Tag.Get("name")
	})
	return v
}()

func (o Options) normalize() (Options, error) {
	o.Shape = strings.ToLower(o.Shape)
	o.Sep = strings.ToLower(o.Sep)
	o.Loc = strings.ToLower(o.Loc)
	if err := validate.Struct(o); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			name := fe.Field()
			if i := strings.IndexByte(name, '['); i >= 0 {
				name = name[:i]
			}
			return o, &OptionError{Option: name, Value: fe.Value(), Allowed: allowed(fe)}
		}
		return o, err
	}

	if o.Shape == "" {
		o.Shape = "vertical"
	}
	if o.Sep == "" {
		o.Sep = "horizontal"
	}
	if o.Fit == "" {
		o.Fit = "H"
	}
	switch o.Loc {
	case "", "c", "center":
		o.Loc = "centering"
	case "l", "left":
		o.Loc = "raggedright"
	case "r", "right":
		o.Loc = "raggedleft"
	}
	if len(o.ExpPrec) == 0 {
		o.ExpPrec = []int{2}
	}
	return o, nil
}

func allowed(fe validator.FieldError) string {
	if fe.Tag() == "oneof" {
		return fe.Param()
	}
	return fe.Tag() + "=" + fe.Param()
}

func vertical(shape string) bool { return strings.Contains("vertical", shape) }

func vsep(sep string) bool { return strings.Contains("vertical||full", sep) }

func hsep(sep string) bool { return strings.Contains("horizontal||full", sep) }

// broadcast spreads a single value over n series.
func broadcast[T any](name string, vals []T, n int) ([]T, error) {
	switch len(vals) {
	case 0:
		return make([]T, n), nil
	case 1:
		out := make([]T, n)
		for i := range out {
			out[i] = vals[0]
		}
		return out, nil
	case n:
		return vals, nil
	}
	return nil, fmt.Errorf("%w: %d %s values for %d series", ErrSize, len(vals), name, n)
}

// autoPrec is 2 for a series holding a non-integral value, 0 otherwise.
func autoPrec(data [][]float64) []int {
	prec := make([]int, len(data))
	for i, s := range data {
		for _, v := range s {
			if v != math.Trunc(v) {
				prec[i] = 2
				break
			}
		}
	}
	return prec
}

// cell formats v with prec decimals, or with expPrec decimals in scientific
// notation once rounded to prec decimals.
func cell(v float64, prec int, exp bool, expPrec int, fwf bool) string {
	if prec < 0 {
		scale := math.Pow10(-prec)
		v = math.RoundToEven(v/scale) * scale
	} else if exp {
		v, _ = strconv.ParseFloat(strconv.FormatFloat(v, 'f', prec, 64), 64)
	}
	verb, digits := "f", max(prec, 0)
	if exp {
		verb, digits = "e", expPrec
	}
	if fwf {
		return fmt.Sprintf("% .*"+verb, digits, v)
	}
	return fmt.Sprintf("%.*"+verb, digits, v)
}

// Generate returns the LaTeX source of a table holding data, one series per
// column (vertical shape) or per row (horizontal shape).
func Generate(data [][]float64, titles []string, opts Options) (string, error) {
	o, err := opts.normalize()
	if err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", ErrEmpty
	}
	if len(titles) != len(data) {
		return "", fmt.Errorf("%w: %d series, %d titles", ErrSize, len(data), len(titles))
	}
	for i := range data {
		if len(data[i]) != len(data[0]) {
			return "", fmt.Errorf("%w: series %d has %d values, series 0 has %d", ErrRagged, i, len(data[i]), len(data[0]))
		}
	}

	prec := o.Prec
	if prec == nil {
		prec = autoPrec(data)
	}
	if prec, err = broadcast("prec", prec, len(data)); err != nil {
		return "", err
	}
	exps, err := broadcast("exp", o.Exp, len(data))
	if err != nil {
		return "", err
	}
	expPrec, err := broadcast("exp_prec", o.ExpPrec, len(data))
	if err != nil {
		return "", err
	}

	format := func(series, i int) string {
		return cell(data[series][i], prec[series], exps[series], expPrec[series], o.FWF)
	}
	v, h := vsep(o.Sep), hsep(o.Sep)
	bar := ""
	if v {
		bar = "|"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\\begin{table}[%s]\n", o.Fit)
	if o.FontSize != "" {
		fmt.Fprintf(&b, "\\%s\n", o.FontSize)
	}
	fmt.Fprintf(&b, "\\%s\n", o.Loc)
	b.WriteString("\\begin{tabular}")

	if vertical(o.Shape) {
		b.WriteString("{" + strings.Repeat(bar+"c", len(data)) + bar + "}\n")
		if h {
			b.WriteString("\\hline\n")
		}
		b.WriteString(" " + strings.Join(titles, " & ") + " \\\\\n\\hline\n")
		rows := len(data[0])
		for i := range rows {
			cells := make([]string, len(data))
			for j := range data {
				cells[j] = format(j, i)
			}
			b.WriteString(" " + strings.Join(cells, " & ") + " \\\\\n")
			if h && i != rows-1 {
				b.WriteString(" \\hline\n")
			}
		}
	} else {
		b.WriteString("{" + bar + "c|" + strings.Repeat("c"+bar, len(data[0])) + "}\n")
		if h {
			b.WriteString("\\hline\n")
		}
		for i := range data {
			cells := make([]string, len(data[i]))
			for j := range data[i] {
				cells[j] = format(i, j)
			}
			b.WriteString(" " + titles[i] + " & " + strings.Join(cells, " & ") + " \\\\\n")
			if h && i != len(data)-1 {
				b.WriteString(" \\hline\n")
			}
		}
	}

	if h {
		b.WriteString("\\hline\n")
	}
	b.WriteString("\\end{tabular}\n")
	if !o.NoCaption {
		fmt.Fprintf(&b, "\\caption{%s}\n", o.Caption)
	}
	if !o.NoLabel {
		fmt.Fprintf(&b, "\\label{%s}\n", o.Label)
	}
	b.WriteString("\\end{table}\n")
	return b.String(), nil
}
