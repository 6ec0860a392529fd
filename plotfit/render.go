// Package plotfit draws measured data next to a fitted model: the data
// with error bars, the model as a dense curve and the model evaluated at
// the measured points.
package plotfit

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"path/filepath"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
)

var (
	ErrLength = errors.New("plotfit: length mismatch")
	ErrModel  = errors.New("plotfit: no model to draw")
	ErrEmpty  = errors.New("plotfit: no data")
)

// Data is a set of measurements. XErr and YErr may be nil.
type Data struct {
	X, Y       []float64
	XErr, YErr []float64
}

func (d Data) check() error {
	n := len(d.X)
	switch {
	case n == 0:
		return ErrEmpty
	case len(d.Y) != n:
		return fmt.Errorf("%w: %d x and %d y values", ErrLength, n, len(d.Y))
	case d.XErr != nil && len(d.XErr) != n:
		return fmt.Errorf("%w: %d x errors for %d points", ErrLength, len(d.XErr), n)
	case d.YErr != nil && len(d.YErr) != n:
		return fmt.Errorf("%w: %d y errors for %d points", ErrLength, len(d.YErr), n)
	}
	return nil
}

// Figure is one rendered plot and where it goes.
type Figure struct {
	Plot          *plot.Plot
	Kinds         []Kind
	Width, Height vg.Length
	// Name is the output file, empty when the figure is not saved.
	Name string
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	switch {
	case n <= 0:
		return nil
	case n == 1:
		return []float64{lo}
	}
	return floats.Span(make([]float64, n), lo, hi)
}

type errorPoints struct {
	plotter.XYs
	plotter.YErrors
	plotter.XErrors
}

func buildData(x, y []float64) plotter.XYs {
	xy := make(plotter.XYs, len(x))
	for i := range xy {
		xy[i].X = x[i]
		xy[i].Y = y[i]
	}
	return xy
}

func buildErrors(σ []float64) plotter.Errors {
	errs := make(plotter.Errors, len(σ))
	for i := range errs {
		errs[i].Low, errs[i].High = σ[i], σ[i]
	}
	return errs
}

// series is what one graph draws: points, optional errors and its style.
type series struct {
	kind       Kind
	x, y       []float64
	xerr, yerr []float64
}

func build(d Data, model func(float64) float64, o Options) ([]series, error) {
	var out []series
	for k, on := range o.Graph {
		if !on {
			continue
		}
		s := series{kind: Kind(k), x: d.X, y: d.Y}
		switch s.kind {
		case DataKind:
			s.xerr, s.yerr = d.XErr, d.YErr
		case CurveKind:
			if model == nil {
				return nil, ErrModel
			}
			s.x = Linspace(floats.Min(d.X), floats.Max(d.X), o.LinspaceVals)
			s.y = image(model, s.x)
		case FitDataKind:
			if model == nil {
				return nil, ErrModel
			}
			s.y = image(model, d.X)
			s.xerr, s.yerr = d.XErr, d.YErr
		}
		if o.NoErrorBars {
			s.xerr, s.yerr = nil, nil
		}
		out = append(out, s)
	}
	return out, nil
}

func image(f func(float64) float64, xs []float64) []float64 {
	ys := make([]float64, len(xs))
	for i, x := range xs {
		ys[i] = f(x)
	}
	return ys
}

// Render builds the figures selected by opts. Nothing is written to disk.
func Render(d Data, model func(float64) float64, opts *Options) ([]Figure, error) {
	o := opts.withDefaults()
	if err := d.check(); err != nil {
		return nil, err
	}
	all, err := build(d, model, o)
	if err != nil {
		return nil, err
	}

	groups := make([][]series, 0, len(all))
	if o.Merge {
		groups = append(groups, all)
	} else {
		for _, s := range all {
			groups = append(groups, []series{s})
		}
	}

	figs := make([]Figure, 0, len(groups))
	for gi, group := range groups {
		first := group[0].kind
		p := prepPlot(o.Titles[first], o)
		fig := Figure{Plot: p, Width: o.Sizes[first][0], Height: o.Sizes[first][1]}
		for _, s := range group {
			if err := addSeries(p, s, o); err != nil {
				return nil, err
			}
			fig.Kinds = append(fig.Kinds, s.kind)
		}
		if err := encloseRange(p); err != nil {
			return nil, err
		}
		fig.Name = fileName(o, first, o.Merge)
		o.Logger.Debug("rendered figure", "index", gi, "kinds", fig.Kinds, "file", fig.Name)
		figs = append(figs, fig)
	}
	return figs, nil
}

func prepPlot(title string, o Options) *plot.Plot {
	p := plot.New()
	p.BackgroundColor = color.RGBA{A: 0}

	styles := []*text.Style{
		&p.Title.TextStyle,
		&p.X.Label.TextStyle, &p.X.Tick.Label,
		&p.Y.Label.TextStyle, &p.Y.Tick.Label,
		&p.Legend.TextStyle,
	}
	for _, st := range styles {
		st.Font.Typeface = "Liberation"
		st.Font.Variant = font.Variant(o.FontVariant)
		if o.UseTeX {
			st.Handler = text.Latex{Fonts: font.DefaultCache}
		}
	}

	p.Title.Text = title
	p.X.Label.Text = o.AxisLabels[0]
	p.Y.Label.Text = o.AxisLabels[1]
	p.X.LineStyle.Width = vg.Points(1)
	p.Y.LineStyle.Width = vg.Points(1)

	if o.Legend != "" {
		loc := strings.ToLower(o.Legend)
		p.Legend.Top = !strings.Contains(loc, "lower")
		p.Legend.Left = strings.Contains(loc, "left")
		p.Legend.Padding = vg.Points(4)
	}
	return p
}

func addSeries(p *plot.Plot, s series, o Options) error {
	col, err := ParseColor(o.Colors[s.kind])
	if err != nil {
		return err
	}
	shape, scale, err := glyph(o.Markers[s.kind])
	if err != nil {
		return err
	}
	dash, line, err := dashes(o.LineStyles[s.kind])
	if err != nil {
		return err
	}

	pts := errorPoints{XYs: buildData(s.x, s.y)}
	var thumbs []plot.Thumbnailer

	if s.yerr != nil {
		pts.YErrors = plotter.YErrors(buildErrors(s.yerr))
		e, err := plotter.NewYErrorBars(pts)
		if err != nil {
			return fmt.Errorf("plotfit: %w", err)
		}
		e.LineStyle.Color = col
		e.CapWidth = vg.Points(2 * o.CapSize)
		p.Add(e)
	}
	if s.xerr != nil {
		pts.XErrors = plotter.XErrors(buildErrors(s.xerr))
		e, err := plotter.NewXErrorBars(pts)
		if err != nil {
			return fmt.Errorf("plotfit: %w", err)
		}
		e.LineStyle.Color = col
		e.CapWidth = vg.Points(2 * o.CapSize)
		p.Add(e)
	}
	if line {
		l, err := plotter.NewLine(pts.XYs)
		if err != nil {
			return fmt.Errorf("plotfit: %w", err)
		}
		l.LineStyle.Color = col
		l.LineStyle.Width = vg.Points(o.LineWidth)
		l.LineStyle.Dashes = dash
		p.Add(l)
		thumbs = append(thumbs, l)
	}
	if shape != nil {
		sc, err := plotter.NewScatter(pts.XYs)
		if err != nil {
			return fmt.Errorf("plotfit: %w", err)
		}
		sc.GlyphStyle.Color = col
		sc.GlyphStyle.Shape = shape
		sc.GlyphStyle.Radius = vg.Points(scale * o.MarkerSize / 2)
		p.Add(sc)
		thumbs = append(thumbs, sc)
	}
	if o.Legend != "" && o.Labels[s.kind] != "" && len(thumbs) > 0 {
		p.Legend.Add(o.Labels[s.kind], thumbs...)
	}
	return nil
}

// encloseRange draws the top and right frame lines at the current axis
// limits.
func encloseRange(p *plot.Plot) error {
	xmin, xmax, ymin, ymax := p.X.Min, p.X.Max, p.Y.Min, p.Y.Max
	if math.IsInf(xmin, 0) || math.IsInf(ymin, 0) || xmin > xmax || ymin > ymax {
		return nil
	}
	t, err := plotter.NewLine(plotter.XYs{{X: xmin, Y: ymax}, {X: xmax, Y: ymax}})
	if err != nil {
		return fmt.Errorf("plotfit: %w", err)
	}
	r, err := plotter.NewLine(plotter.XYs{{X: xmax, Y: ymin}, {X: xmax, Y: ymax}})
	if err != nil {
		return fmt.Errorf("plotfit: %w", err)
	}
	t.LineStyle.Width = p.X.LineStyle.Width
	r.LineStyle.Width = p.Y.LineStyle.Width
	p.Add(t, r)
	return nil
}

// fileName picks the output name of the figure whose first graph is kind.
func fileName(o Options, kind Kind, merged bool) string {
	var name string
	switch {
	case o.Save == "" && !o.SaveDefault:
		return ""
	case o.Save == "" && merged:
		name = "figure.pdf"
	case o.Save == "":
		name = defaultNames[kind]
	case merged:
		name = o.Save
		if filepath.Ext(name) == "" {
			name += ".pdf"
		}
	default:
		if ext := filepath.Ext(o.Save); ext != "" {
			name = strings.TrimSuffix(o.Save, ext) + suffixes[kind] + ext
		} else {
			name = o.Save + suffixes[kind] + ".pdf"
		}
	}
	return filepath.Join(o.Dir, name)
}
