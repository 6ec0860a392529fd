package plotfit

import (
	"errors"
	"fmt"
	"image/color"
	"log/slog"
	"strconv"
	"strings"

	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

var (
	ErrColor  = errors.New("plotfit: invalid color")
	ErrMarker = errors.New("plotfit: invalid marker")
	ErrLine   = errors.New("plotfit: invalid line style")
)

// Kind indexes the three figures a fit can produce.
type Kind int

const (
	// DataKind is the measured points with their error bars.
	DataKind Kind = iota
	// CurveKind is the model sampled densely over the data range.
	CurveKind
	// FitDataKind is the model evaluated at the measured abscissae.
	FitDataKind
)

var suffixes = [3]string{"_data", "_curve", "_fit_data"}

var defaultNames = [3]string{"data_scatter.pdf", "fit_curve.pdf", "fit_data.pdf"}

func (k Kind) String() string {
	switch k {
	case DataKind:
		return "data"
	case CurveKind:
		return "curve"
	case FitDataKind:
		return "fit data"
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Colors by name.
var Colors = map[string]string{
	"blue":   "#3385FF",
	"red":    "#FB4A24",
	"yellow": "#EDF92B",
	"green":  "#0DC40F",
	"orange": "#FF884D",
	"purple": "#CC66FF",
	"brown":  "#B37700",
	"black":  "#000000",
}

// Options controls which figures are drawn and how. Zero fields take the
// defaults listed on each field.
type Options struct {
	// Graph selects the data, curve and fit-at-data figures. All false means
	// data and curve.
	Graph [3]bool
	// Merge draws every selected graph on one figure instead of one each.
	Merge bool

	// Sizes are width and height per figure, 6x4 in by default.
	Sizes [3][2]vg.Length
	// Colors are names from Colors or #RRGGBB; blue, red and orange by default.
	Colors [3]string

	Titles     [3]string
	Labels     [3]string
	AxisLabels [2]string
	// Legend is empty for no legend, or best, upper left, lower right...
	Legend string

	// Markers are ".", "o", "s", "^", "+", "x" or "" for none, and
	// LineStyles "-", "--", ":", "-." or "". When both are left empty they
	// default to points for data, a solid line for the curve and points
	// for the fit at the data.
	Markers    [3]string
	LineStyles [3]string

	NoErrorBars bool
	// CapSize is the error bar cap width in points, 3 by default.
	CapSize float64
	// LineWidth in points, 1.5 by default.
	LineWidth float64
	// MarkerSize in points, 6 by default.
	MarkerSize float64
	// LinspaceVals is the number of samples of the curve, 400 by default.
	LinspaceVals int

	// UseTeX renders titles and labels as LaTeX math.
	UseTeX bool
	// FontVariant is the Liberation variant, Sans by default.
	FontVariant string

	// Save is the file name. With separate figures the suffixes _data,
	// _curve and _fit_data are inserted before the extension; without an
	// extension .pdf is used.
	Save string
	// SaveDefault saves under data_scatter.pdf, fit_curve.pdf and
	// fit_data.pdf, or figure.pdf when merged, if Save is empty.
	SaveDefault bool
	// Dir is prepended to every saved file name.
	Dir string

	Logger *slog.Logger
}

func (o *Options) withDefaults() Options {
	var out Options
	if o != nil {
		out = *o
	}
	if out.Graph == [3]bool{} {
		out.Graph = [3]bool{true, true, false}
	}
	for i := range out.Sizes {
		if out.Sizes[i][0] <= 0 {
			out.Sizes[i][0] = 6 * vg.Inch
		}
		if out.Sizes[i][1] <= 0 {
			out.Sizes[i][1] = 4 * vg.Inch
		}
	}
	defColors := [3]string{"blue", "red", "orange"}
	for i := range out.Colors {
		if out.Colors[i] == "" {
			out.Colors[i] = defColors[i]
		}
	}
	if out.Markers == [3]string{} && out.LineStyles == [3]string{} {
		out.Markers = [3]string{".", "", "."}
		out.LineStyles = [3]string{"", "-", ""}
	}
	if out.CapSize <= 0 {
		out.CapSize = 3
	}
	if out.LineWidth <= 0 {
		out.LineWidth = 1.5
	}
	if out.MarkerSize <= 0 {
		out.MarkerSize = 6
	}
	if out.LinspaceVals <= 0 {
		out.LinspaceVals = 400
	}
	if out.FontVariant == "" {
		out.FontVariant = "Sans"
	}
	if out.Logger == nil {
		out.Logger = slog.New(slog.DiscardHandler)
	}
	return out
}

// ParseColor accepts a name from Colors or a #RRGGBB string.
func ParseColor(s string) (color.RGBA, error) {
	hex := s
	if named, ok := Colors[strings.ToLower(s)]; ok {
		hex = named
	}
	if len(hex) != 7 || hex[0] != '#' {
		return color.RGBA{}, fmt.Errorf("%w %q", ErrColor, s)
	}
	v, err := strconv.ParseUint(hex[1:], 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("%w %q", ErrColor, s)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}

// glyph maps a marker to a glyph shape and a radius scale.
func glyph(marker string) (draw.GlyphDrawer, float64, error) {
	switch marker {
	case "":
		return nil, 0, nil
	case ".":
		return draw.CircleGlyph{}, 0.5, nil
	case "o":
		return draw.CircleGlyph{}, 1, nil
	case "s":
		return draw.SquareGlyph{}, 1, nil
	case "^":
		return draw.TriangleGlyph{}, 1, nil
	case "+":
		return draw.PlusGlyph{}, 1, nil
	case "x":
		return draw.CrossGlyph{}, 1, nil
	}
	return nil, 0, fmt.Errorf("%w %q", ErrMarker, marker)
}

// dashes maps a line style to a dash pattern. ok is false for no line.
func dashes(style string) (pattern []vg.Length, ok bool, err error) {
	switch style {
	case "":
		return nil, false, nil
	case "-":
		return nil, true, nil
	case "--":
		return []vg.Length{vg.Points(6), vg.Points(3)}, true, nil
	case ":":
		return []vg.Length{vg.Points(1), vg.Points(2)}, true, nil
	case "-.":
		return []vg.Length{vg.Points(6), vg.Points(2), vg.Points(1), vg.Points(2)}, true, nil
	}
	return nil, false, fmt.Errorf("%w %q", ErrLine, style)
}
