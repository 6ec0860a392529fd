//go:build gnuplot

// Package gnuplot previews plotfit graphs in an interactive gnuplot
// window. Importing it requires gnuplot on PATH, so it is only built with
// the gnuplot tag.
package gnuplot

import (
	"fmt"

	"github.com/Arafatk/glot"

	"github.com/HamletTheHamster/labutils/plotfit"
)

// Preview opens a gnuplot window with the selected graphs. The window
// outlives the call.
func Preview(d plotfit.Data, model func(float64) float64, opts *plotfit.Options) error {
	graphs, err := plotfit.Graphs(d, model, opts)
	if err != nil {
		return err
	}
	if opts == nil {
		opts = &plotfit.Options{}
	}

	dimensions := 2
	persist := true
	debug := false
	plot, err := glot.NewPlot(dimensions, persist, debug)
	if err != nil {
		return fmt.Errorf("gnuplot: %w", err)
	}
	defer plot.Close()

	if title := opts.Titles[graphs[0].Kind]; title != "" {
		plot.SetTitle(title)
	}
	if opts.AxisLabels[0] != "" {
		plot.SetXLabel(opts.AxisLabels[0])
	}
	if opts.AxisLabels[1] != "" {
		plot.SetYLabel(opts.AxisLabels[1])
	}

	for _, g := range graphs {
		style := "points"
		if g.Lines {
			style = "lines"
		}
		if err := plot.AddPointGroup(g.Label, style, [][]float64{g.X, g.Y}); err != nil {
			return fmt.Errorf("gnuplot: %w", err)
		}
	}
	return nil
}
