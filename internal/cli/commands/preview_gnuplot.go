//go:build gnuplot

package commands

import (
	"github.com/HamletTheHamster/labutils/plotfit"
	"github.com/HamletTheHamster/labutils/plotfit/gnuplot"
)

func preview(d plotfit.Data, model func(float64) float64, opts *plotfit.Options) error {
	return gnuplot.Preview(d, model, opts)
}
