//go:build !gnuplot

package commands

import (
	"errors"

	"github.com/HamletTheHamster/labutils/plotfit"
)

// ErrNoPreview is returned by --show in binaries built without gnuplot.
var ErrNoPreview = errors.New("labfit was built without gnuplot support; rebuild with -tags gnuplot")

func preview(plotfit.Data, func(float64) float64, *plotfit.Options) error {
	return ErrNoPreview
}
