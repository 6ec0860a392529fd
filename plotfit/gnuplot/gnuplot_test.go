//go:build gnuplot

package gnuplot

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/HamletTheHamster/labutils/plotfit"
)

func TestPreviewRejectsBadData(t *testing.T) {
	model := func(x float64) float64 { return x }

	err := Preview(plotfit.Data{}, model, nil)
	assert.ErrorIs(t, err, plotfit.ErrEmpty)

	err = Preview(plotfit.Data{X: []float64{1, 2}, Y: []float64{1}}, model, nil)
	assert.ErrorIs(t, err, plotfit.ErrLength)

	err = Preview(plotfit.Data{X: []float64{1}, Y: []float64{1}}, nil, nil)
	assert.ErrorIs(t, err, plotfit.ErrModel)
}
