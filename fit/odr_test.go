package fit

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestODRExact(t *testing.T) {
	x, y := linearData(0)
	res, err := Fit("y = {A}*x + {B}", x, y, &Options{
		Method: MethodODR,
		Beta0:  []float64{1, 1},
		XErr:   constant(0.1, len(x)),
		YErr:   constant(0.1, len(x)),
	})
	require.NoError(t, err)
	assert.Equal(t, MethodODR, res.Method)
	assert.InDelta(t, 2, res.Values[0], 1e-6)
	assert.InDelta(t, 1, res.Values[1], 1e-6)
	require.Len(t, res.Delta, len(x))
	for _, d := range res.Delta {
		assert.InDelta(t, 0, d, 1e-6)
	}
}

func TestODROLSMatchesLeastSquares(t *testing.T) {
	x, y := linearData(0.1)
	yerr := constant(0.1, len(x))

	odr, err := SimpleFit("y = {A}*x + {B}", x, y, &Options{
		Method: MethodODR,
		ODR:    ODROptions{Type: ODROLS},
		YErr:   yerr,
	})
	require.NoError(t, err)
	lsq, err := SimpleFit("y = {A}*x + {B}", x, y, &Options{YErr: yerr, RelativeErr: true})
	require.NoError(t, err)

	for i := range lsq.Values {
		assert.InDelta(t, lsq.Values[i], odr.Values[i], 1e-6)
		assert.InDelta(t, lsq.Errors[i], odr.Errors[i], 1e-6)
	}
	assert.InDelta(t, lsq.ChiSq, odr.ChiSq, 1e-9)
}

func TestODRUsesBothAxes(t *testing.T) {
	x, y := linearData(0.3)
	for i := range x {
		x[i] += 0.2 * math.Cos(float64(i))
	}
	opts := Options{
		Method: MethodODR,
		Beta0:  []float64{1, 0},
		XErr:   constant(0.2, len(x)),
		YErr:   constant(0.3, len(x)),
	}
	full, err := SimpleFit("y = {A}*x + {B}", x, y, &opts)
	require.NoError(t, err)

	opts.ODR.Type = ODROLS
	plain, err := SimpleFit("y = {A}*x + {B}", x, y, &opts)
	require.NoError(t, err)

	assert.LessOrEqual(t, full.ChiSq, plain.ChiSq+1e-9)
	assert.InDelta(t, 2, full.Values[0], 0.2)
	assert.Greater(t, full.Errors[0], 0.0)

	nonzero := false
	for _, d := range full.Delta {
		if math.Abs(d) > 1e-9 {
			nonzero = true
		}
	}
	assert.True(t, nonzero)
}

func TestODRDeltaInitLength(t *testing.T) {
	x, y := linearData(0)
	_, err := SimpleFit("y = {A}*x", x, y, &Options{
		Method: MethodODR,
		ODR:    ODROptions{DeltaInit: []float64{0}},
	})
	assert.ErrorIs(t, err, ErrLength)
}
