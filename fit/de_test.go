package fit

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HamletTheHamster/labutils/formula"
)

func quadratic() (*formula.Formula, []float64, []float64) {
	f := formula.MustParse("y = {a}*x**2 + {b}")
	var x, y []float64
	for i := -5; i <= 5; i++ {
		x = append(x, float64(i))
		y = append(y, 3*float64(i*i)-2)
	}
	return f, x, y
}

func TestFindBeta(t *testing.T) {
	f, x, y := quadratic()
	beta, err := FindBeta(f, x, y, UniformBounds(-10, 10, 2), DEOptions{Seed: 42})
	require.NoError(t, err)
	assert.InDelta(t, 3, beta[0], 1e-2)
	assert.InDelta(t, -2, beta[1], 1e-2)
	assert.Less(t, SqErrSum(f, x, y, beta), 1e-2)
}

func TestFindBetaReproducible(t *testing.T) {
	f, x, y := quadratic()
	b := UniformBounds(-10, 10, 2)
	for _, workers := range []int{1, 4} {
		de := DEOptions{Seed: 3, Workers: workers, MaxIter: 30, NoPolish: true}
		first, err := FindBeta(f, x, y, b, de)
		require.NoError(t, err)
		second, err := FindBeta(f, x, y, b, de)
		require.NoError(t, err)
		assert.Equal(t, first, second, "workers=%d", workers)
	}
}

func TestFindBetaStaysInBounds(t *testing.T) {
	f, x, y := quadratic()
	b := Bounds{Lower: []float64{0, 0}, Upper: []float64{1, 1}}
	beta, err := FindBeta(f, x, y, b, DEOptions{Seed: 1, Init: "random"})
	require.NoError(t, err)
	for i, v := range beta {
		assert.GreaterOrEqual(t, v, b.Lower[i])
		assert.LessOrEqual(t, v, b.Upper[i])
	}
	// the optimum inside the box sits on the a = 1 edge
	assert.InDelta(t, 1, beta[0], 1e-2)
}

func TestFindBetaCallbackStops(t *testing.T) {
	f, x, y := quadratic()
	calls := 0
	_, err := FindBeta(f, x, y, UniformBounds(-10, 10, 2), DEOptions{
		Seed: 5,
		Callback: func(best []float64, _ float64) bool {
			calls++
			assert.Len(t, best, 2)
			return true
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestFindBetaNeedsFiniteBounds(t *testing.T) {
	f, x, y := quadratic()
	_, err := FindBeta(f, x, y, UniformBounds(math.Inf(-1), math.Inf(1), 2), DEOptions{})
	assert.ErrorIs(t, err, ErrBounds)

	_, err = FindBeta(f, x, y, UniformBounds(-1, 1, 3), DEOptions{})
	assert.ErrorIs(t, err, ErrBounds)
}

func TestSqErrSum(t *testing.T) {
	f, x, y := quadratic()
	assert.Equal(t, 0.0, SqErrSum(f, x, y, []float64{3, -2}))
	assert.Equal(t, float64(len(x)), SqErrSum(f, x, y, []float64{3, -1}))

	g := formula.MustParse("y = sqrt({a})*x")
	assert.True(t, math.IsInf(SqErrSum(g, x, y, []float64{-1}), 1))
}

func TestFitFallsBackToOnes(t *testing.T) {
	x := []float64{1, 2, 3}
	y := []float64{1, 2, 3}
	// every candidate in the box gives a NaN sum, so the search fails
	b := UniformBounds(-2, -1, 1)
	res, err := Fit("y = sqrt({a})*x", x, y, &Options{SearchBounds: &b, DE: DEOptions{Seed: 1, MaxIter: 2}})
	require.NoError(t, err)
	assert.Equal(t, []float64{1}, res.Beta0)
	assert.InDelta(t, 1, res.Values[0], 1e-6)
}
