package fit

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSearchBounds(t *testing.T) {
	inf := math.Inf(1)
	x := []float64{-3, 1}
	y := []float64{2, 5}

	tests := []struct {
		name string
		opts Options
		x, y []float64
		want Bounds
	}{
		{
			name: "finite bounds win",
			opts: Options{
				Bounds:           &Bounds{Lower: []float64{0, -inf}, Upper: []float64{inf, 4}},
				SearchBounds:     &Bounds{Lower: []float64{-1, -1}, Upper: []float64{1, 1}},
				DataSearchBounds: true,
			},
			x: x, y: y,
			want: Bounds{Lower: []float64{0, -1e9}, Upper: []float64{1e9, 4}},
		},
		{
			name: "infinite bounds defer to search bounds",
			opts: Options{
				Bounds:           &Bounds{Lower: []float64{-inf, -inf}, Upper: []float64{inf, inf}},
				SearchBounds:     &Bounds{Lower: []float64{-1, -inf}, Upper: []float64{1, 2}},
				DataSearchBounds: true,
			},
			x: x, y: y,
			want: Bounds{Lower: []float64{-1, -1e9}, Upper: []float64{1, 2}},
		},
		{
			name: "data magnitude",
			opts: Options{DataSearchBounds: true},
			x:    x, y: y,
			want: UniformBounds(-5, 5, 2),
		},
		{
			name: "all-zero data falls back to ones",
			opts: Options{DataSearchBounds: true},
			x:    []float64{0, 0, 0}, y: []float64{0, 0, 0},
			want: UniformBounds(-1, 1, 2),
		},
		{
			name: "default box",
			opts: Options{},
			x:    x, y: y,
			want: UniformBounds(-1e9, 1e9, 2),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.opts.searchBounds(2, tt.x, tt.y))
		})
	}
}
