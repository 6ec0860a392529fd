package plotfit

import (
	"context"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot/vg"
)

func sample() (Data, func(float64) float64) {
	d := Data{
		X:    []float64{0, 1, 2, 3, 4},
		Y:    []float64{1.1, 2.9, 5.2, 6.8, 9.1},
		YErr: []float64{0.2, 0.2, 0.2, 0.2, 0.2},
		XErr: []float64{0.05, 0.05, 0.05, 0.05, 0.05},
	}
	return d, func(x float64) float64 { return 2*x + 1 }
}

func TestLinspace(t *testing.T) {
	assert.Equal(t, []float64{0, 0.25, 0.5, 0.75, 1}, Linspace(0, 1, 5))
	assert.Equal(t, []float64{3}, Linspace(3, 4, 1))
	assert.Nil(t, Linspace(0, 1, 0))
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor("blue")
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 0x33, G: 0x85, B: 0xFF, A: 255}, c)

	c, err = ParseColor("#0a0B0c")
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 10, G: 11, B: 12, A: 255}, c)

	for _, bad := range []string{"teal", "#12345", "#GGGGGG", "123456"} {
		_, err = ParseColor(bad)
		assert.ErrorIs(t, err, ErrColor, bad)
	}
}

func TestRenderDefaults(t *testing.T) {
	d, model := sample()
	figs, err := Render(d, model, nil)
	require.NoError(t, err)
	require.Len(t, figs, 2)
	assert.Equal(t, []Kind{DataKind}, figs[0].Kinds)
	assert.Equal(t, []Kind{CurveKind}, figs[1].Kinds)
	for _, f := range figs {
		assert.Equal(t, 6*vg.Inch, f.Width)
		assert.Equal(t, 4*vg.Inch, f.Height)
		assert.Empty(t, f.Name)
		assert.NotNil(t, f.Plot)
	}
	// the curve spans the data range
	assert.InDelta(t, 0, figs[1].Plot.X.Min, 1e-12)
	assert.InDelta(t, 4, figs[1].Plot.X.Max, 1e-12)
}

func TestRenderMerged(t *testing.T) {
	d, model := sample()
	figs, err := Render(d, model, &Options{
		Graph:      [3]bool{true, true, true},
		Merge:      true,
		Legend:     "upper left",
		Labels:     [3]string{"data", "fit", ""},
		Titles:     [3]string{"Run 1"},
		AxisLabels: [2]string{"t (s)", "V (V)"},
		Save:       "run",
	})
	require.NoError(t, err)
	require.Len(t, figs, 1)
	assert.Equal(t, []Kind{DataKind, CurveKind, FitDataKind}, figs[0].Kinds)
	assert.Equal(t, "run.pdf", figs[0].Name)
	assert.Equal(t, "Run 1", figs[0].Plot.Title.Text)
	assert.True(t, figs[0].Plot.Legend.Left)
	assert.True(t, figs[0].Plot.Legend.Top)
}

func TestFileNames(t *testing.T) {
	all := [3]bool{true, true, true}
	tests := []struct {
		name string
		opts Options
		want []string
	}{
		{"suffix", Options{Graph: all, Save: "fit.png"}, []string{"fit_data.png", "fit_curve.png", "fit_fit_data.png"}},
		{"no extension", Options{Graph: all, Save: "fit"}, []string{"fit_data.pdf", "fit_curve.pdf", "fit_fit_data.pdf"}},
		{"defaults", Options{Graph: all, SaveDefault: true}, []string{"data_scatter.pdf", "fit_curve.pdf", "fit_data.pdf"}},
		{"merged default", Options{Graph: all, SaveDefault: true, Merge: true}, []string{"figure.pdf"}},
		{"dir", Options{Graph: [3]bool{false, true, false}, Save: "a.svg", Dir: "out"}, []string{filepath.Join("out", "a_curve.svg")}},
		{"dotted dir", Options{Graph: [3]bool{true, false, false}, Save: "out/v1.2/wave.png"}, []string{filepath.Join("out/v1.2", "wave_data.png")}},
		{"dotted dir no extension", Options{Graph: [3]bool{true, false, false}, Save: "out/v1.2/wave"}, []string{filepath.Join("out/v1.2", "wave_data.pdf")}},
		{"merged dotted dir", Options{Graph: all, Save: "out/v1.2/wave", Merge: true}, []string{filepath.Join("out/v1.2", "wave.pdf")}},
	}
	d, model := sample()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			figs, err := Render(d, model, &tt.opts)
			require.NoError(t, err)
			var got []string
			for _, f := range figs {
				got = append(got, f.Name)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRenderErrors(t *testing.T) {
	d, model := sample()

	_, err := Render(Data{}, model, nil)
	assert.ErrorIs(t, err, ErrEmpty)
	_, err = Render(Data{X: d.X, Y: d.Y[:2]}, model, nil)
	assert.ErrorIs(t, err, ErrLength)
	_, err = Render(Data{X: d.X, Y: d.Y, YErr: []float64{1}}, model, nil)
	assert.ErrorIs(t, err, ErrLength)
	_, err = Render(d, nil, nil)
	assert.ErrorIs(t, err, ErrModel)

	_, err = Render(d, nil, &Options{Graph: [3]bool{true}})
	assert.NoError(t, err, "data alone needs no model")

	_, err = Render(d, model, &Options{Colors: [3]string{"mauve"}})
	assert.ErrorIs(t, err, ErrColor)
	_, err = Render(d, model, &Options{Markers: [3]string{"*"}})
	assert.ErrorIs(t, err, ErrMarker)
	_, err = Render(d, model, &Options{Markers: [3]string{"o"}, LineStyles: [3]string{"", "~"}})
	assert.ErrorIs(t, err, ErrLine)
}

func TestPlotSaves(t *testing.T) {
	d, model := sample()
	dir := t.TempDir()
	figs, err := Plot(context.Background(), d, model, &Options{
		Graph:      [3]bool{true, true, true},
		Save:       "lin.png",
		Dir:        filepath.Join(dir, "plots"),
		Markers:    [3]string{"o", "", "s"},
		LineStyles: [3]string{"", "--", ":"},
		Sizes:      [3][2]vg.Length{{3 * vg.Inch, 2 * vg.Inch}},
	})
	require.NoError(t, err)
	require.Len(t, figs, 3)
	for _, name := range []string{"lin_data.png", "lin_curve.png", "lin_fit_data.png"} {
		info, err := os.Stat(filepath.Join(dir, "plots", name))
		require.NoError(t, err, name)
		assert.Greater(t, info.Size(), int64(0))
	}
	assert.Equal(t, 3*vg.Inch, figs[0].Width)
	assert.Equal(t, 6*vg.Inch, figs[1].Width)
}

func TestGraphs(t *testing.T) {
	d, model := sample()
	graphs, err := Graphs(d, model, &Options{Graph: [3]bool{true, true, true}, Labels: [3]string{"", "$y = 2x + 1$", ""}, LinspaceVals: 10})
	require.NoError(t, err)
	require.Len(t, graphs, 3)

	assert.Equal(t, DataKind, graphs[0].Kind)
	assert.Equal(t, "data", graphs[0].Label)
	assert.False(t, graphs[0].Lines)
	assert.Equal(t, d.Y, graphs[0].Y)

	assert.Equal(t, "$y = 2x + 1$", graphs[1].Label)
	assert.True(t, graphs[1].Lines)
	assert.Len(t, graphs[1].X, 10)
	assert.InDelta(t, 9.0, graphs[1].Y[9], 1e-12)

	assert.Equal(t, []float64{1, 3, 5, 7, 9}, graphs[2].Y)

	_, err = Graphs(Data{}, model, nil)
	assert.ErrorIs(t, err, ErrEmpty)
	_, err = Graphs(d, nil, nil)
	assert.ErrorIs(t, err, ErrModel)
}
