package textable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateVertical(t *testing.T) {
	got, err := Generate([][]float64{{1, 2.5}, {-3, 4}}, []string{"a", "b"}, Options{})
	require.NoError(t, err)
	want := `\begin{table}[H]
\centering
\begin{tabular}{cc}
\hline
 a & b \\
\hline
 1.00 & -3 \\
 \hline
 2.50 & 4 \\
\hline
\end{tabular}
\caption{}
\label{}
\end{table}
`
	assert.Equal(t, want, got)
}

func TestGenerateVerticalRules(t *testing.T) {
	got, err := Generate([][]float64{{1, 2}, {3, 4}}, []string{"a", "b"}, Options{
		Sep:     "V",
		Fit:     "h!",
		Caption: "Two columns",
		NoLabel: true,
	})
	require.NoError(t, err)
	want := `\begin{table}[h!]
\centering
\begin{tabular}{|c|c|}
 a & b \\
\hline
 1 & 3 \\
 2 & 4 \\
\end{tabular}
\caption{Two columns}
\end{table}
`
	assert.Equal(t, want, got)
}

func TestGenerateHorizontal(t *testing.T) {
	got, err := Generate([][]float64{{1234.5, -0.5}}, []string{"x"}, Options{
		Shape:     "h",
		Sep:       "f",
		Prec:      []int{1},
		Exp:       []bool{true},
		ExpPrec:   []int{1},
		FWF:       true,
		NoCaption: true,
		Label:     "tab:x",
		FontSize:  "small",
		Loc:       "r",
	})
	require.NoError(t, err)
	want := `\begin{table}[H]
\small
\raggedleft
\begin{tabular}{|c|c|c|}
\hline
 x &  1.2e+03 & -5.0e-01 \\
\hline
\end{tabular}
\label{tab:x}
\end{table}
`
	assert.Equal(t, want, got)
}

func TestGenerateHorizontalTwoSeries(t *testing.T) {
	got, err := Generate([][]float64{{1, 2, 3}, {0.5, 0.25, 0.125}}, []string{"n", "p"}, Options{
		Shape:     "horizontal",
		Sep:       "none",
		Prec:      []int{0, 3},
		NoCaption: true,
		NoLabel:   true,
		Loc:       "l",
	})
	require.NoError(t, err)
	want := `\begin{table}[H]
\raggedright
\begin{tabular}{c|ccc}
 n & 1 & 2 & 3 \\
 p & 0.500 & 0.250 & 0.125 \\
\end{tabular}
\end{table}
`
	assert.Equal(t, want, got)
}

func TestCell(t *testing.T) {
	tests := []struct {
		v       float64
		prec    int
		exp     bool
		expPrec int
		fwf     bool
		want    string
	}{
		{3.14159, 2, false, 2, false, "3.14"},
		{3.14159, 2, false, 2, true, " 3.14"},
		{-3.14159, 2, false, 2, true, "-3.14"},
		{1234, -2, false, 2, false, "1200"},
		{1250, -2, false, 2, false, "1200"},
		{1350, -2, false, 2, false, "1400"},
		{0.000123456, 2, true, 2, false, "0.00e+00"},
		{0.000123456, 6, true, 2, false, "1.23e-04"},
		{311111.1, 2, true, 0, false, "3e+05"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, cell(tt.v, tt.prec, tt.exp, tt.expPrec, tt.fwf), "%v", tt)
	}
}

func TestGenerateErrors(t *testing.T) {
	data := [][]float64{{1, 2}, {3, 4}}
	titles := []string{"a", "b"}

	_, err := Generate(data, titles, Options{Shape: "diag"})
	var oe *OptionError
	require.ErrorAs(t, err, &oe)
	assert.Equal(t, "shape", oe.Option)
	assert.Equal(t, "diag", oe.Value)

	_, err = Generate(data, titles, Options{ExpPrec: []int{-1}})
	require.ErrorAs(t, err, &oe)
	assert.Equal(t, "exp_prec", oe.Option)

	_, err = Generate(data, titles, Options{FontSize: "big"})
	require.ErrorAs(t, err, &oe)
	assert.Equal(t, "font_size", oe.Option)

	_, err = Generate(data, titles[:1], Options{})
	assert.ErrorIs(t, err, ErrSize)
	_, err = Generate(data, titles, Options{Prec: []int{1, 2, 3}})
	assert.ErrorIs(t, err, ErrSize)
	_, err = Generate([][]float64{{1, 2}, {3}}, titles, Options{})
	assert.ErrorIs(t, err, ErrRagged)
	_, err = Generate(nil, nil, Options{})
	assert.ErrorIs(t, err, ErrEmpty)
}
