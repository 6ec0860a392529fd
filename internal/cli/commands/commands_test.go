package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HamletTheHamster/labutils/fit"
	"github.com/HamletTheHamster/labutils/formula"
	"github.com/HamletTheHamster/labutils/internal/config"
	"github.com/HamletTheHamster/labutils/multisort"
	"github.com/HamletTheHamster/labutils/plotfit"
)

func writeCSV(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))
	return path
}

func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestNewVersionCommand(t *testing.T) {
	out, err := execute(t, NewVersionCommand("1.2.3"))
	require.NoError(t, err)
	assert.Equal(t, "labfit v1.2.3\n", out)
}

func TestCommandMetadata(t *testing.T) {
	tests := []struct {
		use   string
		flags []string
		new   func() *cobra.Command
	}{
		{"fit <formula>", []string{"data", "x", "y", "xerr", "yerr", "beta0", "bounds", "method", "seed", "graph", "save", "show"}, NewFitCommand},
		{"table <file>", []string{"cols", "prec", "shape", "sep", "exp", "exp-prec", "fwf", "font-size"}, NewTableCommand},
		{"describe <file>", []string{"cols"}, NewDescribeCommand},
		{"sort <file>", []string{"by", "order"}, NewSortCommand},
		{"interval <a> [b]", []string{"contains"}, NewIntervalCommand},
	}
	for _, tt := range tests {
		t.Run(tt.use, func(t *testing.T) {
			cmd := tt.new()
			assert.Equal(t, tt.use, cmd.Use)
			assert.NotEmpty(t, cmd.Short)
			for _, f := range tt.flags {
				assert.NotNil(t, cmd.Flags().Lookup(f), "flag %q should exist", f)
			}
		})
	}
}

func TestSortCommand(t *testing.T) {
	path := writeCSV(t, "t,V\n3,30\n1,10\n2,20\n5,50\n4,40\n")

	tests := []struct {
		order string
		want  string
	}{
		{"asc", "t,V\n1,10\n2,20\n3,30\n4,40\n5,50\n"},
		{"desc", "t,V\n5,50\n4,40\n3,30\n2,20\n1,10\n"},
		{"dalt", "t,V\n5,50\n1,10\n4,40\n2,20\n3,30\n"},
	}
	for _, tt := range tests {
		t.Run(tt.order, func(t *testing.T) {
			out, err := execute(t, NewSortCommand(), path, "--by", "t", "--order", tt.order)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}

	_, err := execute(t, NewSortCommand(), path, "--by", "t", "--order", "random")
	assert.ErrorIs(t, err, multisort.ErrCriterion)

	_, err = execute(t, NewSortCommand(), path, "--by", "missing")
	assert.Error(t, err)
}

func TestTableCommand(t *testing.T) {
	path := writeCSV(t, "a,b\n1,2.5\n3,4.25\n")

	out, err := execute(t, NewTableCommand(), path)
	require.NoError(t, err)
	assert.Equal(t, "\\begin{table}[H]\n"+
		"\\centering\n"+
		"\\begin{tabular}{cc}\n"+
		"\\hline\n"+
		" a & b \\\\\n"+
		"\\hline\n"+
		" 1 & 2.50 \\\\\n"+
		" \\hline\n"+
		" 3 & 4.25 \\\\\n"+
		"\\hline\n"+
		"\\end{tabular}\n"+
		"\\caption{}\n"+
		"\\label{}\n"+
		"\\end{table}\n", out)

	out, err = execute(t, NewTableCommand(), path, "--cols", "b", "--titles", "$V$", "--prec", "1", "--no-caption", "--no-label")
	require.NoError(t, err)
	assert.Contains(t, out, " $V$ \\\\\n")
	assert.Contains(t, out, " 2.5 \\\\\n")
	assert.NotContains(t, out, "\\caption")

	_, err = execute(t, NewTableCommand(), path, "--shape", "diagonal")
	assert.Error(t, err)
}

func TestDescribeCommand(t *testing.T) {
	path := writeCSV(t, "t,V\n1,10\n2,20\n3,30\n")
	out, err := execute(t, NewDescribeCommand(), path)
	require.NoError(t, err)
	assert.Contains(t, out, "MEDIAN")
	assert.Contains(t, out, "│ t ")
	assert.Contains(t, out, "│ V ")
	assert.Contains(t, out, " 20 ")
}

func TestIntervalCommand(t *testing.T) {
	out, err := execute(t, NewIntervalCommand(), "[0, 1)", "--contains", "0,1")
	require.NoError(t, err)
	assert.Equal(t, "[0, 1) length 1\n[0, 1) contains 0: true\n[0, 1) contains 1: false\n", out)

	out, err = execute(t, NewIntervalCommand(), "[0, 2]", "(1, 3)")
	require.NoError(t, err)
	assert.Contains(t, out, "union: [0, 3)\n")
	assert.Contains(t, out, "intersection: (1, 2]\n")

	out, err = execute(t, NewIntervalCommand(), "[0, 1)", "(1, 2]")
	require.NoError(t, err)
	assert.Contains(t, out, "union: disjoint\n")
	assert.Contains(t, out, "intersection: empty\n")

	_, err = execute(t, NewIntervalCommand(), "0..1")
	assert.Error(t, err)
}

func TestRunDir(t *testing.T) {
	root := t.TempDir()
	c := &CommandContext{Cfg: &config.Config{Out: root, Note: "calibration"}, Logger: config.GetLogger(context.Background())}
	now := time.Date(2024, time.March, 5, 14, 7, 9, 0, time.UTC)

	dir, err := c.RunDir(now)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "2024-Mar-05", "140709 calibration"), dir)
	require.NoError(t, writeLog(dir, []string{"Runtime note: calibration\n", "ok\n"}))
	b, err := os.ReadFile(filepath.Join(dir, "log.txt"))
	require.NoError(t, err)
	assert.Equal(t, "Runtime note: calibration\nok\n", string(b))

	c.Cfg.Out = ""
	dir, err = c.RunDir(now)
	require.NoError(t, err)
	assert.Empty(t, dir)
}

func TestPlotOptions(t *testing.T) {
	res := &fit.Result{Formula: formula.MustParse("V = {A}*exp(-[t]/{tau}) + {C}"), Values: []float64{2.345678, 0.5, 1}}
	cfg := config.Default()
	cfg.Legend = "upper left"
	c := &CommandContext{Cfg: cfg, Logger: config.GetLogger(context.Background())}

	o, err := plotOptions(c, &fitFlags{graph: []string{"data", "fit-data"}}, res, "")
	require.NoError(t, err)
	assert.Equal(t, "upper left", o.Legend)
	assert.Equal(t, "fit", o.Labels[plotfit.CurveKind])
	assert.Equal(t, [3]bool{true, false, true}, o.Graph)
	assert.False(t, o.SaveDefault)

	cfg.UseTeX = true
	o, err = plotOptions(c, &fitFlags{}, res, "run")
	require.NoError(t, err)
	assert.Equal(t, `$V = 2.346 \cdot e^{\frac{-t}{0.5}} + 1$`, o.Labels[plotfit.CurveKind])
	assert.True(t, o.UseTeX)
	assert.True(t, o.SaveDefault)

	_, err = plotOptions(c, &fitFlags{graph: []string{"histogram"}}, res, "")
	assert.Error(t, err)
}
