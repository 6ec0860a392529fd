package commands

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/HamletTheHamster/labutils/datafile"
	"github.com/HamletTheHamster/labutils/fit"
	"github.com/HamletTheHamster/labutils/formula"
	"github.com/HamletTheHamster/labutils/plotfit"
)

type fitFlags struct {
	data             string
	x, y             string
	xerr, yerr       string
	beta0            []float64
	bounds           []float64
	searchBounds     []float64
	dataSearchBounds bool
	relativeErr      bool
	variable         string
	odrType          string

	printFunc bool
	residuals bool

	graph       []string
	save        string
	merge       bool
	show        bool
	noErrorBars bool
	title       string
	xlabel      string
	ylabel      string
}

// NewFitCommand creates the fit command.
func NewFitCommand() *cobra.Command {
	var f fitFlags

	cmd := &cobra.Command{
		Use:   "fit <formula>",
		Short: "Fit a formula to two columns of a data file",
		Long: `Fit a formula to measured data. Parameters are written in braces and the
independent variable in square brackets, or as x:

  labfit fit "{A}*exp(-[t]/{tau}) + {C}" --data decay.csv -x t -y V --yerr dV

Without --beta0 the initial parameters are searched with differential
evolution.`,
		Example: `  labfit fit "{a}*x + {b}" --data line.csv -x x -y y
  labfit fit "{a}*x + {b}" --data line.xlsx -x A -y B --method odr --xerr C --yerr D
  labfit fit "{a}*sin({w}*x)" --data wave.tsv -x t -y V --bounds 0,10 --graph data,curve --save wave.png`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFit(cmd, args[0], &f)
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.data, "data", "d", "", "data file (csv, tsv, txt, dat, md, xlsx)")
	fl.StringVarP(&f.x, "x", "x", "", "column of the independent variable")
	fl.StringVarP(&f.y, "y", "y", "", "column of the dependent variable")
	fl.StringVar(&f.xerr, "xerr", "", "column of x uncertainties")
	fl.StringVar(&f.yerr, "yerr", "", "column of y uncertainties")
	fl.Float64SliceVar(&f.beta0, "beta0", nil, "initial parameters, in order of appearance")
	fl.Float64SliceVar(&f.bounds, "bounds", nil, "lower,upper limits applied to every parameter")
	fl.Float64SliceVar(&f.searchBounds, "search-bounds", nil, "lower,upper limits of the initial search")
	fl.BoolVar(&f.dataSearchBounds, "data-bounds", false, "search within the magnitude of the data")
	fl.BoolVar(&f.relativeErr, "relative-err", false, "treat uncertainties as relative weights")
	fl.StringVar(&f.variable, "variable", "", "name of the independent variable (default x)")
	fl.StringVar(&f.odrType, "odr-type", "explicit", "orthogonal regression type (explicit|ols)")
	fl.BoolVar(&f.printFunc, "printf", false, "print the formula with the fitted values")
	fl.BoolVar(&f.residuals, "residuals", false, "print residual statistics")

	fl.String("method", "simple", "fit method (simple|odr)")
	fl.String("solver", "", "least squares solver (lm|bounded), picked from the bounds when empty")
	fl.Int("max-iter", 1000, "solver iteration limit")
	fl.Uint64("seed", 0, "seed of the initial search, 0 for random")
	fl.Int("workers", 1, "goroutines evaluating the initial search")

	fl.StringSliceVar(&f.graph, "graph", nil, "figures to draw: data, curve, fit_data")
	fl.StringVar(&f.save, "save", "", "figure file name; the extension picks the format")
	fl.BoolVar(&f.merge, "merge", false, "draw every figure on one plot")
	fl.BoolVar(&f.show, "show", false, "open a gnuplot preview (needs a -tags gnuplot build)")
	fl.BoolVar(&f.noErrorBars, "no-error-bars", false, "hide error bars")
	fl.StringVar(&f.title, "title", "", "figure title")
	fl.StringVar(&f.xlabel, "xlabel", "", "x axis label")
	fl.StringVar(&f.ylabel, "ylabel", "", "y axis label")
	fl.String("legend", "", "legend location, e.g. upper left")
	fl.Bool("usetex", false, "render labels as LaTeX")

	_ = cmd.MarkFlagRequired("data")
	_ = cmd.MarkFlagRequired("x")
	_ = cmd.MarkFlagRequired("y")
	_ = cmd.RegisterFlagCompletionFunc("method", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"simple", "odr"}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runFit(cmd *cobra.Command, src string, f *fitFlags) error {
	c := NewCommandContext(cmd)
	out := cmd.OutOrStdout()

	tbl, err := c.ReadTable(f.data, nil, false)
	if err != nil {
		return err
	}
	x, y, xerr, yerr, err := fitColumns(tbl, f)
	if err != nil {
		return err
	}

	opts, err := fitOptions(c, src, f)
	if err != nil {
		return err
	}
	opts.XErr, opts.YErr = xerr, yerr

	res, err := fit.Fit(src, x, y, opts)
	if err != nil {
		return err
	}

	printResult(out, c, res)
	if f.printFunc {
		fmt.Fprintln(out, res.Func())
	}
	if f.residuals {
		rs, err := res.ResidualStats()
		if err != nil {
			c.Logger.Warn("residual statistics unavailable", "error", err)
		} else {
			fmt.Fprintf(out, "residuals: mean %g, std %g, rms %g, max |r| %g\n", rs.Mean, rs.StdDev, rs.RMS, rs.MaxAbs)
		}
	}

	dir, err := c.RunDir(time.Now())
	if err != nil {
		return err
	}
	d := plotfit.Data{X: x, Y: y, XErr: xerr, YErr: yerr}
	popts, err := plotOptions(c, f, res, dir)
	if err != nil {
		return err
	}
	if popts.Save != "" || popts.SaveDefault {
		if _, err := plotfit.Plot(cmd.Context(), d, res.Eval, popts); err != nil {
			return err
		}
	}
	if f.show {
		if err := preview(d, res.Eval, popts); err != nil {
			return err
		}
	}

	if dir != "" {
		var sb strings.Builder
		fmt.Fprintf(&sb, "Command: %s\n", strings.Join(os.Args, " "))
		fmt.Fprintf(&sb, "Data: %s (x=%s, y=%s)\n", f.data, f.x, f.y)
		if c.Cfg.Note != "" {
			fmt.Fprintf(&sb, "Runtime note: %s\n", c.Cfg.Note)
		}
		fmt.Fprintf(&sb, "\nFormula: %s\nMethod: %s\nStatus: %s\n\nFit Parameters:\n", src, res.Method, res.Status)
		printResult(&sb, c, res)
		fmt.Fprintf(&sb, "\n%s\n", res.Func())
		if err := writeLog(dir, []string{sb.String()}); err != nil {
			return err
		}
		c.Logger.Info("wrote run log", "dir", dir)
	}
	return nil
}

func fitColumns(tbl *datafile.Table, f *fitFlags) (x, y, xerr, yerr []float64, err error) {
	if x, err = tbl.Column(f.x); err != nil {
		return
	}
	if y, err = tbl.Column(f.y); err != nil {
		return
	}
	if f.xerr != "" {
		if xerr, err = tbl.Column(f.xerr); err != nil {
			return
		}
	}
	if f.yerr != "" {
		yerr, err = tbl.Column(f.yerr)
	}
	return
}

func fitOptions(c *CommandContext, src string, f *fitFlags) (*fit.Options, error) {
	opts := &fit.Options{
		Beta0:            f.beta0,
		RelativeErr:      f.relativeErr,
		DataSearchBounds: f.dataSearchBounds,
		Method:           fit.Method(c.Cfg.Method),
		Solver:           fit.Solver(c.Cfg.Solver),
		Variable:         f.variable,
		MaxIter:          c.Cfg.MaxIter,
		DE:               fit.DEOptions{Seed: c.Cfg.Seed, Workers: c.Cfg.Workers},
		Logger:           c.Logger,
	}
	switch strings.ToLower(f.odrType) {
	case "", "explicit":
		opts.ODR.Type = fit.ODRExplicit
	case "ols":
		opts.ODR.Type = fit.ODROLS
	default:
		return nil, fmt.Errorf("unknown odr type %q (expected explicit or ols)", f.odrType)
	}

	if f.bounds == nil && f.searchBounds == nil {
		return opts, nil
	}
	parsed, err := formula.Parse(src, formula.WithVariable(f.variable))
	if err != nil {
		return nil, err
	}
	n := len(parsed.Params)
	if f.bounds != nil {
		b, err := uniformBounds("bounds", f.bounds, n)
		if err != nil {
			return nil, err
		}
		opts.Bounds = &b
	}
	if f.searchBounds != nil {
		b, err := uniformBounds("search-bounds", f.searchBounds, n)
		if err != nil {
			return nil, err
		}
		opts.SearchBounds = &b
	}
	return opts, nil
}

func uniformBounds(flag string, v []float64, n int) (fit.Bounds, error) {
	if len(v) != 2 {
		return fit.Bounds{}, fmt.Errorf("--%s takes lower,upper; got %d values", flag, len(v))
	}
	return fit.UniformBounds(v[0], v[1], n), nil
}

func plotOptions(c *CommandContext, f *fitFlags, res *fit.Result, dir string) (*plotfit.Options, error) {
	o := &plotfit.Options{
		Merge:       f.merge,
		Titles:      [3]string{f.title, f.title, f.title},
		Labels:      [3]string{"data", "fit", "fit at data"},
		AxisLabels:  [2]string{f.xlabel, f.ylabel},
		Legend:      c.Cfg.Legend,
		NoErrorBars: f.noErrorBars,
		UseTeX:      c.Cfg.UseTeX,
		Save:        f.save,
		Dir:         dir,
		Logger:      c.Logger,
	}
	if c.Cfg.UseTeX {
		if label, ok := curveLabel(res, c.Cfg.Digits+2); ok {
			o.Labels[plotfit.CurveKind] = label
		}
	}
	copy(o.Colors[:], c.Cfg.Colors)
	for _, g := range f.graph {
		switch strings.ToLower(strings.ReplaceAll(g, "-", "_")) {
		case "data":
			o.Graph[plotfit.DataKind] = true
		case "curve":
			o.Graph[plotfit.CurveKind] = true
		case "fit_data", "fitdata":
			o.Graph[plotfit.FitDataKind] = true
		default:
			return nil, fmt.Errorf("unknown graph %q (expected data, curve or fit_data)", g)
		}
	}
	// a run directory without a file name still gets the default names
	if dir != "" && o.Save == "" {
		o.SaveDefault = true
	}
	return o, nil
}

// curveLabel renders the fitted formula in LaTeX math, with each value
// rounded to digits significant figures.
func curveLabel(res *fit.Result, digits int) (string, bool) {
	if res == nil || res.Formula == nil {
		return "", false
	}
	values := make([]float64, len(res.Values))
	for i, v := range res.Values {
		values[i], _ = strconv.ParseFloat(strconv.FormatFloat(v, 'g', digits, 64), 64)
	}
	f, err := formula.Parse(res.Formula.Substitute(values), formula.WithVariable(res.Formula.Variable))
	if err != nil {
		return "", false
	}
	return "$" + f.LaTeX() + "$", true
}

// printResult renders the fitted parameters as a table.
func printResult(w io.Writer, c *CommandContext, res *fit.Result) {
	format := c.Format()
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Parameter", "Value", "Error", "Result"})
	for _, m := range res.Measurements() {
		t.AppendRow(table.Row{m.Name, m.Value, m.Error, format.Sprint(m.Value, m.Error)})
	}
	t.AppendFooter(table.Row{"χ²/dof", fmt.Sprintf("%.4g", res.RedChiSq), "dof", res.DOF})
	t.Render()
}
