package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/HamletTheHamster/labutils/textable"
)

type tableFlags struct {
	cols     []string
	titles   []string
	opts     textable.Options
	exp      []bool
	expPrec  []int
	prec     []int
	noLabel  bool
	noCapt   bool
	fontSize string
}

// NewTableCommand creates the table command.
func NewTableCommand() *cobra.Command {
	var f tableFlags

	cmd := &cobra.Command{
		Use:   "table <file>",
		Short: "Print a data file as a LaTeX table",
		Long: `Read the numeric columns of a data file and print them as a LaTeX
table environment. Column names become the titles unless --titles is given.`,
		Example: `  labfit table runs.csv --cols t,V --prec 1,3
  labfit table runs.xlsx --shape horizontal --sep full --exp false,true`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := NewCommandContext(cmd)
			tbl, err := c.ReadTable(args[0], f.cols, false)
			if err != nil {
				return err
			}
			titles := tbl.Names
			if len(f.titles) > 0 {
				titles = f.titles
			}
			opts := f.opts
			opts.Prec = f.prec
			opts.Exp = f.exp
			opts.ExpPrec = f.expPrec
			opts.NoLabel = f.noLabel
			opts.NoCaption = f.noCapt
			opts.FontSize = f.fontSize

			tex, err := textable.Generate(tbl.Columns, titles, opts)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), tex)
			return err
		},
	}

	fl := cmd.Flags()
	fl.StringSliceVar(&f.cols, "cols", nil, "columns to include, by name or Excel letters")
	fl.StringSliceVar(&f.titles, "titles", nil, "column titles")
	fl.IntSliceVar(&f.prec, "prec", nil, "decimals per column")
	fl.StringVar(&f.opts.Shape, "shape", "", "vertical or horizontal")
	fl.StringVar(&f.opts.Sep, "sep", "", "rules: vertical, horizontal, full or none")
	fl.StringVar(&f.opts.Fit, "fit", "", "float placement (h, h!, b, t, H)")
	fl.StringVar(&f.opts.Loc, "loc", "", "alignment: center, left or right")
	fl.StringVar(&f.opts.Caption, "caption", "", "table caption")
	fl.StringVar(&f.opts.Label, "label", "", "table label")
	fl.BoolVar(&f.noCapt, "no-caption", false, "omit the caption")
	fl.BoolVar(&f.noLabel, "no-label", false, "omit the label")
	fl.BoolSliceVar(&f.exp, "exp", nil, "scientific notation per column")
	fl.IntSliceVar(&f.expPrec, "exp-prec", nil, "decimals of scientific notation per column")
	fl.BoolVar(&f.opts.FWF, "fwf", false, "pad positive numbers to the width of negative ones")
	fl.StringVar(&f.fontSize, "font-size", "", "LaTeX font size command, e.g. small")

	return cmd
}
