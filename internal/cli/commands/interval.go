package commands

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/HamletTheHamster/labutils/interval"
)

// NewIntervalCommand creates the interval command.
func NewIntervalCommand() *cobra.Command {
	var contains []float64

	cmd := &cobra.Command{
		Use:   "interval <a> [b]",
		Short: "Inspect, join and intersect intervals",
		Long: `Print an interval written in bracket notation with its length. With a
second interval, print their union and intersection too.`,
		Example: `  labfit interval "[0, 1)" --contains 0,1
  labfit interval "[0, 2]" "(1, 3)"`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			a, err := interval.Parse(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s length %g\n", a, a.Len())
			for _, v := range contains {
				fmt.Fprintf(out, "%s contains %s: %t\n", a, strconv.FormatFloat(v, 'g', -1, 64), a.Contains(v))
			}
			if len(args) == 1 {
				return nil
			}

			b, err := interval.Parse(args[1])
			if err != nil {
				return err
			}
			u, err := a.Union(b)
			switch {
			case errors.Is(err, interval.ErrDisjoint):
				fmt.Fprintf(out, "union: disjoint\n")
			case err != nil:
				return err
			default:
				fmt.Fprintf(out, "union: %s\n", u)
			}
			if in, ok := a.Intersect(b); ok {
				fmt.Fprintf(out, "intersection: %s\n", in)
			} else {
				fmt.Fprintf(out, "intersection: empty\n")
			}
			return nil
		},
	}
	cmd.Flags().Float64SliceVar(&contains, "contains", nil, "values to test for membership")
	return cmd
}
