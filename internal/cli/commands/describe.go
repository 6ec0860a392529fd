package commands

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

// NewDescribeCommand creates the describe command.
func NewDescribeCommand() *cobra.Command {
	var cols []string

	cmd := &cobra.Command{
		Use:   "describe <file>",
		Short: "Summarize the numeric columns of a data file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := NewCommandContext(cmd)
			tbl, err := c.ReadTable(args[0], cols, false)
			if err != nil {
				return err
			}
			sums, err := tbl.Describe()
			if err != nil {
				return err
			}

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Column", "Count", "Mean", "Std", "Min", "Median", "Max"})
			for _, s := range sums {
				t.AppendRow(table.Row{s.Name, s.Count, g(s.Mean), g(s.Std), g(s.Min), g(s.Median), g(s.Max)})
			}
			t.Render()
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&cols, "cols", nil, "columns to include, by name or Excel letters")
	return cmd
}

func g(v float64) string { return fmt.Sprintf("%.6g", v) }
