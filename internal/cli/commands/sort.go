package commands

import (
	"encoding/csv"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/HamletTheHamster/labutils/multisort"
)

// NewSortCommand creates the sort command.
func NewSortCommand() *cobra.Command {
	var by, order string

	cmd := &cobra.Command{
		Use:   "sort <file>",
		Short: "Reorder every column of a data file by one of them",
		Long: `Sort the rows of a data file by the values of one column and print the
result as CSV. The order is asc, desc or dalt, which alternates between
the largest and the smallest remaining values.`,
		Example: `  labfit sort runs.csv --by power --order desc`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := NewCommandContext(cmd)
			crit, err := multisort.ParseCriterion(order)
			if err != nil {
				return err
			}
			tbl, err := c.ReadTable(args[0], nil, false)
			if err != nil {
				return err
			}
			guide, err := tbl.Column(by)
			if err != nil {
				return err
			}
			perm, err := multisort.Indices(guide, crit)
			if err != nil {
				return err
			}
			cols := make([][]float64, len(tbl.Columns))
			for i, col := range tbl.Columns {
				if cols[i], err = multisort.Apply(perm, col); err != nil {
					return err
				}
			}
			c.Logger.Debug("sorted", "by", by, "order", crit.String(), "rows", len(perm))

			w := csv.NewWriter(cmd.OutOrStdout())
			if err := w.Write(tbl.Names); err != nil {
				return err
			}
			row := make([]string, len(cols))
			for r := range perm {
				for j, col := range cols {
					row[j] = strconv.FormatFloat(col[r], 'g', -1, 64)
				}
				if err := w.Write(row); err != nil {
					return err
				}
			}
			w.Flush()
			return w.Error()
		},
	}
	cmd.Flags().StringVar(&by, "by", "", "column that guides the order")
	cmd.Flags().StringVar(&order, "order", "asc", "asc, desc or dalt")
	_ = cmd.MarkFlagRequired("by")
	return cmd
}
