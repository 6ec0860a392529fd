// Package cli provides the labfit command-line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/HamletTheHamster/labutils/internal/cli/commands"
	"github.com/HamletTheHamster/labutils/internal/config"
)

// Version is set at build time.
var Version = "0.1.0"

// NewRootCmd creates the root command with every subcommand attached.
func NewRootCmd() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "labfit",
		Short: "Fit, plot and tabulate laboratory data",
		Long: `labfit fits formulas written with {parameter} placeholders to measured
data, draws the data next to the fitted curve and turns tables of
measurements into LaTeX.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}
			cfg, used, err := config.Load(cfgFile, cmd.Flags())
			if err != nil {
				return err
			}
			logger := config.NewLogger(cmd.ErrOrStderr(), cfg.Verbose)
			if used != "" {
				logger.Debug("using config file", "path", used)
			}
			ctx := config.WithConfig(cmd.Context(), cfg)
			cmd.SetContext(config.WithLogger(ctx, logger))
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: ./labfit.yaml)")
	pf.BoolP("verbose", "v", false, "verbose output")
	pf.Int("digits", 2, "significant digits of uncertainties")
	pf.String("style", "auto", "number notation (auto|fixed|exp)")
	pf.Bool("latex", false, "print measurements as LaTeX")
	pf.String("layout", "vertical", "data file layout (vertical|horizontal)")
	pf.String("delim", "", "data file delimiter (detected when empty)")
	pf.String("decimal", ".", "decimal separator of the data file")
	pf.String("sheet", "", "XLSX sheet name or index")
	pf.String("out", "", "root of dated run directories")
	pf.String("note", "", "note appended to the run directory name")

	_ = rootCmd.RegisterFlagCompletionFunc("style", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"auto", "fixed", "exp"}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(commands.NewVersionCommand(Version))
	rootCmd.AddCommand(commands.NewFitCommand())
	rootCmd.AddCommand(commands.NewTableCommand())
	rootCmd.AddCommand(commands.NewDescribeCommand())
	rootCmd.AddCommand(commands.NewSortCommand())
	rootCmd.AddCommand(commands.NewIntervalCommand())

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
