// Command rentboard renders booking analytics reports from the terminal.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "rentboard",
		Short:        "Short-term rental booking analytics",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(reportCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(importCmd())
	rootCmd.AddCommand(thresholdsCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// queryFlags are shared by every command that runs the pipeline
type queryFlags struct {
	mode      string
	year      int
	owner     string
	csvPath   string
	rulesFile string
}

func (q *queryFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&q.mode, "mode", "m", "Revenue", "Aggregation mode (Revenue or Occupancy)")
	cmd.Flags().IntVarP(&q.year, "year", "y", 0, "Year to report (0 = latest year with data)")
	cmd.Flags().StringVarP(&q.owner, "owner", "o", "all", "Owner filter")
	cmd.Flags().StringVar(&q.csvPath, "csv", "", "Read bookings from this export instead of the store")
	cmd.Flags().StringVar(&q.rulesFile, "rules", "", "YAML rules file (overrides RENTBOARD_RULES_FILE)")
}

func reportCmd() *cobra.Command {
	var q queryFlags

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the monthly pivot with its classification and the performance summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runReport(cmd.Context(), cmd.OutOrStdout(), q)
		},
	}

	q.register(cmd)
	return cmd
}

func exportCmd() *cobra.Command {
	var q queryFlags
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the report as an Excel workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runExport(cmd.Context(), cmd.OutOrStdout(), q, out)
		},
	}

	q.register(cmd)
	cmd.Flags().StringVar(&out, "out", "rentboard.xlsx", "Output workbook path")
	return cmd
}

func importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import [csv-path]",
		Short: "Replace the stored bookings with a CSV export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd.Context(), cmd.OutOrStdout(), args[0])
		},
	}
}

func thresholdsCmd() *cobra.Command {
	var rulesFile string

	cmd := &cobra.Command{
		Use:   "thresholds",
		Short: "List the monthly revenue target of every property",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runThresholds(cmd.OutOrStdout(), rulesFile)
		},
	}

	cmd.Flags().StringVar(&rulesFile, "rules", "", "YAML rules file (overrides RENTBOARD_RULES_FILE)")
	return cmd
}
