package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/avianlab/habitat-cli/internal/report"
)

var reportInput string

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Summarize a composition table",
	Long:  "Prints per-class mean, standard deviation, and range of PLAND values across the rows of a composition CSV.",
	RunE: func(_ *cobra.Command, _ []string) error {
		summaries, rows, err := report.SummarizeFile(reportInput)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintf(w, "column\tmean\tsd\tmin\tmax\n")
		for _, s := range summaries {
			fmt.Fprintf(w, "%s\t%.4f\t%.4f\t%.4f\t%.4f\n", s.Column, s.Mean, s.StdDev, s.Min, s.Max)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		fmt.Printf("\n%d rows\n", rows)
		return nil
	},
}

func init() {
	reportCmd.Flags().StringVar(&reportInput, "input", "", "composition CSV to summarize")
	_ = reportCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(reportCmd)
}
