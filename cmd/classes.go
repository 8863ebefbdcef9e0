package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/avianlab/habitat-cli/internal/landcover"
)

var classesCmd = &cobra.Command{
	Use:   "classes",
	Short: "Print the landcover class legend",
	RunE: func(_ *cobra.Command, _ []string) error {
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintf(w, "code\tcolumn\tname\n")
		for _, c := range landcover.DefaultLegend() {
			fmt.Fprintf(w, "%d\tpland_%02d\t%s\n", c.Code, c.Code, c.Name)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(classesCmd)
}
