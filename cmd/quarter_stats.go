package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sells-group/busfactor-cli/internal/pipeline"
	"github.com/sells-group/busfactor-cli/internal/tabular"
)

var quarterStatsCmd = &cobra.Command{
	Use:   "stats <csv>",
	Short: "Count empty and filled quarter cells in an output file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := tabular.ReadFile(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		counts, err := pipeline.CountQuarters(t)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "quarter empty:  %d\n", counts.Empty)
		fmt.Fprintf(cmd.OutOrStdout(), "quarter filled: %d\n", counts.Filled)
		return nil
	},
}

func init() {
	quarterCmd.AddCommand(quarterStatsCmd)
}
