package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sells-group/busfactor-cli/internal/pipeline"
	"github.com/sells-group/busfactor-cli/internal/tabular"
)

var quarterFilterFlags struct {
	output string
}

var quarterFilterCmd = &cobra.Command{
	Use:   "filter-empty <csv>",
	Short: "Keep only the rows whose quarter is still unresolved",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := tabular.ReadFile(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		out, counts, err := pipeline.FilterEmptyQuarter(t)
		if err != nil {
			return err
		}

		path := quarterFilterFlags.output
		if path == "" {
			ext := filepath.Ext(args[0])
			path = strings.TrimSuffix(args[0], ext) + "_quarter_empty_only" + ext
		}
		if err := out.WriteFile(path); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "kept (quarter empty):    %d\n", counts.Empty)
		fmt.Fprintf(cmd.OutOrStdout(), "removed (quarter filled): %d\n", counts.Filled)
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
		return nil
	},
}

func init() {
	quarterFilterCmd.Flags().StringVarP(&quarterFilterFlags.output, "output", "o", "", "output CSV path (default: <input>_quarter_empty_only.csv)")
	quarterCmd.AddCommand(quarterFilterCmd)
}
