package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/busfactor-cli/internal/pipeline"
	"github.com/sells-group/busfactor-cli/internal/tabular"
)

var compareMaxShow int

var quarterCompareCmd = &cobra.Command{
	Use:   "compare <csv1> <csv2>",
	Short: "Check two output files for quarter agreement per filedAt",
	Long: "Verifies that rows sharing a filedAt timestamp carry the same quarter in both\n" +
		"files, and that neither file maps one filedAt to several quarters. Exits\n" +
		"nonzero on disagreement.",
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := tabular.ReadFile(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		b, err := tabular.ReadFile(cmd.Context(), args[1])
		if err != nil {
			return err
		}

		report, err := pipeline.CompareQuarters(a, b)
		if err != nil {
			return err
		}
		printCompareReport(cmd.OutOrStdout(), args[0], args[1], report)

		if !report.Pass() {
			return eris.New("compare: files disagree")
		}
		return nil
	},
}

func printCompareReport(w io.Writer, nameA, nameB string, r *pipeline.CompareReport) {
	printSection(w, "internal consistency")
	printInconsistencies(w, nameA, r.InconsistentA)
	printInconsistencies(w, nameB, r.InconsistentB)

	printSection(w, "comparison by filedAt")
	fmt.Fprintf(w, "present in both:   %d\n", r.Both)
	fmt.Fprintf(w, "  quarters match:  %d\n", r.Equal)
	fmt.Fprintf(w, "  quarters differ: %d\n", len(r.Diffs))
	fmt.Fprintf(w, "only in %s: %d\n", nameA, len(r.OnlyA))
	fmt.Fprintf(w, "only in %s: %d\n", nameB, len(r.OnlyB))
	if r.SkippedA > 0 || r.SkippedB > 0 {
		fmt.Fprintf(w, "skipped (bad filedAt): %d / %d\n", r.SkippedA, r.SkippedB)
	}

	if len(r.Diffs) > 0 {
		printSection(w, "differences")
		shown := r.Diffs
		if len(shown) > compareMaxShow {
			shown = shown[:compareMaxShow]
		}
		for _, d := range shown {
			fmt.Fprintf(w, "%s  %v vs %v  tickers %v / %v\n",
				d.FiledAt, d.QuartersA, d.QuartersB, d.TickersA, d.TickersB)
		}
		if len(r.Diffs) > compareMaxShow {
			fmt.Fprintf(w, "... showing first %d of %d\n", compareMaxShow, len(r.Diffs))
		}
		if tickers := r.MismatchTickers(); len(tickers) > 0 {
			fmt.Fprintf(w, "tickers with differences: %s\n", strings.Join(tickers, ", "))
		}
	}

	printSection(w, "result")
	if r.Pass() {
		fmt.Fprintln(w, "PASS: quarters agree for every shared filedAt")
	} else {
		fmt.Fprintln(w, "FAIL: see differences above")
	}
}

func printInconsistencies(w io.Writer, name string, incs []pipeline.Inconsistency) {
	if len(incs) == 0 {
		fmt.Fprintf(w, "%s: consistent\n", name)
		return
	}
	fmt.Fprintf(w, "%s: %d filedAt values map to multiple quarters\n", name, len(incs))
	shown := incs
	if len(shown) > compareMaxShow {
		shown = shown[:compareMaxShow]
	}
	for _, inc := range shown {
		fmt.Fprintf(w, "  %s -> %v\n", inc.FiledAt, inc.Quarters)
	}
}

func printSection(w io.Writer, title string) {
	fmt.Fprintf(w, "\n%s\n%s\n", title, strings.Repeat("=", len(title)))
}

func init() {
	quarterCompareCmd.Flags().IntVar(&compareMaxShow, "max-show", 20, "maximum rows printed per section")
	quarterCmd.AddCommand(quarterCompareCmd)
}
