package main

import (
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/busfactor-cli/internal/edgar"
	"github.com/sells-group/busfactor-cli/internal/fetcher"
	"github.com/sells-group/busfactor-cli/internal/inference"
	"github.com/sells-group/busfactor-cli/internal/pipeline"
	"github.com/sells-group/busfactor-cli/internal/store"
)

var quarterFlags struct {
	input     string
	submap    string
	outPrefix string
	rate      float64
	userAgent string
	noCache   bool
}

var quarterCmd = &cobra.Command{
	Use:   "quarter",
	Short: "Infer fiscal quarters for a filings table",
	Long: "Runs the cascading quarter inference: the financial-statement submission map,\n" +
		"the SEC structured APIs for fiscal year ends, document probing for the rest,\n" +
		"then the quarter computation. Each stage writes an audited step CSV.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if quarterFlags.userAgent != "" {
			cfg.SEC.UserAgent = quarterFlags.userAgent
		}
		if err := cfg.ValidateLive(); err != nil {
			return err
		}
		rate := cfg.SEC.Rate()
		if cmd.Flags().Changed("rate") {
			rate = time.Duration(quarterFlags.rate * float64(time.Second))
		}

		f := fetcher.NewHTTPFetcher(fetcher.Options{
			UserAgent:    cfg.SEC.UserAgent,
			Timeout:      cfg.SEC.Timeout(),
			MaxRetries:   cfg.SEC.MaxRetries,
			RateLimiters: fetcher.DefaultRateLimiters(),
		})

		var cache edgar.FYECache
		if !quarterFlags.noCache && cfg.Cache.Path != "" {
			c, err := store.NewSQLite(cfg.Cache.Path)
			if err != nil {
				return err
			}
			defer c.Close()
			if err := c.Migrate(cmd.Context()); err != nil {
				return err
			}
			cache = c
		}

		runner := pipeline.NewQuarterRunner(
			f,
			edgar.NewClient(f, rate, cache),
			inference.NewEngine(f),
			pipeline.QuarterOptions{OutPrefix: quarterFlags.outPrefix, Rate: rate},
		)
		if err := runner.Run(cmd.Context(), quarterFlags.input, quarterFlags.submap); err != nil {
			return err
		}

		for _, path := range runner.Outputs() {
			zap.L().Info("wrote output", zap.String("path", path))
		}
		return nil
	},
}

func init() {
	quarterCmd.Flags().StringVar(&quarterFlags.input, "input", "", "input filings CSV")
	quarterCmd.Flags().StringVar(&quarterFlags.submap, "submap", "", "submission map CSV (adsh, fp, period)")
	quarterCmd.Flags().StringVar(&quarterFlags.outPrefix, "out-prefix", "bsq_quarter", "output prefix for step CSVs")
	quarterCmd.Flags().Float64Var(&quarterFlags.rate, "rate", 0.2, "seconds between HTTP/API calls")
	quarterCmd.Flags().StringVar(&quarterFlags.userAgent, "user-agent", "", "SEC-compliant User-Agent override")
	quarterCmd.Flags().BoolVar(&quarterFlags.noCache, "no-cache", false, "skip the fiscal-year-end cache database")
	_ = quarterCmd.MarkFlagRequired("input")
	_ = quarterCmd.MarkFlagRequired("submap")

	rootCmd.AddCommand(quarterCmd)
}
