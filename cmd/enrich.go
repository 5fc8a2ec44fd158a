package main

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/busfactor-cli/internal/enrich"
	"github.com/sells-group/busfactor-cli/internal/fetcher"
	"github.com/sells-group/busfactor-cli/internal/section"
	"github.com/sells-group/busfactor-cli/internal/tabular"
	"github.com/sells-group/busfactor-cli/pkg/extractor"
)

var enrichFlags struct {
	input     string
	output    string
	rate      float64
	workers   int
	keepText  bool
	noDedupe  bool
	groupCols string
	limit     int
	format    string
	userAgent string
}

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Annotate filings with Item 1A keyword metrics",
	Long: "Fetches each filing's risk-factor section (Extractor API first, direct scrape\n" +
		"as fallback), counts strategy keywords and total words, and deduplicates\n" +
		"filings per company fiscal quarter.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if enrichFlags.userAgent != "" {
			cfg.SEC.UserAgent = enrichFlags.userAgent
		}
		if err := cfg.ValidateLive(); err != nil {
			return err
		}
		if enrichFlags.format != "csv" && enrichFlags.format != "xlsx" {
			return eris.Errorf("enrich: unsupported output format %q", enrichFlags.format)
		}

		var t *tabular.Table
		var err error
		if strings.HasSuffix(strings.ToLower(enrichFlags.input), ".xlsx") {
			t, err = tabular.ReadXLSXFile(enrichFlags.input)
		} else {
			t, err = tabular.ReadFile(cmd.Context(), enrichFlags.input)
		}
		if err != nil {
			return err
		}

		f := fetcher.NewHTTPFetcher(fetcher.Options{
			UserAgent:    cfg.SEC.UserAgent,
			Timeout:      cfg.SEC.Timeout(),
			MaxRetries:   cfg.SEC.MaxRetries,
			RateLimiters: fetcher.DefaultRateLimiters(),
		})
		var ext extractor.Client
		if cfg.Extractor.Key != "" {
			ext = extractor.NewClient(cfg.Extractor.Key, extractor.WithBaseURL(cfg.Extractor.BaseURL))
		} else {
			zap.L().Warn("no extractor api key configured; using direct scraping only")
		}

		workers := enrichFlags.workers
		if workers == 0 {
			workers = cfg.Enrich.Workers
		}
		e := enrich.New(section.NewSource(ext, f), enrich.Options{
			Rate:       time.Duration(enrichFlags.rate * float64(time.Second)),
			Workers:    workers,
			KeepText:   enrichFlags.keepText,
			Limit:      enrichFlags.limit,
			RowTimeout: cfg.Enrich.RowTimeout(),
		})
		if err := e.Run(cmd.Context(), t); err != nil {
			return err
		}

		if !enrichFlags.noDedupe {
			t, err = enrich.Deduplicate(t, parseGroupCols(enrichFlags.groupCols))
			if err != nil {
				return err
			}
		}
		t = enrich.SortByCompany(t, cfg.Enrich.DropUnkeyed)

		if enrichFlags.format == "xlsx" {
			err = t.WriteXLSXFile(enrichFlags.output, "filings")
		} else {
			err = t.WriteFile(enrichFlags.output)
		}
		if err != nil {
			return err
		}
		zap.L().Info("wrote output",
			zap.String("path", enrichFlags.output),
			zap.Int("rows", len(t.Rows)),
		)
		return nil
	},
}

func parseGroupCols(value string) []string {
	var cols []string
	for _, col := range strings.Split(value, ",") {
		if col = strings.TrimSpace(col); col != "" {
			cols = append(cols, col)
		}
	}
	return cols
}

func init() {
	enrichCmd.Flags().StringVar(&enrichFlags.input, "input", "", "input filings CSV or XLSX")
	enrichCmd.Flags().StringVar(&enrichFlags.output, "output", "", "output path")
	enrichCmd.Flags().Float64Var(&enrichFlags.rate, "rate", 0.2, "seconds between requests; 0 enables the worker pool")
	enrichCmd.Flags().IntVar(&enrichFlags.workers, "workers", 0, "worker pool size when --rate=0 (0 = auto)")
	enrichCmd.Flags().BoolVar(&enrichFlags.keepText, "keep-text", false, "retain section text in the output")
	enrichCmd.Flags().BoolVar(&enrichFlags.noDedupe, "no-dedupe", false, "keep all filings, skip deduplication")
	enrichCmd.Flags().StringVar(&enrichFlags.groupCols, "group-cols", "cik,fyear,quarter", "comma-separated deduplication key columns")
	enrichCmd.Flags().IntVar(&enrichFlags.limit, "limit", 0, "process only the first N rows")
	enrichCmd.Flags().StringVar(&enrichFlags.format, "format", "csv", "output format: csv or xlsx")
	enrichCmd.Flags().StringVar(&enrichFlags.userAgent, "user-agent", "", "SEC-compliant User-Agent override")
	_ = enrichCmd.MarkFlagRequired("input")
	_ = enrichCmd.MarkFlagRequired("output")

	rootCmd.AddCommand(enrichCmd)
}
