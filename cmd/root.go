package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/busfactor-cli/internal/config"
)

var (
	cfg   *config.Config
	runID string
)

var rootCmd = &cobra.Command{
	Use:   "busfactor",
	Short: "SEC filing enrichment pipelines",
	Long: "Annotates filings tables with fiscal quarters inferred from the SEC submission\n" +
		"data sets, structured APIs, and the filing documents themselves, and enriches\n" +
		"them with Item 1A risk-factor keyword metrics.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env is optional; it typically carries SEC_API_KEY.
		_ = godotenv.Load()

		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c
		if cfg.Extractor.Key == "" {
			cfg.Extractor.Key = os.Getenv("SEC_API_KEY")
		}

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		runID = uuid.New().String()
		zap.L().Debug("starting", zap.String("run_id", runID), zap.String("command", cmd.Name()))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
