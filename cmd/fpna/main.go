// Command fpna runs the FP&A dashboard pipeline.
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"fpna_dashboard/pkg/core/config"
	"fpna_dashboard/pkg/core/logging"
	"fpna_dashboard/pkg/core/store"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// app is the state shared by every command once the config is loaded.
type app struct {
	cfg   *config.Config
	log   *logrus.Logger
	store *store.TableStore
}

var cli = &app{}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "fpna",
	Short: "FP&A dashboard: variance, forecast, summary, charts and deck",
	Long: `fpna turns a monthly departmental financials table into variance
analysis, a six-month revenue forecast, an executive summary, charts and a
one-page HTML deck. Every stage reads and writes flat files in the data
directory, so stages can run together or one at a time.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" {
			return nil
		}
		configFile, _ := cmd.Flags().GetString("config")
		cfg, err := config.Load(config.LoadOptions{ConfigFile: configFile})
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if dir, _ := cmd.Flags().GetString("data-dir"); dir != "" {
			cfg.DataDir = dir
		}
		if level, _ := cmd.Flags().GetString("log-level"); level != "" {
			cfg.Logging.Level = level
		}

		cli.cfg = cfg
		cli.log = logging.New(cfg.Logging)
		cli.store = store.NewTableStore(cfg.DataDir)
		cli.log.WithField("data_dir", cfg.DataDir).Debug("configuration loaded")
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/fpna.yaml)")
	rootCmd.PersistentFlags().String("data-dir", "", "data directory override")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(varianceCmd)
	rootCmd.AddCommand(forecastCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(visualsCmd)
	rootCmd.AddCommand(deckCmd)
	rootCmd.AddCommand(runCmd)
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "fpna %s\n", version)
		fmt.Fprintf(cmd.OutOrStdout(), "  commit:  %s\n", commit)
		fmt.Fprintf(cmd.OutOrStdout(), "  built:   %s\n", date)
	},
}
