// Package main is the entry point for the walletcore server and its
// maintenance commands.
package main

import (
	"log/slog"
	"os"

	"walletcore/internal/config"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "walletcore",
	Short: "Wallet ledger, payment process tracker and limit evaluator",
	Long: `walletcore keeps per-customer account balances, tracks externally
orchestrated payment processes by idempotency key and evaluates
customer transaction limits.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogger()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedLimitsCmd)
}

// setupLogger installs a JSON slog handler as the default logger.
func setupLogger() {
	config.LoadEnv()
	level := slog.LevelInfo
	if !config.IsProduction() {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}
