package main

import (
	"fmt"
	"log/slog"

	"walletcore/internal/config"
	"walletcore/internal/repositories"
	"walletcore/internal/services/limit"

	"github.com/spf13/cobra"
)

func init() {
	seedLimitsCmd.Flags().StringP("file", "f", "limits.toml", "Path to the limit seed file")
	seedLimitsCmd.Flags().String("actor", "seed", "Actor recorded on seeded customer limits")
}

var seedLimitsCmd = &cobra.Command{
	Use:   "seed-limits",
	Short: "Load limit definitions and customer limits from a TOML file",
	Long: `Creates every limit definition in the seed file that does not exist yet
(matched by code) and upserts the customer limits it lists. Running the
same file twice leaves the store unchanged.`,
	RunE: runSeedLimits,
}

func runSeedLimits(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("file")
	actor, _ := cmd.Flags().GetString("actor")

	seed, err := limit.LoadSeed(path)
	if err != nil {
		return err
	}

	cfg := config.Load()
	db, err := repositories.Open(cfg.Database)
	if err != nil {
		return err
	}
	defer repositories.Close(db)

	if err := repositories.Migrate(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	svc := limit.NewService(repositories.NewLimitRepository(db), nil, limit.Config{}, nil)
	report, err := limit.ApplySeed(cmd.Context(), svc, seed, actor)
	if err != nil {
		return err
	}

	slog.Info("limits seeded",
		"file", path,
		"definitions_created", report.DefinitionsCreated,
		"definitions_skipped", report.DefinitionsSkipped,
		"limits_applied", report.LimitsApplied)
	return nil
}
