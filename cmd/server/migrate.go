package main

import (
	"fmt"
	"log/slog"

	"walletcore/internal/config"
	"walletcore/internal/repositories"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE:  runMigrate,
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	db, err := repositories.Open(cfg.Database)
	if err != nil {
		return err
	}
	defer repositories.Close(db)

	if err := repositories.Migrate(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	slog.Info("database schema migrated", "database", cfg.Database.Name)
	return nil
}
