package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/inotebook/inotebook-go/internal/repository"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		db, err := repository.NewDB(ctx, cfg.DBDriver, cfg.DatabaseDSN)
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		defer db.Close()

		if err := repository.Migrate(ctx, db, cfg.DBDriver); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}

		slog.Info("migrations applied", "db_driver", cfg.DBDriver)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
