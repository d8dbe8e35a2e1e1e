package main

import (
	"log/slog"

	"github.com/SscSPs/secure_pay/pkg/database"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the database schema",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, driver, closeDB, err := openMigrationDB(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer closeDB()
		fsys, dir := migrationSource(driver)
		applied, err := database.MigrateUp(db, driver, fsys, dir, logger)
		if err != nil {
			return err
		}
		if !applied {
			logger.Info("No new migrations to apply.")
		}
		return nil
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		steps, _ := cmd.Flags().GetInt("steps")
		db, driver, closeDB, err := openMigrationDB(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer closeDB()
		fsys, dir := migrationSource(driver)
		if err := database.MigrateDown(db, driver, fsys, dir, steps); err != nil {
			return err
		}
		logger.Info("Rolled back migrations", slog.Int("steps", steps))
		return nil
	},
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd)
	migrateDownCmd.Flags().Int("steps", 1, "Number of migrations to roll back")
}
