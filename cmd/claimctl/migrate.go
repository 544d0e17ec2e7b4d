package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dmehra2102/prod-golang-projects/claimtrack/pkg/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema",
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	_, zapLog, db := setup()
	defer func() { _ = zapLog.Sync() }()

	if err := database.Migrate(db, zapLog); err != nil {
		zapLog.Error("migration failed", zap.Error(err))
		return err
	}

	zapLog.Info("schema is up to date")
	return nil
}
