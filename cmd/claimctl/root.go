package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/dmehra2102/prod-golang-projects/claimtrack/internal/config"
	"github.com/dmehra2102/prod-golang-projects/claimtrack/pkg/database"
	"github.com/dmehra2102/prod-golang-projects/claimtrack/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:   "claimctl",
	Short: "Operational tooling for the claimtrack backend",
	Long:  "Bulk CSV import, schema migration, and account bootstrap for the claim-tracking service. Connection settings come from the same environment variables as claimtrack-api.",
}

func init() {
	cobra.OnInitialize(func() {
		_ = godotenv.Load()
	})
}

// setup loads config and opens the shared logger and database handle. CLI
// commands fail fast; there is nothing to degrade into.
func setup() (*config.Config, *zap.Logger, *gorm.DB) {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zapLog, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		zapLog.Fatal("failed to connect to database", zap.Error(err))
	}

	return cfg, zapLog, db
}
