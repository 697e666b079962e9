// Package cli defines the cobra commands of the itinvent binary.
package cli

import (
	"fmt"
	"os"

	"itinvent-bot/internal/config"
	"itinvent-bot/internal/repository/unitofwork"
	"itinvent-bot/pkg/database"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var version = "dev" // set via ldflags at build time

var rootCmd = &cobra.Command{
	Use:           "itinvent",
	Short:         "Conversational inventory assistant for IT-Invent databases",
	Version:       version,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command. Called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(databasesCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(accessCmd)
	rootCmd.AddCommand(eventsCmd)
}

// openAppDB connects to the bot's own store.
func openAppDB(cfg *config.Config) (*gorm.DB, error) {
	if cfg.Database.Connection == "" {
		return nil, fmt.Errorf("DB_CONNECTION_STRING is not set")
	}
	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	return db, nil
}

func repositories(cfg *config.Config) (unitofwork.RepositoryFactory, error) {
	db, err := openAppDB(cfg)
	if err != nil {
		return nil, err
	}
	return unitofwork.NewRepositoryFactory(db), nil
}
