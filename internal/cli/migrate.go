package cli

import (
	"itinvent-bot/internal/config"
	"itinvent-bot/internal/model"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the bot's own tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		db, err := openAppDB(cfg)
		if err != nil {
			return err
		}

		color.Cyan("Running AutoMigrate...")

		models := []interface{}{
			&model.WorkflowRecord{},
			&model.UserDatabaseSelection{},
			&model.AccessEntry{},
		}
		for _, m := range models {
			if err := db.AutoMigrate(m); err != nil {
				color.Red("Failed: %T: %v", m, err)
				return err
			}
			color.Green("Migrated %T", m)
		}

		color.Green("Migration complete")
		return nil
	},
}
