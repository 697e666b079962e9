package cli

import (
	"context"
	"fmt"
	"time"

	"itinvent-bot/internal/config"
	"itinvent-bot/pkg/inventory"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var databasesCmd = &cobra.Command{
	Use:   "databases",
	Short: "List configured inventory databases and check that they answer",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		catalog, err := cfg.Catalog()
		if err != nil {
			return err
		}

		failed := 0
		for _, db := range catalog.List() {
			marker := " "
			if db.ID == catalog.Primary() {
				marker = "*"
			}
			fmt.Printf("%s %-12s %s\n", marker, db.ID, db.Name)

			if err := ping(cmd.Context(), db); err != nil {
				failed++
				color.Red("    unreachable: %v", err)
				continue
			}
			color.Green("    ok")
		}

		if failed > 0 {
			return fmt.Errorf("%d of %d databases unreachable", failed, len(catalog.List()))
		}
		return nil
	},
}

func ping(ctx context.Context, db inventory.Database) error {
	if db.DSN == "" {
		return fmt.Errorf("no connection settings")
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	b, err := inventory.OpenGorm(ctx, db)
	if err != nil {
		return err
	}
	defer b.Close()
	return b.Ping(ctx)
}
