package cli

import (
	"fmt"

	"itinvent-bot/internal/config"
	"itinvent-bot/internal/service"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var accessNote string

var accessCmd = &cobra.Command{
	Use:   "access",
	Short: "Manage the users and groups allowed to talk to the bot",
}

var accessListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show access entries stored in the database",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := accessService()
		if err != nil {
			return err
		}
		entries, err := svc.Entries(cmd.Context())
		if err != nil {
			return err
		}

		for _, e := range entries {
			line := fmt.Sprintf("%-6s %-24s %s", e.Kind, e.Subject, e.Note)
			if e.Active {
				color.Green("%s", line)
			} else {
				color.Red("%s (revoked)", line)
			}
		}
		return nil
	},
}

var accessGrantCmd = &cobra.Command{
	Use:   "grant <user|group> <id>",
	Short: "Allow a user or group",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := accessService()
		if err != nil {
			return err
		}
		if err := svc.Grant(cmd.Context(), args[0], args[1], accessNote); err != nil {
			return err
		}
		color.Green("Granted %s %s", args[0], args[1])
		return nil
	},
}

var accessRevokeCmd = &cobra.Command{
	Use:   "revoke <user|group> <id>",
	Short: "Revoke a user or group",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := accessService()
		if err != nil {
			return err
		}
		found, err := svc.Revoke(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		if !found {
			color.Yellow("No entry for %s %s", args[0], args[1])
			return nil
		}
		color.Green("Revoked %s %s", args[0], args[1])
		return nil
	},
}

func init() {
	accessGrantCmd.Flags().StringVar(&accessNote, "note", "", "free-form note stored with the entry")

	accessCmd.AddCommand(accessListCmd)
	accessCmd.AddCommand(accessGrantCmd)
	accessCmd.AddCommand(accessRevokeCmd)
}

func accessService() (service.IAccessService, error) {
	cfg := config.Load()
	uowFactory, err := repositories(cfg)
	if err != nil {
		return nil, err
	}
	return service.NewAccessService(uowFactory, cfg.Access.Users, cfg.Access.Groups), nil
}
