package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os/signal"
	"syscall"

	"itinvent-bot/internal/config"
	"itinvent-bot/pkg/events"
	pktNats "itinvent-bot/pkg/nats"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var eventsDurable string

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Follow committed workflows published to NATS",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		if cfg.App.NatsURL == "" {
			return fmt.Errorf("NATS_URL is not set")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		sub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
		if err != nil {
			return err
		}
		defer sub.Close()

		subject := "events." + events.TypeWorkflowCommitted
		if err := sub.Subscribe(ctx, subject, eventsDurable, printEvent); err != nil {
			return err
		}

		<-ctx.Done()
		return nil
	},
}

func init() {
	eventsCmd.Flags().StringVar(&eventsDurable, "durable", "itinvent-cli", "durable consumer name")
}

func printEvent(_ context.Context, ev events.Event) error {
	body, err := json.Marshal(ev.Payload())
	if err != nil {
		return err
	}
	color.Cyan("%s %s", ev.Timestamp().Format("2006-01-02 15:04:05"), ev.EventType())
	fmt.Println(string(body))
	return nil
}
