package cli

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"itinvent-bot/internal/bootstrap"
	"itinvent-bot/internal/config"
	"itinvent-bot/internal/server"
	"itinvent-bot/internal/tracer"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the bot HTTP endpoint and background workers",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return serve(ctx)
	},
}

func serve(ctx context.Context) error {
	// 1. Configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration:\n%w", err)
	}

	// 2. Tracing
	shutdownTracer := tracer.InitTracer(ctx, cfg.Tracing.Enabled, cfg.Tracing.Endpoint)
	defer shutdownTracer(context.Background())

	// 3. Application store
	gormDB, err := openAppDB(cfg)
	if err != nil {
		return err
	}

	// 4. Container
	container, err := bootstrap.NewContainer(gormDB, cfg)
	if err != nil {
		return err
	}
	defer container.Close()

	primary := container.Router.Catalog().Primary()
	if err := container.Router.Ping(ctx, primary); err != nil {
		return fmt.Errorf("primary database %s is not reachable: %w", primary, err)
	}

	// 5. Background services
	if err := container.AccessCache.Refresh(ctx); err != nil {
		log.Printf("[WARN] Initial access list load failed: %v", err)
	}
	go container.AccessCache.Run(ctx)

	log.Println("Background: Starting Consumer Service...")
	if err := container.ConsumerService.Consume(ctx); err != nil {
		return fmt.Errorf("start consumer: %w", err)
	}

	// 6. HTTP server
	srv := server.New(cfg, container)
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Run() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		log.Println("Shutting down...")
	}

	done := make(chan error, 1)
	go func() { done <- srv.Shutdown() }()
	select {
	case err := <-done:
		return err
	case <-time.After(10 * time.Second):
		return fmt.Errorf("server shutdown timed out")
	}
}
