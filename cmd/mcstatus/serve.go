package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jpalmerr/mcstatus"
)

const (
	shutdownTimeout = 10 * time.Second
)

// newServeCmd starts the status page server.
func newServeCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the status page server",
		Long: `Start the mcstatus status page server.

The server will:
  - Load the site config once from --site
  - Check the server status immediately, then every --poll-interval
  - Serve the status page, /config.json and /api/status on --port

If the site config cannot be loaded the page stays blank and no status
checks are made. The server runs until interrupted (Ctrl+C) or SIGTERM.

Example:
  mcstatus serve
  mcstatus serve --site public/config.json --port 9090
  MCSTATUS_POLL_INTERVAL=30s mcstatus serve`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, v)
		},
	}
}

func runServe(cmd *cobra.Command, v *viper.Viper) error {
	s, err := loadSettings(cmd, v)
	if err != nil {
		return err
	}
	logger := newLogger(cmd.ErrOrStderr(), s)

	if used := v.ConfigFileUsed(); used != "" {
		logger.Info("settings loaded", "file", used)
	}

	m, err := mcstatus.New(monitorOptions(s, logger)...)
	if err != nil {
		return fmt.Errorf("failed to create monitor: %w", err)
	}

	// cancel on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return serveUntilDone(ctx, m.Start, logger)
}

// serveUntilDone runs start and waits for it, bounding the wait after ctx
// is cancelled by shutdownTimeout.
func serveUntilDone(ctx context.Context, start func(context.Context) error, logger *slog.Logger) error {
	errChan := make(chan error, 1)
	go func() {
		errChan <- start(ctx)
	}()

	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		logger.Info("shutdown complete")
		return nil

	case <-ctx.Done():
		// signal received, wait for graceful shutdown with timeout
		select {
		case err := <-errChan:
			if err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			logger.Info("shutdown complete")
			return nil
		case <-time.After(shutdownTimeout):
			logger.Warn("shutdown timed out",
				"timeout", shutdownTimeout.String(),
				"action", "forcing exit",
			)
			return nil
		}
	}
}
