package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/finchly/canary"
	"github.com/finchly/canary/config"
)

const (
	shutdownTimeout = 10 * time.Second
)

// newLogger creates a logger for CLI use. The "text" format uses tint for
// readable colorized output on terminals; "json" is for log shippers.
func newLogger(format string) *slog.Logger {
	if format == "text" {
		return slog.New(tint.NewHandler(os.Stderr, &tint.Options{
			Level:   slog.LevelInfo,
			NoColor: !isatty.IsTerminal(os.Stderr.Fd()),
		}))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

// serveCmd starts the canary server.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the canary server",
	Long: `Start the canary server.

The server will:
  - Load configuration from the environment, or from a YAML file if
    --config is given (a .env file in the working directory is honored)
  - Serve the status page and accept authenticated pings
  - Run until interrupted (Ctrl+C) or it receives SIGTERM

OPERATOR_TOKEN is required: without a shared secret there is nothing to
authenticate pings against, so the process refuses to start.

Example:
  OPERATOR_TOKEN=some-secret canary serve
  canary serve -c canary.yaml
  canary serve --log-format text`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("config", "c", "", "path to config file (optional; env config is used otherwise)")
	serveCmd.Flags().String("log-format", "json", "log output format: json or text")
}

func runServe(cmd *cobra.Command, args []string) error {
	// a .env file is a convenience for local runs; absence is not an error
	_ = godotenv.Load()

	logFormat, _ := cmd.Flags().GetString("log-format")
	logger := newLogger(logFormat)

	configFile, _ := cmd.Flags().GetString("config")

	var (
		cfg *config.Config
		err error
	)
	if configFile != "" {
		cfg, err = config.Load(configFile)
	} else {
		cfg, err = config.FromEnv()
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger.Info("config loaded",
		"ip", cfg.IP,
		"port", cfg.Port,
		"capacity", cfg.Capacity,
	)

	opts := []canary.Option{
		canary.WithToken(cfg.Token),
		canary.WithAddr(cfg.IP),
		canary.WithPort(cfg.Port),
		canary.WithCapacity(cfg.Capacity),
		canary.WithLogger(logger),
	}
	if cfg.Title != "" {
		opts = append(opts, canary.WithTitle(cfg.Title))
	}

	c, err := canary.New(opts...)
	if err != nil {
		return fmt.Errorf("failed to create canary: %w", err)
	}

	// set up context with signal handling - cancel on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// start server - blocks until context cancelled
	errChan := make(chan error, 1)
	go func() {
		errChan <- c.Start(ctx)
	}()

	// wait for server to finish
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
