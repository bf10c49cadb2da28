package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/evcraddock/pawstay/internal/config"
	"github.com/evcraddock/pawstay/internal/lifecycle"
	"github.com/evcraddock/pawstay/internal/logging"
	"github.com/evcraddock/pawstay/internal/notify"
	"github.com/evcraddock/pawstay/internal/tracing"
	"github.com/evcraddock/pawstay/internal/web"
)

func newServeCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the pawstay HTTP API. Settings come from PAWSTAY_* environment variables; --port and --db override them.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}
			return runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().IntVar(&port, "port", 8080, "port to listen on")

	return cmd
}

func runServe(ctx context.Context, cfg *config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logging.Setup(cfg.DevMode)

	shutdownTracing, err := tracing.Setup(ctx, cfg.OTLPEndpoint, "pawstay", Version)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			slog.Warn("shutting down tracing", "error", err)
		}
	}()

	database, err := openDB(cfg.DB)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer closeDB(database)

	notifier := cfg.Notifier()
	slog.Info("owner notifications", "channel", fmt.Sprintf("%T", notifier))

	coord := lifecycle.New(database,
		lifecycle.WithNotifier(notify.NewDispatcher(notifier, cfg.Notify.Timeout)),
		lifecycle.WithBaseURL(cfg.BaseURL),
	)
	defer coord.Wait()

	srv := web.NewServer(database, coord, web.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		RequestTimeout: cfg.RequestTimeout,
		SubmitRate:     cfg.Submit.Rate,
		SubmitBurst:    cfg.Submit.Burst,
	})

	fmt.Fprintf(os.Stderr, "Starting API on http://localhost:%d\n", cfg.Port)
	return srv.ListenAndServe(ctx, cfg.Port)
}
