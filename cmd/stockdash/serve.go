package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"stock-dashboard/config"
	"stock-dashboard/internal/api"
	"stock-dashboard/observability"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the dashboard HTTP server",
		Example: `  stockdash serve
  stockdash serve --port 9090
  DEMO_MODE=false ALPHA_VANTAGE_API_KEY=... stockdash serve`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if port > 0 {
				cfg.HTTP.Port = port
			}
			initObservability(cfg)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "HTTP port (overrides HTTP_PORT)")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config) error {
	application := newApp(cfg)
	if err := application.Startup(ctx); err != nil {
		return err
	}

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           api.NewRouter(api.NewHandler(application, cfg), cfg),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.HTTP.RequestTimeout + 5*time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		observability.Info("starting HTTP server", "addr", server.Addr, "mode", application.Mode())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			application.Shutdown(context.Background())
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
	}

	observability.Info("shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		observability.Error("server forced to shutdown", "error", err)
	}
	application.Shutdown(shutdownCtx)

	observability.Info("server stopped")
	return nil
}
