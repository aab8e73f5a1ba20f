package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"dubmix/internal/logging"
	"dubmix/internal/server"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var bind string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dubbing pipeline over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := buildLogger(cfg)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			orch, cleanup, err := buildOrchestrator(cfg, logger)
			if err != nil {
				return err
			}
			defer cleanup()

			if bind == "" {
				bind = cfg.Paths.APIBind
			}
			uploadsDir := filepath.Join(cfg.Paths.WorkspaceDir, "uploads")
			app := server.NewApp(logger, orch, uploadsDir, 0)

			httpServer := &http.Server{
				Addr:              bind,
				Handler:           app.Router(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			signalCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				logger.Info("api listening", logging.String("bind", bind))
				errCh <- httpServer.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if err != nil && !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("serve: %w", err)
				}
				return nil
			case <-signalCtx.Done():
			}

			logger.Info("shutting down")
			orch.Reset()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("shutdown: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&bind, "bind", "", "Listen address (host:port), defaults to paths.api_bind")
	return cmd
}
