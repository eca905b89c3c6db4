package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rkm/s1etad/internal/api"
	"github.com/rkm/s1etad/pkg/server"
)

func newServeCmd(state *rootState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the product over HTTP",
		Example: strings.TrimSpace(`
  etad serve --product prod.SAFE --base-url http://localhost:8080
  etad serve --product prod.SAFE --port 9090 --watch`),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := state.requireProduct(); err != nil {
				return err
			}
			cfg := state.cfg
			if cfg.API.BaseURL == "" {
				cfg.API.BaseURL = fmt.Sprintf("http://localhost:%d", cfg.Server.Port)
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			logger := state.logger

			source, err := server.NewReloadableSource(cfg.Product.Path)
			if err != nil {
				return fmt.Errorf("failed to open product: %w", err)
			}
			p := source.Product()
			logger.Info("loaded product",
				"path", p.Path(),
				"swaths", p.NumSwaths(),
				"bursts", p.Catalogue().Len(),
			)

			handlers := api.NewHandlers(cfg, source, logger)
			router := api.NewRouter(handlers, logger)

			watchCtx, stopWatch := context.WithCancel(cmd.Context())
			defer stopWatch()
			if cfg.Product.Watch {
				watcher := server.NewProductWatcher(source, cfg.Product.Path, logger)
				go watcher.Run(watchCtx)
			}

			srv := &http.Server{
				Addr:         cfg.Server.Address(),
				Handler:      router,
				ReadTimeout:  cfg.Server.ReadTimeout,
				WriteTimeout: cfg.Server.WriteTimeout,
				IdleTimeout:  120 * time.Second,
			}

			serverErr := make(chan error, 1)
			go func() {
				logger.Info("server listening", "addr", srv.Addr)
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					serverErr <- err
				}
			}()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

			select {
			case err := <-serverErr:
				return fmt.Errorf("server error: %w", err)
			case sig := <-quit:
				logger.Info("received shutdown signal", "signal", sig)
			}

			ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()

			logger.Info("shutting down server", "timeout", cfg.Server.ShutdownTimeout)
			if err := srv.Shutdown(ctx); err != nil {
				return fmt.Errorf("server shutdown error: %w", err)
			}

			logger.Info("server stopped")
			return nil
		},
	}

	cmd.Flags().StringVar(&state.cfg.Server.Host, "host", state.cfg.Server.Host, "listen host")
	cmd.Flags().IntVar(&state.cfg.Server.Port, "port", state.cfg.Server.Port, "listen port")
	cmd.Flags().StringVar(&state.cfg.API.BaseURL, "base-url", "", "public base URL for links (default: http://localhost:<port>)")
	cmd.Flags().StringVar(&state.cfg.API.Title, "title", state.cfg.API.Title, "API title")
	cmd.Flags().DurationVar(&state.cfg.Server.ReadTimeout, "read-timeout", state.cfg.Server.ReadTimeout, "HTTP read timeout")
	cmd.Flags().DurationVar(&state.cfg.Server.WriteTimeout, "write-timeout", state.cfg.Server.WriteTimeout, "HTTP write timeout")
	cmd.Flags().BoolVar(&state.cfg.Product.Watch, "watch", state.cfg.Product.Watch, "reload the product when the annotation file changes")

	return cmd
}
