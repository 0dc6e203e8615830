package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mongrate/mongrate/internal/api"
	"github.com/mongrate/mongrate/internal/config"
	"github.com/mongrate/mongrate/internal/logger"
	"github.com/mongrate/mongrate/internal/pipeline"
	"github.com/mongrate/mongrate/internal/state"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var addr string
	var inMemory bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if addr != "" {
				cfg.ServerAddr = addr
			}

			var store state.Store
			if inMemory {
				store = state.NewMemoryStore()
			} else {
				pgStore, err := state.NewPostgresStore(cfg.DatabaseURL)
				if err != nil {
					return err
				}
				store = pgStore
			}
			defer store.Close()

			stateManager := state.NewStateManager(store)

			p, _, err := buildPipeline(cfg, pipeline.WithRecorder(stateManager))
			if err != nil {
				return err
			}

			handler := api.NewMigrationHandler(p, stateManager, cfg.OutputDir)
			router := api.SetupRoutes(handler)

			srv := &http.Server{
				Addr:         cfg.ServerAddr,
				Handler:      router,
				ReadTimeout:  15 * time.Second,
				WriteTimeout: 15 * time.Second,
				IdleTimeout:  60 * time.Second,
			}

			go func() {
				sigChan := make(chan os.Signal, 1)
				signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
				<-sigChan

				logger.Log.Info("shutting down server")

				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()

				if err := srv.Shutdown(ctx); err != nil {
					logger.Log.Error("server shutdown error", "error", err)
				}
			}()

			logger.Log.Info("server starting", "addr", cfg.ServerAddr)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return err
			}

			logger.Log.Info("server stopped")
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from SERVER_ADDR)")
	cmd.Flags().BoolVar(&inMemory, "in-memory", false, "use an in-memory run store instead of Postgres")

	return cmd
}
