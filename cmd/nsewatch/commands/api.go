package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rpillai/nsewatch/internal/api"
	"github.com/rpillai/nsewatch/internal/api/handlers"
)

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the watchlist API server",
	Long: `Start the REST API server.

Endpoints:
  GET  /health                  - Health check
  GET  /watchlist/today         - Ranked watchlist with news buckets
  GET  /company/{ticker}        - EOD price history
  GET  /news/{ticker}           - Stored headlines
  POST /refresh                 - Trigger the pipeline (X-Refresh-Token)

Example:
  go run ./cmd/nsewatch api
  go run ./cmd/nsewatch api --port 8080`,
	RunE: runAPIServer,
}

var apiPort string

func init() {
	rootCmd.AddCommand(apiCmd)
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (overrides PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	d, err := buildDeps(ctx)
	if err != nil {
		return err
	}
	defer d.close()

	if apiPort != "" {
		d.cfg.Port = apiPort
	}

	watchlistHandler := handlers.NewWatchlistHandler(d.store, nil, d.logger)
	companyHandler := handlers.NewCompanyHandler(d.store, d.logger)
	refreshHandler := handlers.NewRefreshHandler(d.collector(), d.cache, d.cfg.RefreshToken, d.logger)

	router := api.NewRouter(watchlistHandler, companyHandler, refreshHandler, d.logger)
	server := api.New(d.cfg, d.logger, router)

	go func() {
		if err := server.Start(); err != nil {
			d.logger.WithError(err).Fatal("Failed to start server")
		}
	}()

	fmt.Printf("Server running on http://localhost:%s\n", d.cfg.Port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}
