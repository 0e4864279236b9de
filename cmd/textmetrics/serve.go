package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/tsawler/textmetrics/internal/batch"
	"github.com/tsawler/textmetrics/internal/fetch"
	"github.com/tsawler/textmetrics/internal/observability"
	"github.com/tsawler/textmetrics/internal/server"
	"github.com/tsawler/textmetrics/internal/store"
	"github.com/tsawler/textmetrics/internal/ui"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Serves the analyzer over HTTP:

  GET  /healthz              Liveness check
  GET  /metrics              Prometheus metrics
  POST /api/analyze          {"id","url","text"} -> one row
  POST /api/analyze/batch    [{"id","url","text"}, ...] -> rows in order

Requests carrying text are scored directly; requests with only a url are
fetched through the configured cache.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if servePort != 0 {
			cfg.Server.Port = servePort
		}

		ctx, stop := signalContext()
		defer stop()

		logger := newLogger()

		analyzer, err := newAnalyzer(cfg)
		if err != nil {
			return err
		}

		var history *store.Store
		if cfg.Database != "" {
			history, err = store.Open(cfg.Database, logger)
			if err != nil {
				return err
			}
			defer history.Close()
		}

		textCache, err := openCache(cfg, history, logger)
		if err != nil {
			return err
		}
		defer textCache.Close()

		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		metrics := observability.NewMetrics(reg)

		runner := batch.NewRunner(analyzer, fetch.FromConfig(cfg.Fetch), batch.Options{
			Cache:   textCache,
			Metrics: metrics,
			Logger:  logger,
			Workers: cfg.Workers,
		})

		e := echo.New()
		e.HidePort = true
		server.NewServer(analyzer, runner, metrics, reg, cfg.Workers).RegisterRoutes(e)

		errCh := make(chan error, 1)
		go func() {
			errCh <- e.Start(cfg.Server.Address())
		}()

		fmt.Printf("Listening on %s\n", ui.Cyanf("http://localhost%s", cfg.Server.Address()))

		select {
		case <-ctx.Done():
			logger.Println("shutdown signal received")
		case err := <-errCh:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server error: %w", err)
			}
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		logger.Println("server stopped")
		return nil
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "port to listen on (overrides config)")
	rootCmd.AddCommand(serveCmd)
}
