package main

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dgnsrekt/gexbot-analyzer/internal/chain"
	"github.com/dgnsrekt/gexbot-analyzer/internal/data"
	"github.com/dgnsrekt/gexbot-analyzer/internal/metrics"
	"github.com/dgnsrekt/gexbot-analyzer/internal/notify"
	"github.com/dgnsrekt/gexbot-analyzer/internal/server"
	"github.com/dgnsrekt/gexbot-analyzer/internal/ws"
)

func serveCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve analyses over HTTP and push them to WebSocket subscribers",
		Long: `Load every chain file in the data directory and serve the analysis API.

Examples:
  gexanalyzer serve
  GEXANALYZER_DATA_DIRECTORY=/srv/chains gexanalyzer serve --port 9000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}

			logger.Info("configuration loaded",
				zap.Int("port", cfg.Server.Port),
				zap.String("dataDir", cfg.Data.Directory),
				zap.Float64("halfWidth", cfg.Analysis.HalfWidth),
				zap.Float64("ratePerSecond", cfg.Server.RatePerSecond),
				zap.Bool("wsEnabled", cfg.Server.WSEnabled),
			)

			// Load data
			start := time.Now()
			mem, err := data.NewMemoryLoader(cfg.Data.Directory, logger)
			if err != nil {
				return fmt.Errorf("loading chains: %w", err)
			}
			loader := data.NewReloadableLoader(mem)
			defer loader.Close()
			logger.Info("data loaded",
				zap.Int("symbols", len(loader.Symbols())),
				zap.Duration("duration", time.Since(start)),
			)

			m := metrics.New()
			reloader := server.NewReloadManager(loader, cfg.Data.Directory, m, logger)
			reloader.SetNotifier(notify.New(cfg.Notify, logger))
			if cfg.Notify.Enabled {
				logger.Info("reload notifications enabled", zap.String("topic", cfg.Notify.Topic))
			}
			srv := server.NewServer(reloader, newAnalyzer(cfg.Analysis), chain.NewMarketCalendar(logger), cfg.Server, m, logger)

			// Context for WebSocket components
			wsCtx, cancel := context.WithCancel(ctx)
			defer cancel()

			if cfg.Server.WSEnabled {
				enc, err := ws.NewEncoder()
				if err != nil {
					return err
				}
				defer enc.Close()

				hub := ws.NewHub("analysis", enc, srv.KnownSymbol, m.WSClients, logger)
				go hub.Run(wsCtx)
				srv.AttachHub(hub)
				logger.Info("WebSocket enabled", zap.String("path", "/ws"))
			}

			router, err := server.NewRouter(srv, logger)
			if err != nil {
				return fmt.Errorf("creating router: %w", err)
			}

			// Setup HTTP server
			httpServer := &http.Server{
				Addr:         ":" + strconv.Itoa(cfg.Server.Port),
				Handler:      router,
				ReadTimeout:  30 * time.Second,
				WriteTimeout: 30 * time.Second,
			}

			// Start server in goroutine
			errCh := make(chan error, 1)
			go func() {
				logger.Info("starting server", zap.String("addr", httpServer.Addr))
				if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- err
				}
				close(errCh)
			}()

			// Wait for interrupt or listener failure
			select {
			case <-ctx.Done():
			case err, ok := <-errCh:
				if ok {
					return fmt.Errorf("server error: %w", err)
				}
			}

			logger.Info("shutting down server...")

			// Cancel context to stop WebSocket components
			cancel()

			// Graceful HTTP server shutdown
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer shutdownCancel()

			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("server shutdown: %w", err)
			}

			logger.Info("server stopped")
			return nil
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (default from config)")

	return cmd
}
