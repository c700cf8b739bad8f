package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/geon/internal/api"
	"github.com/sells-group/geon/internal/store"
)

var (
	servePort    int
	serveNoStore bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the GEON HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if servePort != 0 {
			cfg.Server.Port = servePort
		}
		mode := "serve"
		if serveNoStore {
			mode = "cli"
		}
		if err := cfg.Validate(mode); err != nil {
			return err
		}
		if cfg.Server.Port <= 0 {
			return eris.New("config: server.port must be > 0")
		}

		opts := []api.Option{
			api.WithCORSOrigins(cfg.Server.CORSOrigins),
			api.WithRateLimit(cfg.Server.RateLimit, cfg.Server.RateBurst),
		}
		if !serveNoStore {
			st, err := store.Open(ctx, cfg.Store)
			if err != nil {
				return eris.Wrap(err, "open store")
			}
			defer st.Close() //nolint:errcheck
			opts = append(opts, api.WithStore(st))
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:           api.New(newParser(), newConverter(), opts...).Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server",
			zap.Int("port", cfg.Server.Port),
			zap.Bool("catalog", !serveNoStore),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	serveCmd.Flags().BoolVar(&serveNoStore, "no-store", false, "serve without the place catalog")
	rootCmd.AddCommand(serveCmd)
}
