package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/example/fitout/internal/config"
	"github.com/example/fitout/internal/wire"
)

const shutdownTimeout = 10 * time.Second

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API",
		Long: `Serve clients, the pipeline and ledgers over HTTP, with Prometheus
metrics on /metrics. Stops gracefully on SIGINT or SIGTERM.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			wire.UseLogProfile(config.ServeLogging)
			ctx, cancel := NewContext()
			defer cancel()

			addr, _ := cmd.Flags().GetString("listen")
			if addr == "" {
				addr = wire.Config().ListenAddr
			}
			logger := wire.Logger()

			srv := &http.Server{
				Addr:              addr,
				Handler:           wire.HTTPHandler(),
				ReadHeaderTimeout: 5 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.ListenAndServe()
			}()
			fmt.Printf("✓ Listening on %s\n", addr)
			logger.Info("server started", zap.String("addr", addr))

			select {
			case err := <-errCh:
				return fmt.Errorf("server failed: %w", err)
			case <-ctx.Done():
			}

			logger.Info("shutting down")
			shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
			defer stop()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("shutdown: %w", err)
			}
			if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringP("listen", "l", "", "Listen address (default from config, :8080)")
	return cmd
}
