package cli

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/JonMunkholm/wwweather/internal/storage"
	"github.com/JonMunkholm/wwweather/internal/web"
)

func (a *App) serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the records over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr == "" {
				addr = a.cfg.Server.Addr()
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return a.withStore(ctx, func(factory storage.Factory) error {
				srv := web.NewServer(factory, a.cfg)

				g, gctx := errgroup.WithContext(ctx)
				g.Go(func() error {
					return srv.Start(addr)
				})
				g.Go(func() error {
					<-gctx.Done()
					slog.Info("shutting down server")

					shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
					defer cancel()
					return srv.Shutdown(shutdownCtx)
				})

				if err := g.Wait(); err != nil {
					return err
				}
				slog.Info("server stopped")
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from SERVER_HOST and SERVER_PORT)")
	return cmd
}
