package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/weaver"
	httpAdapter "github.com/aretw0/weaver/internal/adapters/http"
	"github.com/aretw0/weaver/internal/cli"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long:  `Exposes the project lifecycle as a JSON API over HTTP, with Prometheus metrics on /metrics.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		addr := app.Config.Server.Addr
		if cmd.Flags().Changed("addr") {
			addr, _ = cmd.Flags().GetString("addr")
		}

		handler := httpAdapter.NewHandler(app.Engine,
			httpAdapter.WithLogger(app.Logger),
			httpAdapter.WithVersion(strings.TrimSpace(weaver.Version)),
			httpAdapter.WithMetricsHandler(app.MetricsHandler()),
			httpAdapter.WithAllowedOrigins(app.Config.Server.AllowedOrigins...),
			httpAdapter.WithCapabilities(app.Registry.Names()),
		)
		srv := &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}

		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()

		out := cmd.OutOrStdout()
		g, ctx := errgroup.WithContext(sigCtx)
		g.Go(func() error {
			cli.PrintSystemMessage(out, "Weaver server listening on %s", addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			// Give outstanding requests a deadline for completion.
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				_ = srv.Close()
				return fmt.Errorf("graceful shutdown did not complete: %w", err)
			}
			return nil
		})

		if err := g.Wait(); err != nil {
			return err
		}
		cli.PrintSystemMessage(out, "Weaver server stopped gracefully")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Address to listen on (overrides server.addr)")
}
