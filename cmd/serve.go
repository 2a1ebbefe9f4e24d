package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer closeApp(a)

		addr, _ := cmd.Flags().GetString("addr")
		if addr == "" {
			addr = a.Config.HTTPAddr
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		srv := a.HTTPServer()
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			return srv.ListenAndServe(gctx, addr)
		})
		g.Go(func() error {
			<-gctx.Done()
			if ctx.Err() != nil {
				a.Log.Info("received shutdown signal")
			}
			return nil
		})
		if err := g.Wait(); err != nil && err != context.Canceled {
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides COURSEKIT_HTTP_ADDR)")
}
