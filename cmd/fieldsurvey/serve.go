package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vbonduro/fieldsurvey/internal/photostore"
	"github.com/vbonduro/fieldsurvey/internal/web"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			defer a.close()

			svc, err := a.reportService()
			if err != nil {
				return err
			}

			// Photos are only served from this host for static delivery.
			var files photostore.PhotoStore
			if a.cfg.PhotoDelivery == "static" {
				files = a.blobs
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return web.NewServer(svc, files, a.logger).ListenAndServe(ctx, a.cfg.ListenAddr)
		},
	}
}
