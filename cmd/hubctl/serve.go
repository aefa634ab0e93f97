package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"cookinghub/internal/wire"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the media file server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(app *wire.Application) error {
				ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
				defer stop()
				return app.MediaServer.Run(ctx, app.Config.Server)
			})
		},
	}
}
