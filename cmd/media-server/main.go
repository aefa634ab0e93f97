package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"cookinghub/internal/wire"
)

func main() {
	app, cleanup, err := wire.InitializeApplication()
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app.Log.Info("Serving files", zap.String("route", "/media/{fileId}"))
	if err := app.MediaServer.Run(ctx, app.Config.Server); err != nil {
		app.Log.Error("Media server stopped", zap.Error(err))
	}
}
