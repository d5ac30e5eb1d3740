package main

import (
	"context"
	"log"
	"os"

	"go.uber.org/zap"

	"marketplace-service/cmd/api/app"
	"marketplace-service/cmd/api/server"
)

func main() {
	a, err := app.New()
	if err != nil {
		log.Fatalf("failed to start application: %v", err)
	}

	ctx, stop := server.WithSignal(context.Background(), a.Logger)
	err = a.Run(ctx)
	stop()

	if err != nil {
		a.Logger.Error("application exited with error", zap.Error(err))
		os.Exit(1)
	}
}
