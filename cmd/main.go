package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"apppresser.com/updater/internal/interfaces/cli"
	"apppresser.com/updater/internal/interfaces/di"
)

func main() {
	container := di.NewContainer()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		container.Logger().LogInfo("Received shutdown signal, shutting down gracefully...", nil)
		cancel()
	}()

	cli.Execute(ctx, container.GetCLIContainer())

	if err := container.Shutdown(ctx); err != nil {
		container.Logger().LogError(err, "Error during shutdown", nil)
		os.Exit(1)
	}
}
