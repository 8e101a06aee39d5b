package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mikey/email-classifier/internal/adapters/web"
	"github.com/mikey/email-classifier/internal/di"
	"go.uber.org/zap"
)

func main() {
	container, err := di.BuildWebContainer()
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

func run(logger *zap.Logger, server *web.Server) error {
	defer logger.Sync()

	if err := server.Start(); err != nil {
		logger.Error("Failed to start web front end", zap.Error(err))
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	<-sigCh
	logger.Info("Shutting down...")

	if err := server.Stop(); err != nil {
		logger.Error("Failed to stop web front end", zap.Error(err))
	}

	logger.Info("Shutdown complete")
	return nil
}
