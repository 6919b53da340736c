package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/funneltechie/inboxreadybotclassifier/internal/core"
	"github.com/funneltechie/inboxreadybotclassifier/internal/di"
	"github.com/funneltechie/inboxreadybotclassifier/internal/ports"
	"go.uber.org/zap"
)

func main() {
	configFile := flag.String("config", "", "Path to config file")
	flag.Parse()

	// Build the dependency injection container
	container, err := di.BuildContainer(*configFile)
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the application
	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main application function that gets all dependencies injected
func run(
	logger *zap.Logger,
	filters []ports.EmailFilter,
	cacheRepo core.CacheRepository,
) error {
	defer logger.Sync()

	started := make([]ports.EmailFilter, 0, len(filters))
	for _, f := range filters {
		if err := f.Start(); err != nil {
			logger.Error("Failed to start filter", zap.Error(err))
			stopAll(logger, started)
			return err
		}
		started = append(started, f)
	}

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	<-sigCh
	logger.Info("Shutting down...")

	stopAll(logger, started)

	// Stop the cache if needed
	if stopper, ok := cacheRepo.(interface{ Stop() }); ok {
		stopper.Stop()
	}

	logger.Info("Shutdown complete")
	return nil
}

func stopAll(logger *zap.Logger, filters []ports.EmailFilter) {
	for i := len(filters) - 1; i >= 0; i-- {
		if err := filters[i].Stop(); err != nil {
			logger.Error("Failed to stop filter", zap.Error(err))
		}
	}
}
