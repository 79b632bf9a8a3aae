// Package app wires configuration, storage, and controllers together and
// owns the process lifecycle.
package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"go.uber.org/zap"

	"github.com/clearskies/obsplan/internal/controllers/restserver"
	"github.com/clearskies/obsplan/internal/log"
	"github.com/clearskies/obsplan/internal/storage"
	"github.com/clearskies/obsplan/pkg/config"
)

// App represents the main application
type App struct {
	configProvider config.ConfigProvider
	logger         *zap.SugaredLogger
}

// New creates a new application instance
func New(configProvider config.ConfigProvider, logger *zap.SugaredLogger) *App {
	return &App{
		configProvider: configProvider,
		logger:         logger,
	}
}

// Run starts the application and blocks until shutdown
func (a *App) Run(ctx context.Context) error {
	var wg sync.WaitGroup

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Initialize the evaluation archive
	storageManager, err := storage.NewManager(ctx, &wg, a.configProvider)
	if err != nil {
		return err
	}

	// Start the configured controllers
	controllers, err := a.configProvider.GetControllers()
	if err != nil {
		return err
	}
	for _, cc := range controllers {
		switch cc.Type {
		case "rest":
			if cc.RESTServer == nil {
				return fmt.Errorf("rest controller configured without a rest section")
			}
			ctrl, err := restserver.NewController(ctx, &wg, a.configProvider, *cc.RESTServer,
				storageManager.RecordDistributor, a.logger)
			if err != nil {
				return fmt.Errorf("error creating REST server controller: %w", err)
			}
			if err := ctrl.StartController(); err != nil {
				return fmt.Errorf("error starting REST server controller: %w", err)
			}
		default:
			return fmt.Errorf("unknown controller type: %s", cc.Type)
		}
	}

	log.Info("Application started successfully")

	// Set up signal handling
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	// Wait for shutdown signal
	select {
	case <-sigs:
		log.Info("shutdown signal received, initiating graceful shutdown...")
	case <-ctx.Done():
		log.Info("context cancelled, shutting down...")
	}

	// Cancel context to signal all goroutines to stop
	cancel()

	// Wait for all workers to terminate
	log.Info("waiting for all workers to terminate...")
	wg.Wait()
	log.Info("shutdown complete")

	return nil
}
