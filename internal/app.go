// Package internal contains core application functionality
package internal

import (
	"fmt"

	"github.com/karloscodes/cartridge"

	"linkpulse/internal/config"
	"linkpulse/internal/database"
	"linkpulse/internal/http"
	"linkpulse/internal/jobs"
	"linkpulse/internal/pkg/logging"
)

// Application wraps cartridge.Application with linkpulse-specific components.
type Application struct {
	*cartridge.Application
	DBManager *database.DBManager // linkpulse-specific DB manager with migration methods
}

// NewApp creates a new application instance with default settings.
func NewApp() (*Application, error) {
	cfg := config.GetConfig()
	return NewAppWithConfig(cfg)
}

// NewAppWithConfig creates a new application with the provided config.
func NewAppWithConfig(cfg *config.Config) (*Application, error) {
	logger := logging.NewLogger(cfg)

	dbManager := database.NewDBManager(cfg, logger)
	if err := dbManager.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Wire the enrichment services before routes mount.
	http.InitServices(cfg, logger)

	// The scheduler sweeps the same tracker the click pipeline writes to.
	jobsManager, err := jobs.NewScheduler(dbManager, logger, http.SessionTracker())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize jobs: %w", err)
	}

	app, err := cartridge.NewApplication(cartridge.ApplicationOptions{
		Config:            cfg,
		Logger:            logger,
		DBManager:         dbManager,
		RouteMountFunc:    MountAppRoutes,
		BackgroundWorkers: []cartridge.BackgroundWorker{jobsManager},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create application: %w", err)
	}

	return &Application{
		Application: app,
		DBManager:   dbManager,
	}, nil
}
