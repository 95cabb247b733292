// Package app bootstraps and runs the two binaries: the positioning
// API and the scan ingestor.
package app

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/rezhaque35/wifi-location-data-pipeline-sub002/internal/adapters/storage"
	webserver "github.com/rezhaque35/wifi-location-data-pipeline-sub002/internal/adapters/web/server"
	"github.com/rezhaque35/wifi-location-data-pipeline-sub002/internal/adapters/web/websocket"
	"github.com/rezhaque35/wifi-location-data-pipeline-sub002/internal/config"
	"github.com/rezhaque35/wifi-location-data-pipeline-sub002/internal/core/services/algorithm"
	"github.com/rezhaque35/wifi-location-data-pipeline-sub002/internal/core/services/positioning"
	"github.com/rezhaque35/wifi-location-data-pipeline-sub002/internal/mock"
	"github.com/rezhaque35/wifi-location-data-pipeline-sub002/internal/telemetry"
)

// LocatorApplication holds the components of the positioning API.
type LocatorApplication struct {
	Config    *config.Config
	Store     *storage.SQLiteAdapter
	Service   *positioning.Service
	WebServer *webserver.Server
	WSManager *websocket.WSManager
}

// NewLocator bootstraps the positioning API.
func NewLocator(cfg *config.Config) (*LocatorApplication, error) {
	app := &LocatorApplication{Config: cfg}
	if err := app.bootstrap(); err != nil {
		return nil, fmt.Errorf("application bootstrap failed: %w", err)
	}
	return app, nil
}

func (app *LocatorApplication) bootstrap() error {
	telemetry.InitMetrics()

	if err := os.MkdirAll(filepath.Dir(app.Config.DBPath), 0755); err != nil {
		return fmt.Errorf("failed to create DB directory: %w", err)
	}
	store, err := storage.NewSQLiteAdapter(app.Config.DBPath)
	if err != nil {
		return fmt.Errorf("failed to init access point storage: %w", err)
	}
	app.Store = store

	app.WSManager = websocket.NewWSManager()
	app.Service = positioning.NewService(store, algorithm.All(),
		positioning.WithAlgorithmTimeout(app.Config.AlgorithmTimeout),
		positioning.WithMaxConcurrent(app.Config.MaxConcurrent),
		positioning.WithNotifier(app.WSManager),
	)
	app.WebServer = webserver.NewServer(app.Config.Addr, app.Service, store, app.WSManager)

	if app.Config.MockMode {
		if err := app.seedMockData(); err != nil {
			return fmt.Errorf("mock data seed failed: %w", err)
		}
	}
	return nil
}

// seedMockData populates the database with a synthetic deployment so
// the API is usable without a reference dataset.
func (app *LocatorApplication) seedMockData() error {
	gen := mock.NewGenerator(time.Now().UnixNano())
	aps := gen.GenerateAccessPoints(app.Config.MockLat, app.Config.MockLon, 500, 200)
	if err := app.Store.SaveAccessPoints(aps); err != nil {
		return err
	}
	log.Printf("Mock mode: seeded %d synthetic access points around (%.4f, %.4f)",
		len(aps), app.Config.MockLat, app.Config.MockLon)
	return nil
}

// Run starts the web server and blocks until the context is cancelled
// or the server fails.
func (app *LocatorApplication) Run(ctx context.Context) error {
	slog.Info("Starting positioning API", "addr", app.Config.Addr, "db", app.Config.DBPath)

	errChan := make(chan error, 1)
	go func() {
		if err := app.WebServer.Run(ctx); err != nil {
			errChan <- fmt.Errorf("web server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("Termination signal received")
	case err := <-errChan:
		return err
	}
	return nil
}

// Close releases held resources.
func (app *LocatorApplication) Close() {
	if app.Store != nil {
		if err := app.Store.Close(); err != nil {
			log.Printf("closing storage: %v", err)
		}
	}
}
