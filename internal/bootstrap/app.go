// Package bootstrap handles application initialization and lifecycle management
// for the example-api service.
package bootstrap

import (
	"context"
	"fmt"

	infralogger "github.com/jonesrussell/north-cloud/example-api/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/example-api/infrastructure/profiling"
)

// Options are the command-line inputs to Start.
type Options struct {
	ConfigPath string
	// Version overrides service.version when non-empty.
	Version string
}

// Start initializes the example-api and serves until a shutdown signal.
func Start(ctx context.Context, opts Options) error {
	// Phase 1: Load config and create logger
	cfg, err := LoadConfig(opts.ConfigPath, opts.Version)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := CreateLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	// Phase 2: Profiling (if enabled)
	profiling.StartPprofServer(log)
	profiler, err := profiling.StartPyroscope(cfg.Service.Name, cfg.Service.Version, log)
	if err != nil {
		log.Warn("Continuous profiling unavailable", infralogger.Error(err))
	}
	defer func() {
		if stopErr := profiler.Stop(); stopErr != nil {
			log.Warn("Failed to stop profiler", infralogger.Error(stopErr))
		}
	}()

	// Phase 3: Setup database
	db, err := SetupDatabase(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			log.Error("Failed to close database", infralogger.Error(closeErr))
		}
	}()

	// Phase 4: Setup event publisher (optional)
	publisher := SetupEventPublisher(ctx, cfg, log)
	defer func() {
		if closeErr := publisher.Close(); closeErr != nil {
			log.Warn("Failed to close event publisher", infralogger.Error(closeErr))
		}
	}()

	// Phase 5: Setup and run HTTP server
	server := SetupHTTPServer(cfg, db, publisher, log)

	if runErr := server.RunWithGracefulShutdown(ctx); runErr != nil {
		log.Error("Server error", infralogger.Error(runErr))
		return fmt.Errorf("server error: %w", runErr)
	}

	log.Info("Server exited")
	return nil
}
