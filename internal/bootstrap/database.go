package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	infralogger "github.com/jonesrussell/north-cloud/example-api/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/example-api/internal/config"
	"github.com/jonesrussell/north-cloud/example-api/internal/database"
)

// SetupDatabase brings the schema up to date when auto_migrate is set, then
// connects the service pool.
func SetupDatabase(ctx context.Context, cfg *config.Config, log infralogger.Logger) (*sqlx.DB, error) {
	if cfg.Database.AutoMigrate {
		if err := WithMigrator(ctx, cfg, log, (*database.Migrator).Up); err != nil {
			return nil, fmt.Errorf("auto-migrate: %w", err)
		}
	}

	db, err := database.Connect(ctx, cfg.Database.DatabaseConfig, log)
	if err != nil {
		return nil, fmt.Errorf("database connection: %w", err)
	}
	return db, nil
}

// WithMigrator opens a migrator on its own connection, runs fn and closes it.
func WithMigrator(ctx context.Context, cfg *config.Config, log infralogger.Logger, fn func(*database.Migrator) error) (err error) {
	migrator, err := database.OpenMigrator(ctx, cfg.Database.DatabaseConfig, cfg.Database.MigrationsPath, log)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	defer func() {
		err = errors.Join(err, migrator.Close())
	}()

	return fn(migrator)
}
