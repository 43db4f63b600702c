package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file" //nolint:blankimports // file source driver

	infraconfig "github.com/jonesrussell/north-cloud/example-api/infrastructure/config"
	infracontext "github.com/jonesrussell/north-cloud/example-api/infrastructure/context"
	infralogger "github.com/jonesrussell/north-cloud/example-api/infrastructure/logger"
)

// DefaultMigrationsPath is relative to the working directory. In the
// container image migrations live in /app/migrations.
const DefaultMigrationsPath = "migrations"

// Migrator applies the versioned SQL files under a migrations directory.
type Migrator struct {
	m    *migrate.Migrate
	path string
	log  infralogger.Logger
}

// OpenMigrator opens a dedicated connection for cfg and binds the migrations
// in path to it. The Migrator owns that connection.
func OpenMigrator(ctx context.Context, cfg infraconfig.DatabaseConfig, path string, log infralogger.Logger) (*Migrator, error) {
	db, err := sql.Open(DriverName, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open migration connection: %w", err)
	}

	pingCtx, cancel := infracontext.WithPingTimeout(ctx)
	defer cancel()

	if pingErr := db.PingContext(pingCtx); pingErr != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", pingErr)
	}

	mg, err := NewMigrator(db, path, log)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return mg, nil
}

// NewMigrator binds the migrations in path to db. Closing the Migrator closes
// db as well.
func NewMigrator(db *sql.DB, path string, log infralogger.Logger) (*Migrator, error) {
	if path == "" {
		path = DefaultMigrationsPath
	}
	if absPath, err := filepath.Abs(path); err == nil {
		path = absPath
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("create postgres driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+path, DriverName, driver)
	if err != nil {
		return nil, fmt.Errorf("create migrate instance: %w", err)
	}

	return &Migrator{m: m, path: path, log: log}, nil
}

// Up applies every pending migration.
func (mg *Migrator) Up() error {
	if err := mg.m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			mg.log.Info("No pending migrations", infralogger.String("migrations_path", mg.path))
			return nil
		}
		return fmt.Errorf("run migrations: %w", err)
	}

	mg.log.Info("Migrations applied successfully", infralogger.String("migrations_path", mg.path))
	return nil
}

// Down rolls back steps migrations (at least one).
func (mg *Migrator) Down(steps int) error {
	if steps <= 0 {
		steps = 1
	}

	if err := mg.m.Steps(-steps); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			mg.log.Info("No migrations to rollback", infralogger.String("migrations_path", mg.path))
			return nil
		}
		return fmt.Errorf("rollback migrations: %w", err)
	}

	mg.log.Info("Migrations rolled back successfully",
		infralogger.String("migrations_path", mg.path),
		infralogger.Int("steps", steps),
	)
	return nil
}

// Version returns the applied schema version. Zero means nothing applied.
func (mg *Migrator) Version() (version uint, dirty bool, err error) {
	version, dirty, err = mg.m.Version()
	if err != nil {
		if errors.Is(err, migrate.ErrNilVersion) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("get migration version: %w", err)
	}
	return version, dirty, nil
}

// Force sets the schema version without running migrations, clearing a dirty flag.
func (mg *Migrator) Force(version int) error {
	if err := mg.m.Force(version); err != nil {
		return fmt.Errorf("force migration version: %w", err)
	}

	mg.log.Info("Migration version forced",
		infralogger.String("migrations_path", mg.path),
		infralogger.Int("version", version),
	)
	return nil
}

// Close releases the migration source and the database handle.
func (mg *Migrator) Close() error {
	srcErr, dbErr := mg.m.Close()
	return errors.Join(srcErr, dbErr)
}
