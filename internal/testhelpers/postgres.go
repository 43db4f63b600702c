// Package testhelpers starts disposable dependencies for integration tests.
package testhelpers

import (
	"context"
	"fmt"
	"net"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	infraconfig "github.com/jonesrussell/north-cloud/example-api/infrastructure/config"
	infralogger "github.com/jonesrussell/north-cloud/example-api/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/example-api/internal/database"
)

const (
	postgresImage          = "postgres:16-alpine"
	postgresStartupTimeout = 60 * time.Second
	postgresUser           = "examples"
	postgresPassword       = "examples"
	postgresDB             = "examples_test"
)

// StartPostgres runs a PostgreSQL container with the examples schema applied
// and returns a pool connected to it. Tests are skipped in -short mode.
// The container is removed when the test finishes.
func StartPostgres(t *testing.T) *sqlx.DB {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        postgresImage,
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     postgresUser,
				"POSTGRES_PASSWORD": postgresPassword,
				"POSTGRES_DB":       postgresDB,
			},
			// postgres logs readiness twice: once for the init server, once for the real one
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(postgresStartupTimeout),
		},
		Started: true,
	})
	if err != nil {
		t.Skipf("skipping integration test: could not start postgres container: %v", err)
	}
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("failed to get container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("failed to get container port: %v", err)
	}

	dsn := fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=disable",
		postgresUser, postgresPassword, net.JoinHostPort(host, port.Port()), postgresDB)

	db, err := sqlx.Connect(database.DriverName, dsn)
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	migrator, err := database.OpenMigrator(ctx, infraconfig.DatabaseConfig{URL: dsn}, MigrationsPath(), infralogger.NewNop())
	if err != nil {
		t.Fatalf("failed to create migrator: %v", err)
	}
	defer func() { _ = migrator.Close() }()

	if upErr := migrator.Up(); upErr != nil {
		t.Fatalf("failed to run migrations: %v", upErr)
	}

	return db
}

// MigrationsPath returns the absolute path of the repository's migrations directory.
func MigrationsPath() string {
	_, filename, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(filename), "..", "..", "migrations")
}

// Truncate empties the examples table and resets its id sequence.
func Truncate(t *testing.T, db *sqlx.DB) {
	t.Helper()

	if _, err := db.Exec("TRUNCATE TABLE examples RESTART IDENTITY"); err != nil {
		t.Fatalf("failed to truncate examples: %v", err)
	}
}
