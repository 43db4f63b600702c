// Package database opens the PostgreSQL pool, runs schema migrations and
// scopes units of work to transactions.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" //nolint:blankimports // PostgreSQL driver

	infraconfig "github.com/jonesrussell/north-cloud/example-api/infrastructure/config"
	infracontext "github.com/jonesrussell/north-cloud/example-api/infrastructure/context"
	infralogger "github.com/jonesrussell/north-cloud/example-api/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/example-api/infrastructure/retry"
)

// DriverName is the database/sql driver registered by lib/pq.
const DriverName = "postgres"

// Connect opens a connection pool and verifies it with a ping, retrying while
// the server is unreachable or still starting.
func Connect(ctx context.Context, cfg infraconfig.DatabaseConfig, log infralogger.Logger) (*sqlx.DB, error) {
	db, err := sqlx.Open(DriverName, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	retryCfg := retry.DefaultConfig()
	retryCfg.OnRetry = func(attempt int, delay time.Duration, err error) {
		log.Warn("Database not ready, retrying",
			infralogger.Int("attempt", attempt),
			infralogger.Duration("delay", delay),
			infralogger.Error(err),
		)
	}

	pingErr := retry.Do(ctx, retryCfg, func(ctx context.Context) error {
		pingCtx, cancel := infracontext.WithPingTimeout(ctx)
		defer cancel()
		return db.PingContext(pingCtx)
	})
	if pingErr != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", pingErr)
	}

	log.Info("Database connection established",
		infralogger.String("host", cfg.Host),
		infralogger.Int("port", cfg.Port),
		infralogger.String("dbname", cfg.Database),
		infralogger.Int("max_connections", cfg.MaxConnections),
	)

	return db, nil
}
