// Package config loads the example-api configuration.
package config

import (
	"errors"
	"fmt"
	"time"

	infraconfig "github.com/jonesrussell/north-cloud/example-api/infrastructure/config"
)

const (
	defaultServiceName   = "example-api"
	defaultVersion       = "1.0.0"
	defaultServerHost    = "0.0.0.0"
	defaultCORSOrigin    = "http://localhost:3000"
	defaultDiskPath      = "/"
	defaultCPUInterval   = 100 * time.Millisecond
	defaultSlowThreshold = 100 * time.Millisecond
	defaultMigrationsDir = "migrations"
)

// Config is the full service configuration.
type Config struct {
	Service  ServiceConfig             `yaml:"service"`
	Server   infraconfig.ServerConfig  `yaml:"server"`
	Database DatabaseConfig            `yaml:"database"`
	Logging  infraconfig.LoggingConfig `yaml:"logging"`
	Redis    infraconfig.RedisConfig   `yaml:"redis"`
	Health   HealthConfig              `yaml:"health"`
}

// ServiceConfig identifies the running service.
type ServiceConfig struct {
	Name                   string        `yaml:"name"`
	Version                string        `env:"APP_VERSION"              yaml:"version"`
	Debug                  bool          `env:"APP_DEBUG"                yaml:"debug"`
	SlowOperationThreshold time.Duration `env:"SLOW_OPERATION_THRESHOLD" yaml:"slow_operation_threshold"`
}

// DatabaseConfig adds migration settings to the shared PostgreSQL config.
type DatabaseConfig struct {
	infraconfig.DatabaseConfig `yaml:",inline"`

	AutoMigrate    bool   `env:"DB_AUTO_MIGRATE"    yaml:"auto_migrate"`
	MigrationsPath string `env:"DB_MIGRATIONS_PATH" yaml:"migrations_path"`
}

// HealthConfig tunes host sampling for GET /health.
type HealthConfig struct {
	DiskPath          string        `env:"HEALTH_DISK_PATH"    yaml:"disk_path"`
	CPUSampleInterval time.Duration `env:"HEALTH_CPU_INTERVAL" yaml:"cpu_sample_interval"`
}

// Load reads path (which may be missing), applies defaults and environment
// overrides, and validates the result.
func Load(path string) (*Config, error) {
	cfg, err := infraconfig.LoadWithDefaults(path, setDefaults)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if validateErr := cfg.Validate(); validateErr != nil {
		return nil, fmt.Errorf("invalid config: %w", validateErr)
	}

	return cfg, nil
}

// Validate checks every section.
func (c *Config) Validate() error {
	var errs []error

	errs = append(errs,
		c.Server.Validate(),
		c.Database.Validate(),
		c.Logging.Validate(),
	)
	if c.Redis.Enabled {
		errs = append(errs, infraconfig.ValidateRequired("redis.address", c.Redis.Address))
	}
	if c.Health.CPUSampleInterval < 0 {
		errs = append(errs, &infraconfig.ValidationError{Field: "health.cpu_sample_interval", Message: "must not be negative"})
	}

	return errors.Join(errs...)
}

func setDefaults(cfg *Config) {
	if cfg.Service.Name == "" {
		cfg.Service.Name = defaultServiceName
	}
	if cfg.Service.Version == "" {
		cfg.Service.Version = defaultVersion
	}
	if cfg.Service.SlowOperationThreshold == 0 {
		cfg.Service.SlowOperationThreshold = defaultSlowThreshold
	}

	if cfg.Server.Host == "" {
		cfg.Server.Host = defaultServerHost
	}
	cfg.Server.SetDefaults()
	if len(cfg.Server.CORSOrigins) == 0 {
		cfg.Server.CORSOrigins = []string{defaultCORSOrigin}
	}

	cfg.Database.SetDefaults()
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.Database == "" {
		cfg.Database.Database = "examples"
	}
	if cfg.Database.MigrationsPath == "" {
		cfg.Database.MigrationsPath = defaultMigrationsDir
	}

	cfg.Logging.SetDefaults()
	cfg.Redis.SetDefaults()

	if cfg.Health.DiskPath == "" {
		cfg.Health.DiskPath = defaultDiskPath
	}
	if cfg.Health.CPUSampleInterval == 0 {
		cfg.Health.CPUSampleInterval = defaultCPUInterval
	}
	// Redis events stay off unless enabled explicitly.
}
