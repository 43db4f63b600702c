package bootstrap

import (
	"fmt"

	infraconfig "github.com/jonesrussell/north-cloud/example-api/infrastructure/config"
	infralogger "github.com/jonesrussell/north-cloud/example-api/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/example-api/internal/config"
)

// DefaultConfigPath is used when neither --config nor CONFIG_PATH is set.
const DefaultConfigPath = "config.yml"

// LoadConfig loads and validates the configuration at path. An empty path
// falls back to CONFIG_PATH, then DefaultConfigPath.
func LoadConfig(path, version string) (*config.Config, error) {
	if path == "" {
		path = infraconfig.GetConfigPath(DefaultConfigPath)
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if version != "" {
		cfg.Service.Version = version
	}
	return cfg, nil
}

// CreateLogger creates a logger instance from configuration.
func CreateLogger(cfg *config.Config) (infralogger.Logger, error) {
	log, err := infralogger.New(infralogger.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		Development: cfg.Service.Debug,
	})
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return log.With(
		infralogger.String("service", cfg.Service.Name),
		infralogger.String("version", cfg.Service.Version),
	), nil
}
