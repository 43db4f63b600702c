package gin

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/north-cloud/example-api/infrastructure/logger"
)

// ServerBuilder provides a fluent API for building HTTP servers.
type ServerBuilder struct {
	config      *Config
	logger      logger.Logger
	setupRoutes func(*gin.Engine)
	middleware  []gin.HandlerFunc
	checks      map[string]Checker
}

// NewServerBuilder creates a new server builder with the given configuration.
func NewServerBuilder(serviceName string, port int) *ServerBuilder {
	return &ServerBuilder{
		config: NewConfig(serviceName, port),
		checks: make(map[string]Checker),
	}
}

// WithLogger sets the logger.
func (b *ServerBuilder) WithLogger(log logger.Logger) *ServerBuilder {
	b.logger = log
	return b
}

// WithHost sets the bind address.
func (b *ServerBuilder) WithHost(host string) *ServerBuilder {
	b.config.Host = host
	return b
}

// WithDebug enables or disables debug mode.
func (b *ServerBuilder) WithDebug(debug bool) *ServerBuilder {
	b.config.Debug = debug
	return b
}

// WithVersion sets the service version.
func (b *ServerBuilder) WithVersion(version string) *ServerBuilder {
	b.config.ServiceVersion = version
	return b
}

// WithCORSOrigins sets allowed CORS origins.
func (b *ServerBuilder) WithCORSOrigins(origins []string) *ServerBuilder {
	b.config.CORS.AllowedOrigins = origins
	return b
}

// WithTimeouts sets the read, write and idle timeouts. Zero keeps the default.
func (b *ServerBuilder) WithTimeouts(read, write, idle time.Duration) *ServerBuilder {
	if read > 0 {
		b.config.ReadTimeout = read
	}
	if write > 0 {
		b.config.WriteTimeout = write
	}
	if idle > 0 {
		b.config.IdleTimeout = idle
	}
	return b
}

// WithShutdownTimeout bounds graceful shutdown.
func (b *ServerBuilder) WithShutdownTimeout(timeout time.Duration) *ServerBuilder {
	if timeout > 0 {
		b.config.ShutdownTimeout = timeout
	}
	return b
}

// WithMiddleware appends middleware after the standard chain.
func (b *ServerBuilder) WithMiddleware(mw ...gin.HandlerFunc) *ServerBuilder {
	b.middleware = append(b.middleware, mw...)
	return b
}

// WithReadinessCheck adds a named dependency check to /health/ready.
func (b *ServerBuilder) WithReadinessCheck(name string, checker Checker) *ServerBuilder {
	b.checks[name] = checker
	return b
}

// WithDatabaseCheck adds a database check. A failing database makes the service unready.
func (b *ServerBuilder) WithDatabaseCheck(ping func(ctx context.Context) error) *ServerBuilder {
	return b.WithReadinessCheck("database", PingChecker("Database", CheckStatusUnhealthy, ping))
}

// WithRedisCheck adds a Redis check. Redis only carries events, so failure degrades.
func (b *ServerBuilder) WithRedisCheck(ping func(ctx context.Context) error) *ServerBuilder {
	return b.WithReadinessCheck("redis", PingChecker("Redis", CheckStatusDegraded, ping))
}

// WithRoutes sets the route setup function.
func (b *ServerBuilder) WithRoutes(setupRoutes func(*gin.Engine)) *ServerBuilder {
	b.setupRoutes = setupRoutes
	return b
}

// Build creates the server with all configured options.
func (b *ServerBuilder) Build() *Server {
	if b.logger == nil {
		b.logger = logger.Must(logger.Config{Development: b.config.Debug})
	}

	start := time.Now()
	setup := func(router *gin.Engine) {
		RegisterReadinessRoutes(router, ReadinessOptions{
			ServiceName:    b.config.ServiceName,
			ServiceVersion: b.config.ServiceVersion,
			StartTime:      start,
			Checks:         b.checks,
		})

		if b.setupRoutes != nil {
			b.setupRoutes(router)
		}
	}

	return NewServer(b.config, b.logger, setup, b.middleware...)
}
